package analytics

import (
	"math"
	"sort"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

const (
	netLossThreshold = -0.01
	topWriteOffLimit = 10
)

// WriteOffs sums the magnitudes of all negative-quantity rows. The top
// articles list comes from a separate net pass over every row, so it reflects
// articles that lost value overall rather than gross write-offs.
func WriteOffs(rows []domain.MovementRow) domain.WriteOffSummary {
	var out domain.WriteOffSummary
	for _, row := range rows {
		a := RawAmounts(row)
		if a.Quantity >= 0 {
			continue
		}
		out.Count++
		out.TotalQuantity += math.Abs(a.Quantity)
		out.TotalLocal += math.Abs(a.Local)
		out.TotalCost += math.Abs(a.Cost)
		out.TotalSale += math.Abs(a.Sale)
	}
	out.PotentialLoss = out.TotalSale
	out.TopArticles = topNetLosses(rows, topWriteOffLimit)
	return out
}

func topNetLosses(rows []domain.MovementRow, limit int) []domain.ArticleNetLoss {
	index := make(map[string]int)
	nets := make([]domain.ArticleNetLoss, 0)

	for _, row := range rows {
		if row.Item == "" {
			continue
		}
		i, ok := index[row.Item]
		if !ok {
			i = len(nets)
			index[row.Item] = i
			nets = append(nets, domain.ArticleNetLoss{Item: row.Item, ItemText: row.ItemText})
		}
		a := RawAmounts(row)
		nets[i].Quantity += a.Quantity
		nets[i].Local += a.Local
		nets[i].Sale += a.Sale
	}

	out := make([]domain.ArticleNetLoss, 0)
	for _, n := range nets {
		if n.Local >= netLossThreshold {
			continue
		}
		out = append(out, domain.ArticleNetLoss{
			Item:     n.Item,
			ItemText: n.ItemText,
			Quantity: math.Abs(n.Quantity),
			Local:    math.Abs(n.Local),
			Sale:     math.Abs(n.Sale),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Local > out[j].Local
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Gains sums all positive-quantity rows.
func Gains(rows []domain.MovementRow) domain.GainSummary {
	var out domain.GainSummary
	for _, row := range rows {
		a := Normalize(row)
		if a.Quantity <= 0 {
			continue
		}
		out.Count++
		out.TotalQuantity += a.Quantity
		out.TotalLocal += a.Local
		out.TotalCost += a.Cost
		out.TotalSale += a.Sale
	}
	out.PotentialGain = out.TotalSale
	return out
}

// Financial combines overview, write-offs and gains into the impact summary.
func Financial(overview domain.Overview, writeOffs domain.WriteOffSummary, gains domain.GainSummary) domain.FinancialSummary {
	out := domain.FinancialSummary{
		TotalRevenue: overview.TotalSale,
		TotalCost:    overview.TotalCost,
		TotalProfit:  overview.Profit,
		WriteOffLoss: writeOffs.PotentialLoss,
		GainValue:    gains.PotentialGain,
		NetImpact:    gains.PotentialGain - writeOffs.PotentialLoss,
	}
	if overview.TotalCost != 0 {
		out.ProfitMargin = overview.Profit / overview.TotalCost * 100
	}
	return out
}
