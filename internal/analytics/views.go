package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

// Overview aggregates the whole dataset with normalized amounts.
func Overview(rows []domain.MovementRow) domain.Overview {
	var out domain.Overview
	articles := make(map[string]struct{})
	users := make(map[string]struct{})

	for _, row := range rows {
		a := Normalize(row)
		out.TotalQuantity += a.Quantity
		out.TotalLocal += a.Local
		out.TotalCost += a.Cost
		out.TotalSale += a.Sale

		if row.Item != "" {
			articles[row.Item] = struct{}{}
		}
		if row.User != "" {
			users[row.User] = struct{}{}
		}
	}

	out.TotalRecords = len(rows)
	out.UniqueArticles = len(articles)
	out.UniqueUsers = len(users)
	out.Profit = netProfit(out.TotalQuantity, out.TotalCost, out.TotalSale)
	return out
}

// ByArticle groups rows by item id. Rows without an item id are skipped.
// Results are ordered by absolute local amount, largest first.
func ByArticle(rows []domain.MovementRow) []domain.ArticleSummary {
	index := make(map[string]int)
	out := make([]domain.ArticleSummary, 0)

	for _, row := range rows {
		if row.Item == "" {
			continue
		}
		i, ok := index[row.Item]
		if !ok {
			i = len(out)
			index[row.Item] = i
			out = append(out, domain.ArticleSummary{Item: row.Item, ItemText: row.ItemText})
		}

		a := Normalize(row)
		s := &out[i]
		s.TotalQuantity += a.Quantity
		s.TotalLocal += a.Local
		s.TotalCost += a.Cost
		s.TotalSale += a.Sale
		s.Movements++

		if a.Quantity < 0 {
			s.WriteOffs += math.Abs(a.Quantity)
		} else if a.Quantity > 0 {
			s.Gains += a.Quantity
		}
	}

	for i := range out {
		out[i].AvgValuePerUnit = avgValuePerUnit(out[i].TotalLocal, out[i].TotalQuantity)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].TotalLocal) > math.Abs(out[j].TotalLocal)
	})
	return out
}

// avgValuePerUnit is the value per unit of net movement, signed like the value.
func avgValuePerUnit(value, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	avg := math.Abs(value) / math.Abs(quantity)
	if value < 0 {
		return -avg
	}
	return avg
}

// ByMovementType groups rows by movement type label, most frequent first.
func ByMovementType(rows []domain.MovementRow) []domain.MovementTypeSummary {
	index := make(map[string]int)
	out := make([]domain.MovementTypeSummary, 0)

	for _, row := range rows {
		key := orUnknown(row.MovementType)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.MovementTypeSummary{MovementType: key})
		}

		a := Normalize(row)
		s := &out[i]
		s.Count++
		s.TotalQuantity += a.Quantity
		s.TotalLocal += a.Local
		s.TotalCost += a.Cost
		s.TotalSale += a.Sale
	}

	for i := range out {
		out[i].Profit = netProfit(out[i].TotalQuantity, out[i].TotalCost, out[i].TotalSale)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// ByUser groups rows by the booking user, most active first.
func ByUser(rows []domain.MovementRow) []domain.UserSummary {
	index := make(map[string]int)
	out := make([]domain.UserSummary, 0)
	articles := make([]map[string]struct{}, 0)

	for _, row := range rows {
		key := orUnknown(row.User)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.UserSummary{User: key})
			articles = append(articles, make(map[string]struct{}))
		}

		a := Normalize(row)
		s := &out[i]
		s.Movements++
		s.TotalQuantity += a.Quantity
		s.TotalLocal += a.Local
		if row.Item != "" {
			articles[i][row.Item] = struct{}{}
		}
	}

	for i := range out {
		out[i].UniqueArticles = len(articles[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Movements > out[j].Movements
	})
	return out
}

type dateGroup struct {
	summary domain.DateSummary
	at      time.Time
	dated   bool
}

// ByDate groups rows by German formatted booking date, newest first. Groups
// whose label is not a date sort after all dated groups.
func ByDate(rows []domain.MovementRow) []domain.DateSummary {
	index := make(map[string]int)
	groups := make([]dateGroup, 0)

	for _, row := range rows {
		label, at, dated := DateLabel(row.Date)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, dateGroup{
				summary: domain.DateSummary{Date: label},
				at:      at,
				dated:   dated,
			})
		}

		a := Normalize(row)
		s := &groups[i].summary
		s.Movements++
		s.TotalQuantity += a.Quantity
		s.TotalLocal += a.Local
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return newerFirst(groups[i].at, groups[i].dated, groups[j].at, groups[j].dated)
	})

	out := make([]domain.DateSummary, len(groups))
	for i, g := range groups {
		out[i] = g.summary
	}
	return out
}

// newerFirst orders dated entries descending and pushes undated ones last.
func newerFirst(a time.Time, aDated bool, b time.Time, bDated bool) bool {
	if aDated != bDated {
		return aDated
	}
	if !aDated {
		return false
	}
	return a.After(b)
}

func orUnknown(s string) string {
	if s == "" {
		return domain.UnknownLabel
	}
	return s
}
