package analytics

import (
	"fmt"
	"testing"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOffs(t *testing.T) {
	rows := []domain.MovementRow{
		movement("A", "2024-01-01", -2, -10, -8, -12),
		movement("A", "2024-01-02", 1, 5, 4, 6),
		movement("B", "2024-01-01", -1, -3, -2, -4),
		movement("C", "2024-01-01", 4, 40, 30, 50),
	}

	got := WriteOffs(rows)

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 3.0, got.TotalQuantity)
	assert.Equal(t, 13.0, got.TotalLocal)
	assert.Equal(t, 10.0, got.TotalCost)
	assert.Equal(t, 16.0, got.TotalSale)
	assert.Equal(t, 16.0, got.PotentialLoss)

	require.Len(t, got.TopArticles, 2)
	assert.Equal(t, domain.ArticleNetLoss{Item: "A", ItemText: "Artikel A", Quantity: 1, Local: 5, Sale: 6}, got.TopArticles[0])
	assert.Equal(t, domain.ArticleNetLoss{Item: "B", ItemText: "Artikel B", Quantity: 1, Local: 3, Sale: 4}, got.TopArticles[1])
}

func TestWriteOffs_GrossUsesMagnitudes(t *testing.T) {
	got := WriteOffs([]domain.MovementRow{movement("A", "2024-01-01", -2, 10, 8, 12)})

	assert.Equal(t, 10.0, got.TotalLocal)
	assert.Equal(t, 12.0, got.PotentialLoss)
	assert.Empty(t, got.TopArticles, "raw positive value nets to a gain")
}

func TestWriteOffs_NetLossThreshold(t *testing.T) {
	rows := []domain.MovementRow{
		movement("C", "2024-01-01", -1, -1, 0, -1),
		movement("C", "2024-01-02", 1, 0.995, 0, 1),
	}

	got := WriteOffs(rows)

	assert.Equal(t, 1, got.Count)
	assert.Empty(t, got.TopArticles)
}

func TestWriteOffs_TopTen(t *testing.T) {
	rows := make([]domain.MovementRow, 0, 12)
	for i := 1; i <= 12; i++ {
		rows = append(rows, movement(fmt.Sprintf("A%02d", i), "2024-01-01", -1, -float64(i), 0, 0))
	}

	got := WriteOffs(rows)

	require.Len(t, got.TopArticles, topWriteOffLimit)
	assert.Equal(t, "A12", got.TopArticles[0].Item)
	assert.Equal(t, 12.0, got.TopArticles[0].Local)
	assert.Equal(t, "A03", got.TopArticles[9].Item)
}

func TestGains(t *testing.T) {
	got := Gains([]domain.MovementRow{
		movement("A", "2024-01-01", 2, 10, 8, 12),
		movement("B", "2024-01-01", 1, -5, 4, 6),
		movement("C", "2024-01-01", -1, -5, -4, -6),
		movement("D", "2024-01-01", 0, 99, 99, 99),
	})

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 3.0, got.TotalQuantity)
	assert.Equal(t, 15.0, got.TotalLocal)
	assert.Equal(t, 12.0, got.TotalCost)
	assert.Equal(t, 18.0, got.TotalSale)
	assert.Equal(t, 18.0, got.PotentialGain)
}

func TestFinancial(t *testing.T) {
	t.Run("combines the sections", func(t *testing.T) {
		got := Financial(
			domain.Overview{TotalSale: 100, TotalCost: 80, Profit: 20},
			domain.WriteOffSummary{PotentialLoss: 30},
			domain.GainSummary{PotentialGain: 50},
		)

		assert.Equal(t, domain.FinancialSummary{
			TotalRevenue: 100,
			TotalCost:    80,
			TotalProfit:  20,
			WriteOffLoss: 30,
			GainValue:    50,
			NetImpact:    20,
			ProfitMargin: 25,
		}, got)
	})

	t.Run("zero cost has no margin", func(t *testing.T) {
		got := Financial(domain.Overview{TotalSale: 10, Profit: 10}, domain.WriteOffSummary{}, domain.GainSummary{})

		assert.Equal(t, 0.0, got.ProfitMargin)
	})
}
