package analytics

import (
	"testing"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	t.Run("net write-off is valued at cost", func(t *testing.T) {
		got := Overview([]domain.MovementRow{movement("A", "2024-01-01", -10, 55, 50, 60)})

		assert.Equal(t, 1, got.TotalRecords)
		assert.Equal(t, -10.0, got.TotalQuantity)
		assert.Equal(t, -55.0, got.TotalLocal)
		assert.Equal(t, -50.0, got.TotalCost)
		assert.Equal(t, -60.0, got.TotalSale)
		assert.Equal(t, -50.0, got.Profit)
	})

	t.Run("net gain is sale minus cost", func(t *testing.T) {
		got := Overview([]domain.MovementRow{movement("A", "2024-01-01", 10, 55, 50, 60)})

		assert.Equal(t, 10.0, got.Profit)
	})

	t.Run("no net movement has no profit", func(t *testing.T) {
		got := Overview([]domain.MovementRow{
			movement("A", "2024-01-01", 5, 10, 10, 30),
			movement("A", "2024-01-02", -5, 10, 10, 12),
		})

		assert.Equal(t, 0.0, got.TotalQuantity)
		assert.Equal(t, 0.0, got.Profit)
		assert.Equal(t, 18.0, got.TotalSale)
	})

	t.Run("counts distinct articles and users", func(t *testing.T) {
		got := Overview([]domain.MovementRow{
			movement("A", "2024-01-01", 1, 1, 1, 1, withUser("U1")),
			movement("A", "2024-01-01", 1, 1, 1, 1, withUser("U2")),
			movement("B", "2024-01-01", 1, 1, 1, 1, withUser("U2")),
			movement("", "2024-01-01", 1, 1, 1, 1, withUser("")),
		})

		assert.Equal(t, 4, got.TotalRecords)
		assert.Equal(t, 2, got.UniqueArticles)
		assert.Equal(t, 2, got.UniqueUsers)
	})
}

func TestByArticle(t *testing.T) {
	t.Run("accumulates net movement per article", func(t *testing.T) {
		got := ByArticle([]domain.MovementRow{
			movement("A", "2024-01-01", 10, 20, 20, 30),
			movement("A", "2024-01-02", -3, 6, 6, 9),
		})

		require.Len(t, got, 1)
		a := got[0]
		assert.Equal(t, "A", a.Item)
		assert.Equal(t, "Artikel A", a.ItemText)
		assert.Equal(t, 7.0, a.TotalQuantity)
		assert.Equal(t, 14.0, a.TotalLocal)
		assert.Equal(t, 14.0, a.TotalCost)
		assert.Equal(t, 21.0, a.TotalSale)
		assert.Equal(t, 2, a.Movements)
		assert.Equal(t, 10.0, a.Gains)
		assert.Equal(t, 3.0, a.WriteOffs)
		assert.Equal(t, 2.0, a.AvgValuePerUnit)
	})

	t.Run("average follows the sign of the value", func(t *testing.T) {
		got := ByArticle([]domain.MovementRow{movement("A", "2024-01-01", -4, 10, 0, 0)})

		require.Len(t, got, 1)
		assert.Equal(t, -2.5, got[0].AvgValuePerUnit)
	})

	t.Run("zero net quantity has no average", func(t *testing.T) {
		got := ByArticle([]domain.MovementRow{
			movement("A", "2024-01-01", 2, 10, 0, 0),
			movement("A", "2024-01-02", -2, 4, 0, 0),
		})

		require.Len(t, got, 1)
		assert.Equal(t, 6.0, got[0].TotalLocal)
		assert.Equal(t, 0.0, got[0].AvgValuePerUnit)
	})

	t.Run("sorted by absolute value and skips missing ids", func(t *testing.T) {
		got := ByArticle([]domain.MovementRow{
			movement("small", "2024-01-01", 1, 5, 0, 0),
			movement("", "2024-01-01", 1, 1000, 0, 0),
			movement("loss", "2024-01-01", -1, 50, 0, 0),
			movement("gain", "2024-01-01", 1, 20, 0, 0),
		})

		items := make([]string, 0, len(got))
		for _, a := range got {
			items = append(items, a.Item)
		}
		assert.Equal(t, []string{"loss", "gain", "small"}, items)
	})
}

func TestByMovementType(t *testing.T) {
	got := ByMovementType([]domain.MovementRow{
		movement("A", "2024-01-01", -2, 10, 8, 12, withType("Inventurdifferenz")),
		movement("B", "2024-01-01", 3, 15, 9, 21, withType("Wareneingang")),
		movement("C", "2024-01-01", 1, 5, 3, 7, withType("Wareneingang")),
		movement("D", "2024-01-01", 1, 5, 3, 7, withType("")),
	})

	require.Len(t, got, 3)
	assert.Equal(t, "Wareneingang", got[0].MovementType)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 4.0, got[0].TotalQuantity)
	assert.Equal(t, 12.0, got[0].TotalCost)
	assert.Equal(t, 28.0, got[0].TotalSale)
	assert.Equal(t, 16.0, got[0].Profit)

	assert.Equal(t, "Inventurdifferenz", got[1].MovementType)
	assert.Equal(t, -8.0, got[1].Profit)

	assert.Equal(t, domain.UnknownLabel, got[2].MovementType)
	assert.Equal(t, 1, got[2].Count)
}

func TestByUser(t *testing.T) {
	got := ByUser([]domain.MovementRow{
		movement("A", "2024-01-01", -2, 10, 0, 0, withUser("SCHMIDT")),
		movement("A", "2024-01-02", 1, 4, 0, 0, withUser("SCHMIDT")),
		movement("B", "2024-01-02", 1, 4, 0, 0, withUser("SCHMIDT")),
		movement("C", "2024-01-02", 1, 4, 0, 0, withUser("")),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "SCHMIDT", got[0].User)
	assert.Equal(t, 3, got[0].Movements)
	assert.Equal(t, 0.0, got[0].TotalQuantity)
	assert.Equal(t, -2.0, got[0].TotalLocal)
	assert.Equal(t, 2, got[0].UniqueArticles)

	assert.Equal(t, domain.UnknownLabel, got[1].User)
	assert.Equal(t, 1, got[1].UniqueArticles)
}

func TestByDate(t *testing.T) {
	got := ByDate([]domain.MovementRow{
		movement("A", "2024-01-02", 1, 10, 0, 0),
		movement("A", "irgendwann", 1, 10, 0, 0),
		movement("A", "2024-03-01", -1, 10, 0, 0),
		movement("A", "", 1, 10, 0, 0),
		movement("A", "02.01.2024", 2, 5, 0, 0),
		movement("A", "2023-12-31", 1, 10, 0, 0),
	})

	labels := make([]string, 0, len(got))
	for _, d := range got {
		labels = append(labels, d.Date)
	}
	assert.Equal(t, []string{"1.3.2024", "2.1.2024", "31.12.2023", "irgendwann", domain.UnknownLabel}, labels)

	assert.Equal(t, 2, got[1].Movements)
	assert.Equal(t, 3.0, got[1].TotalQuantity)
	assert.Equal(t, 15.0, got[1].TotalLocal)
	assert.Equal(t, -10.0, got[0].TotalLocal)
}

func TestViews_UnknownKeyAsymmetry(t *testing.T) {
	rows := []domain.MovementRow{
		movement("A", "2024-01-01", 1, 1, 1, 1),
		movement("", "2024-01-01", 1, 1, 1, 1),
		movement("", "", 1, 1, 1, 1, withType(""), withUser("")),
	}
	overview := Overview(rows)

	typeCount := 0
	for _, m := range ByMovementType(rows) {
		typeCount += m.Count
	}
	userCount := 0
	for _, u := range ByUser(rows) {
		userCount += u.Movements
	}
	dateCount := 0
	for _, d := range ByDate(rows) {
		dateCount += d.Movements
	}
	articleCount := 0
	for _, a := range ByArticle(rows) {
		articleCount += a.Movements
	}

	assert.Equal(t, overview.TotalRecords, typeCount)
	assert.Equal(t, overview.TotalRecords, userCount)
	assert.Equal(t, overview.TotalRecords, dateCount)
	assert.Equal(t, 1, articleCount)
	assert.LessOrEqual(t, articleCount, overview.TotalRecords)
}
