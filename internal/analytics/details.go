package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

// ArticleDetails returns the movement history of one article, newest first.
// Totals use raw amounts. ok is false when no row carries the item id.
func ArticleDetails(rows []domain.MovementRow, item string) (*domain.ArticleDetail, bool) {
	type entry struct {
		movement domain.ArticleMovement
		at       time.Time
		dated    bool
	}

	var (
		detail  *domain.ArticleDetail
		entries []entry
	)

	for _, row := range rows {
		if row.Item != item {
			continue
		}
		if detail == nil {
			detail = &domain.ArticleDetail{Item: item, ItemText: row.ItemText}
		}

		a := RawAmounts(row)
		detail.TotalBooked += math.Abs(a.Quantity)
		if a.Quantity < 0 {
			detail.TotalWrittenOff += math.Abs(a.Quantity)
		} else {
			detail.TotalGained += a.Quantity
		}
		detail.TotalValue += a.Local
		detail.MovementCount++

		label, at, dated := FormatDate(row.Date)
		entries = append(entries, entry{
			movement: domain.ArticleMovement{
				Date:         label,
				MovementType: row.MovementType,
				Quantity:     a.Quantity,
				Local:        a.Local,
				Cost:         a.Cost,
				Sale:         a.Sale,
				Time:         row.Time,
				Document:     row.Document,
			},
			at:    at,
			dated: dated,
		})
	}

	if detail == nil {
		return nil, false
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return newerFirst(entries[i].at, entries[i].dated, entries[j].at, entries[j].dated)
	})

	detail.Movements = make([]domain.ArticleMovement, len(entries))
	for i, e := range entries {
		detail.Movements[i] = e.movement
	}
	return detail, true
}
