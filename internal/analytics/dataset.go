package analytics

import (
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the dataset size from which the grouped views of one
// analysis run on separate goroutines.
const parallelThreshold = 10000

// Dataset is the working set of movements after cancellation pairs and rows
// marked as unknown were removed. It is read-only once built and safe for
// concurrent use.
type Dataset struct {
	rows      []domain.MovementRow
	cancelled int
	unknown   int
}

// NewDataset filters the imported rows and returns the working dataset. The
// input slice is not modified.
func NewDataset(rows []domain.MovementRow) *Dataset {
	filtered := FilterCancellations(rows)
	cancelled := len(rows) - len(filtered)

	kept := filtered[:0]
	for _, row := range filtered {
		if isUnknownRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	unknown := len(filtered) - len(kept)

	log.Debug().
		Int("rows", len(rows)).
		Int("cancelled", cancelled).
		Int("unknown", unknown).
		Int("kept", len(kept)).
		Msg("analytics: dataset initialised")

	return &Dataset{rows: kept, cancelled: cancelled, unknown: unknown}
}

// RestoreDataset rebuilds a dataset from rows that already went through
// NewDataset, for example after a round trip through a cache.
func RestoreDataset(rows []domain.MovementRow, cancelled, unknown int) *Dataset {
	return &Dataset{
		rows:      append([]domain.MovementRow(nil), rows...),
		cancelled: cancelled,
		unknown:   unknown,
	}
}

func isUnknownRow(row domain.MovementRow) bool {
	return row.Item == domain.UnknownLabel ||
		row.MovementType == domain.UnknownLabel ||
		row.User == domain.UnknownLabel ||
		row.Date.Equals(domain.UnknownLabel)
}

// Len returns the number of rows in the working dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Cancelled returns how many rows were removed as cancellation pairs.
func (d *Dataset) Cancelled() int { return d.cancelled }

// Unknown returns how many rows were removed for carrying the unknown label.
func (d *Dataset) Unknown() int { return d.unknown }

// Rows returns a copy of the working rows.
func (d *Dataset) Rows() []domain.MovementRow {
	if d == nil {
		return nil
	}
	return append([]domain.MovementRow(nil), d.rows...)
}

// Analyze computes every view of the dataset. It returns nil for an empty
// dataset.
func (d *Dataset) Analyze() *domain.Report {
	if d.Len() == 0 {
		return nil
	}

	report := &domain.Report{}
	if len(d.rows) < parallelThreshold {
		report.Overview = Overview(d.rows)
		report.ByArticle = ByArticle(d.rows)
		report.ByMovementType = ByMovementType(d.rows)
		report.ByUser = ByUser(d.rows)
		report.ByDate = ByDate(d.rows)
		report.WriteOffs = WriteOffs(d.rows)
		report.Gains = Gains(d.rows)
	} else {
		d.analyzeParallel(report)
	}

	report.Financial = Financial(report.Overview, report.WriteOffs, report.Gains)
	return report
}

// analyzeParallel fills each section from its own goroutine. Every view only
// reads d.rows and writes a distinct report field.
func (d *Dataset) analyzeParallel(report *domain.Report) {
	var g errgroup.Group
	g.Go(func() error { report.Overview = Overview(d.rows); return nil })
	g.Go(func() error { report.ByArticle = ByArticle(d.rows); return nil })
	g.Go(func() error { report.ByMovementType = ByMovementType(d.rows); return nil })
	g.Go(func() error { report.ByUser = ByUser(d.rows); return nil })
	g.Go(func() error { report.ByDate = ByDate(d.rows); return nil })
	g.Go(func() error { report.WriteOffs = WriteOffs(d.rows); return nil })
	g.Go(func() error { report.Gains = Gains(d.rows); return nil })
	_ = g.Wait()
}

// ArticleDetails returns the drill-down for one article of the dataset.
func (d *Dataset) ArticleDetails(item string) (*domain.ArticleDetail, bool) {
	if d.Len() == 0 {
		return nil, false
	}
	return ArticleDetails(d.rows, item)
}
