package analytics

import (
	"math"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

const cancelTolerance = 0.01

// FilterCancellations drops pairs of rows that reverse each other: same raw
// date and item, with quantity, local amount and sale value each summing to
// roughly zero. Pairing is greedy within a bucket; the first partner found in
// input order wins and a row cancels at most once. Row order is preserved.
func FilterCancellations(rows []domain.MovementRow) []domain.MovementRow {
	buckets := make(map[bucketKey][]int)
	for i, row := range rows {
		key := bucketKey{date: row.Date.Key(), item: row.Item}
		buckets[key] = append(buckets[key], i)
	}

	excluded := make(map[int]struct{})
	for _, indices := range buckets {
		if len(indices) < 2 {
			continue
		}
		cancelBucket(rows, indices, excluded)
	}

	if len(excluded) == 0 {
		return append([]domain.MovementRow(nil), rows...)
	}

	out := make([]domain.MovementRow, 0, len(rows)-len(excluded))
	for i, row := range rows {
		if _, ok := excluded[i]; ok {
			continue
		}
		out = append(out, row)
	}
	return out
}

type bucketKey struct {
	date string
	item string
}

func cancelBucket(rows []domain.MovementRow, indices []int, excluded map[int]struct{}) {
	amounts := make([]Amounts, len(indices))
	for k, idx := range indices {
		amounts[k] = RawAmounts(rows[idx])
	}

	for i := 0; i < len(indices); i++ {
		if _, ok := excluded[indices[i]]; ok {
			continue
		}
		for j := i + 1; j < len(indices); j++ {
			if _, ok := excluded[indices[j]]; ok {
				continue
			}
			if cancels(amounts[i], amounts[j]) {
				excluded[indices[i]] = struct{}{}
				excluded[indices[j]] = struct{}{}
				break
			}
		}
	}
}

func cancels(a, b Amounts) bool {
	return offsets(a.Quantity, b.Quantity) &&
		offsets(a.Local, b.Local) &&
		offsets(a.Sale, b.Sale)
}

func offsets(x, y float64) bool {
	return math.Abs(x+y) < cancelTolerance && x != 0
}
