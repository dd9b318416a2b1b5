package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/xuri/excelize/v2"
)

// cellSource abstracts the grid a sheet was read into.
type cellSource interface {
	Len() int
	Row(i int) []string
	Cell(row, col int, role domain.Column) domain.Cell
}

type csvSource [][]string

func (s csvSource) Len() int           { return len(s) }
func (s csvSource) Row(i int) []string { return s[i] }

func (s csvSource) Cell(row, col int, _ domain.Column) domain.Cell {
	return domain.TextCell(strings.TrimSpace(valueAt(s[row], col)))
}

type xlsxSource struct {
	file  *excelize.File
	sheet string
	rows  [][]string
}

func (s *xlsxSource) Len() int           { return len(s.rows) }
func (s *xlsxSource) Row(i int) []string { return s.rows[i] }

// Cell turns a raw cell value into a typed cell. Numbers stay numbers unless
// the sheet stored them as strings, which keeps "1.5" typed as text readable
// as a German amount.
func (s *xlsxSource) Cell(row, col int, role domain.Column) domain.Cell {
	raw := strings.TrimSpace(valueAt(s.rows[row], col))
	if raw == "" {
		return domain.Cell{}
	}

	typ := excelize.CellTypeUnset
	if ref, err := excelize.CoordinatesToCellName(col+1, row+1); err == nil {
		if t, err := s.file.GetCellType(s.sheet, ref); err == nil {
			typ = t
		}
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return domain.TextCell(raw)
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return domain.TimeCell(t)
		}
		return domain.TextCell(raw)
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil && isNumericRole(role) {
		return domain.NumberCell(v)
	}
	return domain.TextCell(raw)
}

func isNumericRole(role domain.Column) bool {
	switch role {
	case domain.ColumnDate, domain.ColumnTime, domain.ColumnQuantity, domain.ColumnCapturedQuantity,
		domain.ColumnLocalAmount, domain.ColumnCostAmount, domain.ColumnSaleValue:
		return true
	}
	return false
}

func valueAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// convert maps the first non-blank row as header and every following
// non-blank row to a MovementRow.
func convert(src cellSource) ([]domain.MovementRow, Stats, error) {
	var stats Stats

	headerIdx := -1
	for i := 0; i < src.Len(); i++ {
		if !isBlank(src.Row(i)) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, stats, ErrNoData
	}

	header := src.Row(headerIdx)
	stats.Columns = len(header)

	columns := make(map[domain.Column]int)
	for idx, caption := range header {
		col, ok := domain.ParseColumn(caption)
		if !ok {
			continue
		}
		if _, seen := columns[col]; !seen {
			columns[col] = idx
		}
	}
	if len(columns) == 0 {
		return nil, stats, ErrNoHeader
	}

	rows := make([]domain.MovementRow, 0, src.Len()-headerIdx-1)
	for i := headerIdx + 1; i < src.Len(); i++ {
		raw := src.Row(i)
		if isBlank(raw) {
			continue
		}
		for _, v := range raw {
			if strings.TrimSpace(v) != "" {
				stats.NonEmptyCells++
			}
		}

		cell := func(role domain.Column) domain.Cell {
			idx, ok := columns[role]
			if !ok {
				return domain.Cell{}
			}
			return src.Cell(i, idx, role)
		}
		text := func(role domain.Column) string {
			return cellText(cell(role))
		}

		rows = append(rows, domain.MovementRow{
			Item:             text(domain.ColumnItem),
			ItemText:         text(domain.ColumnItemText),
			MovementType:     text(domain.ColumnMovementType),
			Document:         text(domain.ColumnDocument),
			Date:             cell(domain.ColumnDate),
			Time:             clockText(cell(domain.ColumnTime)),
			CapturedQuantity: cell(domain.ColumnCapturedQuantity),
			CapturedUnit:     text(domain.ColumnCapturedUnit),
			Quantity:         cell(domain.ColumnQuantity),
			Unit:             text(domain.ColumnUnit),
			LocalAmount:      cell(domain.ColumnLocalAmount),
			CostAmount:       cell(domain.ColumnCostAmount),
			SaleValue:        cell(domain.ColumnSaleValue),
			User:             text(domain.ColumnUser),
		})
	}

	stats.Rows = len(rows)
	if len(rows) == 0 {
		return nil, stats, ErrNoData
	}
	return rows, stats, nil
}

func cellText(c domain.Cell) string {
	return c.Key()
}

// clockText renders Excel day fractions as a wall clock time.
func clockText(c domain.Cell) string {
	if c.Kind == domain.CellNumber && c.Number >= 0 && c.Number < 1 {
		seconds := int(math.Round(c.Number*86400)) % 86400
		return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
	}
	if c.Kind == domain.CellTime {
		return c.Time.Format("15:04:05")
	}
	return c.Key()
}
