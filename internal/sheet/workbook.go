package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/andresuchdata/bestandsanalyse/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Workbook is an opened upload. CSV files expose a single sheet named after
// the file.
type Workbook struct {
	name string
	kind FileType
	xlsx *excelize.File
	csv  [][]string
}

// Stats describes the raw content of a sheet.
type Stats struct {
	Sheet         string `json:"sheet"`
	Rows          int    `json:"rows"`
	Columns       int    `json:"columns"`
	NonEmptyCells int    `json:"nonEmptyCells"`
}

type options struct {
	maxBytes int64
}

// Option configures Open.
type Option func(*options)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// Open reads an upload fully, validates it and parses the workbook.
func Open(name string, r io.Reader, opts ...Option) (*Workbook, error) {
	o := options{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(io.LimitReader(r, o.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	kind, err := Validate(name, int64(len(data)), data, o.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}

	wb := &Workbook{name: name, kind: kind}
	switch kind {
	case FileTypeXLSX:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx file %s: %w", name, err)
		}
		wb.xlsx = f
	case FileTypeCSV:
		records, err := readCSV(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read csv file %s: %w", name, err)
		}
		wb.csv = records
	default:
		return nil, fmt.Errorf("%s (%s): %w, save the workbook as .xlsx", name, kind, ErrUnsupportedType)
	}

	log := logger.WithComponent("sheet")
	log.Debug().Str("file", name).Str("type", string(kind)).Int("bytes", len(data)).Msg("workbook opened")
	return wb, nil
}

// Type returns the detected file type.
func (w *Workbook) Type() FileType { return w.kind }

// SheetNames lists the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	if w.xlsx != nil {
		return w.xlsx.GetSheetList()
	}
	return []string{w.csvSheetName()}
}

func (w *Workbook) csvSheetName() string {
	base := filepath.Base(w.name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadRows converts a sheet into movement rows. An empty sheet name selects
// the first sheet.
func (w *Workbook) ReadRows(sheetName string) ([]domain.MovementRow, Stats, error) {
	names := w.SheetNames()
	if len(names) == 0 {
		return nil, Stats{}, ErrNoSheets
	}
	if sheetName == "" {
		sheetName = names[0]
	}
	if !slices.Contains(names, sheetName) {
		return nil, Stats{}, fmt.Errorf("%q: %w", sheetName, ErrSheetNotFound)
	}

	var src cellSource
	if w.xlsx != nil {
		raw, err := w.xlsx.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, Stats{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheetName, err)
		}
		src = &xlsxSource{file: w.xlsx, sheet: sheetName, rows: raw}
	} else {
		src = csvSource(w.csv)
	}

	rows, stats, err := convert(src)
	stats.Sheet = sheetName
	if err != nil {
		return nil, stats, fmt.Errorf("sheet %s: %w", sheetName, err)
	}
	return rows, stats, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	if w.xlsx != nil {
		return w.xlsx.Close()
	}
	return nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// detectDelimiter picks ';' for German exports and ',' otherwise.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	if bytes.Count(line, []byte("\t")) > bytes.Count(line, []byte(",")) {
		return '\t'
	}
	return ','
}
