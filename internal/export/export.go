package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/analytics"
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

// Section names one exportable part of a report.
type Section string

const (
	SectionAll            Section = ""
	SectionOverview       Section = "overview"
	SectionByArticle      Section = "byArticle"
	SectionByMovementType Section = "byMovementType"
	SectionByUser         Section = "byUser"
	SectionByDate         Section = "byDate"
	SectionWriteOffs      Section = "writeOffs"
	SectionTopWriteOffs   Section = "topWriteOffs"
	SectionGains          Section = "gains"
	SectionFinancial      Section = "financial"
	SectionRows           Section = "rows"
)

// Sections lists the report sections in display order.
var Sections = []Section{
	SectionOverview,
	SectionByArticle,
	SectionByMovementType,
	SectionByUser,
	SectionByDate,
	SectionWriteOffs,
	SectionTopWriteOffs,
	SectionGains,
	SectionFinancial,
}

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	ErrUnknownSection = errors.New("unknown export section")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrEmptyReport    = errors.New("nothing to export")
)

// ParseSection accepts section names case-insensitively.
func ParseSection(s string) (Section, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return SectionAll, nil
	}
	if strings.EqualFold(s, string(SectionRows)) {
		return SectionRows, nil
	}
	for _, sec := range Sections {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownSection)
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// FileName builds "<base>_<unix millis>.<ext>" as the download name.
func FileName(base string, section Section, f Format, now time.Time) string {
	if base == "" {
		base = "export"
	}
	if section != SectionAll {
		base += "_" + string(section)
	}
	return fmt.Sprintf("%s_%d.%s", base, now.UnixMilli(), f)
}

// WriteJSON writes the whole report or one of its sections as indented JSON.
func WriteJSON(w io.Writer, report *domain.Report, section Section) error {
	if report == nil {
		return ErrEmptyReport
	}

	var v any
	switch section {
	case SectionAll:
		v = report
	case SectionOverview:
		v = report.Overview
	case SectionByArticle:
		v = report.ByArticle
	case SectionByMovementType:
		v = report.ByMovementType
	case SectionByUser:
		v = report.ByUser
	case SectionByDate:
		v = report.ByDate
	case SectionWriteOffs:
		v = report.WriteOffs
	case SectionTopWriteOffs:
		v = report.WriteOffs.TopArticles
	case SectionGains:
		v = report.Gains
	case SectionFinancial:
		v = report.Financial
	default:
		return fmt.Errorf("%q: %w", section, ErrUnknownSection)
	}
	return encodeJSON(w, v)
}

// WriteRowsJSON writes the working rows as indented JSON.
func WriteRowsJSON(w io.Writer, rows []domain.MovementRow) error {
	return encodeJSON(w, rows)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes one report section as a CSV table with German headers and
// number formats.
func WriteCSV(w io.Writer, report *domain.Report, section Section) error {
	if report == nil {
		return ErrEmptyReport
	}
	header, records, err := Table(report, section)
	if err != nil {
		return err
	}
	return writeQuoted(w, header, records)
}

// WriteRowsCSV writes the working rows with the column captions of the
// source export.
func WriteRowsCSV(w io.Writer, rows []domain.MovementRow) error {
	header := make([]string, len(domain.Columns))
	for i, col := range domain.Columns {
		header[i] = col.Caption()
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Item,
			r.ItemText,
			r.MovementType,
			r.Document,
			dateCell(r.Date),
			r.Time,
			rowCell(r.CapturedQuantity),
			r.CapturedUnit,
			rowCell(r.Quantity),
			r.Unit,
			rowCell(r.LocalAmount),
			rowCell(r.CostAmount),
			rowCell(r.SaleValue),
			r.User,
		})
	}
	return writeQuoted(w, header, records)
}

// rowCell spells a raw cell the way the importer reads CSV text back: numbers
// keep full precision with a decimal comma and no thousands dots.
func rowCell(c domain.Cell) string {
	switch c.Kind {
	case domain.CellNumber:
		return strings.Replace(strconv.FormatFloat(c.Number, 'f', -1, 64), ".", ",", 1)
	case domain.CellTime:
		label, _, _ := analytics.FormatDate(c)
		return label
	default:
		return c.Key()
	}
}

// dateCell keeps date text verbatim and turns serial or native dates into
// their German label.
func dateCell(c domain.Cell) string {
	if c.Kind == domain.CellText {
		return c.Text
	}
	label, _, _ := analytics.FormatDate(c)
	return label
}

// Table renders a report section as header and records.
func Table(report *domain.Report, section Section) ([]string, [][]string, error) {
	switch section {
	case SectionOverview:
		o := report.Overview
		return keyValueHeader, [][]string{
			{"Datensätze", strconv.Itoa(o.TotalRecords)},
			{"Gesamtmenge", FormatQuantity(o.TotalQuantity)},
			{"Betrag Hauswähr", FormatAmount(o.TotalLocal)},
			{"Betrag zu EKP", FormatAmount(o.TotalCost)},
			{"VK-Wert mit MWST", FormatAmount(o.TotalSale)},
			{"Artikel", strconv.Itoa(o.UniqueArticles)},
			{"Benutzer", strconv.Itoa(o.UniqueUsers)},
			{"Gewinn", FormatAmount(o.Profit)},
		}, nil

	case SectionByArticle:
		records := make([][]string, 0, len(report.ByArticle))
		for _, a := range report.ByArticle {
			records = append(records, []string{
				a.Item, a.ItemText,
				FormatQuantity(a.TotalQuantity),
				FormatAmount(a.TotalLocal),
				FormatAmount(a.TotalCost),
				FormatAmount(a.TotalSale),
				strconv.Itoa(a.Movements),
				FormatQuantity(a.WriteOffs),
				FormatQuantity(a.Gains),
				FormatAmount(a.AvgValuePerUnit),
			})
		}
		return []string{"Artikel", "Artikelkurztext", "Netto-Menge", "Betrag Hauswähr", "Betrag zu EKP",
			"VK-Wert mit MWST", "Bewegungen", "Abgänge", "Zugänge", "Wert je Einheit"}, records, nil

	case SectionByMovementType:
		records := make([][]string, 0, len(report.ByMovementType))
		for _, m := range report.ByMovementType {
			records = append(records, []string{
				m.MovementType,
				strconv.Itoa(m.Count),
				FormatQuantity(m.TotalQuantity),
				FormatAmount(m.TotalLocal),
				FormatAmount(m.TotalCost),
				FormatAmount(m.TotalSale),
				FormatAmount(m.Profit),
			})
		}
		return []string{"Bewegungsart", "Anzahl", "Menge", "Betrag Hauswähr", "Betrag zu EKP",
			"VK-Wert mit MWST", "Gewinn"}, records, nil

	case SectionByUser:
		records := make([][]string, 0, len(report.ByUser))
		for _, u := range report.ByUser {
			records = append(records, []string{
				u.User,
				strconv.Itoa(u.Movements),
				FormatQuantity(u.TotalQuantity),
				FormatAmount(u.TotalLocal),
				strconv.Itoa(u.UniqueArticles),
			})
		}
		return []string{"Benutzer", "Bewegungen", "Menge", "Betrag Hauswähr", "Artikel"}, records, nil

	case SectionByDate:
		records := make([][]string, 0, len(report.ByDate))
		for _, d := range report.ByDate {
			records = append(records, []string{
				d.Date,
				strconv.Itoa(d.Movements),
				FormatQuantity(d.TotalQuantity),
				FormatAmount(d.TotalLocal),
			})
		}
		return []string{"Datum", "Bewegungen", "Menge", "Betrag Hauswähr"}, records, nil

	case SectionWriteOffs:
		wo := report.WriteOffs
		return keyValueHeader, [][]string{
			{"Abgänge", strconv.Itoa(wo.Count)},
			{"Menge", FormatQuantity(wo.TotalQuantity)},
			{"Betrag Hauswähr", FormatAmount(wo.TotalLocal)},
			{"Betrag zu EKP", FormatAmount(wo.TotalCost)},
			{"VK-Wert mit MWST", FormatAmount(wo.TotalSale)},
			{"Möglicher Verlust", FormatAmount(wo.PotentialLoss)},
		}, nil

	case SectionTopWriteOffs:
		records := make([][]string, 0, len(report.WriteOffs.TopArticles))
		for _, a := range report.WriteOffs.TopArticles {
			records = append(records, []string{
				a.Item, a.ItemText,
				FormatQuantity(a.Quantity),
				FormatAmount(a.Local),
				FormatAmount(a.Sale),
			})
		}
		return []string{"Artikel", "Artikelkurztext", "Menge", "Betrag Hauswähr", "VK-Wert mit MWST"}, records, nil

	case SectionGains:
		g := report.Gains
		return keyValueHeader, [][]string{
			{"Zugänge", strconv.Itoa(g.Count)},
			{"Menge", FormatQuantity(g.TotalQuantity)},
			{"Betrag Hauswähr", FormatAmount(g.TotalLocal)},
			{"Betrag zu EKP", FormatAmount(g.TotalCost)},
			{"VK-Wert mit MWST", FormatAmount(g.TotalSale)},
			{"Möglicher Gewinn", FormatAmount(g.PotentialGain)},
		}, nil

	case SectionFinancial:
		f := report.Financial
		return keyValueHeader, [][]string{
			{"Umsatz", FormatAmount(f.TotalRevenue)},
			{"Kosten", FormatAmount(f.TotalCost)},
			{"Gewinn", FormatAmount(f.TotalProfit)},
			{"Abschreibungsverlust", FormatAmount(f.WriteOffLoss)},
			{"Zugangswert", FormatAmount(f.GainValue)},
			{"Nettoauswirkung", FormatAmount(f.NetImpact)},
			{"Gewinnmarge", FormatPercent(f.ProfitMargin)},
		}, nil
	}
	return nil, nil, fmt.Errorf("%q: %w", section, ErrUnknownSection)
}

var keyValueHeader = []string{"Kennzahl", "Wert"}

// writeQuoted writes every field quoted, doubling embedded quotes.
func writeQuoted(w io.Writer, header []string, records [][]string) error {
	var b strings.Builder
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}

	writeLine(header)
	for _, r := range records {
		writeLine(r)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
