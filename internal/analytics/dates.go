package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

// Excel serials in (excelEpochOffset, excelSerialMax) are read as day numbers.
// 25569 is 1970-01-01 in the 1900 date system.
const (
	excelEpochOffset = 25569
	excelSerialMax   = 50000
	secondsPerDay    = 86400
)

// dateLayouts is tried in order. Day-first layouts come first because the
// exports are German: "1.2.2024" is the 1st of February.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2.1.06",
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
}

// FormatDate renders a date cell as a German short date ("2.1.2006"). It
// accepts native dates, Excel serial day numbers and date strings. Text that
// does not parse comes back verbatim with ok=false; an empty cell yields "".
func FormatDate(c domain.Cell) (label string, at time.Time, ok bool) {
	switch c.Kind {
	case domain.CellEmpty:
		return "", time.Time{}, false
	case domain.CellTime:
		return germanDate(c.Time), c.Time, true
	case domain.CellNumber:
		if c.Number == 0 {
			return "", time.Time{}, false
		}
		if c.Number > excelEpochOffset && c.Number < excelSerialMax {
			t := excelSerialToTime(c.Number)
			return germanDate(t), t, true
		}
	}

	s := c.Key()
	if strings.ContainsAny(s, ".-/") {
		if t, parsed := parseDateText(s); parsed {
			return germanDate(t), t, true
		}
	}
	return s, time.Time{}, false
}

// DateLabel is FormatDate with the unknown label for missing dates.
func DateLabel(c domain.Cell) (string, time.Time, bool) {
	label, at, ok := FormatDate(c)
	if label == "" {
		return domain.UnknownLabel, at, false
	}
	return label, at, ok
}

func excelSerialToTime(serial float64) time.Time {
	seconds := (serial - excelEpochOffset) * secondsPerDay
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

func parseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func germanDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}
