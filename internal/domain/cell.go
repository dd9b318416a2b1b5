package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// CellKind tells how a spreadsheet cell was stored.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellTime
)

// Cell is a raw spreadsheet value. Numeric columns and dates are kept in the
// shape the sheet delivered them so parsing can follow the source format.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// cellJSON is the wire form of a Cell. Only the field matching the kind is
// written.
type cellJSON struct {
	Kind   CellKind   `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Number float64    `json:"number,omitempty"`
	Time   *time.Time `json:"time,omitempty"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{Kind: c.Kind, Text: c.Text, Number: c.Number}
	if c.Kind == CellTime {
		t := c.Time
		out.Time = &t
	}
	return json.Marshal(out)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var in cellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Cell{Kind: in.Kind, Text: in.Text, Number: in.Number}
	if in.Time != nil {
		c.Time = *in.Time
	}
	return nil
}

func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

func TimeCell(t time.Time) Cell {
	return Cell{Kind: CellTime, Time: t}
}

// IsEmpty reports whether the cell holds no value at all.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Key renders the cell verbatim. Two cells with the same key compare equal
// when rows are bucketed by raw field values.
func (c Cell) Key() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellTime:
		return c.Time.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func (c Cell) String() string {
	return c.Key()
}

// Equals reports whether the cell is the literal text s.
func (c Cell) Equals(s string) bool {
	return c.Kind == CellText && c.Text == s
}
