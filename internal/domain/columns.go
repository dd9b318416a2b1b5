package domain

import "strings"

// Column identifies the role a sheet column plays for a MovementRow.
type Column int

const (
	ColumnItem Column = iota
	ColumnItemText
	ColumnMovementType
	ColumnDocument
	ColumnDate
	ColumnTime
	ColumnCapturedQuantity
	ColumnCapturedUnit
	ColumnQuantity
	ColumnUnit
	ColumnLocalAmount
	ColumnCostAmount
	ColumnSaleValue
	ColumnUser
)

// Columns lists every role in export order.
var Columns = []Column{
	ColumnItem,
	ColumnItemText,
	ColumnMovementType,
	ColumnDocument,
	ColumnDate,
	ColumnTime,
	ColumnCapturedQuantity,
	ColumnCapturedUnit,
	ColumnQuantity,
	ColumnUnit,
	ColumnLocalAmount,
	ColumnCostAmount,
	ColumnSaleValue,
	ColumnUser,
}

var columnCaptions = map[Column]string{
	ColumnItem:             "Artikel",
	ColumnItemText:         "Artikelkurztext",
	ColumnMovementType:     "Bewegungsartentext",
	ColumnDocument:         "Artikelbeleg",
	ColumnDate:             "Erfassungsdatum",
	ColumnTime:             "Erfassungsuhrzeit",
	ColumnCapturedQuantity: "Menge in ErfassME",
	ColumnCapturedUnit:     "ErfassungsMngEinh",
	ColumnQuantity:         "Menge",
	ColumnUnit:             "Basismengeneinheit",
	ColumnLocalAmount:      "Betrag Hauswähr",
	ColumnCostAmount:       "Betrag zu EKP",
	ColumnSaleValue:        "VK-Wert mit MWST",
	ColumnUser:             "Name des Benutzers",
}

var columnAliases = map[string]Column{
	"item":           ColumnItem,
	"article":        ColumnItem,
	"material":       ColumnItem,
	"itemtext":       ColumnItemText,
	"description":    ColumnItemText,
	"movementtype":   ColumnMovementType,
	"bewegungsart":   ColumnMovementType,
	"document":       ColumnDocument,
	"date":           ColumnDate,
	"datum":          ColumnDate,
	"time":           ColumnTime,
	"uhrzeit":        ColumnTime,
	"quantity":       ColumnQuantity,
	"unit":           ColumnUnit,
	"localamount":    ColumnLocalAmount,
	"betraghauswahr": ColumnLocalAmount,
	"costamount":     ColumnCostAmount,
	"cost":           ColumnCostAmount,
	"salevalue":      ColumnSaleValue,
	"user":           ColumnUser,
	"benutzer":       ColumnUser,
}

// Caption returns the German column header used in the source export.
func (c Column) Caption() string {
	return columnCaptions[c]
}

// ParseColumn maps a header caption to its role. Matching ignores case,
// whitespace, punctuation and umlauts.
func ParseColumn(header string) (Column, bool) {
	key := NormalizeHeader(header)
	if key == "" {
		return 0, false
	}
	for col, caption := range columnCaptions {
		if NormalizeHeader(caption) == key {
			return col, true
		}
	}
	col, ok := columnAliases[key]
	return col, ok
}

var headerReplacer = strings.NewReplacer(
	"ä", "a", "ö", "o", "ü", "u", "ß", "ss",
	" ", "", "-", "", "_", "", ".", "", "/", "", "\u00a0", "", "\ufeff", "",
)

// NormalizeHeader lowercases a caption and strips separators and umlauts.
func NormalizeHeader(header string) string {
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(header)))
}
