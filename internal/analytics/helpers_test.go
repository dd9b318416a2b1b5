package analytics

import "github.com/andresuchdata/bestandsanalyse/internal/domain"

type movementOpt func(*domain.MovementRow)

func withType(t string) movementOpt {
	return func(r *domain.MovementRow) { r.MovementType = t }
}

func withUser(u string) movementOpt {
	return func(r *domain.MovementRow) { r.User = u }
}

func withText(text string) movementOpt {
	return func(r *domain.MovementRow) { r.ItemText = text }
}

func withDocument(doc string) movementOpt {
	return func(r *domain.MovementRow) { r.Document = doc }
}

func withDateCell(c domain.Cell) movementOpt {
	return func(r *domain.MovementRow) { r.Date = c }
}

// movement builds a row with numeric cells and a text date.
func movement(item, date string, qty, local, cost, sale float64, opts ...movementOpt) domain.MovementRow {
	row := domain.MovementRow{
		Item:         item,
		ItemText:     "Artikel " + item,
		MovementType: "Verkauf",
		User:         "MUELLER",
		Date:         domain.TextCell(date),
		Quantity:     domain.NumberCell(qty),
		LocalAmount:  domain.NumberCell(local),
		CostAmount:   domain.NumberCell(cost),
		SaleValue:    domain.NumberCell(sale),
	}
	for _, opt := range opts {
		opt(&row)
	}
	return row
}
