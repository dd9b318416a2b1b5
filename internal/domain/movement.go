package domain

import "time"

// UnknownLabel marks missing grouping keys. Rows carrying it verbatim in a key
// field are dropped when a dataset is built.
const UnknownLabel = "Unbekannt"

// MovementRow is one inventory movement line ("Bestandsveränderung") as read
// from the export sheet. It is never mutated after import.
type MovementRow struct {
	Item             string `json:"artikel"`
	ItemText         string `json:"artikeltext,omitempty"`
	MovementType     string `json:"bewegungsart,omitempty"`
	Document         string `json:"beleg,omitempty"`
	Date             Cell   `json:"datum"`
	Time             string `json:"uhrzeit,omitempty"`
	CapturedQuantity Cell   `json:"mengeErfass"`
	CapturedUnit     string `json:"einheitErfass,omitempty"`
	Quantity         Cell   `json:"menge"`
	Unit             string `json:"einheit,omitempty"`
	LocalAmount      Cell   `json:"betragHaus"`
	CostAmount       Cell   `json:"betragEKP"`
	SaleValue        Cell   `json:"vkWert"`
	User             string `json:"benutzer,omitempty"`
}

// UploadedFile represents a workbook handed to the importer.
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
}

// DatasetInfo describes an imported dataset kept for follow-up queries.
type DatasetInfo struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	Checksum      string    `json:"checksum"`
	Sheet         string    `json:"sheet"`
	Sheets        []string  `json:"sheets"`
	Columns       int       `json:"columns"`
	NonEmptyCells int       `json:"nonEmptyCells"`
	RawRows       int       `json:"rawRows"`
	Rows          int       `json:"rows"`
	Cancelled     int       `json:"cancelled"`
	Unknown       int       `json:"unknown"`
	ImportedAt    time.Time `json:"importedAt"`
}
