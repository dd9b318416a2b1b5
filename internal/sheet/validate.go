package sheet

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// FileType is the detected workbook format.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLSB FileType = "xlsb"
	FileTypeXLS  FileType = "xls"
	FileTypeCSV  FileType = "csv"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 50 * 1024 * 1024

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrTypeMismatch    = errors.New("file content does not match its extension")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoSheets        = errors.New("workbook has no sheets")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrNoHeader        = errors.New("no known column header found")
	ErrNoData          = errors.New("sheet has no data rows")
)

var (
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Validate checks size and magic number of an upload against its file name.
// header needs at least the first eight bytes of the file. A maxBytes of 0
// means DefaultMaxBytes.
func Validate(name string, size int64, header []byte, maxBytes int64) (FileType, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if size == 0 {
		return "", ErrEmptyFile
	}
	if size > maxBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case bytes.HasPrefix(header, zipSignature):
		switch ext {
		case ".xlsx":
			return FileTypeXLSX, nil
		case ".xlsb":
			return FileTypeXLSB, nil
		}
		return "", ErrTypeMismatch
	case bytes.HasPrefix(header, oleSignature):
		if ext == ".xls" {
			return FileTypeXLS, nil
		}
		return "", ErrTypeMismatch
	case ext == ".csv":
		return FileTypeCSV, nil
	case ext == ".xlsx" || ext == ".xlsb" || ext == ".xls":
		return "", ErrTypeMismatch
	}
	return "", ErrUnsupportedType
}
