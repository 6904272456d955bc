package dataset

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// Format is the tabular layout of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// Legacy BIFF workbooks are OLE2 compound files.
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// IsSpreadsheet reports whether the format is read through the workbook reader.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// DetectFormat picks the format from the file name, falling back to the
// content when the extension is missing or unknown. Workbooks must be
// Office Open XML; legacy binary .xls content is rejected.
func DetectFormat(name string, data []byte) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	switch ext {
	case "csv", "txt":
		return FormatCSV, nil
	case "xlsx", "xls":
		if bytes.HasPrefix(data, oleMagic) {
			return "", &domain.UnsupportedFormatError{Source: name, Format: "xls (binary BIFF)"}
		}
		return Format(ext), nil
	}

	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	return "", &domain.UnsupportedFormatError{Source: name, Format: ext}
}
