// Package tabular reads program listings from spreadsheets exported as CSV
// and from tables embedded in HTML, Markdown, DOCX and PDF files.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/careersync/internal/catalog"
)

var (
	// ErrEmptySource is returned for an input with no content at all. A file
	// that is still being written looks like this, so callers may retry.
	ErrEmptySource = errors.New("empty source")

	// ErrNoTable is returned when a document contains no table.
	ErrNoTable = errors.New("no table found")
)

// Table is a header row plus data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Reader converts raw file bytes into a Table.
type Reader interface {
	Read(r io.Reader, filename string) (*Table, error)
}

// SupportedExtensions lists file extensions a listing can be read from.
var SupportedExtensions = map[string]bool{
	".csv":      true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return &CSVReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".pdf":
		return &PDFReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ReadFile picks a reader by extension and reads r with it.
func ReadFile(r io.Reader, filename string) (*Table, error) {
	reader, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return reader.Read(r, filename)
}

// Records keys every row by header. Cells past the last header are dropped;
// a short row gets "" for its missing trailing columns, so every record
// carries every header.
func (t *Table) Records() []catalog.RawRecord {
	out := make([]catalog.RawRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(catalog.RawRecord, len(t.Headers))
		for i, h := range t.Headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// newTable splits rows into header and data, skipping blank rows.
func newTable(name string, rows [][]string) (*Table, error) {
	var kept [][]string
	for _, row := range rows {
		if !blankRow(row) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoTable
	}
	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &Table{Name: name, Headers: headers, Rows: kept[1:]}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimExt(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
