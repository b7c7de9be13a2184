package tabular

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

const (
	// A horizontal gap wider than this many font sizes starts a new cell.
	cellGapFactor = 1.0
	// A gap wider than this many font sizes inside a cell is a word break.
	wordGapFactor = 0.2
)

// PDFReader reads a table laid out as text rows in a PDF. Text fragments on
// the same line are joined into cells wherever the gap between them is small;
// the first line is the header, and each later cell lands in the header
// column whose left edge is nearest. Header lines repeated on later pages
// are dropped.
type PDFReader struct{}

type pdfCell struct {
	X    float64
	Text string
}

func (p *PDFReader) Read(r io.Reader, filename string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySource
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var lines [][]pdfCell
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		for _, row := range rows {
			if cells := joinFragments(row.Content); len(cells) > 0 {
				lines = append(lines, cells)
			}
		}
	}
	if len(lines) == 0 {
		return nil, ErrNoTable
	}
	return newTable(trimExt(filename), alignColumns(lines))
}

// joinFragments merges the fragments of one text line into cells.
func joinFragments(content pdflib.TextHorizontal) []pdfCell {
	frags := slices.Clone([]pdflib.Text(content))
	slices.SortStableFunc(frags, func(a, b pdflib.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	var cells []pdfCell
	var buf strings.Builder
	var start, end, size float64
	flush := func() {
		if text := strings.Join(strings.Fields(buf.String()), " "); text != "" {
			cells = append(cells, pdfCell{X: start, Text: text})
		}
		buf.Reset()
	}

	for i, f := range frags {
		if i > 0 {
			gap := f.X - end
			em := math.Max(size, 1)
			switch {
			case gap > em*cellGapFactor:
				flush()
			case gap > em*wordGapFactor:
				buf.WriteByte(' ')
			}
		}
		if strings.TrimSpace(buf.String()) == "" {
			start = f.X
		}
		buf.WriteString(f.S)
		end = f.X + f.W
		size = f.FontSize
	}
	flush()
	return cells
}

// alignColumns turns positioned cells into rows matching the header columns.
func alignColumns(lines [][]pdfCell) [][]string {
	header := lines[0]
	headerTexts := cellTexts(header)

	rows := [][]string{headerTexts}
	for _, line := range lines[1:] {
		if slices.Equal(cellTexts(line), headerTexts) {
			continue
		}
		row := make([]string, len(header))
		for _, c := range line {
			col := nearestColumn(header, c.X)
			if row[col] != "" {
				row[col] += " "
			}
			row[col] += c.Text
		}
		rows = append(rows, row)
	}
	return rows
}

func nearestColumn(header []pdfCell, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, h := range header {
		if d := math.Abs(h.X - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func cellTexts(cells []pdfCell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}
