package pdf

import (
	"context"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

// Opener reads PDF reports page by page. Pages with a broken text layer
// surface as per-page errors, so one bad page never hides the rest of the
// document.
type Opener struct{}

func New() Opener { return Opener{} }

func (Opener) Open(_ context.Context, path string) (ports.PageDocument, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &document{file: f, reader: reader}, nil
}

type document struct {
	file   *os.File
	reader *pdflib.Reader
}

func (d *document) PageCount() int { return d.reader.NumPage() }

func (d *document) PageText(page int) (string, error) {
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", page, err)
	}
	return text, nil
}

// PageTables reconstructs one table per page from row-grouped text. PDF has
// no table markup, so cells are recovered from horizontal gaps between text
// fragments; single-cell rows are plain prose and are skipped.
func (d *document) PageTables(page int) ([][][]string, error) {
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d rows: %w", page, err)
	}

	var table [][]string
	for _, row := range rows {
		cells := splitCells(row.Content)
		if len(cells) >= 2 {
			table = append(table, cells)
		}
	}
	if len(table) == 0 {
		return nil, nil
	}
	return [][][]string{table}, nil
}

func (d *document) Close() error { return d.file.Close() }

// Gaps wider than cellGap points split fragments into separate cells; gaps
// wider than wordGap merely insert a space.
const (
	cellGap = 24.0
	wordGap = 2.0
)

func splitCells(fragments []pdflib.Text) []string {
	var cells []string
	var cell []byte
	var prevEnd float64
	first := true

	for _, fragment := range fragments {
		if fragment.S == "" {
			continue
		}
		if !first {
			gap := fragment.X - prevEnd
			switch {
			case gap > cellGap:
				if len(cell) > 0 {
					cells = append(cells, string(cell))
					cell = cell[:0]
				}
			case gap > wordGap:
				cell = append(cell, ' ')
			}
		}
		cell = append(cell, fragment.S...)
		prevEnd = fragment.X + fragment.W
		first = false
	}
	if len(cell) > 0 {
		cells = append(cells, string(cell))
	}
	return cells
}
