package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

// Opener reads spreadsheet reports. Each sheet maps to one page and its rows
// form a single table, so tabular emissions data flows through the same
// extraction path as PDF tables.
type Opener struct{}

func New() Opener { return Opener{} }

func (Opener) Open(_ context.Context, path string) (ports.PageDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	return &document{file: f, sheets: f.GetSheetList()}, nil
}

type document struct {
	file   *excelize.File
	sheets []string
}

func (d *document) PageCount() int { return len(d.sheets) }

func (d *document) PageText(page int) (string, error) {
	rows, err := d.rows(page)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, row := range rows {
		text.WriteString(strings.Join(row, " "))
		text.WriteString("\n")
	}
	return text.String(), nil
}

func (d *document) PageTables(page int) ([][][]string, error) {
	rows, err := d.rows(page)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return [][][]string{rows}, nil
}

func (d *document) rows(page int) ([][]string, error) {
	if page < 1 || page > len(d.sheets) {
		return nil, fmt.Errorf("sheet %d out of range", page)
	}
	rows, err := d.file.GetRows(d.sheets[page-1])
	if err != nil {
		return nil, fmt.Errorf("sheet %q rows: %w", d.sheets[page-1], err)
	}
	return rows, nil
}

func (d *document) Close() error { return d.file.Close() }
