package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

// XlsxExtractor extracts text from Excel (.xlsx) files. Each sheet is
// rendered as a Markdown table and treated as one page.
type XlsxExtractor struct{}

// NewXlsxExtractor creates a new XlsxExtractor.
func NewXlsxExtractor() *XlsxExtractor {
	return &XlsxExtractor{}
}

// Extract converts each sheet to a Markdown table, one page per sheet in
// workbook order.
func (e *XlsxExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx %s: %w", fileName, err)
	}
	defer f.Close()

	var pages []schema.PageText
	for _, sheetName := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}

		var sb strings.Builder
		sb.WriteString(sheetName + "\n\n")
		sb.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat(" --- |", len(rows[0])) + "\n")
		for _, row := range rows[1:] {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}

		pages = append(pages, schema.PageText{PageNumber: len(pages) + 1, Text: sb.String()})
	}

	return pages, nil
}

// SupportsFileType reports whether the file is an Excel workbook.
func (e *XlsxExtractor) SupportsFileType(fileName string) bool {
	return hasExtension(fileName, ".xlsx")
}

var _ interfaces.TextExtractor = (*XlsxExtractor)(nil)
