package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders datasets into a single sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes an optional merged title row followed by the header and body.
func (e *XLSXExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, fmt.Errorf("resolve column: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if title != "" {
		titleCell := cellName(1, row)
		_ = f.SetCellValue(sheet, titleCell, title)
		_ = f.MergeCell(sheet, titleCell, cellName(len(data.Headers), row))
		_ = f.SetCellStyle(sheet, titleCell, titleCell, headerStyle)
		row++
	}

	for i, header := range data.Headers {
		_ = f.SetCellValue(sheet, cellName(i+1, row), header)
	}
	_ = f.SetCellStyle(sheet, cellName(1, row), cellName(len(data.Headers), row), headerStyle)
	row++

	for _, record := range data.Rows {
		for i, header := range data.Headers {
			_ = f.SetCellValue(sheet, cellName(i+1, row), record[header])
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
