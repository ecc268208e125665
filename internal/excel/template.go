package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// templateHeaders matches the import column mapping; employers fill
// this file in and upload it back.
var templateHeaders = []string{
	"№ п/п",
	"ФИО",
	"Дата рождения",
	"Пол",
	"Объект или участок",
	"Занимаемая должность",
	"Общий стаж",
	"Стаж по занимаемой должности",
	"Дата последнего медосмотра",
	"Профессиональная вредность",
	"ИИН",
	"Телефон",
	"Примечание",
}

// BuildContingentTemplate produces the blank workbook offered for
// download next to the upload form.
func BuildContingentTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Контингент"
	f.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		// sheet and cell names are fixed, errors cannot occur here
		_ = f.SetCellValue(sheet, cell, value)
	}

	set("A1", "Список работников, подлежащих обязательному медицинскому осмотру")
	_ = f.MergeCell(sheet, "A1", "M1")

	for i, header := range templateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		set(cell, header)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(templateHeaders), 3)
		_ = f.SetCellStyle(sheet, "A3", lastCell, style)
	}

	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "C", "M", 18)
	_ = f.SetRowHeight(sheet, 3, 32)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}
