package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/profmed/crm-api/internal/model"
)

// BuildSummaryReport renders the commission outcome statistics as a
// workbook: the headline counters plus a per-department table.
func BuildSummaryReport(stats *model.FinalActStats, period string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Сводный отчет"
	f.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = f.SetCellValue(sheet, cell, value)
	}

	set("A1", "СВОДНЫЙ ОТЧЕТ")
	_ = f.MergeCell(sheet, "A1", "B1")
	set("A2", "по результатам периодического медицинского осмотра")
	_ = f.MergeCell(sheet, "A2", "B2")
	if period != "" {
		set("A3", "Период: "+period)
		_ = f.MergeCell(sheet, "A3", "B3")
	}

	set("A5", "Показатель")
	set("B5", "Количество")

	summary := []struct {
		label string
		value int
	}{
		{"Всего осмотрено", stats.TotalExamined},
		{"Здоровы", stats.Healthy},
		{"Временные противопоказания", stats.TemporaryUnfit},
		{"Постоянные противопоказания", stats.PermanentUnfit},
		{"Выявлено профзаболеваний", stats.OccupationalDiseases},
	}
	row := 6
	for _, item := range summary {
		set(fmt.Sprintf("A%d", row), item.label)
		set(fmt.Sprintf("B%d", row), item.value)
		row++
	}

	row += 2
	set(fmt.Sprintf("A%d", row), "По подразделениям")
	row++
	set(fmt.Sprintf("A%d", row), "Подразделение")
	set(fmt.Sprintf("B%d", row), "Осмотрено")
	set(fmt.Sprintf("C%d", row), "Здоровы")
	set(fmt.Sprintf("D%d", row), "С противопоказаниями")
	row++
	for _, dept := range stats.ByDepartment {
		name := dept.Department
		if name == "" {
			name = "Не указано"
		}
		set(fmt.Sprintf("A%d", row), name)
		set(fmt.Sprintf("B%d", row), dept.Examined)
		set(fmt.Sprintf("C%d", row), dept.Healthy)
		set(fmt.Sprintf("D%d", row), dept.Unfit)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "D", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write summary report: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildFinalAct renders the final act workbook: the statistics sheet
// plus the per-patient conclusion listing.
func BuildFinalAct(stats *model.FinalActStats, items []model.HealthPlanItem, period string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const statsSheet = "Заключительный акт"
	f.SetSheetName("Sheet1", statsSheet)

	set := func(sheet, cell string, value interface{}) {
		_ = f.SetCellValue(sheet, cell, value)
	}

	set(statsSheet, "A1", "ЗАКЛЮЧИТЕЛЬНЫЙ АКТ")
	set(statsSheet, "A2", "по результатам периодического медицинского осмотра")
	if period != "" {
		set(statsSheet, "A3", "Период: "+period)
	}
	set(statsSheet, "A5", "Всего осмотрено")
	set(statsSheet, "B5", stats.TotalExamined)
	set(statsSheet, "A6", "Здоровы")
	set(statsSheet, "B6", stats.Healthy)
	set(statsSheet, "A7", "Временные противопоказания")
	set(statsSheet, "B7", stats.TemporaryUnfit)
	set(statsSheet, "A8", "Постоянные противопоказания")
	set(statsSheet, "B8", stats.PermanentUnfit)
	set(statsSheet, "A9", "Выявлено профзаболеваний")
	set(statsSheet, "B9", stats.OccupationalDiseases)
	_ = f.SetColWidth(statsSheet, "A", "A", 40)
	_ = f.SetColWidth(statsSheet, "B", "B", 16)

	const listSheet = "Оздоровительный план"
	if _, err := f.NewSheet(listSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	headers := []string{"ФИО", "Подразделение", "Должность", "Группа здоровья", "Заключение", "Рекомендации"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(listSheet, cell, header)
	}
	for i, item := range items {
		row := i + 2
		set(listSheet, fmt.Sprintf("A%d", row), item.PatientName)
		set(listSheet, fmt.Sprintf("B%d", row), item.Department)
		set(listSheet, fmt.Sprintf("C%d", row), item.Position)
		set(listSheet, fmt.Sprintf("D%d", row), item.HealthGroup)
		set(listSheet, fmt.Sprintf("E%d", row), verdictLabel(item.Verdict))
		set(listSheet, fmt.Sprintf("F%d", row), item.Recommendations)
	}
	_ = f.SetColWidth(listSheet, "A", "A", 30)
	_ = f.SetColWidth(listSheet, "B", "F", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write final act: %w", err)
	}
	return buf.Bytes(), nil
}

func verdictLabel(v model.ExpertiseVerdict) string {
	switch v {
	case model.VerdictFit:
		return "Годен"
	case model.VerdictTemporaryUnfit:
		return "Временно не годен"
	case model.VerdictPermanentUnfit:
		return "Постоянно не годен"
	default:
		return string(v)
	}
}
