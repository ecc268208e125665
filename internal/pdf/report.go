// Package pdf renders printable report documents. Cyrillic text goes
// through the cp1251 translator of the built-in core fonts.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/profmed/crm-api/internal/model"
)

// BuildSummaryReport renders the commission statistics as a PDF
func BuildSummaryReport(stats *model.FinalActStats, period string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("СВОДНЫЙ ОТЧЕТ"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr("по результатам периодического медицинского осмотра"), "", 1, "C", false, 0, "")
	if period != "" {
		pdf.CellFormat(0, 7, tr("Период: "+period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 8, tr("Показатель"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr("Количество"), "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	rows := []struct {
		label string
		value int
	}{
		{"Всего осмотрено", stats.TotalExamined},
		{"Здоровы", stats.Healthy},
		{"Временные противопоказания", stats.TemporaryUnfit},
		{"Постоянные противопоказания", stats.PermanentUnfit},
		{"Выявлено профзаболеваний", stats.OccupationalDiseases},
	}
	for _, row := range rows {
		pdf.CellFormat(120, 8, tr(row.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, strconv.Itoa(row.value), "1", 1, "C", false, 0, "")
	}

	if len(stats.ByDepartment) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr("По подразделениям"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(70, 8, tr("Подразделение"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, tr("Осмотрено"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, tr("Здоровы"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 8, tr("С противопоказаниями"), "1", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, dept := range stats.ByDepartment {
			name := dept.Department
			if name == "" {
				name = "Не указано"
			}
			pdf.CellFormat(70, 8, tr(name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 8, strconv.Itoa(dept.Examined), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, strconv.Itoa(dept.Healthy), "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 8, strconv.Itoa(dept.Unfit), "1", 1, "C", false, 0, "")
		}
	}

	addSignatureBlock(pdf, tr)
	return output(pdf)
}

// BuildFinalAct renders the final act PDF: the statistics block plus
// the per-patient conclusion table.
func BuildFinalAct(stats *model.FinalActStats, items []model.HealthPlanItem, period string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("ЗАКЛЮЧИТЕЛЬНЫЙ АКТ"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr("по результатам периодического медицинского осмотра"), "", 1, "C", false, 0, "")
	if period != "" {
		pdf.CellFormat(0, 7, tr("Период: "+period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf(
		"Всего осмотрено: %d. Здоровы: %d. Временные противопоказания: %d. Постоянные противопоказания: %d. Профзаболеваний: %d.",
		stats.TotalExamined, stats.Healthy, stats.TemporaryUnfit, stats.PermanentUnfit, stats.OccupationalDiseases,
	)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(70, 8, tr("ФИО"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, tr("Подразделение"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, tr("Должность"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, tr("Группа"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, tr("Заключение"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(52, 8, tr("Рекомендации"), "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range items {
		pdf.CellFormat(70, 7, tr(item.PatientName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(item.Department), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, tr(item.Position), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(item.HealthGroup), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, tr(verdictLabel(item.Verdict)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(52, 7, tr(item.Recommendations), "1", 1, "L", false, 0, "")
	}

	addSignatureBlock(pdf, tr)
	return output(pdf)
}

// BuildRouteSheet renders a printable route sheet handed to a patient
func BuildRouteSheet(sheet *model.RouteSheet) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("МАРШРУТНЫЙ ЛИСТ"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr("Пациент: "+sheet.PatientName), "", 1, "L", false, 0, "")
	if sheet.IIN != "" {
		pdf.CellFormat(0, 7, tr("ИИН: "+sheet.IIN), "", 1, "L", false, 0, "")
	}
	if sheet.Position != "" {
		pdf.CellFormat(0, 7, tr("Должность: "+sheet.Position), "", 1, "L", false, 0, "")
	}
	if sheet.Department != "" {
		pdf.CellFormat(0, 7, tr("Подразделение: "+sheet.Department), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, tr("Дата осмотра: "+sheet.VisitDate.Format("02.01.2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 8, tr("№"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, tr("Услуга"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, tr("Врач"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, tr("Кабинет"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, tr("Время"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, tr("Отметка"), "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, svc := range sheet.Services {
		mark := ""
		if svc.Status == model.ServiceStatusCompleted {
			mark = "V"
		}
		pdf.CellFormat(15, 8, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 8, tr(svc.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, tr(svc.DoctorName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, tr(svc.Cabinet), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, svc.Time, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, mark, "1", 1, "C", false, 0, "")
	}

	return output(pdf)
}

func addSignatureBlock(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.Ln(14)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(90, 8, tr("Председатель комиссии: ____________________"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr("Дата: «___» ____________ 20__ г."), "", 1, "L", false, 0, "")
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

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
