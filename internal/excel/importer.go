// Package excel reads and writes the portal's spreadsheet formats:
// contingent bulk import, the blank contingent template and the
// summary report workbook.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/profmed/crm-api/internal/model"
)

// ParsedRow is one employee extracted from an uploaded workbook
type ParsedRow struct {
	RowNumber          int
	FullName           string
	BirthDate          model.Date
	Gender             string
	Department         string
	Position           string
	TotalExperience    float64
	PositionExperience float64
	LastExamDate       *model.Date
	HarmfulFactors     []string
	IIN                string
	Phone              string
	Notes              string
}

// ImportReport carries rows that parsed plus reasons for those that
// did not. Deduplication against existing data happens upstream.
type ImportReport struct {
	Rows           []ParsedRow
	SkippedReasons []string
}

// headerScanLimit caps how deep we look for the header row; uploads
// usually carry a title block above it.
const headerScanLimit = 5

// ParseContingent reads an uploaded contingent workbook. The header
// row is located by the «ФИО» or «№ п/п» markers within the first few
// rows, columns are mapped by header keywords, and rows without a name
// are skipped with a reason.
func ParseContingent(r io.Reader) (*ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	headerIdx, columns := locateHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("header row not found: expected «ФИО» or «№ п/п» in the first %d rows", headerScanLimit)
	}

	report := &ImportReport{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		parsed, skipReason := parseRow(i+1, row, columns)
		if skipReason != "" {
			report.SkippedReasons = append(report.SkippedReasons, skipReason)
			continue
		}
		if parsed != nil {
			report.Rows = append(report.Rows, *parsed)
		}
	}
	return report, nil
}

type columnMap struct {
	name       int
	birthDate  int
	gender     int
	department int
	position   int
	totalExp   int
	posExp     int
	lastExam   int
	factors    int
	iin        int
	phone      int
	notes      int
}

func newColumnMap() columnMap {
	return columnMap{
		name: -1, birthDate: -1, gender: -1, department: -1, position: -1,
		totalExp: -1, posExp: -1, lastExam: -1, factors: -1, iin: -1,
		phone: -1, notes: -1,
	}
}

func locateHeader(rows [][]string) (int, columnMap) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			lower := strings.ToLower(strings.TrimSpace(cell))
			if strings.Contains(lower, "фио") || strings.Contains(lower, "№ п/п") {
				return i, mapColumns(rows[i])
			}
		}
	}
	return -1, columnMap{}
}

func mapColumns(header []string) columnMap {
	cols := newColumnMap()
	for idx, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(lower, "фио"):
			cols.name = idx
		case strings.Contains(lower, "рожден"):
			cols.birthDate = idx
		case strings.Contains(lower, "пол") && !strings.Contains(lower, "должн"):
			cols.gender = idx
		case strings.Contains(lower, "объект"), strings.Contains(lower, "участок"), strings.Contains(lower, "подраздел"), strings.Contains(lower, "цех"):
			cols.department = idx
		// "стаж по должности" must not capture the position column
		case strings.Contains(lower, "должност") && !strings.Contains(lower, "стаж"):
			cols.position = idx
		case strings.Contains(lower, "общий стаж"):
			cols.totalExp = idx
		case strings.Contains(lower, "стаж"):
			cols.posExp = idx
		case strings.Contains(lower, "медосмотр"), strings.Contains(lower, "последн"):
			cols.lastExam = idx
		case strings.Contains(lower, "вредност"), strings.Contains(lower, "фактор"):
			cols.factors = idx
		case strings.Contains(lower, "иин"):
			cols.iin = idx
		case strings.Contains(lower, "телефон"):
			cols.phone = idx
		case strings.Contains(lower, "примечан"):
			cols.notes = idx
		}
	}
	return cols
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRow(rowNumber int, row []string, cols columnMap) (*ParsedRow, string) {
	name := cellAt(row, cols.name)
	if name == "" {
		if rowEmpty(row) {
			return nil, ""
		}
		return nil, fmt.Sprintf("строка %d: не указано ФИО", rowNumber)
	}

	parsed := &ParsedRow{
		RowNumber:  rowNumber,
		FullName:   name,
		Gender:     cellAt(row, cols.gender),
		Department: cellAt(row, cols.department),
		Position:   cellAt(row, cols.position),
		IIN:        digitsOnly(cellAt(row, cols.iin)),
		Phone:      cellAt(row, cols.phone),
		Notes:      cellAt(row, cols.notes),
	}

	if raw := cellAt(row, cols.birthDate); raw != "" {
		d, err := parseFlexibleDate(raw)
		if err != nil {
			return nil, fmt.Sprintf("строка %d: неверная дата рождения %q", rowNumber, raw)
		}
		parsed.BirthDate = d
	}
	if raw := cellAt(row, cols.lastExam); raw != "" {
		if d, err := parseFlexibleDate(raw); err == nil {
			parsed.LastExamDate = &d
		}
	}
	parsed.TotalExperience = parseYears(cellAt(row, cols.totalExp))
	parsed.PositionExperience = parseYears(cellAt(row, cols.posExp))
	parsed.HarmfulFactors = splitFactors(cellAt(row, cols.factors))

	if parsed.IIN != "" && len(parsed.IIN) != 12 {
		return nil, fmt.Sprintf("строка %d: ИИН должен содержать 12 цифр", rowNumber)
	}
	return parsed, ""
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006", "2.1.2006", "01-02-06"}

func parseFlexibleDate(raw string) (model.Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := parseWithLayout(raw, layout); err == nil {
			return d, nil
		}
	}
	return model.Date{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseWithLayout(raw, layout string) (model.Date, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return model.Date{}, err
	}
	return model.NewDate(t.Year(), t.Month(), t.Day()), nil
}

func parseYears(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0
	}
	// values like "5 лет" keep only the leading number
	fields := strings.Fields(raw)
	if len(fields) > 0 {
		raw = fields[0]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func splitFactors(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var factors []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			factors = append(factors, trimmed)
		}
	}
	return factors
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
