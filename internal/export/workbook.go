package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

// Sheet names of the report workbook.
const (
	SheetSummary  = "Summary"
	SheetPeriods  = "Registrations"
	SheetPurposes = "Purpose Progress"
	SheetOffices  = "Office Load"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Bundle is the set of reports rendered into one workbook.
type Bundle struct {
	Summary  *domain.Summary
	Periods  *domain.PeriodReport
	Purposes *domain.PurposeProgressReport
	Offices  *domain.OfficeLoadReport
}

// BuildWorkbook renders the bundle as an xlsx document.
func BuildWorkbook(b Bundle) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{SheetSummary, []string{"Metric", "Value"}, summaryRows(b.Summary)},
		{SheetPeriods, []string{"Period", "Registrations"}, periodRows(b.Periods)},
		{SheetPurposes, []string{"Type", "Status", "Count"}, purposeRows(b.Purposes)},
		{SheetOffices, []string{"Office", "Code", "Status", "Count"}, officeRows(b.Offices)},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, style int) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 22)
}

func summaryRows(s *domain.Summary) [][]any {
	if s == nil {
		return nil
	}
	rows := [][]any{
		{"From", s.From},
		{"To", s.To},
		{"Total diasporas", s.TotalDiasporas},
		{"Active cases", s.ActiveCases},
	}
	for _, r := range s.ReferralsByStatus {
		rows = append(rows, []any{"Referrals " + r.Status, r.Count})
	}
	for _, r := range s.PurposesBreakdown {
		rows = append(rows, []any{"Purposes " + r.Type, r.Count})
	}
	return rows
}

func periodRows(p *domain.PeriodReport) [][]any {
	if p == nil {
		return nil
	}
	rows := make([][]any, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, []any{r.Period, r.Count})
	}
	return rows
}

func purposeRows(p *domain.PurposeProgressReport) [][]any {
	if p == nil {
		return nil
	}
	rows := make([][]any, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, []any{r.Type, r.Status, r.Count})
	}
	return rows
}

func officeRows(o *domain.OfficeLoadReport) [][]any {
	if o == nil {
		return nil
	}
	rows := make([][]any, 0, len(o.ByStatus))
	for _, r := range o.ByStatus {
		rows = append(rows, []any{r.OfficeName, r.OfficeCode, r.Status, r.Count})
	}
	return rows
}
