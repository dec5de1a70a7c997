package service

import (
	"academy-api/model"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ApplySheetName     = "원서접수 목록"
	unassignedLabel    = "미배정"
	exportTimeLayout   = "2006-01-02 15:04"
	exportStampLayout  = "20060102_150405"
	exportHeaderColor  = "#DDEBF7"
	exportBorderColor  = "#000000"
	exportColumnWidth  = 16
	exportAddressWidth = 40
)

var applyExportHeaders = []string{
	"번호", "학생명", "성별", "학년", "휴대폰", "구분", "상태",
	"보호자1", "보호자1 연락처", "보호자2", "보호자2 연락처",
	"주소", "담당자", "접수일시", "수정일시",
}

// ExportFileName is the ASCII download name of an export made at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("apply_applications_%s.xlsx", t.Format(exportStampLayout))
}

// ExportDisplayName is the localized download name of an export made at t.
func ExportDisplayName(t time.Time) string {
	return fmt.Sprintf("원서접수목록_%s.xlsx", t.Format(exportStampLayout))
}

func thinBorders() []excelize.Border {
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "top", "right", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Color: exportBorderColor, Style: 1})
	}
	return borders
}

// WriteApplyWorkbook renders applications into a single-sheet workbook.
func WriteApplyWorkbook(apps []model.ApplyApplication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ApplySheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{exportHeaderColor}, Pattern: 1},
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(applyExportHeaders))
	for i, h := range applyExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ApplySheetName, "A1", &header); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(applyExportHeaders))
	if err := f.SetCellStyle(ApplySheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for i, app := range apps {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			i + 1,
			app.StudentName,
			app.Gender.Label(),
			deref(app.GradeLevel),
			app.StudentPhone,
			app.Division.Label(),
			app.Status.Label(),
			app.Guardian1Name,
			app.Guardian1Phone,
			deref(app.Guardian2Name),
			deref(app.Guardian2Phone),
			deref(app.Address),
			assigneeLabel(app.AssigneeName),
			app.CreatedAt.Local().Format(exportTimeLayout),
			app.UpdatedAt.Local().Format(exportTimeLayout),
		}
		if err := f.SetSheetRow(ApplySheetName, cell, &values); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(ApplySheetName, cell, fmt.Sprintf("%s%d", lastCol, row), bodyStyle); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(ApplySheetName, "A", lastCol, exportColumnWidth); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(ApplySheetName, "L", "L", exportAddressWidth); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func assigneeLabel(name *string) string {
	if name == nil || *name == "" {
		return unassignedLabel
	}
	return *name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
