// service/apply_excel_test.go
package service

import (
	"academy-api/model"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteApplyWorkbook(t *testing.T) {
	assignee := "박상담"
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	apps := []model.ApplyApplication{
		{
			StudentName:    "이영희",
			Gender:         model.GenderFemale,
			StudentPhone:   "010-2222-3333",
			Division:       model.DivisionHigh,
			Status:         model.ApplyReview,
			Guardian1Name:  "이철수",
			Guardian1Phone: "010-4444-5555",
			AssigneeName:   &assignee,
			CreatedAt:      created,
			UpdatedAt:      created,
		},
		{
			StudentName: "김민수",
			Gender:      model.GenderUnknown,
			Division:    model.DivisionSelfStudyRetake,
			Status:      model.ApplyRegistered,
		},
	}

	data, err := WriteApplyWorkbook(apps)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, ApplySheetName, f.GetSheetName(0))
	rows, err := f.GetRows(ApplySheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "번호", rows[0][0])
	assert.Equal(t, "수정일시", rows[0][14])

	assert.Equal(t, []string{"1", "이영희", "여", "", "010-2222-3333", "고등부", "검토"}, rows[1][:7])
	assert.Equal(t, "박상담", rows[1][12])
	assert.Equal(t, "2024-03-01 09:30", rows[1][13])

	assert.Equal(t, "미상", rows[2][2])
	assert.Equal(t, "독학재수", rows[2][5])
	assert.Equal(t, "미배정", rows[2][12])
}

func TestExportFileNames(t *testing.T) {
	at := time.Date(2024, 12, 31, 23, 59, 1, 0, time.UTC)
	assert.Equal(t, "apply_applications_20241231_235901.xlsx", ExportFileName(at))
	assert.Equal(t, "원서접수목록_20241231_235901.xlsx", ExportDisplayName(at))
}
