// service/apply_service_test.go
package service

import (
	"academy-api/common"
	"academy-api/model"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateSubjects(t *testing.T) {
	cases := []struct {
		name     string
		division model.Division
		subjects []model.SubjectCode
		want     []model.SubjectCode
		err      error
	}{
		{"retake without subjects", model.DivisionSelfStudyRetake, nil, []model.SubjectCode{}, nil},
		{"retake with subjects", model.DivisionSelfStudyRetake, []model.SubjectCode{model.SubjectMath}, nil, common.ErrInvalidSubjectForDivision},
		{"high requires subjects", model.DivisionHigh, nil, nil, common.ErrSubjectRequired},
		{"middle requires subjects", model.DivisionMiddle, []model.SubjectCode{}, nil, common.ErrSubjectRequired},
		{"high rejects science", model.DivisionHigh, []model.SubjectCode{model.SubjectKorean, model.SubjectScience}, nil, common.ErrInvalidSubjectForHigh},
		{"middle rejects unknown", model.DivisionMiddle, []model.SubjectCode{"ART"}, nil, common.ErrInvalidSubjectForMiddle},
		{"middle takes all five", model.DivisionMiddle,
			[]model.SubjectCode{model.SubjectKorean, model.SubjectEnglish, model.SubjectMath, model.SubjectScience, model.SubjectSocial},
			[]model.SubjectCode{model.SubjectKorean, model.SubjectEnglish, model.SubjectMath, model.SubjectScience, model.SubjectSocial}, nil},
		{"duplicates collapse", model.DivisionHigh,
			[]model.SubjectCode{model.SubjectMath, model.SubjectEnglish, model.SubjectMath},
			[]model.SubjectCode{model.SubjectMath, model.SubjectEnglish}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateSubjects(tc.division, tc.subjects)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func applyRequest() model.ApplyApplicationRequest {
	return model.ApplyApplicationRequest{
		Division:          model.DivisionHigh,
		StudentName:       " 이영희 ",
		StudentPhone:      "010-2222-3333",
		Guardian1Name:     "이철수",
		Guardian1Phone:    "010-4444-5555",
		Guardian1Relation: "부",
		Subjects:          []model.SubjectCode{model.SubjectMath, model.SubjectMath},
	}
}

func TestApplyService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		files := NewFileService(new(MockFileRepository), t.TempDir(), 0)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), files)

		dbMock.ExpectBegin()
		repo.On("FindByPhoneSince", ctx, "010-2222-3333", mock.Anything).Return([]model.ApplyApplication{}, nil).Once()
		repo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(app *model.ApplyApplication) bool {
			return app.Status == model.ApplyRegistered && app.StudentName == "이영희" && app.Gender == model.GenderUnknown && app.CreatedBy == nil
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*model.ApplyApplication).ID = 11
		}).Return(nil).Once()
		repo.On("ReplaceSubjects", ctx, mock.Anything, int64(11), []model.SubjectCode{model.SubjectMath}).Return(nil).Once()
		repo.On("AddLog", ctx, mock.Anything, mock.MatchedBy(func(l *model.ApplyApplicationLog) bool {
			return l.ApplicationID == 11 && l.LogType == model.LogCreate
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		app, err := applyService.Create(ctx, applyRequest(), nil)

		assert.NoError(t, err)
		assert.Equal(t, int64(11), app.ID)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("log failure rolls back", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), NewFileService(new(MockFileRepository), t.TempDir(), 0))

		dbMock.ExpectBegin()
		repo.On("FindByPhoneSince", ctx, mock.Anything, mock.Anything).Return(nil, nil).Once()
		repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("ReplaceSubjects", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("AddLog", ctx, mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
		dbMock.ExpectRollback()

		_, err = applyService.Create(ctx, applyRequest(), nil)

		assert.Error(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown transcript rolls the application back", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		fileRepo := new(MockFileRepository)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), NewFileService(fileRepo, t.TempDir(), 0))
		req := applyRequest()
		req.Transcripts = []model.FileReference{{FileID: "9d2c4e1a-5b6f-4a70-8c3d-1e2f3a4b5c6d"}}

		dbMock.ExpectBegin()
		repo.On("FindByPhoneSince", ctx, mock.Anything, mock.Anything).Return(nil, nil).Once()
		repo.On("Create", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(2).(*model.ApplyApplication).ID = 12
		}).Return(nil).Once()
		repo.On("ReplaceSubjects", ctx, mock.Anything, int64(12), mock.Anything).Return(nil).Once()
		repo.On("AddLog", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		dbMock.ExpectRollback()

		_, err = applyService.Create(ctx, req, nil)

		assert.ErrorIs(t, err, common.ErrFileNotFound)
		fileRepo.AssertNotCalled(t, "CreateLink", mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid subjects never open a transaction", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		applyService := NewApplyService(db, new(MockApplyRepository), new(MockMemberRepository), nil)
		req := applyRequest()
		req.Division = model.DivisionSelfStudyRetake

		_, err = applyService.Create(ctx, req, nil)

		assert.ErrorIs(t, err, common.ErrInvalidSubjectForDivision)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestApplyService_Update(t *testing.T) {
	ctx := context.Background()
	actorID := int64(2)

	t.Run("completed application is frozen", func(t *testing.T) {
		repo := new(MockApplyRepository)
		applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
		repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5, Status: model.ApplyCompleted}, nil).Once()

		_, err := applyService.Update(ctx, 5, model.ApplyUpdateRequest{ApplyApplicationRequest: applyRequest()}, actorID)

		assert.ErrorIs(t, err, common.ErrApplyAlreadyCompleted)
	})

	t.Run("keeps subjects and logs the fallback reason", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), NewFileService(new(MockFileRepository), t.TempDir(), 0))
		existing := &model.ApplyApplication{ID: 5, Status: model.ApplyReview, Division: model.DivisionHigh, Subjects: []model.SubjectCode{model.SubjectEnglish}}
		req := model.ApplyUpdateRequest{ApplyApplicationRequest: applyRequest()}
		req.Subjects = nil

		repo.On("GetByID", ctx, int64(5)).Return(existing, nil).Once()
		dbMock.ExpectBegin()
		repo.On("Update", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("ReplaceSubjects", ctx, mock.Anything, int64(5), []model.SubjectCode{model.SubjectEnglish}).Return(nil).Once()
		repo.On("AddLog", ctx, mock.Anything, mock.MatchedBy(func(l *model.ApplyApplicationLog) bool {
			return l.LogType == model.LogUpdate && *l.LogContent == "Application updated" && *l.CreatedBy == actorID
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		app, err := applyService.Update(ctx, 5, req, actorID)

		assert.NoError(t, err)
		assert.Equal(t, model.ApplyReview, app.Status)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestApplyService_AddLog(t *testing.T) {
	ctx := context.Background()
	actorID := int64(2)

	t.Run("applies next status and assignee", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		memberRepo := new(MockMemberRepository)
		applyService := NewApplyService(db, repo, memberRepo, nil)
		next := model.ApplyReview
		assigneeID := int64(8)

		repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5, Status: model.ApplyRegistered}, nil).Once()
		memberRepo.On("GetByID", ctx, assigneeID).Return(&model.Member{ID: assigneeID, MemberName: "박상담"}, nil).Once()
		dbMock.ExpectBegin()
		repo.On("AddLog", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("UpdateStatus", ctx, mock.Anything, int64(5), model.ApplyReview, &actorID).Return(nil).Once()
		repo.On("UpdateAssignee", ctx, mock.Anything, int64(5), "박상담", &actorID).Return(nil).Once()
		dbMock.ExpectCommit()
		memberRepo.On("NamesByIDs", ctx, []int64{actorID}).Return(map[int64]string{actorID: "관리자"}, nil).Once()

		entry, err := applyService.AddLog(ctx, 5, model.ApplyLogRequest{
			LogType:        model.LogCall,
			LogContent:     "Called the guardian",
			NextStatus:     &next,
			NextAssigneeID: &assigneeID,
		}, actorID)

		assert.NoError(t, err)
		assert.Equal(t, "관리자", entry.CreatedByName)
		repo.AssertExpectations(t)
		memberRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid next status", func(t *testing.T) {
		applyService := NewApplyService(nil, new(MockApplyRepository), new(MockMemberRepository), nil)
		bad := model.ApplicationStatus("LOST")

		_, err := applyService.AddLog(ctx, 5, model.ApplyLogRequest{LogType: model.LogMemo, LogContent: "x", NextStatus: &bad}, actorID)

		assert.ErrorIs(t, err, common.ErrInvalidApplicationStatus)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		repo := new(MockApplyRepository)
		memberRepo := new(MockMemberRepository)
		applyService := NewApplyService(nil, repo, memberRepo, nil)
		assigneeID := int64(404)
		repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5}, nil).Once()
		memberRepo.On("GetByID", ctx, assigneeID).Return(nil, sql.ErrNoRows).Once()

		_, err := applyService.AddLog(ctx, 5, model.ApplyLogRequest{LogType: model.LogMemo, LogContent: "x", NextAssigneeID: &assigneeID}, actorID)

		assert.ErrorIs(t, err, common.ErrMemberNotFound)
	})
}

func TestApplyService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApplyRepository)
	applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
	actorID := int64(2)

	_, err := applyService.ChangeStatus(ctx, 5, model.ApplicationStatus("DONE"), actorID)
	assert.ErrorIs(t, err, common.ErrInvalidApplicationStatus)

	repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5, Status: model.ApplyCompleted}, nil).Once()
	repo.On("UpdateStatus", ctx, (*sql.Tx)(nil), int64(5), model.ApplyCanceled, &actorID).Return(nil).Once()

	app, err := applyService.ChangeStatus(ctx, 5, model.ApplyCanceled, actorID)

	assert.NoError(t, err)
	assert.Equal(t, model.ApplyCanceled, app.Status)
	repo.AssertExpectations(t)
}

func TestApplyService_Statistics(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApplyRepository)
	applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)

	repo.On("CountByStatus", ctx).Return(map[model.ApplicationStatus]int64{
		model.ApplyRegistered: 4,
		model.ApplyReview:     2,
		model.ApplyCompleted:  1,
	}, nil).Once()
	repo.On("CountByDivision", ctx).Return(map[model.Division]int64{model.DivisionHigh: 7}, nil).Once()

	stats, err := applyService.Statistics(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, int64(7), stats.ByDivision[model.DivisionHigh])
}

func TestApplyService_List_RejectsInvertedRange(t *testing.T) {
	applyService := NewApplyService(nil, new(MockApplyRepository), new(MockMemberRepository), nil)
	from := common.Now()
	to := from.AddDate(0, 0, -1)

	_, _, err := applyService.List(context.Background(), model.ApplySearch{CreatedFrom: &from, CreatedTo: &to}, common.NewPageRequest(0, 20))

	assert.ErrorIs(t, err, common.ErrInvalidDateRange)
}

func TestApplyService_Assign(t *testing.T) {
	ctx := context.Background()
	actorID := int64(2)

	t.Run("first assignment", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), nil)

		repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5}, nil).Once()
		dbMock.ExpectBegin()
		repo.On("UpdateAssignee", ctx, mock.AnythingOfType("*sql.Tx"), int64(5), "박상담", &actorID).Return(nil).Once()
		repo.On("AddLog", ctx, mock.AnythingOfType("*sql.Tx"), mock.MatchedBy(func(l *model.ApplyApplicationLog) bool {
			return l.ApplicationID == 5 && l.LogType == model.LogAssign && *l.LogContent == "Assigned to 박상담" && *l.CreatedBy == actorID
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		app, err := applyService.Assign(ctx, 5, " 박상담 ", actorID)

		require.NoError(t, err)
		assert.Equal(t, "박상담", *app.AssigneeName)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("reassignment keeps the previous name in the log", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockApplyRepository)
		applyService := NewApplyService(db, repo, new(MockMemberRepository), nil)
		previous := "김상담"

		repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5, AssigneeName: &previous}, nil).Once()
		dbMock.ExpectBegin()
		repo.On("UpdateAssignee", ctx, mock.Anything, int64(5), "박상담", &actorID).Return(nil).Once()
		repo.On("AddLog", ctx, mock.Anything, mock.MatchedBy(func(l *model.ApplyApplicationLog) bool {
			return *l.LogContent == "Reassigned from 김상담 to 박상담"
		})).Return(errors.New("insert failed")).Once()
		dbMock.ExpectRollback()

		_, err = applyService.Assign(ctx, 5, "박상담", actorID)

		assert.Error(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestApplyService_Delete(t *testing.T) {
	ctx := context.Background()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := new(MockApplyRepository)
	fileRepo := new(MockFileRepository)
	applyService := NewApplyService(db, repo, new(MockMemberRepository), NewFileService(fileRepo, t.TempDir(), 0))
	inTx := mock.AnythingOfType("*sql.Tx")

	repo.On("GetByID", ctx, int64(5)).Return(&model.ApplyApplication{ID: 5}, nil).Once()
	dbMock.ExpectBegin()
	fileRepo.On("DeleteLinks", ctx, inTx, model.OwnerApplyApplications, int64(5), (*model.FileRole)(nil), []int64(nil)).Return(int64(1), nil).Once()
	repo.On("Delete", ctx, inTx, int64(5)).Return(nil).Once()
	dbMock.ExpectCommit()

	require.NoError(t, applyService.Delete(ctx, 5))
	repo.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestApplyService_Lookups(t *testing.T) {
	ctx := context.Background()
	rows := []model.ApplyApplication{{ID: 1}}

	t.Run("duplicates default to one day", func(t *testing.T) {
		repo := new(MockApplyRepository)
		applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
		start := common.Now()
		repo.On("FindByPhoneSince", ctx, "010-1111-2222", mock.MatchedBy(func(since time.Time) bool {
			d := start.Sub(since)
			return d >= 24*time.Hour && d < 24*time.Hour+time.Minute
		})).Return(rows, nil).Once()

		got, err := applyService.Duplicates(ctx, "010-1111-2222", 0)

		require.NoError(t, err)
		assert.Equal(t, rows, got)
		repo.AssertExpectations(t)
	})

	t.Run("duplicates honour the window", func(t *testing.T) {
		repo := new(MockApplyRepository)
		applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
		start := common.Now()
		repo.On("FindByPhoneSince", ctx, "010-1111-2222", mock.MatchedBy(func(since time.Time) bool {
			d := start.Sub(since)
			return d >= 2*time.Hour && d < 2*time.Hour+time.Minute
		})).Return(rows, nil).Once()

		_, err := applyService.Duplicates(ctx, "010-1111-2222", 2)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("delayed defaults to three days", func(t *testing.T) {
		repo := new(MockApplyRepository)
		applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
		want := common.Now().AddDate(0, 0, -3)
		repo.On("FindDelayed", ctx, mock.MatchedBy(func(before time.Time) bool {
			d := before.Sub(want)
			return d >= 0 && d < time.Minute
		})).Return(rows, nil).Once()

		got, err := applyService.Delayed(ctx, -1)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})

	t.Run("by assignee trims the name", func(t *testing.T) {
		repo := new(MockApplyRepository)
		applyService := NewApplyService(nil, repo, new(MockMemberRepository), nil)
		repo.On("FindByAssignee", ctx, "박상담").Return(rows, nil).Once()

		got, err := applyService.ByAssignee(ctx, "  박상담 ")

		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})
}
