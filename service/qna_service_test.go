// service/qna_service_test.go
package service

import (
	"academy-api/common"
	"academy-api/model"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func qnaQuestion(t *testing.T, id int64, password string) *model.QnaQuestion {
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &model.QnaQuestion{
		ID:           id,
		AuthorName:   "김학부모",
		PhoneNumber:  "010-3333-4444",
		PasswordHash: hash,
		Title:        "수강료 문의",
		Content:      "고2 수학반 수강료가 궁금합니다",
		IsPublished:  true,
		IPAddress:    "10.0.0.3",
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newTestQnaService(db *sql.DB, repo *MockQnaRepository, memberRepo *MockMemberRepository) *QnaService {
	return NewQnaService(db, repo, memberRepo, NoopCache{}, time.Minute)
}

func TestQnaService_Create(t *testing.T) {
	ctx := context.Background()
	req := model.QnaCreateRequest{
		AuthorName:     "김학부모",
		PhoneNumber:    "010-3333-4444",
		Password:       "1234",
		Title:          "수강료 문의",
		Content:        "고2 수학반 수강료가 궁금합니다",
		IsSecret:       true,
		PrivacyConsent: true,
	}

	t.Run("privacy consent is required", func(t *testing.T) {
		qnaService := newTestQnaService(nil, new(MockQnaRepository), new(MockMemberRepository))
		noConsent := req
		noConsent.PrivacyConsent = false

		_, err := qnaService.Create(ctx, noConsent, "10.0.0.3")

		assert.ErrorIs(t, err, common.ErrPrivacyConsentRequired)
	})

	t.Run("stores a password hash and hides contact fields", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		repo.On("Create", ctx, mock.MatchedBy(func(q *model.QnaQuestion) bool {
			return CheckPasswordHash("1234", q.PasswordHash) && q.IsSecret && q.IsPublished && q.IPAddress == "10.0.0.3"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.QnaQuestion).ID = 11
		}).Return(nil).Once()

		q, err := qnaService.Create(ctx, req, "10.0.0.3")

		require.NoError(t, err)
		assert.Equal(t, int64(11), q.ID)
		assert.Empty(t, q.PhoneNumber)
		assert.Empty(t, q.IPAddress)
		repo.AssertExpectations(t)
	})
}

func TestQnaService_PublicList_HidesContent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockQnaRepository)
	qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
	page := common.NewPageRequest(0, 10)

	secret := *qnaQuestion(t, 1, "1234")
	secret.IsSecret = true
	repo.On("Search", ctx, mock.MatchedBy(func(s model.QnaSearch) bool {
		return s.PublishedOnly && s.IsPublished == nil
	}), page).Return([]model.QnaQuestion{secret}, int64(1), nil).Once()

	published := false
	questions, total, err := qnaService.PublicList(ctx, model.QnaSearch{IsPublished: &published}, page)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, questions, 1)
	assert.Equal(t, "수강료 문의", questions[0].Title)
	assert.Empty(t, questions[0].Content)
	assert.Empty(t, questions[0].PhoneNumber)
}

func TestQnaService_PublicDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("secret question needs a token", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 3, "1234")
		q.IsSecret = true
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(3)).Return(q, nil)

		_, err := qnaService.PublicDetail(ctx, 3, "")
		assert.ErrorIs(t, err, common.ErrQnaSecretAccessDenied)

		otherToken, err := GenerateQnaViewToken(4)
		require.NoError(t, err)
		_, err = qnaService.PublicDetail(ctx, 3, otherToken)
		assert.ErrorIs(t, err, common.ErrQnaInvalidViewToken)

		repo.AssertNotCalled(t, "IncrementViewCount", mock.Anything, mock.Anything)
	})

	t.Run("valid token shows content and answer", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 3, "1234")
		q.IsSecret = true
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(3)).Return(q, nil).Once()
		repo.On("IncrementViewCount", ctx, int64(3)).Return(nil).Once()
		repo.On("GetAnswer", ctx, (*sql.Tx)(nil), int64(3)).Return(&model.QnaAnswer{QuestionID: 3, Content: "월 30만원입니다"}, nil).Once()
		repo.On("Previous", ctx, mock.Anything, true).Return(nil, nil).Once()
		repo.On("Next", ctx, mock.Anything, true).Return(&model.QnaNav{ID: 2}, nil).Once()

		token, err := GenerateQnaViewToken(3)
		require.NoError(t, err)
		detail, err := qnaService.PublicDetail(ctx, 3, token)

		require.NoError(t, err)
		assert.Equal(t, q.Content, detail.Content)
		assert.Empty(t, detail.PhoneNumber)
		assert.Equal(t, int64(1), detail.ViewCount)
		require.NotNil(t, detail.Answer)
		assert.Equal(t, "월 30만원입니다", detail.Answer.Content)
		assert.Nil(t, detail.Previous)
		assert.Equal(t, int64(2), detail.Next.ID)
	})

	t.Run("unpublished question is not found", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 5, "1234")
		q.IsPublished = false
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(5)).Return(q, nil).Once()

		_, err := qnaService.PublicDetail(ctx, 5, "")

		assert.ErrorIs(t, err, common.ErrQnaQuestionNotFound)
	})
}

func TestQnaService_VerifyPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("open question needs no password", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(1)).Return(qnaQuestion(t, 1, "1234"), nil).Once()

		_, err := qnaService.VerifyPassword(ctx, 1, "1234", "10.0.0.3")

		assert.ErrorIs(t, err, common.ErrQnaNotSecret)
	})

	t.Run("issues a token for the question", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 8, "1234")
		q.IsSecret = true
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(8)).Return(q, nil).Once()

		token, err := qnaService.VerifyPassword(ctx, 8, "1234", "10.0.0.3")

		require.NoError(t, err)
		assert.NoError(t, ParseQnaViewToken(token.ViewToken, 8))
		assert.ErrorIs(t, ParseQnaViewToken(token.ViewToken, 9), common.ErrQnaInvalidViewToken)
		assert.Equal(t, int64(30*60), token.ExpiresIn)
	})

	t.Run("repeated failures lock the client out", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 8, "1234")
		q.IsSecret = true
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(8)).Return(q, nil)

		for i := 0; i < 5; i++ {
			_, err := qnaService.VerifyPassword(ctx, 8, "9999", "10.0.0.66")
			assert.ErrorIs(t, err, common.ErrQnaPasswordMismatch)
		}

		_, err := qnaService.VerifyPassword(ctx, 8, "1234", "10.0.0.66")
		assert.ErrorIs(t, err, common.ErrQnaRateLimitExceeded)

		_, err = qnaService.VerifyPassword(ctx, 8, "1234", "10.0.0.67")
		assert.NoError(t, err)
	})
}

func TestQnaService_Update(t *testing.T) {
	ctx := context.Background()
	req := model.QnaUpdateRequest{Password: "1234", Title: "수정된 문의", Content: "내용 수정"}

	t.Run("answered question is frozen", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		q := qnaQuestion(t, 2, "1234")
		q.IsAnswered = true
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(2)).Return(q, nil).Once()

		_, err := qnaService.Update(ctx, 2, req, "10.0.0.3")

		assert.ErrorIs(t, err, common.ErrQnaAnsweredModification)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(2)).Return(qnaQuestion(t, 2, "1234"), nil).Once()

		bad := req
		bad.Password = "0000"
		_, err := qnaService.Update(ctx, 2, bad, "10.0.0.3")

		assert.ErrorIs(t, err, common.ErrQnaPasswordMismatch)
	})

	t.Run("author edits an open question", func(t *testing.T) {
		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(nil, repo, new(MockMemberRepository))
		repo.On("GetByID", ctx, (*sql.Tx)(nil), int64(2)).Return(qnaQuestion(t, 2, "1234"), nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(q *model.QnaQuestion) bool {
			return q.Title == "수정된 문의" && q.Content == "내용 수정"
		})).Return(nil).Once()

		q, err := qnaService.Update(ctx, 2, req, "10.0.0.3")

		require.NoError(t, err)
		assert.Equal(t, "수정된 문의", q.Title)
		repo.AssertExpectations(t)
	})
}

func TestQnaService_SaveAnswer(t *testing.T) {
	ctx := context.Background()
	actorID := int64(4)

	t.Run("first answer marks the question answered", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockQnaRepository)
		memberRepo := new(MockMemberRepository)
		qnaService := newTestQnaService(db, repo, memberRepo)

		memberRepo.On("GetByID", ctx, actorID).Return(&model.Member{ID: actorID, MemberName: "이선생"}, nil).Once()
		dbMock.ExpectBegin()
		repo.On("GetByID", ctx, mock.AnythingOfType("*sql.Tx"), int64(6)).Return(qnaQuestion(t, 6, "1234"), nil).Once()
		repo.On("GetAnswer", ctx, mock.AnythingOfType("*sql.Tx"), int64(6)).Return(nil, sql.ErrNoRows).Once()
		repo.On("CreateAnswer", ctx, mock.AnythingOfType("*sql.Tx"), mock.MatchedBy(func(a *model.QnaAnswer) bool {
			return a.QuestionID == 6 && a.AdminName == "이선생" && *a.CreatedBy == actorID
		})).Return(nil).Once()
		repo.On("SetAnswered", ctx, mock.AnythingOfType("*sql.Tx"), int64(6), mock.MatchedBy(func(at *time.Time) bool {
			return at != nil
		})).Return(nil).Once()
		dbMock.ExpectCommit()

		answer, err := qnaService.SaveAnswer(ctx, 6, model.QnaAnswerRequest{Content: "월 30만원입니다"}, actorID)

		require.NoError(t, err)
		assert.Equal(t, "월 30만원입니다", answer.Content)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("editing keeps the first answer time", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockQnaRepository)
		memberRepo := new(MockMemberRepository)
		qnaService := newTestQnaService(db, repo, memberRepo)
		answeredAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
		q := qnaQuestion(t, 6, "1234")
		q.IsAnswered, q.AnsweredAt = true, &answeredAt

		memberRepo.On("GetByID", ctx, actorID).Return(&model.Member{ID: actorID, MemberName: "이선생"}, nil).Once()
		dbMock.ExpectBegin()
		repo.On("GetByID", ctx, mock.Anything, int64(6)).Return(q, nil).Once()
		repo.On("GetAnswer", ctx, mock.Anything, int64(6)).Return(&model.QnaAnswer{ID: 3, QuestionID: 6, Content: "old"}, nil).Once()
		repo.On("UpdateAnswer", ctx, mock.Anything, mock.MatchedBy(func(a *model.QnaAnswer) bool {
			return a.ID == 3 && a.Content == "new" && *a.UpdatedBy == actorID
		})).Return(nil).Once()
		repo.On("SetAnswered", ctx, mock.Anything, int64(6), &answeredAt).Return(nil).Once()
		dbMock.ExpectCommit()

		_, err = qnaService.SaveAnswer(ctx, 6, model.QnaAnswerRequest{Content: "new"}, actorID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestQnaService_DeleteAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("missing answer rolls back", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(db, repo, new(MockMemberRepository))
		dbMock.ExpectBegin()
		repo.On("GetByID", ctx, mock.Anything, int64(6)).Return(qnaQuestion(t, 6, "1234"), nil).Once()
		repo.On("DeleteAnswer", ctx, mock.Anything, int64(6)).Return(int64(0), nil).Once()
		dbMock.ExpectRollback()

		err = qnaService.DeleteAnswer(ctx, 6)

		assert.ErrorIs(t, err, common.ErrQnaAnswerNotFound)
		repo.AssertNotCalled(t, "SetAnswered", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("reopens the question", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := new(MockQnaRepository)
		qnaService := newTestQnaService(db, repo, new(MockMemberRepository))
		dbMock.ExpectBegin()
		repo.On("GetByID", ctx, mock.Anything, int64(6)).Return(qnaQuestion(t, 6, "1234"), nil).Once()
		repo.On("DeleteAnswer", ctx, mock.Anything, int64(6)).Return(int64(1), nil).Once()
		repo.On("SetAnswered", ctx, mock.Anything, int64(6), (*time.Time)(nil)).Return(nil).Once()
		dbMock.ExpectCommit()

		require.NoError(t, qnaService.DeleteAnswer(ctx, 6))
		repo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestPasswordAttempts(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	attempts := newPasswordAttempts(3, time.Hour)
	attempts.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, attempts.Allowed("10.0.0.1"))
		attempts.Fail("10.0.0.1")
	}
	assert.False(t, attempts.Allowed("10.0.0.1"))
	assert.True(t, attempts.Allowed("10.0.0.2"))

	now = now.Add(time.Hour)
	assert.True(t, attempts.Allowed("10.0.0.1"))

	attempts.Fail("10.0.0.1")
	assert.False(t, attempts.Allowed("10.0.0.1"))
	attempts.Reset("10.0.0.1")
	assert.True(t, attempts.Allowed("10.0.0.1"))
}
