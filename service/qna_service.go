package service

import (
	"academy-api/common"
	"academy-api/config"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type qnaPage struct {
	Items []model.QnaQuestion `json:"items"`
	Total int64               `json:"total"`
}

func qnaViewTTL() time.Duration {
	if m := config.AppConfig.Qna.ViewTokenMinutes; m > 0 {
		return time.Duration(m) * time.Minute
	}
	return 30 * time.Minute
}

// GenerateQnaViewToken signs a short-lived token that unlocks one secret
// question.
func GenerateQnaViewToken(questionID int64) (string, error) {
	now := time.Now()
	return sign(&model.AppClaims{
		TokenType: model.TokenTypeQnaView,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(questionID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(qnaViewTTL())),
		},
	})
}

// ParseQnaViewToken checks that token unlocks questionID.
func ParseQnaViewToken(token string, questionID int64) error {
	claims, err := parseToken(token)
	if err != nil {
		return common.ErrQnaInvalidViewToken
	}
	if claims.TokenType != model.TokenTypeQnaView || claims.Subject != strconv.FormatInt(questionID, 10) {
		return common.ErrQnaInvalidViewToken
	}
	return nil
}

type QnaService struct {
	db         *sql.DB
	repo       repository.IQnaRepository
	memberRepo repository.IMemberRepository
	cache      *listCache
	attempts   *passwordAttempts
}

func NewQnaService(db *sql.DB, repo repository.IQnaRepository, memberRepo repository.IMemberRepository,
	cache ICacheClient, ttl time.Duration) *QnaService {
	cfg := config.AppConfig.Qna
	return &QnaService{
		db:         db,
		repo:       repo,
		memberRepo: memberRepo,
		cache:      newListCache(cache, "qna", ttl),
		attempts:   newPasswordAttempts(cfg.MaxPasswordAttempts, cfg.Lockout),
	}
}

func (s *QnaService) question(ctx context.Context, tx *sql.Tx, id int64) (*model.QnaQuestion, error) {
	q, err := s.repo.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrQnaQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// checkPassword verifies password for q, spending an attempt of ip on a
// mismatch.
func (s *QnaService) checkPassword(q *model.QnaQuestion, password, ip string) error {
	if !s.attempts.Allowed(ip) {
		logger.Log.WithField("client_ip", ip).Warn("QnA password attempts exhausted")
		return common.ErrQnaRateLimitExceeded
	}
	if !CheckPasswordHash(password, q.PasswordHash) {
		s.attempts.Fail(ip)
		logger.Log.WithFields(logrus.Fields{
			"question_id": q.ID,
			"client_ip":   ip,
		}).Warn("QnA password mismatch")
		return common.ErrQnaPasswordMismatch
	}
	s.attempts.Reset(ip)
	return nil
}

// PublicList returns published questions without their content or contact
// fields. Secret questions keep their title. Results are cached.
func (s *QnaService) PublicList(ctx context.Context, search model.QnaSearch, page common.PageRequest) ([]model.QnaQuestion, int64, error) {
	search.PublishedOnly = true
	search.IsPublished = nil

	key := s.cache.key(ctx, "list", filterKey(search), page.Page, page.Size)
	var cached qnaPage
	if s.cache.get(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	questions, total, err := s.repo.Search(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	for i := range questions {
		questions[i] = questions[i].Public()
		questions[i].Content = ""
	}
	s.cache.set(ctx, key, qnaPage{Items: questions, Total: total})
	return questions, total, nil
}

// PublicDetail returns a published question with its answer. A secret
// question needs a view token issued by VerifyPassword.
func (s *QnaService) PublicDetail(ctx context.Context, id int64, viewToken string) (*model.QnaDetail, error) {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished {
		return nil, common.ErrQnaQuestionNotFound
	}
	if q.IsSecret {
		if viewToken == "" {
			return nil, common.ErrQnaSecretAccessDenied
		}
		if err := ParseQnaViewToken(viewToken, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("question_id", id).Warn("Could not increment question view count")
	} else {
		q.ViewCount++
	}

	public := q.Public()
	return s.detail(ctx, &public, true)
}

func (s *QnaService) detail(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaDetail, error) {
	d := &model.QnaDetail{QnaQuestion: *q}

	answer, err := s.repo.GetAnswer(ctx, nil, q.ID)
	switch {
	case err == nil:
		d.Answer = answer
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	if d.Previous, err = s.repo.Previous(ctx, q, publishedOnly); err != nil {
		return nil, err
	}
	if d.Next, err = s.repo.Next(ctx, q, publishedOnly); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *QnaService) Create(ctx context.Context, req model.QnaCreateRequest, ip string) (*model.QnaQuestion, error) {
	if !req.PrivacyConsent {
		return nil, common.ErrPrivacyConsentRequired
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	q := &model.QnaQuestion{
		AuthorName:     req.AuthorName,
		PhoneNumber:    req.PhoneNumber,
		PasswordHash:   hash,
		Title:          req.Title,
		Content:        req.Content,
		IsSecret:       req.IsSecret,
		IsPublished:    true,
		PrivacyConsent: true,
		IPAddress:      ip,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithFields(logrus.Fields{
		"question_id": q.ID,
		"secret":      q.IsSecret,
	}).Info("Question created")

	public := q.Public()
	return &public, nil
}

// VerifyPassword issues a view token for a secret question.
func (s *QnaService) VerifyPassword(ctx context.Context, id int64, password, ip string) (*model.QnaViewToken, error) {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished {
		return nil, common.ErrQnaQuestionNotFound
	}
	if !q.IsSecret {
		return nil, common.ErrQnaNotSecret
	}
	if err := s.checkPassword(q, password, ip); err != nil {
		return nil, err
	}

	token, err := GenerateQnaViewToken(id)
	if err != nil {
		return nil, err
	}
	return &model.QnaViewToken{ViewToken: token, ExpiresIn: int64(qnaViewTTL().Seconds())}, nil
}

// Update lets the author edit an unanswered question.
func (s *QnaService) Update(ctx context.Context, id int64, req model.QnaUpdateRequest, ip string) (*model.QnaQuestion, error) {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(q, req.Password, ip); err != nil {
		return nil, err
	}
	if q.IsAnswered {
		return nil, common.ErrQnaAnsweredModification
	}

	q.Title = req.Title
	q.Content = req.Content
	q.IsSecret = req.IsSecret
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)

	public := q.Public()
	return &public, nil
}

// Delete lets the author remove a question, answered or not.
func (s *QnaService) Delete(ctx context.Context, id int64, password, ip string) error {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.checkPassword(q, password, ip); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

func (s *QnaService) remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithField("question_id", id).Info("Question deleted")
	return nil
}

func (s *QnaService) AdminList(ctx context.Context, search model.QnaSearch, page common.PageRequest) ([]model.QnaQuestion, int64, error) {
	if search.From != nil && search.To != nil && search.From.After(*search.To) {
		return nil, 0, common.ErrInvalidDateRange
	}
	return s.repo.Search(ctx, search, page)
}

func (s *QnaService) AdminGet(ctx context.Context, id int64) (*model.QnaDetail, error) {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, q, false)
}

func (s *QnaService) UpdateFlags(ctx context.Context, id int64, req model.QnaStatusRequest) (*model.QnaQuestion, error) {
	q, err := s.question(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if req.IsPinned == nil && req.IsPublished == nil {
		return q, nil
	}
	if err := s.repo.UpdateFlags(ctx, id, req.IsPinned, req.IsPublished); err != nil {
		return nil, err
	}
	if req.IsPinned != nil {
		q.IsPinned = *req.IsPinned
	}
	if req.IsPublished != nil {
		q.IsPublished = *req.IsPublished
	}
	s.cache.invalidate(ctx)
	return q, nil
}

func (s *QnaService) AdminDelete(ctx context.Context, id int64) error {
	if _, err := s.question(ctx, nil, id); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

func (s *QnaService) adminName(ctx context.Context, actorID int64) string {
	m, err := s.memberRepo.GetByID(ctx, actorID)
	if err != nil {
		logger.Log.WithError(err).WithField("actor_id", actorID).Warn("Could not resolve answering admin")
		return "Unknown"
	}
	return m.MemberName
}

// SaveAnswer creates or replaces the answer of a question and marks the
// question answered. The first answer time is kept on later edits.
func (s *QnaService) SaveAnswer(ctx context.Context, id int64, req model.QnaAnswerRequest, actorID int64) (*model.QnaAnswer, error) {
	name := s.adminName(ctx, actorID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q, err := s.question(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	answer, err := s.repo.GetAnswer(ctx, tx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		answer = &model.QnaAnswer{QuestionID: id, AdminName: name, Content: req.Content, CreatedBy: &actorID, UpdatedBy: &actorID}
		err = s.repo.CreateAnswer(ctx, tx, answer)
	case err == nil:
		answer.AdminName = name
		answer.Content = req.Content
		answer.UpdatedBy = &actorID
		err = s.repo.UpdateAnswer(ctx, tx, answer)
	}
	if err != nil {
		return nil, err
	}

	answeredAt := q.AnsweredAt
	if answeredAt == nil {
		now := common.Now()
		answeredAt = &now
	}
	if err := s.repo.SetAnswered(ctx, tx, id, answeredAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx)
	logger.Log.WithFields(logrus.Fields{
		"question_id": id,
		"actor_id":    actorID,
	}).Info("Question answered")
	return answer, nil
}

// DeleteAnswer removes the answer and reopens the question.
func (s *QnaService) DeleteAnswer(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.question(ctx, tx, id); err != nil {
		return err
	}
	n, err := s.repo.DeleteAnswer(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrQnaAnswerNotFound
	}
	if err := s.repo.SetAnswered(ctx, tx, id, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.cache.invalidate(ctx)
	return nil
}

func (s *QnaService) Statistics(ctx context.Context) (*model.QnaStatistics, error) {
	return s.repo.Statistics(ctx)
}
