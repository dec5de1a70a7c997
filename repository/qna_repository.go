package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

type IQnaRepository interface {
	Search(ctx context.Context, search model.QnaSearch, page common.PageRequest) ([]model.QnaQuestion, int64, error)
	GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.QnaQuestion, error)
	Create(ctx context.Context, q *model.QnaQuestion) error
	Update(ctx context.Context, q *model.QnaQuestion) error
	UpdateFlags(ctx context.Context, id int64, pinned, published *bool) error
	IncrementViewCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	SetAnswered(ctx context.Context, tx *sql.Tx, id int64, answeredAt *time.Time) error
	Previous(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error)
	Next(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error)
	Statistics(ctx context.Context) (*model.QnaStatistics, error)
	GetAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (*model.QnaAnswer, error)
	CreateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error
	UpdateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error
	DeleteAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (int64, error)
}

type QnaRepository struct {
	baseRepository
}

func NewQnaRepository(conn *sql.DB, dialect db.Dialect) *QnaRepository {
	return &QnaRepository{baseRepository: newBase(conn, dialect)}
}

func (r *QnaRepository) selectQuestions() sq.SelectBuilder {
	return r.sb().Select("id", "author_name", "phone_number", "password_hash", "title", "content",
		"is_secret", "is_pinned", "is_published", "view_count", "is_answered", "answered_at",
		"privacy_consent", "ip_address", "created_at", "updated_at").
		From("qna_questions")
}

func scanQuestion(row rowScanner) (*model.QnaQuestion, error) {
	var (
		q          model.QnaQuestion
		answeredAt sql.NullTime
		ip         sql.NullString
	)
	if err := row.Scan(&q.ID, &q.AuthorName, &q.PhoneNumber, &q.PasswordHash, &q.Title, &q.Content,
		&q.IsSecret, &q.IsPinned, &q.IsPublished, &q.ViewCount, &q.IsAnswered, &answeredAt,
		&q.PrivacyConsent, &ip, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.AnsweredAt = timePtr(answeredAt)
	q.IPAddress = ip.String
	return &q, nil
}

func (r *QnaRepository) searchWhere(s model.QnaSearch) sq.And {
	where := sq.And{}
	if s.Keyword != "" {
		where = append(where, sq.Or{
			r.like("title", s.Keyword),
			r.like("content", s.Keyword),
			r.like("author_name", s.Keyword),
		})
	}
	if s.IsAnswered != nil {
		where = append(where, sq.Eq{"is_answered": *s.IsAnswered})
	}
	if s.IsSecret != nil {
		where = append(where, sq.Eq{"is_secret": *s.IsSecret})
	}
	if s.IsPublished != nil {
		where = append(where, sq.Eq{"is_published": *s.IsPublished})
	}
	if s.PublishedOnly {
		where = append(where, sq.Eq{"is_published": true})
	}
	if s.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *s.From})
	}
	if s.To != nil {
		where = append(where, sq.LtOrEq{"created_at": *s.To})
	}
	return where
}

// Search lists questions pinned first, then newest first. Secret questions
// are included; callers decide what to reveal.
func (r *QnaRepository) Search(ctx context.Context, search model.QnaSearch, page common.PageRequest) ([]model.QnaQuestion, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"keyword": search.Keyword,
		"page":    page.Page,
		"size":    page.Size,
	})
	log.Info("Executing query to search questions")

	where := r.searchWhere(search)
	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("qna_questions").Where(where))
	if err != nil {
		log.WithError(err).Error("Failed to count questions")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.selectQuestions().Where(where).
		OrderBy("is_pinned DESC", "created_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		log.WithError(err).Error("Failed to execute search questions query")
		return nil, 0, err
	}
	defer rows.Close()

	questions := make([]model.QnaQuestion, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

func (r *QnaRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.QnaQuestion, error) {
	row, err := r.queryRowIn(ctx, r.runner(tx), r.selectQuestions().Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	q, err := scanQuestion(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Log.WithError(err).WithField("question_id", id).Error("Failed to execute get question query")
	}
	return q, err
}

func (r *QnaRepository) Create(ctx context.Context, q *model.QnaQuestion) error {
	log := logger.Log.WithField("author_name", q.AuthorName)
	log.Info("Executing query to create a question")

	now := common.Now()
	q.CreatedAt, q.UpdatedAt = now, now
	id, err := r.insert(ctx, r.DB, r.sb().Insert("qna_questions").
		Columns("author_name", "phone_number", "password_hash", "title", "content", "is_secret",
			"is_pinned", "is_published", "view_count", "is_answered", "privacy_consent", "ip_address",
			"created_at", "updated_at").
		Values(q.AuthorName, q.PhoneNumber, q.PasswordHash, q.Title, q.Content, q.IsSecret,
			q.IsPinned, q.IsPublished, 0, false, q.PrivacyConsent, q.IPAddress, now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create question query")
		return err
	}
	q.ID = id
	return nil
}

func (r *QnaRepository) Update(ctx context.Context, q *model.QnaQuestion) error {
	q.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("qna_questions").
		Set("title", q.Title).
		Set("content", q.Content).
		Set("is_secret", q.IsSecret).
		Set("updated_at", q.UpdatedAt).
		Where(sq.Eq{"id": q.ID}))
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", q.ID).Error("Failed to execute update question query")
	}
	return err
}

func (r *QnaRepository) UpdateFlags(ctx context.Context, id int64, pinned, published *bool) error {
	ub := r.sb().Update("qna_questions").Set("updated_at", common.Now()).Where(sq.Eq{"id": id})
	if pinned != nil {
		ub = ub.Set("is_pinned", *pinned)
	}
	if published != nil {
		ub = ub.Set("is_published", *published)
	}
	_, err := r.exec(ctx, r.DB, ub)
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", id).Error("Failed to update question flags")
	}
	return err
}

func (r *QnaRepository) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("qna_questions").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", id).Error("Failed to increment question view count")
	}
	return err
}

// Delete removes the question and its answer.
func (r *QnaRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := r.exec(ctx, tx, r.sb().Delete("qna_answers").Where(sq.Eq{"question_id": id})); err != nil {
		return err
	}
	if _, err := r.exec(ctx, tx, r.sb().Delete("qna_questions").Where(sq.Eq{"id": id})); err != nil {
		logger.Log.WithError(err).WithField("question_id", id).Error("Failed to execute delete question query")
		return err
	}
	return tx.Commit()
}

// SetAnswered marks the question answered at answeredAt, or unanswered when
// answeredAt is nil.
func (r *QnaRepository) SetAnswered(ctx context.Context, tx *sql.Tx, id int64, answeredAt *time.Time) error {
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("qna_questions").
		Set("is_answered", answeredAt != nil).
		Set("answered_at", nullable(answeredAt)).
		Where(sq.Eq{"id": id}))
	return err
}

func (r *QnaRepository) neighbour(ctx context.Context, where sq.Sqlizer, order []string, publishedOnly bool) (*model.QnaNav, error) {
	q := r.sb().Select("id", "title", "is_secret", "created_at").From("qna_questions").Where(where).OrderBy(order...).Limit(1)
	if publishedOnly {
		q = q.Where(sq.Eq{"is_published": true})
	}
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	nav := &model.QnaNav{}
	if err := row.Scan(&nav.ID, &nav.Title, &nav.IsSecret, &nav.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return nav, nil
}

// Previous returns the next newer question by (created_at, id), or nil.
func (r *QnaRepository) Previous(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error) {
	where := sq.Or{
		sq.Gt{"created_at": q.CreatedAt},
		sq.And{sq.Eq{"created_at": q.CreatedAt}, sq.Gt{"id": q.ID}},
	}
	return r.neighbour(ctx, where, []string{"created_at ASC", "id ASC"}, publishedOnly)
}

// Next returns the next older question by (created_at, id), or nil.
func (r *QnaRepository) Next(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error) {
	where := sq.Or{
		sq.Lt{"created_at": q.CreatedAt},
		sq.And{sq.Eq{"created_at": q.CreatedAt}, sq.Lt{"id": q.ID}},
	}
	return r.neighbour(ctx, where, []string{"created_at DESC", "id DESC"}, publishedOnly)
}

func (r *QnaRepository) Statistics(ctx context.Context) (*model.QnaStatistics, error) {
	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("qna_questions"))
	if err != nil {
		return nil, err
	}
	answered, err := r.count(ctx, r.sb().Select("COUNT(*)").From("qna_questions").Where(sq.Eq{"is_answered": true}))
	if err != nil {
		return nil, err
	}
	return &model.QnaStatistics{Total: total, Answered: answered, Unanswered: total - answered}, nil
}

func (r *QnaRepository) GetAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (*model.QnaAnswer, error) {
	row, err := r.queryRowIn(ctx, r.runner(tx), r.sb().
		Select("id", "question_id", "admin_name", "content", "created_by", "updated_by", "created_at", "updated_at").
		From("qna_answers").Where(sq.Eq{"question_id": questionID}))
	if err != nil {
		return nil, err
	}
	var (
		a                    model.QnaAnswer
		createdBy, updatedBy sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.QuestionID, &a.AdminName, &a.Content, &createdBy, &updatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.CreatedBy = int64Ptr(createdBy)
	a.UpdatedBy = int64Ptr(updatedBy)
	return &a, nil
}

func (r *QnaRepository) CreateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error {
	now := common.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("qna_answers").
		Columns("question_id", "admin_name", "content", "created_by", "updated_by", "created_at", "updated_at").
		Values(a.QuestionID, a.AdminName, a.Content, nullable(a.CreatedBy), nullable(a.UpdatedBy), now, now))
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", a.QuestionID).Error("Failed to execute create answer query")
		return err
	}
	a.ID = id
	return nil
}

func (r *QnaRepository) UpdateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error {
	a.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("qna_answers").
		Set("admin_name", a.AdminName).
		Set("content", a.Content).
		Set("updated_by", nullable(a.UpdatedBy)).
		Set("updated_at", a.UpdatedAt).
		Where(sq.Eq{"id": a.ID}))
	if err != nil {
		logger.Log.WithError(err).WithField("answer_id", a.ID).Error("Failed to execute update answer query")
	}
	return err
}

func (r *QnaRepository) DeleteAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (int64, error) {
	return r.exec(ctx, r.runner(tx), r.sb().Delete("qna_answers").Where(sq.Eq{"question_id": questionID}))
}
