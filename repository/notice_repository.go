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

type INoticeRepository interface {
	Search(ctx context.Context, search model.NoticeSearch, page common.PageRequest) ([]model.Notice, int64, error)
	GetByID(ctx context.Context, id int64) (*model.Notice, error)
	Create(ctx context.Context, tx *sql.Tx, notice *model.Notice) error
	Update(ctx context.Context, tx *sql.Tx, notice *model.Notice) error
	UpdateContent(ctx context.Context, tx *sql.Tx, id int64, content string) error
	UpdateImportant(ctx context.Context, id int64, important bool, updatedBy *int64) error
	IncrementViewCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	Previous(ctx context.Context, notice *model.Notice, exposableOnly bool, now time.Time) (*model.NoticeNav, error)
	Next(ctx context.Context, notice *model.Notice, exposableOnly bool, now time.Time) (*model.NoticeNav, error)
	StatsByCategory(ctx context.Context) ([]model.CategoryStat, error)
}

type NoticeRepository struct {
	baseRepository
}

func NewNoticeRepository(conn *sql.DB, dialect db.Dialect) *NoticeRepository {
	return &NoticeRepository{baseRepository: newBase(conn, dialect)}
}

func (r *NoticeRepository) selectNotices() sq.SelectBuilder {
	return r.sb().Select("n.id", "n.title", "n.content", "n.is_important", "n.is_published",
		"n.exposure_type", "n.exposure_start_at", "n.exposure_end_at", "n.category_id", "c.name",
		"n.view_count", "n.created_by", "n.updated_by", "n.created_at", "n.updated_at").
		From("notices n").
		LeftJoin("categories c ON c.id = n.category_id")
}

func scanNotice(row rowScanner) (*model.Notice, error) {
	var (
		n                    model.Notice
		exposureType         string
		start, end           sql.NullTime
		categoryID           sql.NullInt64
		categoryName         sql.NullString
		createdBy, updatedBy sql.NullInt64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.IsImportant, &n.IsPublished,
		&exposureType, &start, &end, &categoryID, &categoryName,
		&n.ViewCount, &createdBy, &updatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.ExposureType = model.ExposureType(exposureType)
	n.ExposureStartAt = timePtr(start)
	n.ExposureEndAt = timePtr(end)
	n.CategoryID = int64Ptr(categoryID)
	n.CategoryName = stringPtr(categoryName)
	n.CreatedBy = int64Ptr(createdBy)
	n.UpdatedBy = int64Ptr(updatedBy)
	return &n, nil
}

// exposable matches published notices that are either ALWAYS or inside their
// PERIOD window at now.
func exposable(now time.Time) sq.Sqlizer {
	return sq.And{
		sq.Eq{"n.is_published": true},
		sq.Or{
			sq.Eq{"n.exposure_type": string(model.ExposureAlways)},
			sq.And{
				sq.Eq{"n.exposure_type": string(model.ExposurePeriod)},
				sq.Or{sq.Eq{"n.exposure_start_at": nil}, sq.LtOrEq{"n.exposure_start_at": now}},
				sq.Or{sq.Eq{"n.exposure_end_at": nil}, sq.GtOrEq{"n.exposure_end_at": now}},
			},
		},
	}
}

func (r *NoticeRepository) searchWhere(s model.NoticeSearch) sq.And {
	where := sq.And{}

	if s.Keyword != "" {
		authors := sq.Sqlizer(sq.Expr("1 = 0"))
		if len(s.AuthorIDs) > 0 {
			authors = sq.Eq{"n.created_by": s.AuthorIDs}
		}
		switch s.SearchType {
		case model.SearchTitle:
			where = append(where, r.like("n.title", s.Keyword))
		case model.SearchContent:
			where = append(where, r.like("n.content", s.Keyword))
		case model.SearchAuthor:
			where = append(where, authors)
		default:
			where = append(where, sq.Or{r.like("n.title", s.Keyword), r.like("n.content", s.Keyword), authors})
		}
	}
	if s.CategoryID != nil {
		where = append(where, sq.Eq{"n.category_id": *s.CategoryID})
	}
	if s.IsImportant != nil {
		where = append(where, sq.Eq{"n.is_important": *s.IsImportant})
	}
	if s.IsPublished != nil {
		where = append(where, sq.Eq{"n.is_published": *s.IsPublished})
	}
	if s.ExposureType != nil {
		where = append(where, sq.Eq{"n.exposure_type": string(*s.ExposureType)})
	}
	if s.ExposableOnly {
		where = append(where, exposable(s.Now))
	}
	return where
}

func noticeOrder(sort model.NoticeSort) []string {
	switch sort {
	case model.SortCreatedAsc:
		return []string{"n.created_at ASC", "n.id ASC"}
	case model.SortImportantFirst:
		return []string{"n.is_important DESC", "n.created_at DESC", "n.id DESC"}
	case model.SortViewCountDesc:
		return []string{"n.view_count DESC", "n.created_at DESC", "n.id DESC"}
	}
	return []string{"n.created_at DESC", "n.id DESC"}
}

func (r *NoticeRepository) Search(ctx context.Context, search model.NoticeSearch, page common.PageRequest) ([]model.Notice, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"keyword":     search.Keyword,
		"search_type": search.SearchType,
		"exposable":   search.ExposableOnly,
		"page":        page.Page,
		"size":        page.Size,
	})
	log.Info("Executing query to search notices")

	where := r.searchWhere(search)

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("notices n").Where(where))
	if err != nil {
		log.WithError(err).Error("Failed to count notices")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.selectNotices().Where(where).
		OrderBy(noticeOrder(search.Sort)...).
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		log.WithError(err).Error("Failed to execute search notices query")
		return nil, 0, err
	}
	defer rows.Close()

	notices := make([]model.Notice, 0)
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, err
		}
		notices = append(notices, *n)
	}
	return notices, total, rows.Err()
}

func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*model.Notice, error) {
	log := logger.Log.WithField("notice_id", id)
	log.Info("Executing query to get notice by id")

	row, err := r.queryRow(ctx, r.selectNotices().Where(sq.Eq{"n.id": id}))
	if err != nil {
		return nil, err
	}
	n, err := scanNotice(row)
	if err != nil && err != sql.ErrNoRows {
		log.WithError(err).Error("Failed to execute get notice query")
	}
	return n, err
}

func (r *NoticeRepository) Create(ctx context.Context, tx *sql.Tx, notice *model.Notice) error {
	log := logger.Log.WithField("title", notice.Title)
	log.Info("Executing query to create a notice")

	now := common.Now()
	notice.CreatedAt, notice.UpdatedAt = now, now
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("notices").
		Columns("title", "content", "is_important", "is_published", "exposure_type",
			"exposure_start_at", "exposure_end_at", "category_id", "view_count",
			"created_by", "updated_by", "created_at", "updated_at").
		Values(notice.Title, notice.Content, notice.IsImportant, notice.IsPublished, string(notice.ExposureType),
			nullable(notice.ExposureStartAt), nullable(notice.ExposureEndAt), nullable(notice.CategoryID), 0,
			nullable(notice.CreatedBy), nullable(notice.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create notice query")
		return err
	}
	notice.ID = id
	return nil
}

func (r *NoticeRepository) Update(ctx context.Context, tx *sql.Tx, notice *model.Notice) error {
	log := logger.Log.WithField("notice_id", notice.ID)
	log.Info("Executing query to update a notice")

	notice.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("notices").
		Set("title", notice.Title).
		Set("content", notice.Content).
		Set("is_important", notice.IsImportant).
		Set("is_published", notice.IsPublished).
		Set("exposure_type", string(notice.ExposureType)).
		Set("exposure_start_at", nullable(notice.ExposureStartAt)).
		Set("exposure_end_at", nullable(notice.ExposureEndAt)).
		Set("category_id", nullable(notice.CategoryID)).
		Set("updated_by", nullable(notice.UpdatedBy)).
		Set("updated_at", notice.UpdatedAt).
		Where(sq.Eq{"id": notice.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update notice query")
	}
	return err
}

func (r *NoticeRepository) UpdateContent(ctx context.Context, tx *sql.Tx, id int64, content string) error {
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("notices").Set("content", content).Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("notice_id", id).Error("Failed to update notice content")
	}
	return err
}

func (r *NoticeRepository) UpdateImportant(ctx context.Context, id int64, important bool, updatedBy *int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("notices").
		Set("is_important", important).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("notice_id", id).Error("Failed to update notice importance")
	}
	return err
}

func (r *NoticeRepository) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("notices").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("notice_id", id).Error("Failed to increment notice view count")
	}
	return err
}

func (r *NoticeRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	log := logger.Log.WithField("notice_id", id)
	log.Info("Executing query to delete a notice")

	if _, err := r.exec(ctx, r.runner(tx), r.sb().Delete("notices").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete notice query")
		return err
	}
	return nil
}

func (r *NoticeRepository) neighbour(ctx context.Context, where sq.Sqlizer, order []string, exposableOnly bool, now time.Time) (*model.NoticeNav, error) {
	q := r.sb().Select("n.id", "n.title", "n.created_at").From("notices n").Where(where).OrderBy(order...).Limit(1)
	if exposableOnly {
		q = q.Where(exposable(now))
	}
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}

	nav := &model.NoticeNav{}
	if err := row.Scan(&nav.ID, &nav.Title, &nav.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return nav, nil
}

// Previous returns the next newer notice by (created_at, id), or nil.
func (r *NoticeRepository) Previous(ctx context.Context, notice *model.Notice, exposableOnly bool, now time.Time) (*model.NoticeNav, error) {
	where := sq.Or{
		sq.Gt{"n.created_at": notice.CreatedAt},
		sq.And{sq.Eq{"n.created_at": notice.CreatedAt}, sq.Gt{"n.id": notice.ID}},
	}
	return r.neighbour(ctx, where, []string{"n.created_at ASC", "n.id ASC"}, exposableOnly, now)
}

// Next returns the next older notice by (created_at, id), or nil.
func (r *NoticeRepository) Next(ctx context.Context, notice *model.Notice, exposableOnly bool, now time.Time) (*model.NoticeNav, error) {
	where := sq.Or{
		sq.Lt{"n.created_at": notice.CreatedAt},
		sq.And{sq.Eq{"n.created_at": notice.CreatedAt}, sq.Lt{"n.id": notice.ID}},
	}
	return r.neighbour(ctx, where, []string{"n.created_at DESC", "n.id DESC"}, exposableOnly, now)
}

// StatsByCategory counts published notices per category, largest first.
func (r *NoticeRepository) StatsByCategory(ctx context.Context) ([]model.CategoryStat, error) {
	return categoryStats(ctx, &r.baseRepository, "notices")
}

func categoryStats(ctx context.Context, b *baseRepository, table string) ([]model.CategoryStat, error) {
	rows, err := b.query(ctx, b.sb().Select("c.id", "c.name", "COUNT(*)").
		From(table+" t").
		Join("categories c ON c.id = t.category_id").
		Where(sq.Eq{"t.is_published": true}).
		GroupBy("c.id", "c.name").
		OrderBy("COUNT(*) DESC", "c.name ASC"))
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("Failed to execute category stats query")
		return nil, err
	}
	defer rows.Close()

	stats := make([]model.CategoryStat, 0)
	for rows.Next() {
		var (
			s  model.CategoryStat
			id int64
		)
		if err := rows.Scan(&id, &s.CategoryName, &s.Count); err != nil {
			return nil, err
		}
		s.CategoryID = &id
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
