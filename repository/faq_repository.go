package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

type IFaqRepository interface {
	Search(ctx context.Context, search model.FaqSearch, page common.PageRequest) ([]model.Faq, int64, error)
	GetByID(ctx context.Context, id int64) (*model.Faq, error)
	Create(ctx context.Context, faq *model.Faq) error
	Update(ctx context.Context, faq *model.Faq) error
	UpdatePublished(ctx context.Context, id int64, published bool, updatedBy *int64) error
	Delete(ctx context.Context, id int64) error
	StatsByCategory(ctx context.Context) ([]model.CategoryStat, error)
}

type FaqRepository struct {
	baseRepository
}

func NewFaqRepository(conn *sql.DB, dialect db.Dialect) *FaqRepository {
	return &FaqRepository{baseRepository: newBase(conn, dialect)}
}

func (r *FaqRepository) selectFaqs() sq.SelectBuilder {
	return r.sb().Select("f.id", "f.category_id", "c.name", "f.title", "f.content", "f.is_published",
		"f.created_by", "f.updated_by", "f.created_at", "f.updated_at").
		From("faqs f").
		Join("categories c ON c.id = f.category_id")
}

func scanFaq(row rowScanner) (*model.Faq, error) {
	var (
		f                    model.Faq
		createdBy, updatedBy sql.NullInt64
	)
	if err := row.Scan(&f.ID, &f.CategoryID, &f.CategoryName, &f.Title, &f.Content, &f.IsPublished,
		&createdBy, &updatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.CreatedBy = int64Ptr(createdBy)
	f.UpdatedBy = int64Ptr(updatedBy)
	return &f, nil
}

func (r *FaqRepository) Search(ctx context.Context, search model.FaqSearch, page common.PageRequest) ([]model.Faq, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"keyword": search.Keyword,
		"page":    page.Page,
		"size":    page.Size,
	})
	log.Info("Executing query to search FAQs")

	where := sq.And{}
	if search.Keyword != "" {
		where = append(where, sq.Or{r.like("f.title", search.Keyword), r.like("f.content", search.Keyword)})
	}
	if search.CategoryID != nil {
		where = append(where, sq.Eq{"f.category_id": *search.CategoryID})
	}
	if search.IsPublished != nil {
		where = append(where, sq.Eq{"f.is_published": *search.IsPublished})
	}

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("faqs f").Where(where))
	if err != nil {
		log.WithError(err).Error("Failed to count FAQs")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.selectFaqs().Where(where).
		OrderBy("f.created_at DESC", "f.id DESC").
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		log.WithError(err).Error("Failed to execute search FAQs query")
		return nil, 0, err
	}
	defer rows.Close()

	faqs := make([]model.Faq, 0)
	for rows.Next() {
		f, err := scanFaq(rows)
		if err != nil {
			return nil, 0, err
		}
		faqs = append(faqs, *f)
	}
	return faqs, total, rows.Err()
}

func (r *FaqRepository) GetByID(ctx context.Context, id int64) (*model.Faq, error) {
	row, err := r.queryRow(ctx, r.selectFaqs().Where(sq.Eq{"f.id": id}))
	if err != nil {
		return nil, err
	}
	f, err := scanFaq(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Log.WithError(err).WithField("faq_id", id).Error("Failed to execute get FAQ query")
	}
	return f, err
}

func (r *FaqRepository) Create(ctx context.Context, faq *model.Faq) error {
	log := logger.Log.WithField("title", faq.Title)
	log.Info("Executing query to create a FAQ")

	now := common.Now()
	faq.CreatedAt, faq.UpdatedAt = now, now
	id, err := r.insert(ctx, r.DB, r.sb().Insert("faqs").
		Columns("category_id", "title", "content", "is_published", "created_by", "updated_by", "created_at", "updated_at").
		Values(faq.CategoryID, faq.Title, faq.Content, faq.IsPublished,
			nullable(faq.CreatedBy), nullable(faq.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create FAQ query")
		return err
	}
	faq.ID = id
	return nil
}

func (r *FaqRepository) Update(ctx context.Context, faq *model.Faq) error {
	log := logger.Log.WithField("faq_id", faq.ID)
	log.Info("Executing query to update a FAQ")

	faq.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("faqs").
		Set("category_id", faq.CategoryID).
		Set("title", faq.Title).
		Set("content", faq.Content).
		Set("is_published", faq.IsPublished).
		Set("updated_by", nullable(faq.UpdatedBy)).
		Set("updated_at", faq.UpdatedAt).
		Where(sq.Eq{"id": faq.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update FAQ query")
	}
	return err
}

func (r *FaqRepository) UpdatePublished(ctx context.Context, id int64, published bool, updatedBy *int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("faqs").
		Set("is_published", published).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("faq_id", id).Error("Failed to update FAQ publish state")
	}
	return err
}

func (r *FaqRepository) Delete(ctx context.Context, id int64) error {
	log := logger.Log.WithField("faq_id", id)
	log.Info("Executing query to delete a FAQ")

	if _, err := r.exec(ctx, r.DB, r.sb().Delete("faqs").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete FAQ query")
		return err
	}
	return nil
}

// StatsByCategory counts published FAQs per category, largest first.
func (r *FaqRepository) StatsByCategory(ctx context.Context) ([]model.CategoryStat, error) {
	return categoryStats(ctx, &r.baseRepository, "faqs")
}
