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

type ICategoryRepository interface {
	ListAll(ctx context.Context) ([]model.Category, error)
	ListByGroup(ctx context.Context, groupID int64) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	CountByGroup(ctx context.Context, groupID int64) (int64, error)
	ExistsBySlug(ctx context.Context, groupID int64, slug string, excludeID int64) (bool, error)
	MaxSortOrder(ctx context.Context, groupID int64) (int, error)
	CountReferences(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository struct {
	baseRepository
}

func NewCategoryRepository(conn *sql.DB, dialect db.Dialect) *CategoryRepository {
	return &CategoryRepository{baseRepository: newBase(conn, dialect)}
}

func (r *CategoryRepository) selectCategories() sq.SelectBuilder {
	return r.sb().Select("c.id", "c.category_group_id", "g.name", "c.name", "c.slug", "c.description",
		"c.sort_order", "c.created_by", "c.updated_by", "c.created_at", "c.updated_at").
		From("categories c").
		Join("category_groups g ON g.id = c.category_group_id")
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		c                    model.Category
		description          sql.NullString
		createdBy, updatedBy sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.GroupID, &c.GroupName, &c.Name, &c.Slug, &description,
		&c.SortOrder, &createdBy, &updatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = stringPtr(description)
	c.CreatedBy = int64Ptr(createdBy)
	c.UpdatedBy = int64Ptr(updatedBy)
	return &c, nil
}

func (r *CategoryRepository) list(ctx context.Context, q sq.SelectBuilder) ([]model.Category, error) {
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// ListAll orders by group name, then sort order and creation time.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	logger.Log.Info("Executing query to list all categories")

	categories, err := r.list(ctx, r.selectCategories().OrderBy("g.name ASC", "c.sort_order ASC", "c.created_at ASC"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list categories query")
	}
	return categories, err
}

func (r *CategoryRepository) ListByGroup(ctx context.Context, groupID int64) ([]model.Category, error) {
	log := logger.Log.WithField("group_id", groupID)
	log.Info("Executing query to list categories of a group")

	categories, err := r.list(ctx, r.selectCategories().
		Where(sq.Eq{"c.category_group_id": groupID}).
		OrderBy("c.sort_order ASC", "c.created_at ASC"))
	if err != nil {
		log.WithError(err).Error("Failed to execute list categories by group query")
	}
	return categories, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	row, err := r.queryRow(ctx, r.selectCategories().Where(sq.Eq{"c.id": id}))
	if err != nil {
		return nil, err
	}
	c, err := scanCategory(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Log.WithError(err).WithField("category_id", id).Error("Failed to execute get category query")
	}
	return c, err
}

func (r *CategoryRepository) CountByGroup(ctx context.Context, groupID int64) (int64, error) {
	return r.count(ctx, r.sb().Select("COUNT(*)").From("categories").Where(sq.Eq{"category_group_id": groupID}))
}

func (r *CategoryRepository) ExistsBySlug(ctx context.Context, groupID int64, slug string, excludeID int64) (bool, error) {
	q := r.sb().Select("COUNT(*)").From("categories").
		Where(sq.Eq{"category_group_id": groupID, "slug": slug})
	if excludeID > 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	return r.exists(ctx, q)
}

// MaxSortOrder returns 0 for an empty group.
func (r *CategoryRepository) MaxSortOrder(ctx context.Context, groupID int64) (int, error) {
	n, err := r.count(ctx, r.sb().Select("COALESCE(MAX(sort_order), 0)").From("categories").
		Where(sq.Eq{"category_group_id": groupID}))
	return int(n), err
}

// CountReferences counts notices and FAQs pointing at the category.
func (r *CategoryRepository) CountReferences(ctx context.Context, id int64) (int64, error) {
	notices, err := r.count(ctx, r.sb().Select("COUNT(*)").From("notices").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return 0, err
	}
	faqs, err := r.count(ctx, r.sb().Select("COUNT(*)").From("faqs").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return 0, err
	}
	return notices + faqs, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	log := logger.Log.WithFields(logrus.Fields{
		"group_id": category.GroupID,
		"slug":     category.Slug,
	})
	log.Info("Executing query to create a category")

	now := common.Now()
	category.CreatedAt, category.UpdatedAt = now, now
	id, err := r.insert(ctx, r.DB, r.sb().Insert("categories").
		Columns("category_group_id", "name", "slug", "description", "sort_order",
			"created_by", "updated_by", "created_at", "updated_at").
		Values(category.GroupID, category.Name, category.Slug, nullable(category.Description), category.SortOrder,
			nullable(category.CreatedBy), nullable(category.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create category query")
		return err
	}
	category.ID = id
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	log := logger.Log.WithField("category_id", category.ID)
	log.Info("Executing query to update a category")

	category.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("categories").
		Set("category_group_id", category.GroupID).
		Set("name", category.Name).
		Set("slug", category.Slug).
		Set("description", nullable(category.Description)).
		Set("sort_order", category.SortOrder).
		Set("updated_by", nullable(category.UpdatedBy)).
		Set("updated_at", category.UpdatedAt).
		Where(sq.Eq{"id": category.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update category query")
	}
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	log := logger.Log.WithField("category_id", id)
	log.Info("Executing query to delete a category")

	if _, err := r.exec(ctx, r.DB, r.sb().Delete("categories").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete category query")
		return err
	}
	return nil
}
