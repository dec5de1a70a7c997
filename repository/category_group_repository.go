package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type ICategoryGroupRepository interface {
	List(ctx context.Context) ([]model.CategoryGroup, error)
	GetByID(ctx context.Context, id int64) (*model.CategoryGroup, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, group *model.CategoryGroup) error
	Update(ctx context.Context, group *model.CategoryGroup) error
	Delete(ctx context.Context, id int64) error
}

type CategoryGroupRepository struct {
	baseRepository
}

func NewCategoryGroupRepository(conn *sql.DB, dialect db.Dialect) *CategoryGroupRepository {
	return &CategoryGroupRepository{baseRepository: newBase(conn, dialect)}
}

func (r *CategoryGroupRepository) selectGroups() sq.SelectBuilder {
	return r.sb().Select("g.id", "g.name", "g.description",
		"(SELECT COUNT(*) FROM categories c WHERE c.category_group_id = g.id)",
		"g.created_by", "g.updated_by", "g.created_at", "g.updated_at").
		From("category_groups g")
}

func scanGroup(row rowScanner) (*model.CategoryGroup, error) {
	var (
		g                    model.CategoryGroup
		description          sql.NullString
		createdBy, updatedBy sql.NullInt64
	)
	if err := row.Scan(&g.ID, &g.Name, &description, &g.CategoryCount,
		&createdBy, &updatedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Description = stringPtr(description)
	g.CreatedBy = int64Ptr(createdBy)
	g.UpdatedBy = int64Ptr(updatedBy)
	return &g, nil
}

// List returns every group, newest first.
func (r *CategoryGroupRepository) List(ctx context.Context) ([]model.CategoryGroup, error) {
	logger.Log.Info("Executing query to list category groups")

	rows, err := r.query(ctx, r.selectGroups().OrderBy("g.created_at DESC", "g.id DESC"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list category groups query")
		return nil, err
	}
	defer rows.Close()

	groups := make([]model.CategoryGroup, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (r *CategoryGroupRepository) GetByID(ctx context.Context, id int64) (*model.CategoryGroup, error) {
	row, err := r.queryRow(ctx, r.selectGroups().Where(sq.Eq{"g.id": id}))
	if err != nil {
		return nil, err
	}
	g, err := scanGroup(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Log.WithError(err).WithField("group_id", id).Error("Failed to execute get category group query")
	}
	return g, err
}

// ExistsByName checks name uniqueness, ignoring excludeID when positive.
func (r *CategoryGroupRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := r.sb().Select("COUNT(*)").From("category_groups").Where(sq.Eq{"name": name})
	if excludeID > 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	return r.exists(ctx, q)
}

func (r *CategoryGroupRepository) Create(ctx context.Context, group *model.CategoryGroup) error {
	log := logger.Log.WithField("name", group.Name)
	log.Info("Executing query to create a category group")

	now := common.Now()
	group.CreatedAt, group.UpdatedAt = now, now
	id, err := r.insert(ctx, r.DB, r.sb().Insert("category_groups").
		Columns("name", "description", "created_by", "updated_by", "created_at", "updated_at").
		Values(group.Name, nullable(group.Description), nullable(group.CreatedBy), nullable(group.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create category group query")
		return err
	}
	group.ID = id
	return nil
}

func (r *CategoryGroupRepository) Update(ctx context.Context, group *model.CategoryGroup) error {
	log := logger.Log.WithField("group_id", group.ID)
	log.Info("Executing query to update a category group")

	group.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("category_groups").
		Set("name", group.Name).
		Set("description", nullable(group.Description)).
		Set("updated_by", nullable(group.UpdatedBy)).
		Set("updated_at", group.UpdatedAt).
		Where(sq.Eq{"id": group.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update category group query")
	}
	return err
}

func (r *CategoryGroupRepository) Delete(ctx context.Context, id int64) error {
	log := logger.Log.WithField("group_id", id)
	log.Info("Executing query to delete a category group")

	if _, err := r.exec(ctx, r.DB, r.sb().Delete("category_groups").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete category group query")
		return err
	}
	return nil
}
