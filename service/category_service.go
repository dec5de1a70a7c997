package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

type CategoryService struct {
	groupRepo    repository.ICategoryGroupRepository
	categoryRepo repository.ICategoryRepository
}

func NewCategoryService(groupRepo repository.ICategoryGroupRepository, categoryRepo repository.ICategoryRepository) *CategoryService {
	return &CategoryService{groupRepo: groupRepo, categoryRepo: categoryRepo}
}

func (s *CategoryService) ListGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	return s.groupRepo.List(ctx)
}

func (s *CategoryService) GetGroup(ctx context.Context, id int64) (*model.CategoryGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCategoryGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *CategoryService) CreateGroup(ctx context.Context, req model.CategoryGroupCreateRequest, actorID int64) (*model.CategoryGroup, error) {
	name := strings.TrimSpace(req.Name)
	exists, err := s.groupRepo.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrCategoryGroupExists
	}

	group := &model.CategoryGroup{
		Name:        name,
		Description: req.Description,
		CreatedBy:   &actorID,
		UpdatedBy:   &actorID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	logger.Log.WithField("group_id", group.ID).Info("Category group created")
	return group, nil
}

func (s *CategoryService) UpdateGroup(ctx context.Context, id int64, req model.CategoryGroupUpdateRequest, actorID int64) (*model.CategoryGroup, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != group.Name {
			exists, err := s.groupRepo.ExistsByName(ctx, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, common.ErrCategoryGroupExists
			}
			group.Name = name
		}
	}
	if req.Description != nil {
		group.Description = req.Description
	}
	group.UpdatedBy = &actorID

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup refuses groups that still hold categories.
func (s *CategoryService) DeleteGroup(ctx context.Context, id int64) error {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}
	n, err := s.categoryRepo.CountByGroup(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Log.WithFields(logrus.Fields{"group_id": id, "categories": n}).Warn("Category group delete refused")
		return common.ErrCategoryGroupHasChildren
	}
	return s.groupRepo.Delete(ctx, id)
}

func (s *CategoryService) ListAll(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

func (s *CategoryService) ListByGroup(ctx context.Context, groupID int64) ([]model.Category, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByGroup(ctx, groupID)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Create appends the category to the group when no positive sort order is
// given.
func (s *CategoryService) Create(ctx context.Context, req model.CategoryCreateRequest, actorID int64) (*model.Category, error) {
	group, err := s.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(req.Slug)
	if !common.IsValidSlug(slug) {
		return nil, common.ErrInvalidSlugFormat
	}
	exists, err := s.categoryRepo.ExistsBySlug(ctx, group.ID, slug, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrCategorySlugExists
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	if sortOrder <= 0 {
		max, err := s.categoryRepo.MaxSortOrder(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		sortOrder = max + 1
	}

	category := &model.Category{
		GroupID:     group.ID,
		GroupName:   group.Name,
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		SortOrder:   sortOrder,
		CreatedBy:   &actorID,
		UpdatedBy:   &actorID,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{"category_id": category.ID, "group_id": group.ID}).Info("Category created")
	return category, nil
}

// Update applies non-nil fields. Slug uniqueness is checked in the target
// group.
func (s *CategoryService) Update(ctx context.Context, id int64, req model.CategoryUpdateRequest, actorID int64) (*model.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.GroupID != nil && *req.GroupID != category.GroupID {
		group, err := s.GetGroup(ctx, *req.GroupID)
		if err != nil {
			return nil, err
		}
		category.GroupID = group.ID
		category.GroupName = group.Name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !common.IsValidSlug(slug) {
			return nil, common.ErrInvalidSlugFormat
		}
		category.Slug = slug
	}
	if req.Slug != nil || req.GroupID != nil {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, category.GroupID, category.Slug, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrCategorySlugExists
		}
	}
	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	category.UpdatedBy = &actorID

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses categories referenced by notices or FAQs.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	refs, err := s.categoryRepo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return common.ErrCategoryHasRelatedData
	}
	return s.categoryRepo.Delete(ctx, id)
}
