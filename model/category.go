package model

import "time"

type CategoryGroup struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	CategoryCount int64     `json:"categoryCount"`
	CreatedBy     *int64    `json:"createdBy,omitempty"`
	UpdatedBy     *int64    `json:"updatedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Category struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"categoryGroupId"`
	GroupName   string    `json:"categoryGroupName,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	CreatedBy   *int64    `json:"createdBy,omitempty"`
	UpdatedBy   *int64    `json:"updatedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryGroupCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// CategoryGroupUpdateRequest leaves nil fields unchanged.
type CategoryGroupUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type CategoryCreateRequest struct {
	GroupID     int64   `json:"categoryGroupId" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=120"`
	Slug        string  `json:"slug" validate:"required,max=150"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	SortOrder   *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

// CategoryUpdateRequest leaves nil fields unchanged.
type CategoryUpdateRequest struct {
	GroupID     *int64  `json:"categoryGroupId" validate:"omitempty,gt=0"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	SortOrder   *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

// CategoryStat counts rows per category name.
type CategoryStat struct {
	CategoryID   *int64 `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Count        int64  `json:"count"`
}
