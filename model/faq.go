package model

import "time"

type Faq struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	IsPublished   bool      `json:"isPublished"`
	CreatedBy     *int64    `json:"createdBy,omitempty"`
	CreatedByName string    `json:"createdByName"`
	UpdatedBy     *int64    `json:"updatedBy,omitempty"`
	UpdatedByName string    `json:"updatedByName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type FaqSearch struct {
	Keyword     string
	CategoryID  *int64
	IsPublished *bool
}

type FaqRequest struct {
	CategoryID  int64  `json:"categoryId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	IsPublished *bool  `json:"isPublished"`
}

type PublishRequest struct {
	IsPublished bool `json:"isPublished"`
}
