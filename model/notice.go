package model

import "time"

type ExposureType string

const (
	ExposureAlways ExposureType = "ALWAYS"
	ExposurePeriod ExposureType = "PERIOD"
)

type NoticeSearchType string

const (
	SearchTitle   NoticeSearchType = "TITLE"
	SearchContent NoticeSearchType = "CONTENT"
	SearchAuthor  NoticeSearchType = "AUTHOR"
	SearchAll     NoticeSearchType = "ALL"
)

func (t NoticeSearchType) IsValid() bool {
	switch t {
	case SearchTitle, SearchContent, SearchAuthor, SearchAll:
		return true
	}
	return false
}

type NoticeSort string

const (
	SortCreatedDesc    NoticeSort = "CREATED_DESC"
	SortCreatedAsc     NoticeSort = "CREATED_ASC"
	SortImportantFirst NoticeSort = "IMPORTANT_FIRST"
	SortViewCountDesc  NoticeSort = "VIEW_COUNT_DESC"
)

type Notice struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Content          string       `json:"content,omitempty"`
	IsImportant      bool         `json:"isImportant"`
	IsPublished      bool         `json:"isPublished"`
	ExposureType     ExposureType `json:"exposureType"`
	ExposureStartAt  *time.Time   `json:"exposureStartAt,omitempty"`
	ExposureEndAt    *time.Time   `json:"exposureEndAt,omitempty"`
	CategoryID       *int64       `json:"categoryId,omitempty"`
	CategoryName     *string      `json:"categoryName,omitempty"`
	ViewCount        int64        `json:"viewCount"`
	Exposable        bool         `json:"exposable"`
	AttachmentCount  int64        `json:"attachmentCount"`
	InlineImageCount int64        `json:"inlineImageCount"`
	CreatedBy        *int64       `json:"createdBy,omitempty"`
	CreatedByName    string       `json:"createdByName"`
	UpdatedBy        *int64       `json:"updatedBy,omitempty"`
	UpdatedByName    string       `json:"updatedByName"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// IsExposable reports whether the notice is visible to the public at now.
// Open period bounds are treated as satisfied.
func (n *Notice) IsExposable(now time.Time) bool {
	if !n.IsPublished {
		return false
	}
	if n.ExposureType != ExposurePeriod {
		return true
	}
	if n.ExposureStartAt != nil && now.Before(*n.ExposureStartAt) {
		return false
	}
	if n.ExposureEndAt != nil && now.After(*n.ExposureEndAt) {
		return false
	}
	return true
}

// PeriodEnded reports whether a PERIOD notice's window closed before now.
func (n *Notice) PeriodEnded(now time.Time) bool {
	return n.ExposureType == ExposurePeriod && n.ExposureEndAt != nil && n.ExposureEndAt.Before(now)
}

// MakePermanent switches the notice to ALWAYS exposure.
func (n *Notice) MakePermanent() {
	n.ExposureType = ExposureAlways
	n.ExposureStartAt = nil
	n.ExposureEndAt = nil
}

type NoticeNav struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type NoticeDetail struct {
	Notice
	Attachments  []LinkedFile `json:"attachments"`
	InlineImages []LinkedFile `json:"inlineImages"`
	Previous     *NoticeNav   `json:"previous"`
	Next         *NoticeNav   `json:"next"`
}

// NoticeSearch filters notice lists. AuthorIDs is resolved by the service for
// AUTHOR searches.
type NoticeSearch struct {
	Keyword       string
	SearchType    NoticeSearchType
	CategoryID    *int64
	IsImportant   *bool
	IsPublished   *bool
	ExposureType  *ExposureType
	ExposableOnly bool
	Sort          NoticeSort
	AuthorIDs     []int64
	Now           time.Time
}

type NoticeCreateRequest struct {
	Title           string          `json:"title" validate:"required,max=255"`
	Content         string          `json:"content" validate:"required"`
	IsImportant     bool            `json:"isImportant"`
	IsPublished     *bool           `json:"isPublished"`
	ExposureType    ExposureType    `json:"exposureType" validate:"omitempty,oneof=ALWAYS PERIOD"`
	ExposureStartAt *time.Time      `json:"exposureStartAt"`
	ExposureEndAt   *time.Time      `json:"exposureEndAt"`
	CategoryID      *int64          `json:"categoryId" validate:"omitempty,gt=0"`
	Attachments     []FileReference `json:"attachments" validate:"omitempty,dive"`
	InlineImages    []FileReference `json:"inlineImages" validate:"omitempty,dive"`
}

type NoticeUpdateRequest struct {
	Title                string          `json:"title" validate:"required,max=255"`
	Content              string          `json:"content" validate:"required"`
	IsImportant          bool            `json:"isImportant"`
	IsPublished          *bool           `json:"isPublished"`
	ExposureType         ExposureType    `json:"exposureType" validate:"omitempty,oneof=ALWAYS PERIOD"`
	ExposureStartAt      *time.Time      `json:"exposureStartAt"`
	ExposureEndAt        *time.Time      `json:"exposureEndAt"`
	CategoryID           *int64          `json:"categoryId" validate:"omitempty,gt=0"`
	NewAttachments       []FileReference `json:"newAttachments" validate:"omitempty,dive"`
	NewInlineImages      []FileReference `json:"newInlineImages" validate:"omitempty,dive"`
	DeleteAttachmentIDs  []int64         `json:"deleteAttachmentFileIds"`
	DeleteInlineImageIDs []int64         `json:"deleteInlineImageFileIds"`
}

type NoticePublishRequest struct {
	IsPublished   bool `json:"isPublished"`
	MakePermanent bool `json:"makePermanent"`
}
