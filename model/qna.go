package model

import "time"

type QnaQuestion struct {
	ID             int64      `json:"id"`
	AuthorName     string     `json:"authorName"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	PasswordHash   string     `json:"-"`
	Title          string     `json:"title"`
	Content        string     `json:"content,omitempty"`
	IsSecret       bool       `json:"isSecret"`
	IsPinned       bool       `json:"isPinned"`
	IsPublished    bool       `json:"isPublished"`
	ViewCount      int64      `json:"viewCount"`
	IsAnswered     bool       `json:"isAnswered"`
	AnsweredAt     *time.Time `json:"answeredAt,omitempty"`
	PrivacyConsent bool       `json:"privacyConsent"`
	IPAddress      string     `json:"ipAddress,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Public strips the contact fields only staff may see.
func (q QnaQuestion) Public() QnaQuestion {
	q.PhoneNumber = ""
	q.IPAddress = ""
	return q
}

type QnaAnswer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionId"`
	AdminName  string    `json:"adminName"`
	Content    string    `json:"content"`
	CreatedBy  *int64    `json:"createdBy,omitempty"`
	UpdatedBy  *int64    `json:"updatedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type QnaNav struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	IsSecret  bool      `json:"isSecret"`
	CreatedAt time.Time `json:"createdAt"`
}

type QnaDetail struct {
	QnaQuestion
	Answer   *QnaAnswer `json:"answer"`
	Previous *QnaNav    `json:"previous"`
	Next     *QnaNav    `json:"next"`
}

type QnaSearch struct {
	Keyword       string
	IsAnswered    *bool
	IsSecret      *bool
	IsPublished   *bool
	PublishedOnly bool
	From          *time.Time
	To            *time.Time
}

type QnaStatistics struct {
	Total      int64 `json:"totalCount"`
	Answered   int64 `json:"answeredCount"`
	Unanswered int64 `json:"unansweredCount"`
}

type QnaCreateRequest struct {
	AuthorName     string `json:"authorName" validate:"required,max=50,person_name"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,mobile"`
	Password       string `json:"password" validate:"required,min=4,max=20"`
	Title          string `json:"title" validate:"required,max=255"`
	Content        string `json:"content" validate:"required"`
	IsSecret       bool   `json:"isSecret"`
	PrivacyConsent bool   `json:"privacyConsent"`
}

type QnaUpdateRequest struct {
	Password string `json:"password" validate:"required"`
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
	IsSecret bool   `json:"isSecret"`
}

type QnaPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type QnaViewToken struct {
	ViewToken string `json:"viewToken"`
	ExpiresIn int64  `json:"expiresIn"`
}

type QnaStatusRequest struct {
	IsPinned    *bool `json:"isPinned"`
	IsPublished *bool `json:"isPublished"`
}

type QnaAnswerRequest struct {
	Content string `json:"content" validate:"required"`
}
