package model

import "time"

type MemberRole string

const (
	RoleUser       MemberRole = "USER"
	RoleAdmin      MemberRole = "ADMIN"
	RoleSuperAdmin MemberRole = "SUPER_ADMIN"
)

func (r MemberRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperAdmin
}

// IsAdmin reports whether the role may use the admin API.
func (r MemberRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type MemberStatus string

const (
	StatusActive    MemberStatus = "ACTIVE"
	StatusSuspended MemberStatus = "SUSPENDED"
	StatusDeleted   MemberStatus = "DELETED"
)

func (s MemberStatus) IsValid() bool {
	return s == StatusActive || s == StatusSuspended || s == StatusDeleted
}

type Member struct {
	ID                int64        `json:"id"`
	Username          string       `json:"username"`
	PasswordHash      string       `json:"-"`
	MemberName        string       `json:"memberName"`
	PhoneNumber       string       `json:"phoneNumber"`
	EmailAddress      *string      `json:"emailAddress,omitempty"`
	EmailVerified     bool         `json:"isEmailVerified"`
	PhoneVerified     bool         `json:"isPhoneVerified"`
	Role              MemberRole   `json:"role"`
	Status            MemberStatus `json:"status"`
	Locked            bool         `json:"locked"`
	Memo              *string      `json:"memo,omitempty"`
	LastLoginAt       *time.Time   `json:"lastLoginAt,omitempty"`
	PasswordChangedAt *time.Time   `json:"passwordChangedAt,omitempty"`
	SuspendedAt       *time.Time   `json:"suspendedAt,omitempty"`
	CreatedBy         *int64       `json:"createdBy,omitempty"`
	UpdatedBy         *int64       `json:"updatedBy,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// MemberSummary is the member part of a sign-in response.
type MemberSummary struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	MemberName string     `json:"memberName"`
	Role       MemberRole `json:"role"`
}

func (m *Member) Summary() MemberSummary {
	return MemberSummary{ID: m.ID, Username: m.Username, MemberName: m.MemberName, Role: m.Role}
}

type MemberSearch struct {
	Keyword string
	Role    *MemberRole
	Status  *MemberStatus
}
