package model

import (
	"encoding/json"
	"time"
)

type AdminLoginFailReason string

const (
	LoginFailInvalidPassword  AdminLoginFailReason = "INVALID_PASSWORD"
	LoginFailAccountSuspended AdminLoginFailReason = "ACCOUNT_SUSPENDED"
	LoginFailAccountLocked    AdminLoginFailReason = "ACCOUNT_LOCKED"
	LoginFailAccountDeleted   AdminLoginFailReason = "ACCOUNT_DELETED"
)

type AdminLoginHistory struct {
	ID            int64                 `json:"id"`
	AdminID       *int64                `json:"adminId,omitempty"`
	AdminUsername string                `json:"adminUsername"`
	Success       bool                  `json:"success"`
	FailReason    *AdminLoginFailReason `json:"failReason,omitempty"`
	IPAddress     string                `json:"ipAddress"`
	UserAgent     string                `json:"userAgent"`
	LoggedInAt    time.Time             `json:"loggedInAt"`
}

type AdminActionType string

const (
	ActionCreate AdminActionType = "CREATE"
	ActionUpdate AdminActionType = "UPDATE"
	ActionDelete AdminActionType = "DELETE"
	ActionStatus AdminActionType = "STATUS_CHANGE"
	ActionExport AdminActionType = "EXPORT"
)

func (t AdminActionType) IsValid() bool {
	switch t {
	case ActionCreate, ActionUpdate, ActionDelete, ActionStatus, ActionExport:
		return true
	}
	return false
}

type AdminTargetType string

const (
	TargetMember        AdminTargetType = "MEMBER"
	TargetCategoryGroup AdminTargetType = "CATEGORY_GROUP"
	TargetCategory      AdminTargetType = "CATEGORY"
	TargetNotice        AdminTargetType = "NOTICE"
	TargetFaq           AdminTargetType = "FAQ"
	TargetApplication   AdminTargetType = "APPLY_APPLICATION"
	TargetQna           AdminTargetType = "QNA"
	TargetFile          AdminTargetType = "FILE"
)

// AdminActionLog records one successful admin mutation. ActionDetail holds
// request facts such as the matched route and query string.
type AdminActionLog struct {
	ID            int64           `json:"id"`
	AdminID       int64           `json:"adminId"`
	AdminUsername string          `json:"adminUsername"`
	ActionType    AdminActionType `json:"actionType"`
	TargetType    AdminTargetType `json:"targetType"`
	TargetID      *int64          `json:"targetId,omitempty"`
	ActionDetail  json.RawMessage `json:"actionDetail,omitempty" swaggertype:"object"`
	HTTPMethod    string          `json:"httpMethod"`
	RequestPath   string          `json:"requestPath"`
	StatusCode    int             `json:"statusCode"`
	IPAddress     string          `json:"ipAddress"`
	UserAgent     string          `json:"userAgent"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type AdminLoginSearch struct {
	AdminUsername string
	Success       *bool
	From          *time.Time
	To            *time.Time
}

type AdminActionSearch struct {
	AdminID    *int64
	ActionType *AdminActionType
	TargetType *AdminTargetType
	TargetID   *int64
	From       *time.Time
	To         *time.Time
}
