package model

import "github.com/golang-jwt/jwt/v5"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeQnaView = "qna_view"
)

// AppClaims carries the member id in the subject claim.
type AppClaims struct {
	Username   string     `json:"username"`
	Role       MemberRole `json:"role,omitempty"`
	MemberName string     `json:"memberName,omitempty"`
	TokenType  string     `json:"tokenType"`
	jwt.RegisteredClaims
}
