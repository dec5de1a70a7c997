package model

import "time"

// RefreshToken is a stored refresh token. Only the SHA-256 hash of the token
// is persisted.
type RefreshToken struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"memberId"`
	TokenHash string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
}

func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

type TokenPair struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	Member       MemberSummary `json:"member"`
}
