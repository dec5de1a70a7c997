package repository

import (
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllByMemberID(ctx context.Context, memberID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	baseRepository
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(conn *sql.DB, dialect db.Dialect) *TokenRepository {
	return &TokenRepository{baseRepository: newBase(conn, dialect)}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"member_id":  token.MemberID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	id, err := r.insert(ctx, r.DB, r.sb().Insert("refresh_tokens").
		Columns("member_id", "token_hash", "issued_at", "expires_at", "revoked", "user_agent", "ip_address").
		Values(token.MemberID, token.TokenHash, token.IssuedAt, token.ExpiresAt, false, token.UserAgent, token.IPAddress))
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	token.ID = id
	return nil
}

// GetByTokenHash retrieves a refresh token by its hashed value.
func (r *TokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	log := logger.Log.WithField("token_hash", tokenHash)
	log.Info("Executing query to get refresh token by hash")

	row, err := r.queryRow(ctx, r.sb().
		Select("id", "member_id", "token_hash", "issued_at", "expires_at", "revoked", "user_agent", "ip_address").
		From("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash}))
	if err != nil {
		return nil, err
	}

	token := &model.RefreshToken{}
	var userAgent, ip sql.NullString
	err = row.Scan(&token.ID, &token.MemberID, &token.TokenHash, &token.IssuedAt, &token.ExpiresAt,
		&token.Revoked, &userAgent, &ip)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get refresh token by hash query")
		}
		return nil, err
	}
	token.UserAgent = userAgent.String
	token.IPAddress = ip.String
	return token, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("refresh_tokens").
		Set("revoked", true).
		Where(sq.Eq{"token_hash": tokenHash}))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute revoke refresh token query")
	}
	return err
}

// RevokeAllByMemberID revokes every active refresh token of a member.
// This is used for signing out of all sessions.
func (r *TokenRepository) RevokeAllByMemberID(ctx context.Context, memberID int64) error {
	log := logger.Log.WithField("member_id", memberID)
	log.Info("Executing query to revoke all refresh tokens for a member")

	_, err := r.exec(ctx, r.DB, r.sb().Update("refresh_tokens").
		Set("revoked", true).
		Where(sq.Eq{"member_id": memberID, "revoked": false}))
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh tokens query")
	}
	return err
}

// DeleteExpired removes tokens that expired before the given time.
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.exec(ctx, r.DB, r.sb().Delete("refresh_tokens").Where(sq.Lt{"expires_at": before}))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete expired refresh tokens")
		return 0, err
	}
	return n, nil
}
