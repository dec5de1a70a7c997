package service

import (
	"academy-api/common"
	"academy-api/config"
	"academy-api/logger"
	"academy-api/metrics"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var passwordCost = 12

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

func accessTTL() time.Duration {
	if m := config.AppConfig.JWT.AccessExpireMinutes; m > 0 {
		return time.Duration(m) * time.Minute
	}
	return 15 * time.Minute
}

func refreshTTL() time.Duration {
	if d := config.AppConfig.JWT.RefreshExpireDays; d > 0 {
		return time.Duration(d) * 24 * time.Hour
	}
	return 14 * 24 * time.Hour
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashToken returns the hex SHA-256 of a refresh token, the form it is
// stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LoginRecorder receives sign-in attempts on admin accounts.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, entry model.AdminLoginHistory)
}

type AuthService struct {
	memberRepo repository.IMemberRepository
	tokenRepo  repository.ITokenRepository
	logins     LoginRecorder
}

func NewAuthService(memberRepo repository.IMemberRepository, tokenRepo repository.ITokenRepository) *AuthService {
	return &AuthService{memberRepo: memberRepo, tokenRepo: tokenRepo}
}

// WithLoginRecorder makes SignIn report admin sign-in attempts to r.
func (s *AuthService) WithLoginRecorder(r LoginRecorder) *AuthService {
	s.logins = r
	return s
}

// recordAdminLogin reports the attempt when member is an admin account.
func (s *AuthService) recordAdminLogin(ctx context.Context, member *model.Member, reason *model.AdminLoginFailReason, userAgent, ip string) {
	if s.logins == nil || !member.Role.IsAdmin() {
		return
	}
	id := member.ID
	s.logins.RecordLogin(ctx, model.AdminLoginHistory{
		AdminID:       &id,
		AdminUsername: member.Username,
		Success:       reason == nil,
		FailReason:    reason,
		IPAddress:     ip,
		UserAgent:     userAgent,
	})
}

func loginFailReason(err error) model.AdminLoginFailReason {
	switch {
	case errors.Is(err, common.ErrAccountLocked):
		return model.LoginFailAccountLocked
	case errors.Is(err, common.ErrAccountDeleted):
		return model.LoginFailAccountDeleted
	}
	return model.LoginFailAccountSuspended
}

func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.Member, error) {
	log := logger.Log.WithField("username", req.Username)

	exists, err := s.memberRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Warn("Sign-up rejected: username already in use")
		return nil, common.ErrMemberUsernameDuplicate
	}

	var email *string
	if e := strings.TrimSpace(req.EmailAddress); e != "" {
		exists, err := s.memberRepo.ExistsByEmail(ctx, e)
		if err != nil {
			return nil, err
		}
		if exists {
			log.Warn("Sign-up rejected: email already in use")
			return nil, common.ErrMemberEmailDuplicate
		}
		email = &e
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	role := model.RoleUser
	if strings.EqualFold(req.Role, string(model.RoleAdmin)) {
		role = model.RoleAdmin
	}

	member := &model.Member{
		Username:     req.Username,
		PasswordHash: hash,
		MemberName:   req.MemberName,
		PhoneNumber:  req.PhoneNumber,
		EmailAddress: email,
		Role:         role,
		Status:       model.StatusActive,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("could not create member: %w", err)
	}

	log.WithField("member_id", member.ID).Info("Member signed up")
	return member, nil
}

func checkMemberUsable(m *model.Member) error {
	switch m.Status {
	case model.StatusSuspended:
		return common.ErrAccountSuspended
	case model.StatusDeleted:
		return common.ErrAccountDeleted
	}
	if m.Locked {
		return common.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest, userAgent, ip string) (*model.TokenPair, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"username": req.Username,
		"ip":       ip,
	})

	member, err := s.memberRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Sign-in failed: unknown username")
			metrics.SignInTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := checkMemberUsable(member); err != nil {
		log.WithField("status", member.Status).Warn("Sign-in refused for unusable account")
		metrics.SignInTotal.WithLabelValues("refused").Inc()
		reason := loginFailReason(err)
		s.recordAdminLogin(ctx, member, &reason, userAgent, ip)
		return nil, err
	}

	if !CheckPasswordHash(req.Password, member.PasswordHash) {
		log.Warn("Sign-in failed: wrong password")
		metrics.SignInTotal.WithLabelValues("invalid_credentials").Inc()
		reason := model.LoginFailInvalidPassword
		s.recordAdminLogin(ctx, member, &reason, userAgent, ip)
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, member, userAgent, ip)
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateLastLogin(ctx, member.ID); err != nil {
		log.WithError(err).Warn("Could not record last login")
	}

	s.recordAdminLogin(ctx, member, nil, userAgent, ip)
	metrics.SignInTotal.WithLabelValues("success").Inc()
	log.WithField("member_id", member.ID).Info("Member signed in")
	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*model.TokenPair, error) {
	claims, err := parseToken(refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrRefreshTokenNotFound
	}
	if claims.TokenType != model.TokenTypeRefresh {
		return nil, common.ErrRefreshTokenNotFound
	}

	hash := HashToken(refreshToken)
	stored, err := s.tokenRepo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	if stored.Revoked {
		logger.Log.WithField("member_id", stored.MemberID).Warn("Revoked refresh token presented")
		return nil, common.ErrRefreshTokenNotFound
	}
	if !stored.IsValid(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	member, err := s.memberRepo.GetByID(ctx, stored.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMemberNotFound
		}
		return nil, err
	}
	if err := checkMemberUsable(member); err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Revoke(ctx, hash); err != nil {
		return nil, fmt.Errorf("could not revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, member, userAgent, ip)
}

// SignOut revokes the given refresh token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.Revoke(ctx, HashToken(refreshToken))
}

func (s *AuthService) Me(ctx context.Context, memberID int64) (*model.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// ChangePassword revokes every refresh token of the member on success.
func (s *AuthService) ChangePassword(ctx context.Context, memberID int64, req model.ChangePasswordRequest) error {
	member, err := s.Me(ctx, memberID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(req.CurrentPassword, member.PasswordHash) {
		return common.ErrMemberPasswordMismatch
	}
	if req.CurrentPassword == req.NewPassword {
		return common.ErrMemberSamePassword
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	if err := s.memberRepo.UpdatePassword(ctx, memberID, hash, &memberID); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllByMemberID(ctx, memberID); err != nil {
		return err
	}

	logger.Log.WithField("member_id", memberID).Info("Member changed password")
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, member *model.Member, userAgent, ip string) (*model.TokenPair, error) {
	access, err := GenerateAccessToken(member)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := GenerateRefreshToken(member)
	if err != nil {
		return nil, err
	}

	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	err = s.tokenRepo.Create(ctx, &model.RefreshToken{
		MemberID:  member.ID,
		TokenHash: HashToken(refresh),
		IssuedAt:  common.Now(),
		ExpiresAt: expiresAt,
		UserAgent: userAgent,
		IPAddress: ip,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTTL().Seconds()),
		Member:       member.Summary(),
	}, nil
}

func sign(claims *model.AppClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("subject", claims.Subject).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

func GenerateAccessToken(member *model.Member) (string, error) {
	now := time.Now()
	return sign(&model.AppClaims{
		Username:   member.Username,
		Role:       member.Role,
		MemberName: member.MemberName,
		TokenType:  model.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(member.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL())),
		},
	})
}

// GenerateRefreshToken signs a refresh token with a unique id so tokens
// issued within the same second still hash differently.
func GenerateRefreshToken(member *model.Member) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(refreshTTL()).UTC().Truncate(time.Second)
	token, err := sign(&model.AppClaims{
		Username:  member.Username,
		TokenType: model.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(member.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token, expiresAt, err
}

func parseToken(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getJwtKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseAccessToken validates an access token and returns its claims.
func ParseAccessToken(tokenString string) (*model.AppClaims, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != model.TokenTypeAccess {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// MemberIDFromClaims reads the member id out of the subject claim.
func MemberIDFromClaims(claims *model.AppClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}
