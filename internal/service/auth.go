package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"biteclub/internal/config"
	"biteclub/internal/model"
	"biteclub/internal/repository"
	"biteclub/internal/token"
)

// AuthService issues JWT access tokens and manages refresh tokens with
// rotation and reuse detection. Logout pushes the access token's id onto the
// denylist so the session dies server-side before the JWT expires.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	denylist         token.Denylist
	config           *config.Config
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, denylist token.Denylist, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		denylist:         denylist,
		config:           cfg,
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshTokenRaw := uuid.New().String()
	refreshTokenHash := s.hashToken(refreshTokenRaw)

	refreshToken := &model.RefreshToken{
		UserID:    userID,
		TokenHash: refreshTokenHash,
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}

	if deviceInfo != "" {
		refreshToken.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, nil
}

// RefreshTokens validates the refresh token and rotates a new pair.
// Presenting a revoked token is treated as reuse and revokes the whole family.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, int64, error) {
	tokenHash := s.hashToken(refreshTokenRaw)

	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, 0, model.ErrRefreshTokenNotFound
	}

	if stored.IsRevoked() {
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			slog.Error("failed to revoke token family after reuse", "user_id", stored.UserID, "error", err)
		}
		return nil, 0, model.ErrRefreshTokenReused
	}

	if stored.IsExpired() {
		return nil, 0, model.ErrRefreshTokenExpired
	}

	newTokenPair, err := s.GenerateTokenPair(ctx, stored.UserID, deviceInfo, ipAddress)
	if err != nil {
		return nil, 0, err
	}

	newTokenHash := s.hashToken(newTokenPair.RefreshToken)
	var replacedByID *string
	if newToken, err := s.refreshTokenRepo.FindByTokenHash(ctx, newTokenHash); err == nil && newToken != nil {
		replacedByID = &newToken.ID
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID, replacedByID); err != nil {
		slog.Error("failed to revoke rotated refresh token", "token_id", stored.ID, "error", err)
	}

	return newTokenPair, stored.UserID, nil
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	tokenHash := s.hashToken(refreshTokenRaw)
	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, stored.ID, nil)
}

func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

// PurgeExpiredTokens deletes refresh tokens that expired more than olderThan
// ago. Keeping recently expired rows around lets RefreshTokens tell an
// expired token apart from a never-issued one.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx, olderThan)
}

// DenyAccessToken revokes an access token for the rest of its lifetime.
func (s *AuthService) DenyAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.denylist.Deny(ctx, jti, time.Until(expiresAt))
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) hashToken(t string) string {
	hash := sha256.Sum256([]byte(t))
	return hex.EncodeToString(hash[:])
}
