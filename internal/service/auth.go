package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bulletinboard/internal/config"
	"bulletinboard/internal/model"
	"bulletinboard/internal/repository"
)

// AuthService issues and checks access tokens. Logging out revokes the
// token id until the token would have expired.
type AuthService struct {
	revokedRepo repository.RevokedTokenRepository
	config      *config.Config
	now         func() time.Time
}

func NewAuthService(revokedRepo repository.RevokedTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		revokedRepo: revokedRepo,
		config:      cfg,
		now:         time.Now,
	}
}

// Claims are the fields carried by an access token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueToken signs a new access token for userID.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.MaxAge())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// MaxAge is the lifetime of an access token.
func (s *AuthService) MaxAge() time.Duration {
	return time.Duration(s.config.AccessTokenMaxAge) * time.Second
}

// ParseToken validates the signature, expiry and revocation of a token.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		return nil, model.ErrTokenInvalid
	}

	if claims.ID != "" {
		revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, model.ErrTokenRevoked
		}
	}
	return &claims, nil
}

// Revoke ends a token before its expiry.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revokedRepo.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	log.Printf("[AuthService] Revoked token for user %d", claims.UserID)
	return nil
}

// CleanupRevoked drops revocations of tokens that have expired. It runs as
// a background job.
func (s *AuthService) CleanupRevoked(ctx context.Context) (int, error) {
	n, err := s.revokedRepo.DeleteExpired(ctx)
	return int(n), err
}
