// internal/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/logger"
)

var (
	ErrTokenMalformed          = errors.New("malformed token")
	ErrTokenExpired            = errors.New("token is expired or not valid yet")
	ErrTokenInvalid            = errors.New("invalid token")
	ErrTokenClaimsInvalid      = errors.New("invalid token claims")
	ErrTokenBlacklisted        = errors.New("token is blacklisted")
	ErrWrongTokenType          = errors.New("token has wrong type")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
	customLog                  = logger.Named("auth")
)

// Token types carried in the token_type claim.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// --- Password Utilities ---

// HashPassword generates a bcrypt hash for the given password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		customLog.Warnf("Error generating bcrypt hash: %v", err)
		return "", fmt.Errorf("failed to hash password")
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Unexpected error comparing password hash: %v", err)
	}
	return err == nil
}

// --- JWT Utilities ---

// Claims are the JWT claims issued for both token types.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Blacklist stores revoked refresh tokens by their jti.
type Blacklist interface {
	BlacklistToken(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// TokenService issues and validates tokens signed with the secret key.
type TokenService struct {
	secret []byte
	cfg    config.JWTConfig
	now    func() time.Time
}

// NewTokenService creates a TokenService from the application configuration.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.SecretKey),
		cfg:    cfg.JWT,
		now:    time.Now,
	}
}

// IssuePair creates a fresh access and refresh token for userID.
func (s *TokenService) IssuePair(userID int64) (TokenPair, error) {
	access, err := s.sign(userID, AccessToken, s.cfg.AccessTokenLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, RefreshToken, s.cfg.RefreshTokenLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(userID int64, tokenType string, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		customLog.Warnf("Error signing %s token for user %d: %v", tokenType, userID, err)
		return "", fmt.Errorf("failed to generate token")
	}
	return signed, nil
}

// ParseAccess validates an access token.
func (s *TokenService) ParseAccess(tokenString string) (*Claims, error) {
	return s.parse(tokenString, AccessToken)
}

// ParseRefresh validates a refresh token (without consulting the blacklist).
func (s *TokenService) ParseRefresh(tokenString string) (*Claims, error) {
	return s.parse(tokenString, RefreshToken)
}

func (s *TokenService) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.cfg.Issuer))

	if err != nil {
		customLog.Debugf("Token parsing error: %v", err)
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenExpired
		case errors.Is(err, ErrUnexpectedSigningMethod):
			return nil, ErrUnexpectedSigningMethod
		default:
			return nil, ErrTokenInvalid
		}
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrTokenClaimsInvalid
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new access token. With rotation on,
// a new refresh token is returned too and, when configured, the old one is
// blacklisted.
func (s *TokenService) Refresh(ctx context.Context, bl Blacklist, refreshToken string) (TokenPair, error) {
	claims, err := s.checkRefresh(ctx, bl, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.sign(claims.UserID, AccessToken, s.cfg.AccessTokenLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	pair := TokenPair{Access: access}

	if s.cfg.RotateRefreshTokens {
		if s.cfg.BlacklistAfterRotation {
			if err := bl.BlacklistToken(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
				return TokenPair{}, fmt.Errorf("blacklisting rotated token: %w", err)
			}
		}
		pair.Refresh, err = s.sign(claims.UserID, RefreshToken, s.cfg.RefreshTokenLifetime)
		if err != nil {
			return TokenPair{}, err
		}
	}
	return pair, nil
}

// Revoke blacklists a refresh token.
func (s *TokenService) Revoke(ctx context.Context, bl Blacklist, refreshToken string) error {
	claims, err := s.checkRefresh(ctx, bl, refreshToken)
	if err != nil {
		return err
	}
	if err := bl.BlacklistToken(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("blacklisting token: %w", err)
	}
	return nil
}

func (s *TokenService) checkRefresh(ctx context.Context, bl Blacklist, refreshToken string) (*Claims, error) {
	claims, err := s.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	revoked, err := bl.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking token blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenBlacklisted
	}
	return claims, nil
}

// IsTokenError reports whether err is one of the token validation errors.
func IsTokenError(err error) bool {
	for _, target := range []error{
		ErrTokenMalformed, ErrTokenExpired, ErrTokenInvalid, ErrTokenClaimsInvalid,
		ErrTokenBlacklisted, ErrWrongTokenType, ErrUnexpectedSigningMethod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
