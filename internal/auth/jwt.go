package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type Claims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Blacklist records revoked refresh token identifiers. Insertion must be
// atomic at the storage layer: only one of two concurrent Revoke calls for the
// same jti may succeed, the loser gets ErrInvalidToken.
type Blacklist interface {
	Revoke(ctx context.Context, jti uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti uuid.UUID) (bool, error)
}

// TokenService issues and verifies access/refresh token pairs. Refresh tokens
// are single-use: every successful refresh blacklists the consumed token.
type TokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
	blacklist     Blacklist
}

func NewTokenService(secret string, accessExpiry, refreshExpiry time.Duration, issuer string, blacklist Blacklist) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        issuer,
		blacklist:     blacklist,
	}
}

// Issue mints a fresh access+refresh pair for the account. Each token carries
// its own random jti.
func (s *TokenService) Issue(accountID uuid.UUID) (TokenPair, error) {
	if accountID == uuid.Nil {
		return TokenPair{}, ErrInvalidToken
	}

	access, err := s.sign(accountID, TokenTypeAccess, s.accessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(accountID, TokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(accountID uuid.UUID, tokenType TokenType, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and the token_type claim, then rejects
// blacklisted identifiers. Every failure collapses to ErrInvalidToken so
// callers cannot distinguish expired from revoked from forged tokens.
func (s *TokenService) Verify(ctx context.Context, tokenString string, expected TokenType) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.IsRevoked(ctx, jti)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh consumes a refresh token and issues a new pair for the same
// account. Rotation is mandatory: the consumed jti is blacklisted before the
// new pair is returned, so a refresh token works exactly once.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	accountID, err := claims.AccountID()
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	if err := s.revokeClaims(ctx, claims); err != nil {
		return TokenPair{}, err
	}
	return s.Issue(accountID)
}

// Revoke blacklists the refresh token's jti. Used by logout. Replay after
// revocation fails exactly like replay after rotation.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return ErrInvalidToken
	}
	return s.revokeClaims(ctx, claims)
}

func (s *TokenService) revokeClaims(ctx context.Context, claims *Claims) error {
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return ErrInvalidToken
	}
	expiresAt := time.Now().Add(s.refreshExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.blacklist.Revoke(ctx, jti, expiresAt)
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
