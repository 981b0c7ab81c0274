package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Principal, error)
}

type Claims struct {
	TokenType TokenType   `json:"typ"`
	Role      access.Role `json:"role,omitempty"`
	Email     string      `json:"email,omitempty"`
	Name      string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager инициализирует менеджер JWT токенов.
func NewTokenManager(secret string, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewTokenPair создает пару access/refresh токенов для принципала.
// Роль попадает только в access-токен; refresh-токен несет лишь subject.
func (m *TokenManager) NewTokenPair(p access.Principal, refreshTokenID uuid.UUID) (TokenPair, error) {
	if !p.Role.Valid() {
		return TokenPair{}, eris.Wrapf(access.ErrUnknownRole, "%q", p.Role)
	}

	accessToken, accessExp, err := m.newToken(Claims{
		TokenType: TokenTypeAccess,
		Role:      p.Role,
		Email:     p.Email,
		Name:      p.DisplayName,
	}, p.ID, uuid.New(), m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, refreshExp, err := m.newToken(Claims{TokenType: TokenTypeRefresh}, p.ID, refreshTokenID, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccessToken валидирует access-токен и возвращает claims.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parseToken(tokenString, TokenTypeAccess)
}

// ParseRefreshToken валидирует refresh-токен и возвращает claims.
func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parseToken(tokenString, TokenTypeRefresh)
}

// Authenticate превращает access-токен в принципала без обращения к базе.
func (m *TokenManager) Authenticate(_ context.Context, tokenString string) (access.Principal, error) {
	claims, err := m.ParseAccessToken(tokenString)
	if err != nil {
		return access.Principal{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return access.Principal{}, eris.Wrap(ErrInvalidToken, "subject is not a uuid")
	}

	if !claims.Role.Valid() {
		return access.Principal{}, eris.Wrap(ErrInvalidToken, "token carries no valid role")
	}

	return access.Principal{
		ID:          userID,
		Role:        claims.Role,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}

func (m *TokenManager) newToken(claims Claims, userID uuid.UUID, tokenID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID.String(),
		ID:        tokenID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}

	return signed, expiresAt, nil
}

func (m *TokenManager) parseToken(tokenString string, tokenType TokenType) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(m.issuer))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, eris.Wrap(ErrInvalidToken, err.Error())
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != tokenType {
		return nil, eris.Wrap(ErrInvalidToken, "token type mismatch")
	}

	return claims, nil
}
