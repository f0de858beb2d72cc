package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/khanbek/khancloud/internal/config"
)

// Claims describes the identity encoded in an access token.
type Claims struct {
	SubjectID string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, time-limited bearer tokens.
// Verification depends only on the token, the signing secret, and the
// current time; a deleted or disabled user keeps a valid token until it
// expires.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewTokenService constructs a TokenService from auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:  []byte(cfg.JWTSecret),
		ttl:     cfg.TokenTTL,
		nowFunc: time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Issue signs a token carrying the subject id and role.
func (t *TokenService) Issue(subjectID, role string) (string, error) {
	now := t.nowFunc()
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the decoded claims.
// Expiry is checked against the service clock so tests can simulate time.
func (t *TokenService) Verify(tokenString string) (Claims, error) {
	parsed, err := t.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)

	expFloat, ok := mapClaims["exp"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	exp := time.Unix(int64(expFloat), 0)

	iat := time.Time{}
	if iatFloat, ok := mapClaims["iat"].(float64); ok {
		iat = time.Unix(int64(iatFloat), 0)
	}

	if !exp.After(t.nowFunc()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		SubjectID: sub,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}
