package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gigbuddy/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTTL is the fixed lifetime of an issued token. Tokens are not
	// revocable server-side; logout is client-side only.
	TokenTTL = 24 * time.Hour

	tokenIssuer   = "gigbuddy-api"
	tokenAudience = "gigbuddy-client"
)

// Verification errors. Callers distinguish expiry from everything else so
// the API can report "token expired" rather than "token invalid".
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and verifies signed bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with the given secret.
// A missing secret is a configuration error and fatal at startup.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// Issue mints a signed token asserting the given identity. The token
// expires exactly TokenTTL after issuance.
func (t *TokenService) Issue(id uint, email string, role models.UserRole) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(id), 10),
		"email": email,
		"role":  string(role),
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
		"jti":   uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates the signature, signing method, issuer, audience and
// expiry of tokenString and returns the embedded identity.
func (t *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}

	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	role := models.UserRole(roleStr)
	if role != models.RoleMember && role != models.RoleAdmin {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{ID: uint(id), Email: email, Role: role}, nil
}
