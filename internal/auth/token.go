package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/books-api/internal/domain"
)

// Issuer is the fixed issuer claim stamped on every token.
const Issuer = "Books-API"

const bearerPrefix = "Bearer "

// Sentinel errors for token verification outcomes.
var (
	ErrMalformedAuthHeader = errors.New("invalid authorization header")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token expired")
)

// TokenManager issues and verifies HS256-signed JWTs. The secret is fixed
// at construction; all methods are safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. TTL defaults to 10 minutes.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 10
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Claims describes the JWT payload. The single role travels in the "roles"
// claim, matching the wire format clients already depend on.
type Claims struct {
	Role string `json:"roles"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token for the user: subject is the email,
// expiry is now+TTL.
func (tm *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ExtractBearer returns the token portion of an Authorization header value.
// The scheme must be the literal "Bearer " prefix.
func ExtractBearer(headerValue string) (string, error) {
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", ErrMalformedAuthHeader
	}
	return headerValue[len(bearerPrefix):], nil
}

// Parse verifies signature and expiry and returns the subject email and
// role claim. Expired tokens yield ErrExpiredToken; every other failure
// collapses into ErrInvalidToken so nothing about the token leaks back.
func (tm *TokenManager) Parse(tokenStr string) (string, domain.Role, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrExpiredToken
		}
		return "", "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, role, nil
}
