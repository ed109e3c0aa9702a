package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every verification failure: bad signature, bad
// format, expired or not-yet-valid tokens.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is used when no lifetime is configured
const DefaultTokenTTL = 24 * time.Hour

// Manager issues and verifies HS256 access tokens
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewManager builds a token manager. The secret must be non-empty; a zero
// tokenTTL falls back to DefaultTokenTTL.
func NewManager(secret string, tokenTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Manager{secret: []byte(secret), tokenTTL: tokenTTL}, nil
}

// Claims carried by access tokens
type Claims struct {
	UserID  int64  `json:"uid"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// GenerateToken signs a fresh access token for the user
func (m *Manager) GenerateToken(userID int64, email string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "drillbot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates an access token and returns its claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("empty authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

// HashPassword hashes a password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
