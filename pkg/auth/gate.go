package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidPassword = errors.New("invalid password")

const sessionSubject = "admin"

// Gate checks the admin password and issues signed session tokens
type Gate struct {
	password string
	secret   string
	ttl      time.Duration
	now      func() time.Time
}

// NewGate creates a new admin gate
func NewGate(password, secret string, ttl time.Duration) *Gate {
	return &Gate{
		password: password,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login compares password with the configured one (exact, case-sensitive)
// and returns a session token on match
func (g *Gate) Login(password string) (string, error) {
	if g.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		return "", ErrInvalidPassword
	}
	return g.generateToken()
}

func (g *Gate) generateToken() (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"sub":  sessionSubject,
		"exp":  now.Add(g.ttl).Unix(),
		"iat":  now.Unix(),
		"type": "session",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(g.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// Validate checks a session token
func (g *Gate) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.secret), nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("invalid token claims")
	}
	if tokenType, ok := claims["type"].(string); !ok || tokenType != "session" {
		return fmt.Errorf("token is not a session token")
	}
	if sub, _ := claims.GetSubject(); sub != sessionSubject {
		return fmt.Errorf("token subject mismatch")
	}
	return nil
}

// TTL is the lifetime of issued tokens
func (g *Gate) TTL() time.Duration {
	return g.ttl
}
