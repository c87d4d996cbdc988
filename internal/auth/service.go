package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// Service issues and validates viewer tokens. Tokens are HS256 JWTs whose
// subject names the viewer; issuing one requires the admin key.
type Service struct {
	jwtSecret    []byte
	adminKeyHash []byte
	now          func() time.Time
}

// NewService creates a service signing with jwtSecret. An empty adminKey
// disables token issuing.
func NewService(jwtSecret, adminKey string) (*Service, error) {
	s := &Service{jwtSecret: []byte(jwtSecret), now: time.Now}
	if adminKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin key: %w", err)
		}
		s.adminKeyHash = hash
	}
	return s, nil
}

type TokenResult struct {
	Token     string    `json:"token"`
	Viewer    string    `json:"viewer"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueToken returns a token for viewer after checking adminKey.
func (s *Service) IssueToken(adminKey, viewer string) (*TokenResult, error) {
	if s.adminKeyHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.adminKeyHash, []byte(adminKey)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(viewer)
}

// ValidateToken returns the viewer named by a token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	viewer, ok := claims["sub"].(string)
	if !ok || viewer == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return viewer, nil
}

func (s *Service) issueToken(viewer string) (*TokenResult, error) {
	now := s.now()
	expires := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub": viewer,
		"iat": now.Unix(),
		"exp": expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &TokenResult{Token: signed, Viewer: viewer, ExpiresAt: expires}, nil
}
