package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims are the claims carried by access and refresh tokens.
type TokenClaims struct {
	UserID     uuid.UUID `json:"user_id"`
	NationalID string    `json:"national_id"`
	Role       string    `json:"role"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Secret        string
	RefreshSecret string
	Expiry        time.Duration
	RefreshExpiry time.Duration
}

// JWTService issues and validates signed tokens.
type JWTService interface {
	GenerateAccessToken(userID uuid.UUID, nationalID, role string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, nationalID, role string) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

type jwtService struct {
	cfg JWTConfig
}

func NewJWTService(cfg JWTConfig) JWTService {
	if cfg.Expiry == 0 {
		cfg.Expiry = 24 * time.Hour
	}
	if cfg.RefreshExpiry == 0 {
		cfg.RefreshExpiry = 7 * 24 * time.Hour
	}
	return &jwtService{cfg: cfg}
}

func (s *jwtService) GenerateAccessToken(userID uuid.UUID, nationalID, role string) (string, error) {
	return s.generate(userID, nationalID, role, s.cfg.Secret, s.cfg.Expiry)
}

func (s *jwtService) GenerateRefreshToken(userID uuid.UUID, nationalID, role string) (string, error) {
	return s.generate(userID, nationalID, role, s.cfg.RefreshSecret, s.cfg.RefreshExpiry)
}

func (s *jwtService) generate(userID uuid.UUID, nationalID, role, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:     userID,
		NationalID: nationalID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*TokenClaims, error) {
	return s.validate(tokenString, s.cfg.Secret)
}

func (s *jwtService) ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	return s.validate(tokenString, s.cfg.RefreshSecret)
}

func (s *jwtService) validate(tokenString, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
