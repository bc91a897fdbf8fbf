package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/pkg/models"
)

// AuthService issues and validates the bearer tokens that gate the admin
// endpoints.
type AuthService struct {
	config    *config.Config
	logger    *logrus.Logger
	jwtSecret []byte
}

func NewAuthService(cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{
		config:    cfg,
		logger:    logger,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
	}
}

func (s *AuthService) GenerateToken(subject, role string) (string, error) {
	now := time.Now()
	claims := &models.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Auth.TokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "github.com/lumeva/reckon",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
