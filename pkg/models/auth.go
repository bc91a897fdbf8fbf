package models

import "github.com/golang-jwt/jwt/v5"

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
