package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agribridge/agribridge/config"
	"github.com/agribridge/agribridge/models"
)

// Claims carries the session identity inside API tokens.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Session converts the claims back into a SessionRecord.
func (c *Claims) Session() models.SessionRecord {
	return models.SessionRecord{Name: c.Name, Email: c.Email, Type: c.Type}
}

// GenerateToken issues a JWT for the given session.
func GenerateToken(rec models.SessionRecord, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		Name:  rec.Name,
		Email: rec.Email,
		Type:  rec.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
