package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kungpiyaphon/note-app-api/internal/config"
)

var (
	// ErrExpired marks a structurally valid token that is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks a malformed token or a bad signature.
	ErrInvalid = errors.New("invalid token")
)

// GenerateAccessToken creates a signed JWT carrying the user id. TTL comes
// from config (1 hour by default).
func GenerateAccessToken(cfg *config.Config, userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(cfg.JWT.AccessTokenTTL).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// VerifyAccessToken checks signature and expiry and returns the embedded
// user id. Expired tokens report ErrExpired, everything else ErrInvalid.
func VerifyAccessToken(cfg *config.Config, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", ErrInvalid
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", ErrInvalid
	}
	return userID, nil
}
