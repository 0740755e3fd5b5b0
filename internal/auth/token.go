package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/yakoovad/groups-service/internal/model"
)

var TokenSecretKey = os.Getenv("TOKEN_AUTH_SECRET")

type TokenClaims struct {
	UserID  string `json:"user_id"`
	TeamID  string `json:"team_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func GenerateToken(actor *model.Actor, dur time.Duration) (string, error) {
	claims := TokenClaims{
		UserID:  actor.UserID,
		TeamID:  actor.TeamID,
		IsAdmin: actor.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(dur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(TokenSecretKey))
}

func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Wrap(ErrInvalidSigningMethod, token.Header["alg"].(string))
		}
		return []byte(TokenSecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ResolveActor maps a bearer token to the acting identity. Any verification
// failure is an authentication failure, not an authorization one.
func ResolveActor(tokenString string) (*model.Actor, error) {
	claims, err := VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.TeamID == "" {
		return nil, ErrInvalidToken
	}
	return &model.Actor{
		UserID:  claims.UserID,
		TeamID:  claims.TeamID,
		IsAdmin: claims.IsAdmin,
	}, nil
}
