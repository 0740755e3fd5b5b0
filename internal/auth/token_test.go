package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/groups-service/internal/model"
)

const testSecretKey = "test-secret-key-for-predictable-results"

func TestGenerateToken(t *testing.T) {
	TokenSecretKey = testSecretKey

	tests := []struct {
		name     string
		actor    *model.Actor
		duration time.Duration
	}{
		{
			name:     "success: generate valid member token",
			actor:    &model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: false},
			duration: time.Hour,
		},
		{
			name:     "success: generate valid admin token",
			actor:    &model.Actor{UserID: "u2", TeamID: "team-a", IsAdmin: true},
			duration: 30 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := GenerateToken(tt.actor, tt.duration)
			require.NoError(t, err)
			require.NotEmpty(t, tokenString)

			claims, err := VerifyToken(tokenString)
			require.NoError(t, err)
			assert.Equal(t, tt.actor.UserID, claims.UserID)
			assert.Equal(t, tt.actor.TeamID, claims.TeamID)
			assert.Equal(t, tt.actor.IsAdmin, claims.IsAdmin)
			assert.WithinDuration(t, time.Now().Add(tt.duration), claims.ExpiresAt.Time, time.Second*5)
		})
	}
}

func TestVerifyToken(t *testing.T) {
	TokenSecretKey = testSecretKey

	actor := &model.Actor{UserID: "u1", TeamID: "team-a"}

	validToken, _ := GenerateToken(actor, time.Hour)

	expiredToken, _ := GenerateToken(actor, -time.Hour)

	claimsWithWrongMethod := TokenClaims{
		UserID: "u1",
		TeamID: "team-a",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenWithWrongMethod := jwt.NewWithClaims(jwt.SigningMethodNone, claimsWithWrongMethod)
	wrongMethodTokenString, _ := tokenWithWrongMethod.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name              string
		tokenString       string
		secretSetup       func()
		secretRollback    func()
		expectError       bool
		expectedErrorType error
	}{
		{
			name:        "success: verify valid token",
			tokenString: validToken,
			expectError: false,
		},
		{
			name:              "failure: verify expired token",
			tokenString:       expiredToken,
			expectError:       true,
			expectedErrorType: jwt.ErrTokenExpired,
		},
		{
			name:              "failure: verify token with invalid signature",
			tokenString:       validToken,
			secretSetup:       func() { TokenSecretKey = "different-secret-key" },
			secretRollback:    func() { TokenSecretKey = testSecretKey },
			expectError:       true,
			expectedErrorType: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:              "failure: verify malformed token",
			tokenString:       "not-a-valid-jwt-token",
			expectError:       true,
			expectedErrorType: jwt.ErrTokenMalformed,
		},
		{
			name:              "failure: verify token with wrong signing method",
			tokenString:       wrongMethodTokenString,
			expectError:       true,
			expectedErrorType: ErrInvalidSigningMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.secretSetup != nil {
				tt.secretSetup()
			}
			if tt.secretRollback != nil {
				defer tt.secretRollback()
			}

			claims, err := VerifyToken(tt.tokenString)

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErrorType)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, claims)
			}
		})
	}
}

func TestResolveActor(t *testing.T) {
	TokenSecretKey = testSecretKey

	adminToken, _ := GenerateToken(&model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: true}, time.Hour)
	expiredToken, _ := GenerateToken(&model.Actor{UserID: "u1", TeamID: "team-a"}, -time.Hour)
	anonymousToken, _ := GenerateToken(&model.Actor{}, time.Hour)

	tests := []struct {
		name          string
		tokenString   string
		expectedActor *model.Actor
	}{
		{
			name:          "success: resolve admin actor",
			tokenString:   adminToken,
			expectedActor: &model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: true},
		},
		{
			name:        "failure: expired token",
			tokenString: expiredToken,
		},
		{
			name:        "failure: invalid token string",
			tokenString: "invalid-token",
		},
		{
			name:        "failure: token without identity claims",
			tokenString: anonymousToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := ResolveActor(tt.tokenString)

			if tt.expectedActor == nil {
				require.Error(t, err)
				assert.Nil(t, actor)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedActor, actor)
			}
		})
	}
}
