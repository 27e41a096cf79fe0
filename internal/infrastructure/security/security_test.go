package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/config"
	apperrors "github.com/vipin760/hand-pass-BE/internal/shared/errors"
	"golang.org/x/crypto/bcrypt"
)

func testJWTConfig(expiry time.Duration) *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret: "test-secret-key-that-is-long-enough",
		AccessExpiry: expiry,
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(testJWTConfig(time.Hour))

	token, err := svc.GenerateAccessToken(context.Background(), "u-123", "admin@company.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", claims.UserID)
	assert.Equal(t, "admin@company.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "hand-pass-api", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig(-time.Minute))

	token, err := svc.GenerateAccessToken(context.Background(), "u-123", "admin@company.com", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), token)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeExpiredToken, appErr.Code)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig(time.Hour))

	token, err := svc.GenerateAccessToken(context.Background(), "u-123", "admin@company.com", "admin")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{
		AccessSecret: "a-completely-different-secret-value",
		AccessExpiry: time.Hour,
	})
	_, err = other.ValidateAccessToken(context.Background(), token)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, appErr.Code)
}

func TestPasswordService_HashAndCompare(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	hash, err := svc.Hash(context.Background(), "Str0ng&Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng&Pass", hash)

	assert.NoError(t, svc.Compare(context.Background(), hash, "Str0ng&Pass"))
	assert.Error(t, svc.Compare(context.Background(), hash, "WrongPass1"))
}

func TestPasswordService_Validate(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"too short", "Ab1", "at least 8 characters"},
		{"no uppercase", "alllower1", "uppercase"},
		{"no digit", "NoDigitsHere", "digit"},
		{"consecutive chars", "Aaabbb111", "consecutive"},
		{"common password", "password", "too common"},
		{"valid", "Go0dEnough", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
