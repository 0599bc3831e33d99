package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/petmatch-api/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "owner@example.com", false)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.False(t, claims.Admin)
}

func TestAdminClaimSurvives(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken(uuid.New(), "admin@example.com", true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewService("secret-a", time.Hour)
	verifier := auth.NewService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(uuid.New(), "owner@example.com", false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestRejectsExpiredToken(t *testing.T) {
	svc := auth.NewService("test-secret", -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), "owner@example.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestRejectsGarbage(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
