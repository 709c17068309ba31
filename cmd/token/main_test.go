package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func TestParseUser(t *testing.T) {
	id := uuid.New()

	got, err := parseUser(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = parseUser("")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got)

	_, err = parseUser("not-a-uuid")
	assert.Error(t, err)

	_, err = parseUser(uuid.Nil.String())
	assert.Error(t, err)
}

func TestRunIssuesValidToken(t *testing.T) {
	t.Setenv("SCRY_AUTH_JWT_SECRET", testSecret)
	t.Setenv("SCRY_AUTH_TOKEN_LIFETIME_MINUTES", "15")

	userID := uuid.New()
	var out, info bytes.Buffer
	require.NoError(t, run(userID.String(), &out, &info))
	assert.Contains(t, info.String(), userID.String())

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, time.Minute)
}
