package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/mocks"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		validateErr    error
		claims         *auth.Claims
		expectedStatus int
	}{
		{"valid token", "Bearer valid-token", nil, &auth.Claims{UserID: userID}, http.StatusOK},
		{"lowercase scheme", "bearer valid-token", nil, &auth.Claims{UserID: userID}, http.StatusOK},
		{"missing auth header", "", nil, nil, http.StatusUnauthorized},
		{"invalid auth format", "InvalidFormat", nil, nil, http.StatusUnauthorized},
		{"empty token", "Bearer  ", nil, nil, http.StatusUnauthorized},
		{"expired token", "Bearer expired-token", auth.ErrExpiredToken, nil, http.StatusUnauthorized},
		{"invalid token", "Bearer invalid-token", auth.ErrInvalidToken, nil, http.StatusUnauthorized},
		{"unexpected error", "Bearer token", errors.New("boom"), nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{Claims: tt.claims, ValidateErr: tt.validateErr}
			var capturedUserID uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedUserID, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(jwtService).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, capturedUserID)
				assert.Equal(t, []string{"valid-token"}, jwtService.ValidatedTokens())
			}
		})
	}
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	t.Parallel()

	userID, ok := GetUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, userID)
}
