package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bolao/internal/store"
	"github.com/albapepper/bolao/internal/store/mockstore"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(id uuid.UUID) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   id.String(),
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestParse(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated", nil)
	id := uuid.New()

	got, err := v.Parse(sign(t, testSecret, validClaims(id)))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	expired := validClaims(id)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = v.Parse(sign(t, testSecret, expired))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	wrongAud := validClaims(id)
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	_, err = v.Parse(sign(t, testSecret, wrongAud))
	assert.Error(t, err)

	_, err = v.Parse(sign(t, "another-secret", validClaims(id)))
	assert.Error(t, err)

	notUUID := validClaims(id)
	notUUID.Subject = "42"
	_, err = v.Parse(sign(t, testSecret, notUUID))
	assert.Error(t, err)

	_, err = NewVerifier("", "", nil).Parse(sign(t, testSecret, validClaims(id)))
	assert.Error(t, err, "an empty secret never validates")
}

func adminChain(v *Verifier) http.Handler {
	return v.Authenticate(v.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := Profile(r.Context())
		if !ok || !p.IsAdmin() {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})))
}

func TestAdminChain(t *testing.T) {
	st := &mockstore.Store{}
	defer st.AssertExpectations(t)
	v := NewVerifier(testSecret, "authenticated", st)
	h := adminChain(v)

	admin, user, ghost := uuid.New(), uuid.New(), uuid.New()
	st.On("GetProfile", mock.Anything, admin).Return(&store.Profile{ID: admin, Role: store.RoleAdmin}, nil)
	st.On("GetProfile", mock.Anything, user).Return(&store.Profile{ID: user, Role: store.RoleUser}, nil)
	st.On("GetProfile", mock.Anything, ghost).Return(nil, store.ErrNotFound)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"malformed token", "Bearer nope", http.StatusUnauthorized},
		{"non admin", "Bearer " + sign(t, testSecret, validClaims(user)), http.StatusForbidden},
		{"no profile", "Bearer " + sign(t, testSecret, validClaims(ghost)), http.StatusForbidden},
		{"admin", "Bearer " + sign(t, testSecret, validClaims(admin)), http.StatusNoContent},
		{"lowercase scheme", "bearer " + sign(t, testSecret, validClaims(admin)), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/sofascore", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
