// Package auth verifies Supabase access tokens and loads the caller's
// profile for admin routes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"

	"github.com/albapepper/bolao/internal/api/respond"
	"github.com/albapepper/bolao/internal/store"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	profileContextKey contextKey = "profile"
)

// ProfileGetter loads user profiles. store.Store satisfies it.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*store.Profile, error)
}

// Verifier checks HS256 tokens signed with the Supabase project secret.
type Verifier struct {
	secret   []byte
	audience string
	profiles ProfileGetter
	clock    clock.Clock
}

func NewVerifier(secret, audience string, profiles ProfileGetter) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		profiles: profiles,
		clock:    clock.New(),
	}
}

// Parse validates a raw token and returns the user id in its subject.
func (v *Verifier) Parse(raw string) (uuid.UUID, error) {
	if len(v.secret) == 0 {
		return uuid.Nil, errors.New("auth: no signing secret configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("auth: subject is not a user id")
	}
	return id, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authenticate rejects requests without a valid bearer token with 401.
func (v *Verifier) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}
		id, err := v.Parse(raw)
		if err != nil {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Authenticate. Users without an admin profile
// get 403.
func (v *Verifier) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		p, err := v.profiles.GetProfile(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			respond.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			return
		case err != nil:
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
			return
		case !p.IsAdmin():
			respond.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), profileContextKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's id.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userContextKey).(uuid.UUID)
	return id, ok
}

// Profile returns the admin profile loaded by RequireAdmin.
func Profile(ctx context.Context) (*store.Profile, bool) {
	p, ok := ctx.Value(profileContextKey).(*store.Profile)
	return p, ok
}

// WithUserID returns a context carrying id, as Authenticate would.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userContextKey, id)
}
