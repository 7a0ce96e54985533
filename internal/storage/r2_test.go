package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putRecord struct {
	path        string
	contentType string
}

func newFakeR2(t *testing.T) (*httptest.Server, *[]putRecord) {
	t.Helper()
	var (
		mu   sync.Mutex
		puts []putRecord
	)
	r := chi.NewRouter()
	r.Put("/*", func(w http.ResponseWriter, req *http.Request) {
		io.Copy(io.Discard, req.Body) //nolint:errcheck
		mu.Lock()
		puts = append(puts, putRecord{path: req.URL.Path, contentType: req.Header.Get("Content-Type")})
		mu.Unlock()
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &puts
}

func TestNewR2_requiresConfig(t *testing.T) {
	_, err := NewR2(context.Background(), R2Config{AccountID: "acct"})
	assert.Error(t, err)
}

func TestR2_Upload(t *testing.T) {
	srv, puts := newFakeR2(t)

	r2, err := NewR2(context.Background(), R2Config{
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "logos",
		PublicBaseURL:   "https://cdn.example.com/bolao",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)

	u, err := r2.Upload(context.Background(), "teams/1963.png", "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/bolao/teams/1963.png", u)

	require.Len(t, *puts, 1)
	assert.Equal(t, "/logos/teams/1963.png", (*puts)[0].path)
	assert.Equal(t, "image/png", (*puts)[0].contentType)
}

func TestR2_PublicURL(t *testing.T) {
	r2, err := NewR2(context.Background(), R2Config{
		AccountID: "a", AccessKeyID: "b", SecretAccessKey: "c", Bucket: "d",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/teams/5.png", r2.PublicURL("/teams/5.png"))
}
