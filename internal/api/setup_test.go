package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"clubroster/internal/config"
	"clubroster/internal/db"
	"clubroster/internal/provider"
	"clubroster/internal/service"
	"clubroster/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		SessionCookieName: "session_token",
		SessionTTLDays:    90,
		PasswordMinLength: 8,
		ExpiryWindowDays:  60,
		BulkErrorPreview:  10,
	}
}

func newTestRouter(t *testing.T, exch provider.Exchanger) (http.Handler, *service.Service) {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "roster.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.ApplyMigrationFile(conn, filepath.Join("..", "..", "migrations", "001_init.sql")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := testConfig()
	st := store.New(conn, "sqlite")
	svc := service.New(cfg, st, exch)
	return NewRouter(cfg, svc, st), svc
}

func testCtx() context.Context {
	return context.Background()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

// registerUser creates an account through the API and returns its raw
// session token. The first call on a fresh database yields the admin.
func registerUser(t *testing.T, h http.Handler, email, name string) string {
	t.Helper()
	w := doJSON(t, h, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "name": name, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		SessionToken string `json:"session_token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

func uploadCSV(t *testing.T, h http.Handler, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
