package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/db"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/migrations"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/seed"
	"github.com/Simplici0/scanquote/internal/store"
)

const (
	testEmail    = "admin@scanquote.test"
	testPassword = "correct horse"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	_, err = seed.Run(ctx, database, seed.Config{AdminEmail: testEmail, AdminPassword: testPassword})
	require.NoError(t, err)

	auth, err := newAuthService(database, "test-secret")
	require.NoError(t, err)

	srv := &server{
		auth:   auth,
		store:  store.New(database),
		engine: pricing.NewDefault(),
		policy: gates.DefaultPolicy(),
		log:    zap.NewNop(),
	}
	return &testServer{t: t, handler: srv.routes()}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) login() {
	ts.t.Helper()

	rr := ts.do(http.MethodPost, "/login", loginRequest{Email: testEmail, Password: testPassword})
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())

	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			ts.cookie = c
		}
	}
	require.NotNil(ts.t, ts.cookie, "session cookie not set")
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func field(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		require.True(t, ok, "%v is not an object at %q", cur, p)
		cur = obj[p]
	}
	return cur
}

func assertDecimal(t *testing.T, want string, got any) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected a decimal string, got %#v", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}

func configBody(sqft int, override string) map[string]any {
	cfg := map[string]any{
		"areas": []any{map[string]any{
			"id":           "1",
			"name":         "Main building",
			"buildingType": "1",
			"squareFeet":   sqft,
			"disciplines": map[string]any{
				"architecture": map[string]any{"enabled": true, "lod": "300", "scope": "full"},
			},
		}},
		"travel":       map[string]any{"dispatchLocation": "troy", "distance": 0},
		"paymentTerms": "standard",
	}
	if override != "" {
		cfg["manualOverride"] = override
	}
	return cfg
}
