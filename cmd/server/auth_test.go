package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	ts.cookie = &http.Cookie{Name: sessionCookieName, Value: "forged.deadbeef"}
	rr = ts.do(http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/login", loginRequest{Email: testEmail, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())

	rr = ts.do(http.MethodPost, "/login", loginRequest{Email: "ghost@scanquote.test", Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginThenLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	rr := ts.do(http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionValueExpiresAndRejectsTampering(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	auth := &authService{sessionSecret: []byte("k"), now: func() time.Time { return now }}

	value := auth.createSessionValue("ops@example.com")
	email, ok := auth.verifySessionValue(value)
	require.True(t, ok)
	assert.Equal(t, "ops@example.com", email)

	other := &authService{sessionSecret: []byte("other"), now: auth.now}
	_, ok = other.verifySessionValue(value)
	assert.False(t, ok, "signature from another key accepted")

	_, ok = auth.verifySessionValue(value + "00")
	assert.False(t, ok)

	now = now.Add(sessionTTL)
	_, ok = auth.verifySessionValue(value)
	assert.False(t, ok, "expired session accepted")
}
