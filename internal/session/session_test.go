package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/poolwatch/internal/errors"
)

const loginPage = `<html><body>
<form action="/" method="post">
  <input type="hidden" name="csrf" value="tok-123">
  <input type="text" name="acct">
  <input type="password" name="pw">
  <input type="submit" value="Sign in">
</form>
</body></html>`

const dashboardPage = `<html><body><div id="status">All systems normal</div></body></html>`

const rejectedPage = `<html><body>
<div class="login-error">Invalid username or password</div>
<form action="/" method="post">
  <input type="text" name="acct">
  <input type="password" name="pw">
</form>
</body></html>`

// newPanelServer fakes the remote panel: GET / serves the login form, POST /
// checks the discovered field names plus the hidden token.
func newPanelServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(loginPage))
			return
		}

		require.NoError(t, r.ParseForm())
		if r.PostFormValue("csrf") != "tok-123" ||
			r.PostFormValue("acct") != "admin" ||
			r.PostFormValue("pw") != "secret" {
			w.Write([]byte(rejectedPage))
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
		w.Write([]byte(dashboardPage))
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()

	s, err := New(Config{BaseURL: baseURL}, "test")
	require.NoError(t, err)

	return s
}

func TestAuthenticateSuccess(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, s.IsAuthenticated())
}

func TestAuthenticateRejectedCredentials(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid username or password")
	assert.False(t, s.IsAuthenticated())
}

func TestAuthenticateRejectedByRerenderedForm(t *testing.T) {
	// No error indicator, but the password field comes back.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginPage))
	}))
	t.Cleanup(server.Close)

	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestAuthenticateUnparsableLoginPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>no form here</body></html>`))
	}))
	t.Cleanup(server.Close)

	s := newTestSession(t, server.URL)

	_, err := s.Authenticate(context.Background(), "admin", "secret")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrAuthenticationFailed))
}

func TestRequestBeforeAuthentication(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	_, err := s.Request(context.Background(), "/status", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrNotAuthenticated))
}

func TestRequestAfterAuthentication(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.True(t, result.Success)

	body, err := s.Request(context.Background(), "/status", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	s, err := New(Config{BaseURL: server.URL, RequestTimeout: 50 * time.Millisecond}, "test")
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), "admin", "secret")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrRequestTimeout))
}

func TestRequestRejectsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			w.Write([]byte(loginPage))
		case r.Method == http.MethodPost:
			w.Write([]byte(dashboardPage))
		default:
			http.Error(w, "panel unavailable", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.True(t, result.Success)

	// A 500 error page must surface as a failure, not as a parsable body.
	_, err = s.Request(context.Background(), "/status", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrTransport))
	assert.Contains(t, err.Error(), "500")
}

func TestIsExpired(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	assert.False(t, s.IsExpired())

	s.touch(time.Now().Add(-25 * time.Hour))
	assert.True(t, s.IsExpired())

	s.touch(time.Now().Add(-time.Hour))
	assert.False(t, s.IsExpired())
}

func TestRequestRefreshesActivity(t *testing.T) {
	server := newPanelServer(t)
	s := newTestSession(t, server.URL)

	result, err := s.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.True(t, result.Success)

	s.touch(time.Now().Add(-25 * time.Hour))
	require.True(t, s.IsExpired())

	_, err = s.Request(context.Background(), "/status", nil)
	require.NoError(t, err)
	assert.False(t, s.IsExpired())
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, "test")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))
}
