package session

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"codeberg.org/mutker/poolwatch/internal/logger"
)

// AuthResult reports the outcome of a login attempt. Invalid credentials are
// a failure result, not an error; errors are reserved for transport problems
// and unparsable login pages.
type AuthResult struct {
	Success bool
	Message string
}

// RequestOptions controls one authenticated request. A nil options value
// means a plain GET.
type RequestOptions struct {
	Method string
	Form   url.Values
}

// Session owns one cookie-bearing HTTP identity against the remote panel.
// All subsystem fetches of a poll cycle share its cookie jar; the jar is the
// only shared mutable transport state and the http.Client handles it safely
// under concurrent requests.
type Session struct {
	key     string
	baseURL string
	cfg     Config
	client  *http.Client

	mu            sync.Mutex
	authenticated bool
	lastActivity  time.Time
}

func New(cfg Config, key string) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}

	return &Session{
		key:     key,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		client: &http.Client{
			Jar: jar,
			// Per-request deadlines come from context so the transport is
			// actually told to abort; no client-level timeout on top.
		},
		lastActivity: time.Now(),
	}, nil
}

func (s *Session) Key() string {
	return s.key
}

// Authenticate fetches the login page, discovers its field names at runtime,
// submits the credentials, and inspects the response for a re-rendered
// password field or an error indicator.
func (s *Session) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	errFactory := errors.New()

	page, err := s.do(ctx, s.cfg.LoginPath, nil)
	if err != nil {
		return AuthResult{}, err
	}

	form, err := discoverLoginForm(page)
	if err != nil {
		return AuthResult{}, err
	}
	if form.usernameField == "" {
		return AuthResult{}, errFactory.WithMessage(ErrAuthenticationFailed, "login form has no username input")
	}

	values := url.Values{}
	for name, value := range form.hidden {
		values.Set(name, value)
	}
	values.Set(form.usernameField, username)
	values.Set(form.passwordField, password)

	action := form.action
	if action == "" {
		action = s.cfg.LoginPath
	}

	response, err := s.do(ctx, action, &RequestOptions{Method: http.MethodPost, Form: values})
	if err != nil {
		return AuthResult{}, err
	}

	if msg := errorIndicator(response); msg != "" {
		logger.Debug().Str("session", s.key).Str("reason", msg).Msg("Login rejected")
		return AuthResult{Success: false, Message: msg}, nil
	}
	if hasPasswordField(response) {
		return AuthResult{Success: false, Message: "login form re-rendered, credentials rejected"}, nil
	}

	s.mu.Lock()
	s.authenticated = true
	s.lastActivity = time.Now()
	s.mu.Unlock()

	logger.Info().Str("session", s.key).Msg("Session authenticated")

	return AuthResult{Success: true, Message: "authenticated"}, nil
}

// Request performs one authenticated call against the panel and returns the
// response body. It fails before any network activity when the session has
// not authenticated, and refreshes last-activity on every call.
func (s *Session) Request(ctx context.Context, path string, opts *RequestOptions) ([]byte, error) {
	s.mu.Lock()
	authenticated := s.authenticated
	s.mu.Unlock()

	if !authenticated {
		return nil, errors.New().New(ErrNotAuthenticated)
	}

	return s.do(ctx, path, opts)
}

// IsAuthenticated reports whether a login has succeeded on this session.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticated
}

// IsExpired reports whether the inactivity window has elapsed since the last
// successful request.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Since(s.lastActivity) > s.cfg.MaxAge
}

func (s *Session) do(ctx context.Context, path string, opts *RequestOptions) ([]byte, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	method := http.MethodGet
	var body io.Reader
	if opts != nil && opts.Method != "" {
		method = opts.Method
	}
	if opts != nil && opts.Form != nil {
		body = strings.NewReader(opts.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.resolve(path), body)
	if err != nil {
		return nil, errFactory.Wrap(ErrTransport, err)
	}
	if opts != nil && opts.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errFactory.WithData(ErrRequestTimeout, path)
		}
		return nil, errFactory.Wrap(ErrTransport, err)
	}
	defer resp.Body.Close()

	// An error page is not a panel response; the status decides, not the body.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errFactory.WithData(ErrTransport, path+" returned "+resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errFactory.WithData(ErrRequestTimeout, path)
		}
		return nil, errFactory.Wrap(ErrTransport, err)
	}

	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()

	return payload, nil
}

func (s *Session) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return s.baseURL + path
}

// touch backdates or refreshes last-activity. Test hook.
func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastActivity = t
	s.mu.Unlock()
}
