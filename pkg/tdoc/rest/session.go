package rest

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"
)

const loginPath = "login"

// tokenState tracks what the session knows about token authentication.
type tokenState int

const (
	tokenUnknown tokenState = iota // no login attempted yet
	tokenValid                     // token holds a JWT
	tokenFailed                    // last login failed, basic auth in use
	tokenAbsent                    // server has no login endpoint
)

func (s tokenState) String() string {
	switch s {
	case tokenValid:
		return "valid"
	case tokenFailed:
		return "failed"
	case tokenAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// LoginOptions scope the token requested at login.
type LoginOptions struct {
	Company  string
	VerifyIP bool
}

// Session decides which credentials a request carries. Servers either
// accept basic auth everywhere, or accept it only on the login endpoint and
// require the JWT it returns everywhere else. The session logs in lazily
// and falls back to basic auth whenever no token is available.
//
// A Session is safe for concurrent use; concurrent logins share a single
// request.
type Session struct {
	creds  Credentials
	opts   LoginOptions
	doer   Doer
	logger hclog.Logger
	now    func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	state   tokenState
	token   string
	lastErr error
	gen     uint64 // incremented by every completed login
}

// NewSession returns a session that has not attempted to log in yet.
func NewSession(creds Credentials, doer Doer, opts LoginOptions, logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	creds.Address = NormalizeAddress(creds.Address)
	return &Session{
		creds:  creds,
		opts:   opts,
		doer:   doer,
		logger: logger,
		now:    time.Now,
	}
}

// Authorize attaches credentials to req and returns the bearer token used,
// or "" when basic auth was attached.
func (s *Session) Authorize(ctx context.Context, req *http.Request) string {
	token := s.Token(ctx)
	setAuth(req, s.creds, token)
	return token
}

func setAuth(req *http.Request, creds Credentials, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	req.SetBasicAuth(creds.Username, creds.Password)
}

// Token returns the token to use for the next request, logging in first
// if no attempt has been made. It returns "" when basic auth should be
// used; a failed login never fails the caller.
func (s *Session) Token(ctx context.Context) string {
	s.mu.Lock()
	state, token, gen := s.state, s.token, s.gen
	s.mu.Unlock()

	switch state {
	case tokenUnknown:
		token, _ = s.login(ctx, gen)
		return token
	case tokenValid:
		if !s.expired(token) {
			return token
		}
		s.logger.Debug("cached token expired, refreshing")
		fresh, err := s.Refresh(ctx, token)
		if err != nil {
			return ""
		}
		return fresh
	default:
		return ""
	}
}

// Login logs in now, replacing any cached token.
func (s *Session) Login(ctx context.Context) (string, error) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	return s.login(ctx, gen)
}

// Refresh obtains a token to replace stale, the token a rejected request
// carried ("" for basic auth). If another caller already replaced it, the
// current token is returned without logging in again.
func (s *Session) Refresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	state, token, gen := s.state, s.token, s.gen
	s.mu.Unlock()

	switch {
	case state == tokenAbsent:
		return "", ErrTokenModeDisabled
	case state == tokenValid && token != stale:
		return token, nil
	}
	return s.login(ctx, gen)
}

// login runs one login shared by every concurrent caller. gen is the login
// generation the caller observed: when a login completed since then, its
// outcome is returned instead of logging in again.
func (s *Session) login(ctx context.Context, gen uint64) (string, error) {
	ch := s.group.DoChan(loginPath, func() (any, error) {
		s.mu.Lock()
		if s.gen != gen {
			token, err := s.token, s.lastErr
			s.mu.Unlock()
			return token, err
		}
		s.mu.Unlock()

		// The login outlives an abandoned caller so the state is always
		// updated; the transport timeout bounds it.
		token, err := s.fetchToken(context.WithoutCancel(ctx))
		s.record(token, err)
		return token, err
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.Val.(string), res.Err
	}
}

func (s *Session) record(token string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.lastErr = err
	switch {
	case err == nil:
		s.state, s.token = tokenValid, token
		s.logger.Debug("logged in, using token authentication")
	case IsNotFound(err):
		s.state, s.token = tokenAbsent, ""
		s.logger.Info("login endpoint not available, using basic authentication")
	default:
		s.state, s.token = tokenFailed, ""
		s.logger.Warn("login failed, falling back to basic authentication", "error", err)
	}
}

// fetchToken performs the login request with basic auth.
func (s *Session) fetchToken(ctx context.Context) (string, error) {
	query := url.Values{}
	if s.opts.Company != "" {
		query.Set("company", s.opts.Company)
	}
	if s.opts.VerifyIP {
		query.Set("ip", "1")
	}

	endpoint := s.creds.Address + loginPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", normalize(loginPath, 0, nil, err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.creds.Username, s.creds.Password)

	resp, err := send(s.doer, loginPath, req, false)
	if err != nil {
		return "", err
	}

	obj, ok := resp.Value.(map[string]any)
	if !ok {
		return "", Unexpected(loginPath, resp.Value)
	}
	token, ok := obj["jwt"].(string)
	if !ok || token == "" {
		return "", Unexpected(loginPath, resp.Value)
	}
	return token, nil
}

// expired reports whether token carries an exp claim in the past. Tokens
// that are not parseable JWTs never expire client-side.
func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

// State reports the token state, for diagnostics.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.String()
}

// HasToken reports whether a token is cached.
func (s *Session) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == tokenValid
}
