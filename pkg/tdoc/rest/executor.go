package rest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/andxor/tdoc/pkg/digest"
)

// RequestIDHeader carries the per-request id that is also logged.
const RequestIDHeader = "X-Request-Id"

// Request describes one call to the tDoc service.
type Request struct {
	Method    string
	Path      string     // relative to the service address
	Query     url.Values // GET parameters
	Form      url.Values // urlencoded POST body
	Multipart *Form      // multipart POST body, takes precedence over Form
	Binary    bool       // response is raw content rather than JSON
}

// Options configure an Executor.
type Options struct {
	Credentials Credentials
	Login       LoginOptions

	// HTTPClient performs the requests. It is shared by every call so its
	// connection pool bounds concurrency.
	HTTPClient Doer

	Logger hclog.Logger
}

// Executor is the single point through which every tDoc call is issued.
// It attaches credentials from its Session, normalizes failures into
// *Error, and when the service rejects the credentials with code 337 or
// 338 it refreshes the token and retries the call exactly once.
type Executor struct {
	address string
	doer    Doer
	session *Session
	logger  hclog.Logger
}

// NewExecutor returns an executor with a fresh session.
func NewExecutor(opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Executor{
		address: NormalizeAddress(opts.Credentials.Address),
		doer:    opts.HTTPClient,
		session: NewSession(opts.Credentials, opts.HTTPClient, opts.Login, opts.Logger.Named("session")),
		logger:  opts.Logger.Named("rest"),
	}
}

// Address returns the normalized service address.
func (e *Executor) Address() string {
	return e.address
}

// Session returns the executor's auth session.
func (e *Executor) Session() *Session {
	return e.session
}

// Get issues a GET and returns the decoded JSON body.
func (e *Executor) Get(ctx context.Context, path string, query url.Values) (any, error) {
	resp, err := e.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// GetBinary issues a GET for raw content. When the response declares a
// digest in its ETag the content is verified against it; a mismatch is
// returned as a *digest.MismatchError and no data is returned.
func (e *Executor) GetBinary(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := e.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query, Binary: true})
	if err != nil {
		return nil, err
	}

	if err := digest.Verify(resp.Body, resp.Header.Get("ETag")); err != nil {
		e.logger.Error("downloaded content failed verification", "path", path, "error", err)
		return nil, err
	}
	return resp.Body, nil
}

// Post issues a urlencoded form POST and returns the decoded JSON body.
func (e *Executor) Post(ctx context.Context, path string, form url.Values) (any, error) {
	resp, err := e.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// PostMultipart issues a multipart POST and returns the decoded JSON body.
func (e *Executor) PostMultipart(ctx context.Context, path string, form *Form) (any, error) {
	resp, err := e.Do(ctx, &Request{Method: http.MethodPost, Path: path, Multipart: form})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Do executes r, applying the re-authentication retry.
func (e *Executor) Do(ctx context.Context, r *Request) (*Response, error) {
	resp, token, err := e.attempt(ctx, r, "")
	code, ok := needsReauth(err)
	if !ok {
		return resp, err
	}

	e.logger.Warn("credentials rejected, refreshing token",
		"path", r.Path,
		"code", code,
	)

	fresh, rerr := e.session.Refresh(ctx, token)
	if rerr != nil || fresh == "" {
		e.logger.Warn("token refresh failed, not retrying",
			"path", r.Path,
			"error", rerr,
		)
		return nil, err
	}

	resp, _, err = e.attempt(ctx, r, fresh)
	return resp, err
}

// attempt performs one request. With an empty bearer the session decides
// the credentials; it returns the token the request carried.
func (e *Executor) attempt(ctx context.Context, r *Request, bearer string) (*Response, string, error) {
	var (
		body        io.ReadCloser
		contentType string
	)
	switch {
	case r.Multipart != nil:
		body, contentType = r.Multipart.reader()
	case r.Form != nil:
		body = io.NopCloser(strings.NewReader(r.Form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	}

	endpoint := e.address + r.Path
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = body
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, reqBody)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, "", normalize(r.Path, 0, nil, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !r.Binary {
		req.Header.Set("Accept", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	token := bearer
	if token != "" {
		setAuth(req, e.session.creds, token)
	} else {
		token = e.session.Authorize(ctx, req)
	}

	start := time.Now()
	resp, err := send(e.doer, r.Path, req, r.Binary)
	// A Doer is not required to consume or close the body. Closing the
	// pipe unblocks the multipart writer goroutine.
	if body != nil {
		body.Close()
	}

	status := 0
	if resp != nil {
		status = resp.Status
	} else if te, ok := err.(*Error); ok {
		status = te.Status
	}
	e.logger.Debug("request",
		"method", r.Method,
		"path", r.Path,
		"request_id", requestID,
		"bearer", token != "",
		"status", status,
		"duration", time.Since(start),
	)

	return resp, token, err
}
