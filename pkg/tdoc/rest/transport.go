package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Doer performs HTTP requests. *http.Client satisfies it; the connection
// pool, TLS and redirects are its concern.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials identify the client to the tDoc service.
type Credentials struct {
	Address  string
	Username string
	Password string
}

// NormalizeAddress returns address with exactly one trailing slash.
func NormalizeAddress(address string) string {
	return strings.TrimRight(address, "/") + "/"
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// Value is the decoded JSON body, or the body as a string when it is
	// not JSON. It is nil for binary responses.
	Value any
}

// send performs req and reads the whole body. Non-binary bodies are
// decoded; a status >= 400 or an error object in the body is returned as
// an *Error.
func send(doer Doer, op string, req *http.Request, binary bool) (*Response, error) {
	resp, err := doer.Do(req)
	if err != nil {
		return nil, normalize(op, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, normalize(op, 0, nil, fmt.Errorf("failed to read response: %w", err))
	}

	r := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}

	isJSON := isJSONContent(resp.Header.Get("Content-Type"))
	if !binary || isJSON || resp.StatusCode >= http.StatusBadRequest {
		v, err := decodeBody(body, isJSON)
		if err != nil && resp.StatusCode < http.StatusBadRequest {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrUnexpectedResponse, err)
		}
		if !binary {
			r.Value = v
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, normalize(op, resp.StatusCode, v, nil)
		}
		if _, ok := errorObject(v); ok {
			return nil, normalize(op, resp.StatusCode, v, nil)
		}
	}

	return r, nil
}

// decodeBody decodes a JSON body. Bodies that are not declared as JSON and
// fail to decode are returned as text.
func decodeBody(body []byte, isJSON bool) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		if isJSON {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return string(body), nil
	}
	return v, nil
}

func isJSONContent(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
