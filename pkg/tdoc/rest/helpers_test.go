package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
)

const (
	testUser = "tester"
	testPass = "secret"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{"code": code, "message": message})
}

// bearer returns the bearer token of r, or "" if r uses another scheme.
func bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func basicOK(r *http.Request) bool {
	u, p, ok := r.BasicAuth()
	return ok && u == testUser && p == testPass
}

func newTestExecutor(t *testing.T, srv *httptest.Server) *Executor {
	t.Helper()
	return NewExecutor(Options{
		Credentials: Credentials{
			Address:  srv.URL,
			Username: testUser,
			Password: testPass,
		},
		HTTPClient: srv.Client(),
		Logger:     hclog.NewNullLogger(),
	})
}
