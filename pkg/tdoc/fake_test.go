package tdoc

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"
	"github.com/smallstep/pkcs7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	fakeUser  = "tester"
	fakePass  = "secret"
	fakeToken = "fake-jwt"
)

type fakeDoc struct {
	id      int64
	docType string
	period  int
	meta    map[string]any
	content []byte
}

func (d *fakeDoc) hash() string {
	sum := sha256.Sum256(d.content)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func (d *fakeDoc) object() map[string]any {
	names := make([]string, 0, len(d.meta))
	for k := range d.meta {
		names = append(names, k)
	}
	slices.Sort(names)

	metadata := make([]any, 0, len(names))
	for _, k := range names {
		metadata = append(metadata, map[string]any{"name": k, "value": d.meta[k]})
	}

	return map[string]any{
		"docid":    d.id,
		"hash":     d.hash(),
		"doctype":  d.docType,
		"period":   strconv.Itoa(d.period),
		"parcel":   7,
		"metadata": metadata,
		"mimetype": "text/plain",
	}
}

// fakeTDoc is an in-memory tDoc service.
type fakeTDoc struct {
	srv *httptest.Server

	mu        sync.Mutex
	docs      []*fakeDoc
	requests  map[string]int
	corrupt   bool
	parcelXML []byte
}

func newFakeTDoc(t *testing.T) *fakeTDoc {
	t.Helper()
	f := &fakeTDoc{requests: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTDoc) client(t *testing.T, fs afero.Fs) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Address = f.srv.URL
	cfg.Username = fakeUser
	cfg.Password = fakePass
	cfg.HTTPClient = f.srv.Client()
	cfg.Logger = hclog.NewNullLogger()
	cfg.Fs = fs

	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

// count returns the number of requests made to path, or to all paths but
// login when path is empty.
func (f *fakeTDoc) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path != "" {
		return f.requests[path]
	}
	n := 0
	for p, c := range f.requests {
		if p != "login" {
			n += c
		}
	}
	return n
}

func (f *fakeTDoc) add(doc *fakeDoc) *fakeDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.id = int64(297820 + len(f.docs))
	f.docs = append(f.docs, doc)
	return doc
}

func (f *fakeTDoc) find(id string) *fakeDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if strconv.FormatInt(d.id, 10) == id {
			return d
		}
	}
	return nil
}

func (f *fakeTDoc) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	f.mu.Lock()
	f.requests[path]++
	f.mu.Unlock()

	if path == "login" {
		if u, p, ok := r.BasicAuth(); !ok || u != fakeUser || p != fakePass {
			writeError(w, http.StatusUnauthorized, 0, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"jwt": fakeToken})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+fakeToken {
		writeError(w, http.StatusUnauthorized, 338, "basic authentication disabled")
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case path == "docs/upload" || path == "docs/update":
		f.store(w, r, path == "docs/update")
	case path == "docs/search":
		f.search(w, r)
	case path == "docs/parcel/create":
		writeJSON(w, http.StatusOK, map[string]any{"parcel": 17})
	case path == "docs/parcel/close":
		if r.FormValue("parcel") == "broken" {
			writeJSON(w, http.StatusOK, map[string]any{"result": "ok"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"parcel": map[string]any{"id": r.FormValue("parcel"), "status": "closed"}})
	case path == "docs/parcel/delete":
		writeJSON(w, http.StatusOK, map[string]any{"parcel": r.FormValue("parcel")})
	case len(parts) == 3 && parts[1] == "parcel":
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(f.parcelXML)
	case len(parts) >= 2 && parts[0] == "docs":
		f.document(w, r, parts[1], strings.Join(parts[2:], "/"))
	case path == "company/list":
		writeJSON(w, http.StatusOK, []any{map[string]any{"id": 1, "name": "ACME"}})
	case path == "doctype/list":
		writeJSON(w, http.StatusOK, []string{"File", "Invoice"})
	case path == "doctype":
		writeJSON(w, http.StatusOK, []any{map[string]any{
			"name":   r.URL.Query().Get("doctype"),
			"custom": `{"pdf":true}`,
		}})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeTDoc) store(w http.ResponseWriter, r *http.Request, update bool) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeError(w, http.StatusBadRequest, 0, err.Error())
		return
	}

	var meta map[string]any
	if mf, _, err := r.FormFile("meta"); err == nil {
		_ = json.NewDecoder(mf).Decode(&meta)
		mf.Close()
	}
	if r.FormValue("ready") == "1" && meta == nil {
		writeError(w, http.StatusOK, 68, "Missing metadata")
		return
	}

	var content []byte
	if df, _, err := r.FormFile("document"); err == nil {
		content, _ = io.ReadAll(df)
		df.Close()
	}

	var doc *fakeDoc
	if update {
		doc = f.find(r.FormValue("id"))
		if doc == nil {
			writeError(w, http.StatusOK, 231, "Document not found")
			return
		}
		if meta != nil {
			doc.meta = meta
		}
		if content != nil {
			doc.content = content
		}
	} else {
		period, _ := strconv.Atoi(r.FormValue("period"))
		doc = f.add(&fakeDoc{
			docType: r.FormValue("doctype"),
			period:  period,
			meta:    meta,
			content: content,
		})
	}

	resp := map[string]any{"document": doc.object()}
	if _, ok := meta["Warn"]; ok {
		resp["warning"] = []any{"Unknown field Warn", "Warn", "ignored"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeTDoc) search(w http.ResponseWriter, r *http.Request) {
	var query map[string]any
	if m := r.FormValue("meta"); m != "" {
		if err := json.Unmarshal([]byte(m), &query); err != nil {
			writeError(w, http.StatusOK, 1, "invalid meta")
			return
		}
	}
	limit, _ := strconv.Atoi(r.FormValue("limit"))
	complete := r.FormValue("complete") == "1"

	f.mu.Lock()
	defer f.mu.Unlock()

	docs := []any{}
	for i := len(f.docs) - 1; i >= 0; i-- {
		d := f.docs[i]
		if d.docType != r.FormValue("doctype") || !matches(d.meta, query) {
			continue
		}
		if limit > 0 && len(docs) == limit {
			break
		}
		if complete {
			docs = append(docs, d.object())
		} else {
			docs = append(docs, d.id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func matches(meta, query map[string]any) bool {
	for k, v := range query {
		if fmt.Sprint(meta[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func (f *fakeTDoc) document(w http.ResponseWriter, r *http.Request, id, action string) {
	doc := f.find(id)
	if doc == nil {
		writeError(w, http.StatusOK, 231, "Document not found")
		return
	}

	switch action {
	case "":
		f.mu.Lock()
		content := doc.content
		if f.corrupt {
			content = append([]byte("X"), content[1:]...)
		}
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("ETag", `"`+doc.hash()+`"`)
		_, _ = w.Write(content)
	case "meta":
		writeJSON(w, http.StatusOK, doc.object())
	case "meta/update":
		var meta map[string]any
		_ = json.Unmarshal([]byte(r.FormValue("meta")), &meta)
		doc.meta = meta
		writeJSON(w, http.StatusOK, doc.object())
	case "link":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(f.srv.URL + "/share/" + id))
	case "delete":
		writeJSON(w, http.StatusOK, map[string]any{"deleted": doc.id})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{"code": code, "message": message})
}

// signedEnvelope gzips content and wraps it in PKCS#7 SignedData.
func signedEnvelope(t *testing.T, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "tDoc parcel signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	sd, err := pkcs7.NewSignedData(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, sd.AddSigner(cert, key, pkcs7.SignerInfoConfig{}))
	out, err := sd.Finish()
	require.NoError(t, err)
	return out
}
