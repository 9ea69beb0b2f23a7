package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

var content = []byte("hello tdoc")

// service records the last search form and serves a single document.
type service struct {
	srv *httptest.Server

	mu         sync.Mutex
	searchForm map[string]string
	uploaded   []byte
	meta       map[string]any
}

func newService(t *testing.T) *service {
	t.Helper()
	s := &service{}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func document() map[string]any {
	return map[string]any{
		"docid":   42,
		"doctype": "Invoice",
		"period":  "2023",
		"metadata": []any{
			map[string]any{"name": "Numero", "value": "123"},
		},
	}
}

func (s *service) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "login" {
		writeJSON(w, map[string]string{"jwt": "cli-jwt"})
		return
	}

	switch path {
	case "docs/search":
		_ = r.ParseForm()
		s.mu.Lock()
		s.searchForm = map[string]string{}
		for k := range r.PostForm {
			s.searchForm[k] = r.PostForm.Get(k)
		}
		s.mu.Unlock()
		if r.PostForm.Get("complete") == "1" {
			writeJSON(w, map[string]any{"documents": []any{document(), document()}})
			return
		}
		writeJSON(w, map[string]any{"documents": []any{43, 42}})
	case "docs/upload":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		if f, _, err := r.FormFile("document"); err == nil {
			s.uploaded, _ = io.ReadAll(f)
			f.Close()
		}
		if f, _, err := r.FormFile("meta"); err == nil {
			_ = json.NewDecoder(f).Decode(&s.meta)
			f.Close()
		}
		s.mu.Unlock()
		writeJSON(w, map[string]any{"document": document()})
	case "docs/42":
		sum := sha256.Sum256(content)
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
		_, _ = w.Write(content)
	case "docs/42/link":
		writeJSON(w, map[string]any{"url": "https://tdoc.example.com/share/42"})
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": 231, "message": "Document not found"}`))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// testCommand returns a base command talking to s through the environment
// configuration.
func testCommand(t *testing.T, s *service) (*base.Command, *cli.MockUi) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("TDOC_ADDRESS", s.srv.URL)
	t.Setenv("TDOC_USERNAME", "tester")
	t.Setenv("TDOC_PASSWORD", "secret")

	ui := cli.NewMockUi()
	return &base.Command{
		Log: hclog.NewNullLogger(),
		UI:  ui,
		Fs:  afero.NewMemMapFs(),
		Configure: func(cfg *tdoc.Config) {
			cfg.HTTPClient = s.srv.Client()
		},
	}, ui
}

func TestSearchCommand(t *testing.T) {
	t.Run("Ids", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&SearchCommand{Command: b}).Run([]string{
			"-doctype=Invoice",
			`-meta={"Numero": "123"}`,
			"-limit=5",
		})
		require.Equal(t, 0, code, ui.ErrorWriter.String())

		var ids []int64
		require.NoError(t, json.Unmarshal([]byte(ui.OutputWriter.String()), &ids))
		assert.Equal(t, []int64{43, 42}, ids)
		assert.Equal(t, "Invoice", s.searchForm["doctype"])
		assert.Equal(t, "5", s.searchForm["limit"])
		assert.JSONEq(t, `{"Numero": "123"}`, s.searchForm["meta"])
	})

	t.Run("DateRange", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&SearchCommand{Command: b}).Run([]string{
			"-doctype=Invoice",
			"-since=2023-01-01",
			"-until=2023-03-31",
		})
		require.Equal(t, 0, code, ui.ErrorWriter.String())
		assert.JSONEq(t,
			`{"Data": {"$dateIns": ["2023-01-01", "2023-03-31"]}}`,
			s.searchForm["meta"])
	})

	t.Run("CompleteYAML", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&SearchCommand{Command: b}).Run([]string{
			"-doctype=Invoice", "-complete", "-format=yaml",
		})
		require.Equal(t, 0, code, ui.ErrorWriter.String())
		out := ui.OutputWriter.String()
		assert.Contains(t, out, "docid: 42")
		assert.Contains(t, out, "Numero: \"123\"")
	})

	t.Run("InvalidMeta", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&SearchCommand{Command: b}).Run([]string{"-doctype=Invoice", "-meta={"})
		assert.Equal(t, 1, code)
		assert.Contains(t, ui.ErrorWriter.String(), "invalid -meta")
		assert.Nil(t, s.searchForm)
	})

	t.Run("MissingDocType", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&SearchCommand{Command: b}).Run(nil)
		assert.Equal(t, 1, code)
		assert.Contains(t, ui.ErrorWriter.String(), "doctype")
	})
}

func TestSearchOneCommandNotUnique(t *testing.T) {
	s := newService(t)
	b, ui := testCommand(t, s)

	code := (&SearchOneCommand{SearchCommand: SearchCommand{Command: b}}).Run([]string{"-doctype=Invoice"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "found 2")
	assert.Equal(t, "2", s.searchForm["limit"])
}

func TestUploadCommand(t *testing.T) {
	s := newService(t)
	b, ui := testCommand(t, s)
	require.NoError(t, afero.WriteFile(b.Fs, "/in/invoice.txt", content, 0o644))

	code := (&UploadCommand{Command: b}).Run([]string{
		"-doctype=Invoice",
		"-period=2023",
		"-file=/in/invoice.txt",
		`-meta={"Numero": "123"}`,
	})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	assert.Equal(t, content, s.uploaded)
	assert.Equal(t, map[string]any{"Numero": "123"}, s.meta)

	var doc tdoc.Document
	require.NoError(t, json.Unmarshal([]byte(ui.OutputWriter.String()), &doc))
	assert.Equal(t, int64(42), doc.ID)
	assert.Equal(t, 2023, doc.Period)
}

func TestDownloadCommand(t *testing.T) {
	s := newService(t)
	b, ui := testCommand(t, s)

	code := (&DownloadCommand{Command: b}).Run([]string{"-o=/out/doc.txt", "42"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	got, err := afero.ReadFile(b.Fs, "/out/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Contains(t, ui.OutputWriter.String(), "Wrote 10 bytes")
}

func TestDownloadCommandErrors(t *testing.T) {
	cases := map[string]struct {
		args []string
		want string
	}{
		"NoOutput":   {[]string{"42"}, "o flag is required"},
		"InvalidID":  {[]string{"-o=x", "abc"}, `invalid document id "abc"`},
		"MissingID":  {[]string{"-o=x"}, "expected one document id"},
		"NotFound":   {[]string{"-o=x", "7"}, "Document not found"},
		"BadFormat":  {[]string{"-o=x", "-format=xml", "42"}, `unsupported format "xml"`},
		"BadAddress": {[]string{"-o=x", "-address=ftp://x", "42"}, "invalid tdoc config"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newService(t)
			b, ui := testCommand(t, s)

			code := (&DownloadCommand{Command: b}).Run(tc.args)
			assert.Equal(t, 1, code)
			assert.Contains(t, ui.ErrorWriter.String(), tc.want)
		})
	}
}

func TestLinkCommand(t *testing.T) {
	t.Run("Print", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		code := (&LinkCommand{Command: b}).Run([]string{"42"})
		require.Equal(t, 0, code, ui.ErrorWriter.String())
		assert.Contains(t, ui.OutputWriter.String(), "https://tdoc.example.com/share/42")
	})

	t.Run("Open", func(t *testing.T) {
		s := newService(t)
		b, ui := testCommand(t, s)

		var opened string
		orig := openURL
		openURL = func(u string) error {
			opened = u
			return nil
		}
		t.Cleanup(func() { openURL = orig })

		code := (&LinkCommand{Command: b}).Run([]string{"-open", "42"})
		require.Equal(t, 0, code, ui.ErrorWriter.String())
		assert.Equal(t, "https://tdoc.example.com/share/42", opened)
	})
}

func TestLinkURL(t *testing.T) {
	u, ok := linkURL("https://a")
	assert.True(t, ok)
	assert.Equal(t, "https://a", u)

	u, ok = linkURL(map[string]any{"link": "https://b"})
	assert.True(t, ok)
	assert.Equal(t, "https://b", u)

	_, ok = linkURL(map[string]any{"other": 1})
	assert.False(t, ok)
	_, ok = linkURL("")
	assert.False(t, ok)
}

// chdir changes the working directory to dir for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
