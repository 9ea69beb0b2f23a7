package rest

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Part is a file part of a multipart form. Open is called once per
// attempt so the body can be sent again on retry.
type Part struct {
	Field       string
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Form is a multipart/form-data body.
type Form struct {
	Fields url.Values
	Parts  []Part
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{Fields: url.Values{}}
}

// Set sets a plain field.
func (f *Form) Set(key, value string) {
	f.Fields.Set(key, value)
}

// AddData adds an in-memory file part.
func (f *Form) AddData(field, filename, contentType string, data []byte) {
	f.Parts = append(f.Parts, Part{
		Field:       field,
		Filename:    filename,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	})
}

// AddFile adds a file part whose content is read from open.
func (f *Form) AddFile(field, filename, contentType string, open func() (io.ReadCloser, error)) {
	f.Parts = append(f.Parts, Part{
		Field:       field,
		Filename:    filename,
		ContentType: contentType,
		Open:        open,
	})
}

// Has reports whether a field or part is set.
func (f *Form) Has(key string) bool {
	if f.Fields.Has(key) {
		return true
	}
	for _, p := range f.Parts {
		if p.Field == key {
			return true
		}
	}
	return false
}

// reader streams the encoded form and returns it with its content type.
func (f *Form) reader() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(f.write(mw))
	}()

	return pr, mw.FormDataContentType()
}

func (f *Form) write(mw *multipart.Writer) error {
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range f.Fields[k] {
			if err := mw.WriteField(k, v); err != nil {
				return err
			}
		}
	}

	for _, p := range f.Parts {
		if err := writePart(mw, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, p Part) error {
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.Field), escapeQuotes(p.Filename)))
	h.Set("Content-Type", contentType)

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	r, err := p.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p.Field, err)
	}
	defer r.Close()

	_, err = io.Copy(w, r)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
