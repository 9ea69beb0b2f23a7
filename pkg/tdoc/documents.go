package tdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Upload stores a new document.
func (c *Client) Upload(ctx context.Context, p UploadParams) (*Document, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	form := rest.NewForm()
	if err := p.shape(form); err != nil {
		return nil, err
	}
	form.Set("doctype", p.DocType)
	if p.Parcel != "" {
		form.Set("parcel", p.Parcel)
	}
	if p.Overwrite {
		form.Set("overwrite", "1")
	}
	if err := c.attach(form, &p.DocumentFields); err != nil {
		return nil, err
	}

	return c.postDocument(ctx, "docs/upload", form)
}

// Update replaces the content or metadata of an existing document.
func (c *Client) Update(ctx context.Context, p UpdateParams) (*Document, error) {
	form := rest.NewForm()
	if err := p.shape(form); err != nil {
		return nil, err
	}
	if p.ID != 0 {
		form.Set("id", strconv.FormatInt(p.ID, 10))
	}
	if err := c.attach(form, &p.DocumentFields); err != nil {
		return nil, err
	}

	return c.postDocument(ctx, "docs/update", form)
}

// attach adds the document content. A file is checked before any request
// is made and read anew on every attempt.
func (c *Client) attach(form *rest.Form, f *DocumentFields) error {
	switch {
	case f.File != "":
		info, err := c.fs.Stat(f.File)
		if err != nil {
			return fmt.Errorf("failed to stat document file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("document file %q is a directory", f.File)
		}
		path := f.File
		form.AddFile("document", filepath.Base(path), f.MimeType, func() (io.ReadCloser, error) {
			return c.fs.Open(path)
		})
	case len(f.Data) > 0:
		name := f.Filename
		if name == "" {
			name = "a.bin"
		}
		form.AddData("document", name, f.MimeType, f.Data)
	}
	return nil
}

func (c *Client) postDocument(ctx context.Context, path string, form *rest.Form) (*Document, error) {
	v, err := c.exec.PostMultipart(ctx, path, form)
	if err != nil {
		return nil, err
	}

	doc, err := documentResponse(path, v)
	if err != nil {
		return nil, err
	}
	if doc.Warning != nil {
		c.logger.Warn("document stored with warnings",
			"docid", doc.ID,
			"warning", doc.Warning.Message,
		)
	}
	return doc, nil
}

// MetaUpdate replaces the metadata of a document.
func (c *Client) MetaUpdate(ctx context.Context, p MetaUpdateParams) (*Document, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meta: %w", err)
	}
	form := userCompany(p.User, p.Company)
	form.Set("meta", string(meta))

	path := documentPath(p.ID, "meta/update")
	v, err := c.exec.Post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		if _, ok := obj["document"]; ok {
			return documentResponse(path, v)
		}
	}
	return decodeDocument(path, v)
}

// DocumentMeta returns the metadata of a document.
func (c *Client) DocumentMeta(ctx context.Context, p DocumentParams) (*Document, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	path := documentPath(p.ID, "meta")
	v, err := c.exec.Get(ctx, path, p.query())
	if err != nil {
		return nil, err
	}
	return decodeDocument(path, v)
}

// Document returns the content of a document, verified against the digest
// declared by the service.
func (c *Client) Document(ctx context.Context, p DocumentParams) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}
	return c.exec.GetBinary(ctx, documentPath(p.ID, ""), p.query())
}

// DocumentLink returns a shareable link to a document, as sent by the
// service.
func (c *Client) DocumentLink(ctx context.Context, p DocumentParams) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}
	return c.exec.Get(ctx, documentPath(p.ID, "link"), p.query())
}

// DocumentDelete deletes a document and returns the service response.
func (c *Client) DocumentDelete(ctx context.Context, p DocumentParams) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}
	return c.exec.Get(ctx, documentPath(p.ID, "delete"), p.query())
}

func documentPath(id int64, suffix string) string {
	path := "docs/" + strconv.FormatInt(id, 10)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}
