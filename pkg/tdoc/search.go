package tdoc

import (
	"context"
	"fmt"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

const searchPath = "docs/search"

// Search returns the ids of the documents matching p, in the order sent by
// the service (newest first).
func (c *Client) Search(ctx context.Context, p SearchParams) ([]int64, error) {
	docs, err := c.search(ctx, &p, false)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		id, ok := documentID(d)
		if !ok {
			return nil, fmt.Errorf("%s: %w: invalid document id %v", searchPath, ErrUnexpectedResponse, d)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SearchDocuments returns the metadata of the documents matching p.
func (c *Client) SearchDocuments(ctx context.Context, p SearchParams) ([]*Document, error) {
	docs, err := c.search(ctx, &p, true)
	if err != nil {
		return nil, err
	}

	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		doc, err := c.resolve(ctx, &p, d)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// SearchOne returns the single document matching p. It fails with
// ErrNotUnique when no document or more than one document matches.
func (c *Client) SearchOne(ctx context.Context, p SearchParams) (*Document, error) {
	p.Limit = 2
	docs, err := c.search(ctx, &p, true)
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrNotUnique, len(docs))
	}
	return c.resolve(ctx, &p, docs[0])
}

func (c *Client) search(ctx context.Context, p *SearchParams, complete bool) ([]any, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	form, err := p.values(complete)
	if err != nil {
		return nil, err
	}

	v, err := c.exec.Post(ctx, searchPath, form)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, rest.Unexpected(searchPath, v)
	}
	docs, ok := obj["documents"].([]any)
	if !ok {
		return nil, rest.Unexpected(searchPath, v)
	}
	return docs, nil
}

// resolve returns the document described by a search result. Servers that
// ignore "complete" return bare ids, which are looked up one by one.
func (c *Client) resolve(ctx context.Context, p *SearchParams, entry any) (*Document, error) {
	if _, ok := entry.(map[string]any); ok {
		return decodeDocument(searchPath, entry)
	}

	id, ok := documentID(entry)
	if !ok {
		return nil, fmt.Errorf("%s: %w: invalid document id %v", searchPath, ErrUnexpectedResponse, entry)
	}
	return c.DocumentMeta(ctx, DocumentParams{
		ID:      id,
		User:    p.User,
		Company: p.Company,
	})
}
