package tdoc

import (
	"context"
	"encoding/json"
	"maps"
	"net/url"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Companies lists the companies visible to the user.
func (c *Client) Companies(ctx context.Context) ([]any, error) {
	return c.list(ctx, "company/list", nil)
}

// DocTypes lists the document types visible to the user.
func (c *Client) DocTypes(ctx context.Context) ([]any, error) {
	return c.list(ctx, "doctype/list", nil)
}

// DocType returns the definition of a document type. A "custom" field sent
// as a JSON string is decoded.
func (c *Client) DocType(ctx context.Context, p DocTypeParams) ([]any, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	q := url.Values{}
	q.Set("doctype", p.Name)
	if p.Company != "" {
		q.Set("company", p.Company)
	}

	items, err := c.list(ctx, "doctype", q)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		items[i] = decodeCustom(item)
	}
	return items, nil
}

// list returns a list response. A single object is returned as a list of
// one.
func (c *Client) list(ctx context.Context, path string, query url.Values) ([]any, error) {
	v, err := c.exec.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	switch l := v.(type) {
	case []any:
		return l, nil
	case map[string]any:
		return []any{l}, nil
	}
	return nil, rest.Unexpected(path, v)
}

func decodeCustom(item any) any {
	obj, ok := item.(map[string]any)
	if !ok {
		return item
	}
	s, ok := obj["custom"].(string)
	if !ok {
		return item
	}

	var custom any
	if err := json.Unmarshal([]byte(s), &custom); err != nil {
		return item
	}
	obj = maps.Clone(obj)
	obj["custom"] = custom
	return obj
}
