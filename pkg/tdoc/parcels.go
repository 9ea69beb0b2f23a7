package tdoc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/andxor/tdoc/pkg/envelope"
)

// ParcelCreate opens a new parcel.
func (c *Client) ParcelCreate(ctx context.Context, p ParcelCreateParams) (*Parcel, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	form := url.Values{}
	form.Set("company", p.Company)
	form.Set("doctype", p.DocType)
	form.Set("filename", p.Filename)
	if p.User != "" {
		form.Set("user", p.User)
	}
	return c.postParcel(ctx, "docs/parcel/create", form)
}

// ParcelClose closes a parcel.
func (c *Client) ParcelClose(ctx context.Context, p ParcelCloseParams) (*Parcel, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	form := url.Values{}
	form.Set("parcel", p.ID)
	if p.User != "" {
		form.Set("user", p.User)
	}
	if p.Extra != "" {
		form.Set("extra", p.Extra)
	}
	return c.postParcel(ctx, "docs/parcel/close", form)
}

// ParcelDelete discards a parcel.
func (c *Client) ParcelDelete(ctx context.Context, p ParcelDeleteParams) (*Parcel, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	form := url.Values{}
	form.Set("parcel", p.ID)
	if p.User != "" {
		form.Set("user", p.User)
	}
	if p.Error != "" {
		form.Set("error", p.Error)
	}
	if p.Extra != "" {
		form.Set("extra", p.Extra)
	}
	return c.postParcel(ctx, "docs/parcel/delete", form)
}

func (c *Client) postParcel(ctx context.Context, path string, form url.Values) (*Parcel, error) {
	v, err := c.exec.Post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	return parcelResponse(path, v)
}

// ParcelXML returns the XML description of a parcel. Signed envelopes are
// unwrapped.
func (c *Client) ParcelXML(ctx context.Context, p ParcelXMLParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", invalid(err)
	}

	path := "docs/parcel/" + url.PathEscape(p.ID) + ".xml"
	data, err := c.exec.GetBinary(ctx, path, userCompany(p.User, p.Company))
	if err != nil {
		return "", err
	}

	xml, err := envelope.Unwrap(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return xml, nil
}
