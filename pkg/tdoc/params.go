package tdoc

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Bool returns a pointer to b, for optional flags such as Ready.
func Bool(b bool) *bool {
	return &b
}

// DocumentFields are the fields shared by Upload and Update.
type DocumentFields struct {
	MimeType string `json:"mimetype,omitempty"`
	User     string `json:"user,omitempty"`
	Company  string `json:"company,omitempty"`
	Period   int    `json:"period,omitempty"`
	Pages    int    `json:"pages,omitempty"`

	// Meta is sent as a JSON attachment.
	Meta map[string]any `json:"meta,omitempty"`

	// Alias and Pin are only sent together.
	Alias string `json:"alias,omitempty"`
	Pin   string `json:"pin,omitempty"`

	// File is the path of the content to send, read through Config.Fs.
	// Data is used instead when File is empty.
	File     string `json:"file,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Filename string `json:"filename,omitempty"` // name of the Data attachment

	// Ready marks the document complete. Nil leaves it unset.
	Ready *bool `json:"ready,omitempty"`
}

func (f *DocumentFields) ready() bool {
	return f.Ready != nil && *f.Ready
}

func (f *DocumentFields) hasContent() bool {
	return f.File != "" || len(f.Data) > 0
}

// shape adds the shared fields to form. Content is attached separately.
func (f *DocumentFields) shape(form *rest.Form) error {
	if f.MimeType != "" {
		form.Set("mimetype", f.MimeType)
	}
	if f.User != "" {
		form.Set("user", f.User)
	}
	if f.Company != "" {
		form.Set("company", f.Company)
	}
	if f.Period != 0 {
		form.Set("period", strconv.Itoa(f.Period))
	}
	if f.Pages != 0 {
		form.Set("pages", strconv.Itoa(f.Pages))
	}
	if f.Meta != nil {
		b, err := json.Marshal(f.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		form.AddData("meta", "a.json", "application/json", b)
	}
	if f.Alias != "" && f.Pin != "" {
		form.Set("alias", f.Alias)
		form.Set("pin", f.Pin)
	}
	if f.Ready != nil {
		form.Set("ready", flag(*f.Ready))
	}
	return nil
}

// UploadParams are the parameters of Upload.
type UploadParams struct {
	DocType   string `json:"doctype"`
	Parcel    string `json:"parcel,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`

	DocumentFields
}

// Validate checks the required fields. A ready document needs metadata and
// content.
func (p *UploadParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DocType, validation.Required),
		validation.Field(&p.Period, validation.Required),
		validation.Field(&p.Meta,
			validation.When(p.ready(), validation.NotNil.Error("is required when the document is ready"))),
		validation.Field(&p.File,
			validation.When(p.ready() && !p.hasContent(),
				validation.Required.Error("file or data is required when the document is ready"))),
	)
}

// UpdateParams are the parameters of Update.
type UpdateParams struct {
	// ID is sent only when set; the service reports a missing document.
	ID int64 `json:"id,omitempty"`

	DocumentFields
}

// MetaUpdateParams are the parameters of MetaUpdate.
type MetaUpdateParams struct {
	ID      int64          `json:"id"`
	Meta    map[string]any `json:"meta"`
	User    string         `json:"user,omitempty"`
	Company string         `json:"company,omitempty"`
}

// Validate checks the required fields.
func (p *MetaUpdateParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&p.Meta, validation.Required),
	)
}

// SearchParams are the parameters of Search, SearchDocuments and
// SearchOne.
type SearchParams struct {
	DocType string `json:"doctype"`

	// Meta is the query, e.g. {"Numero documento": "123"} or
	// {"Data": {"$dateIns": ["2023-01-01", "2023-12-31"]}}.
	Meta map[string]any `json:"meta,omitempty"`

	User    string `json:"user,omitempty"`
	Company string `json:"company,omitempty"`
	Period  int    `json:"period,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Validate checks the required fields.
func (p *SearchParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DocType, validation.Required),
		validation.Field(&p.Limit, validation.Min(0)),
	)
}

func (p *SearchParams) values(complete bool) (url.Values, error) {
	v := url.Values{}
	v.Set("doctype", p.DocType)
	if p.Meta != nil {
		b, err := json.Marshal(p.Meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode meta: %w", err)
		}
		v.Set("meta", string(b))
	}
	if p.User != "" {
		v.Set("user", p.User)
	}
	if p.Company != "" {
		v.Set("company", p.Company)
	}
	if p.Period != 0 {
		v.Set("period", strconv.Itoa(p.Period))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if complete {
		v.Set("complete", "1")
	}
	return v, nil
}

// DocumentParams identify a document for DocumentMeta, Document,
// DocumentLink and DocumentDelete.
type DocumentParams struct {
	ID      int64  `json:"id"`
	User    string `json:"user,omitempty"`
	Company string `json:"company,omitempty"`
}

// Validate checks the required fields.
func (p *DocumentParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, validation.Min(int64(1))),
	)
}

func (p *DocumentParams) query() url.Values {
	return userCompany(p.User, p.Company)
}

// ParcelCreateParams are the parameters of ParcelCreate.
type ParcelCreateParams struct {
	Company  string `json:"company"`
	DocType  string `json:"doctype"`
	Filename string `json:"filename"`
	User     string `json:"user,omitempty"`
}

// Validate checks the required fields.
func (p *ParcelCreateParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Company, validation.Required),
		validation.Field(&p.DocType, validation.Required),
		validation.Field(&p.Filename, validation.Required),
	)
}

// ParcelCloseParams are the parameters of ParcelClose.
type ParcelCloseParams struct {
	ID    string `json:"id"`
	User  string `json:"user,omitempty"`
	Extra string `json:"extra,omitempty"`
}

// Validate checks the required fields.
func (p *ParcelCloseParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
	)
}

// ParcelDeleteParams are the parameters of ParcelDelete. Error records why
// the parcel is discarded.
type ParcelDeleteParams struct {
	ID    string `json:"id"`
	User  string `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
	Extra string `json:"extra,omitempty"`
}

// Validate checks the required fields.
func (p *ParcelDeleteParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
	)
}

// ParcelXMLParams are the parameters of ParcelXML.
type ParcelXMLParams struct {
	ID      string `json:"id"`
	User    string `json:"user,omitempty"`
	Company string `json:"company,omitempty"`
}

// Validate checks the required fields.
func (p *ParcelXMLParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
	)
}

// DocTypeParams are the parameters of DocType.
type DocTypeParams struct {
	Name    string `json:"doctype"`
	Company string `json:"company,omitempty"`
}

// Validate checks the required fields.
func (p *DocTypeParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
	)
}

func userCompany(user, company string) url.Values {
	v := url.Values{}
	if user != "" {
		v.Set("user", user)
	}
	if company != "" {
		v.Set("company", company)
	}
	return v
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
