package tdoc

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Document is the metadata of a stored document.
type Document struct {
	ID      int64  `mapstructure:"docid" json:"docid" yaml:"docid"`
	Hash    string `mapstructure:"hash" json:"hash,omitempty" yaml:"hash,omitempty"`
	Parcel  string `mapstructure:"parcel" json:"parcel,omitempty" yaml:"parcel,omitempty"`
	DocType string `mapstructure:"doctype" json:"doctype,omitempty" yaml:"doctype,omitempty"`
	Period  int    `mapstructure:"period" json:"period,omitempty" yaml:"period,omitempty"`

	// Metadata maps field names to values. The service sends it as a list
	// of name/value pairs.
	Metadata map[string]any `mapstructure:"metadata" json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Warning is set when an upload or update succeeded with warnings.
	Warning *Warning `mapstructure:"warning" json:"warning,omitempty" yaml:"warning,omitempty"`

	// Extra holds the fields not mapped above.
	Extra map[string]any `mapstructure:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Warning is the first warning message of an upload, followed by the
// remaining ones.
type Warning struct {
	Message string `mapstructure:"message" json:"message" yaml:"message"`
	Extra   []any  `mapstructure:"extra" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Parcel is the result of a parcel operation.
type Parcel struct {
	ID    string         `mapstructure:"id" json:"id" yaml:"id"`
	Extra map[string]any `mapstructure:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

func decode(input any, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// decodeDocument converts a document object from the service.
func decodeDocument(op string, v any) (*Document, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, rest.Unexpected(op, v)
	}

	m := maps.Clone(raw)
	if _, ok := m["docid"]; !ok {
		if id, ok := m["id"]; ok {
			m["docid"] = id
			delete(m, "id")
		}
	}
	if pairs, ok := m["metadata"].([]any); ok {
		m["metadata"] = nameValues(pairs)
	}

	var doc Document
	if err := decode(m, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, rest.ErrUnexpectedResponse, err)
	}
	return &doc, nil
}

// nameValues converts [{name, value}, ...] to a map.
func nameValues(pairs []any) map[string]any {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		e, ok := p.(map[string]any)
		if !ok {
			continue
		}
		name, ok := e["name"].(string)
		if !ok {
			continue
		}
		out[name] = e["value"]
	}
	return out
}

// documentResponse unwraps {document, warning?}. The first warning becomes
// the message, the rest its extra details.
func documentResponse(op string, v any) (*Document, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, rest.Unexpected(op, v)
	}
	raw, ok := obj["document"].(map[string]any)
	if !ok {
		return nil, rest.Unexpected(op, v)
	}

	if w, ok := obj["warning"].([]any); ok && len(w) > 0 {
		raw = maps.Clone(raw)
		raw["warning"] = map[string]any{
			"message": fmt.Sprint(w[0]),
			"extra":   w[1:],
		}
	}
	return decodeDocument(op, raw)
}

// parcelResponse returns the "parcel" value of v, which is either the
// parcel id or an object describing it.
func parcelResponse(op string, v any) (*Parcel, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, rest.Unexpected(op, v)
	}
	raw, ok := obj["parcel"]
	if !ok || raw == nil {
		return nil, rest.Unexpected(op, v)
	}

	switch p := raw.(type) {
	case map[string]any:
		var parcel Parcel
		if err := decode(p, &parcel); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, rest.ErrUnexpectedResponse, err)
		}
		return &parcel, nil
	case float64:
		return &Parcel{ID: strconv.FormatFloat(p, 'f', -1, 64)}, nil
	default:
		return &Parcel{ID: fmt.Sprint(p)}, nil
	}
}

// documentID converts a search result entry to a document id.
func documentID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	case map[string]any:
		if docid, ok := id["docid"]; ok {
			return documentID(docid)
		}
		if docid, ok := id["id"]; ok {
			return documentID(docid)
		}
	}
	return 0, false
}
