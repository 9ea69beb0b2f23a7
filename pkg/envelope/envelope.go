// Package envelope unwraps parcel XML payloads.
//
// A parcel is delivered either as plain XML or as a signed envelope: a
// PKCS#7 SignedData structure (DER, or PEM armoured) whose embedded content
// is the compressed XML. Unwrap returns the XML text in both cases.
package envelope

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/smallstep/pkcs7"
)

// ErrEmpty is returned for a zero-length payload.
var ErrEmpty = errors.New("empty parcel payload")

const xmlMarker = '<'

// IsPlainXML reports whether data is an unwrapped XML document.
func IsPlainXML(data []byte) bool {
	return len(data) > 0 && data[0] == xmlMarker
}

// Unwrap returns the XML text carried by data.
func Unwrap(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if IsPlainXML(data) {
		return string(data), nil
	}

	content, err := SignedContent(data)
	if err != nil {
		return "", err
	}

	plain, err := Decompress(content)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// SignedContent extracts the content embedded in a PKCS#7 SignedData
// structure. The signature is not verified.
func SignedContent(data []byte) ([]byte, error) {
	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}

	p7, err := pkcs7.Parse(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signed envelope: %w", err)
	}
	if len(p7.Content) == 0 {
		return nil, fmt.Errorf("signed envelope has no embedded content")
	}
	return p7.Content, nil
}

// Decompress inflates gzip, zlib or raw deflate content, detected by its
// leading bytes. Content that is already XML is returned as is.
func Decompress(content []byte) ([]byte, error) {
	if IsPlainXML(content) {
		return content, nil
	}

	var (
		r   io.ReadCloser
		err error
	)
	switch {
	case len(content) >= 2 && content[0] == 0x1f && content[1] == 0x8b:
		r, err = gzip.NewReader(bytes.NewReader(content))
	case len(content) >= 2 && content[0] == 0x78 && (uint16(content[0])<<8|uint16(content[1]))%31 == 0:
		r, err = zlib.NewReader(bytes.NewReader(content))
	default:
		r = flate.NewReader(bytes.NewReader(content))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed content: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress content: %w", err)
	}
	return out, nil
}
