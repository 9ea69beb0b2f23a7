// Package digest verifies downloaded content against the digest a server
// declares in its ETag header.
//
// The tDoc service publishes the hex digest of a document's bytes as the
// entity tag of the binary download, e.g.
//
//	ETag: "3A7BD3E2360A3D29EEA436FCFB7E44C735D117C42D1C1835420B6B9942DD4F1B"
//	ETag: W/"9d1a8f0c2e5b7a4d6c3e1f0a2b4c6d8e0f1a3b5c-gzip"
//
// Digests shorter than 64 hex characters are SHA-1, longer ones SHA-256.
// Entity tags with fewer than 40 hex characters, such as "5f1a3b2c-3b2",
// are not digests and skip verification.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"regexp"
	"strings"
)

// ErrMismatch is matched by every *MismatchError.
var ErrMismatch = errors.New("digest mismatch")

const (
	// sha1HexLen is the shortest hex string taken as a digest.
	sha1HexLen = 40
	// sha256HexLen is the hex length at which SHA-256 is selected.
	sha256HexLen = 64
)

// etagPattern captures the hex digest at the start of a (possibly weak)
// quoted entity tag, terminated by a suffix separator or the closing quote.
var etagPattern = regexp.MustCompile(`^(?:W/)?"([0-9A-Fa-f]+)(?:-|")`)

// MismatchError reports content whose computed digest differs from the
// declared one.
type MismatchError struct {
	Algorithm string // "sha1" or "sha256"
	Declared  string // lower-cased declared digest
	Computed  string // lower-cased computed digest
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s digest mismatch: declared %s, computed %s", e.Algorithm, e.Declared, e.Computed)
}

// Is makes errors.Is(err, ErrMismatch) hold.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// FromETag extracts the hex digest from an ETag header value.
func FromETag(etag string) (string, bool) {
	m := etagPattern.FindStringSubmatch(strings.TrimSpace(etag))
	if m == nil || len(m[1]) < sha1HexLen {
		return "", false
	}
	return m[1], true
}

// Algorithm returns the algorithm name and a fresh hash for a hex digest
// of the given form.
func Algorithm(hexDigest string) (string, hash.Hash) {
	if len(hexDigest) < sha256HexLen {
		return "sha1", sha1.New()
	}
	return "sha256", sha256.New()
}

// Sum computes the lower-case hex digest of data with the algorithm that
// matches the declared digest's length.
func Sum(data []byte, declared string) (string, string) {
	name, h := Algorithm(declared)
	h.Write(data)
	return name, hex.EncodeToString(h.Sum(nil))
}

// Verify checks data against the digest declared in etag. A missing or
// non-hex ETag skips verification.
func Verify(data []byte, etag string) error {
	declared, ok := FromETag(etag)
	if !ok {
		return nil
	}
	return VerifyHex(data, declared)
}

// VerifyHex checks data against a bare hex digest, ignoring case.
func VerifyHex(data []byte, declared string) error {
	name, computed := Sum(data, declared)
	declared = strings.ToLower(declared)
	if computed != declared {
		return &MismatchError{
			Algorithm: name,
			Declared:  declared,
			Computed:  computed,
		}
	}
	return nil
}
