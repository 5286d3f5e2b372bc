package codec

import "strings"

// Descriptor identifies a codec by its content type and content encoding.
// An empty ContentEncoding means the body is not compressed.
type Descriptor struct {
	ContentType     string
	ContentEncoding string
}

// Key returns the normalized form used as the registry key. Both fields are
// trimmed and lowercased, so two descriptors differing only in case share a key.
func (d Descriptor) Key() Descriptor {
	return Descriptor{
		ContentType:     NormalizeToken(d.ContentType),
		ContentEncoding: NormalizeToken(d.ContentEncoding),
	}
}

// Equal compares two descriptors case-insensitively.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Key() == other.Key()
}

// HasEncoding reports whether the descriptor carries a content encoding.
func (d Descriptor) HasEncoding() bool {
	return NormalizeToken(d.ContentEncoding) != ""
}

func (d Descriptor) String() string {
	k := d.Key()
	if k.ContentEncoding == "" {
		return k.ContentType
	}
	return k.ContentType + "+" + k.ContentEncoding
}

// NormalizeToken lowercases and trims a content type or encoding token.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
