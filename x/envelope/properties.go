package envelope

import "strings"

// Properties holds the user metadata carried next to a message body
type Properties map[string]any

// Reserved property keys written by the body writer
const (
	// PropMessageType holds the fully-qualified name of the payload type.
	PropMessageType = "MessageType"

	// PropContentEncoding holds the lowercase content encoding, e.g. "gzip".
	PropContentEncoding = "ContentEncoding"
)

// Has reports whether key is present, whatever its value
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String retrieves a string property by key
func (p Properties) String(key string) (string, bool) {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// MessageType returns the declared payload type name
func (p Properties) MessageType() (string, bool) {
	return p.String(PropMessageType)
}

// ContentEncoding returns the lowercased content encoding. Missing or
// non-string values report no encoding.
func (p Properties) ContentEncoding() (string, bool) {
	s, ok := p.String(PropContentEncoding)
	if !ok {
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s != ""
}

// SetIfAbsent stores value under key unless the key is already present.
// It reports whether the value was stored.
func (p Properties) SetIfAbsent(key string, value any) bool {
	if p.Has(key) {
		return false
	}
	p[key] = value
	return true
}
