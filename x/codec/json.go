package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// JSONCodec encodes bodies as UTF-8 JSON. Content-Type: application/json
type JSONCodec struct {
	prefix     string
	indent     string
	escapeHTML bool

	useNumber             bool
	disallowUnknownFields bool
}

// JSONOption configures a JSONCodec
type JSONOption func(*JSONCodec)

// WithJSONIndent indents encoded bodies like json.MarshalIndent
func WithJSONIndent(prefix, indent string) JSONOption {
	return func(c *JSONCodec) {
		c.prefix, c.indent = prefix, indent
	}
}

// WithoutJSONHTMLEscape leaves <, > and & unescaped in encoded strings
func WithoutJSONHTMLEscape() JSONOption {
	return func(c *JSONCodec) {
		c.escapeHTML = false
	}
}

// WithJSONUseNumber decodes numbers held in interface values as json.Number
func WithJSONUseNumber() JSONOption {
	return func(c *JSONCodec) {
		c.useNumber = true
	}
}

// WithJSONDisallowUnknownFields fails decoding when an object key has no
// matching struct field.
func WithJSONDisallowUnknownFields() JSONOption {
	return func(c *JSONCodec) {
		c.disallowUnknownFields = true
	}
}

// NewJSONCodec creates a new JSON codec. Without options it behaves like
// json.Marshal and json.Unmarshal.
func NewJSONCodec(opts ...JSONOption) *JSONCodec {
	c := &JSONCodec{escapeHTML: true}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *JSONCodec) ContentType() string     { return ContentTypeJSON }
func (c *JSONCodec) ContentEncoding() string { return "" }

// Marshal encodes v to JSON bytes
func (c *JSONCodec) Marshal(v any) ([]byte, error) {
	if IsNil(v) {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(c.escapeHTML)
	if c.prefix != "" || c.indent != "" {
		enc.SetIndent(c.prefix, c.indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes a single JSON value into v
func (c *JSONCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.useNumber {
		dec.UseNumber()
	}
	if c.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("json: invalid data after top-level value")
	}
	return nil
}
