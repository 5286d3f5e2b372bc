package codec

import (
	"bytes"
	"encoding/xml"
)

// XMLCodec encodes bodies as UTF-8 XML documents with a leading declaration.
// Content-Type: application/xml
type XMLCodec struct {
	prefix      string
	indent      string
	declaration bool
	lenient     bool
}

// XMLOption configures an XMLCodec
type XMLOption func(*XMLCodec)

// WithXMLIndent indents encoded documents like xml.MarshalIndent
func WithXMLIndent(prefix, indent string) XMLOption {
	return func(c *XMLCodec) {
		c.prefix, c.indent = prefix, indent
	}
}

// WithoutXMLDeclaration omits the <?xml ...?> header from encoded documents
func WithoutXMLDeclaration() XMLOption {
	return func(c *XMLCodec) {
		c.declaration = false
	}
}

// WithXMLLenient decodes with xml.Decoder.Strict disabled, accepting
// unmatched tags and unknown entities.
func WithXMLLenient() XMLOption {
	return func(c *XMLCodec) {
		c.lenient = true
	}
}

// NewXMLCodec creates a new XML codec
func NewXMLCodec(opts ...XMLOption) *XMLCodec {
	c := &XMLCodec{declaration: true}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *XMLCodec) ContentType() string     { return ContentTypeXML }
func (c *XMLCodec) ContentEncoding() string { return "" }

// Marshal encodes v as an XML document
func (c *XMLCodec) Marshal(v any) ([]byte, error) {
	if IsNil(v) {
		return nil, nil
	}

	var buf bytes.Buffer
	if c.declaration {
		buf.WriteString(xml.Header)
	}
	enc := xml.NewEncoder(&buf)
	if c.prefix != "" || c.indent != "" {
		enc.Indent(c.prefix, c.indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an XML document into v
func (c *XMLCodec) Unmarshal(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	if c.lenient {
		dec.Strict = false
		dec.AutoClose = xml.HTMLAutoClose
		dec.Entity = xml.HTMLEntity
	}
	return dec.Decode(v)
}
