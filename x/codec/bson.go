package codec

import (
	"bytes"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// BSONCodec encodes bodies as BSON documents. Payloads must marshal to a
// document (structs, maps, bson.D). Content-Type: application/bson
type BSONCodec struct {
	registry *bsoncodec.Registry

	jsonStructTags bool
	omitZeroStruct bool
	documentM      bool
	localTimeZone  bool
}

// BSONOption configures a BSONCodec
type BSONOption func(*BSONCodec)

// WithBSONRegistry encodes and decodes with a custom type registry. A nil
// registry keeps the driver default.
func WithBSONRegistry(r *bsoncodec.Registry) BSONOption {
	return func(c *BSONCodec) {
		c.registry = r
	}
}

// WithBSONJSONStructTags falls back to `json` tags for fields without a
// `bson` tag.
func WithBSONJSONStructTags() BSONOption {
	return func(c *BSONCodec) {
		c.jsonStructTags = true
	}
}

// WithBSONOmitZeroStruct treats zero structs as empty for omitempty fields
func WithBSONOmitZeroStruct() BSONOption {
	return func(c *BSONCodec) {
		c.omitZeroStruct = true
	}
}

// WithBSONDocumentM decodes nested documents held in interface values as
// bson.M instead of bson.D.
func WithBSONDocumentM() BSONOption {
	return func(c *BSONCodec) {
		c.documentM = true
	}
}

// WithBSONLocalTimeZone decodes datetimes in the local zone instead of UTC
func WithBSONLocalTimeZone() BSONOption {
	return func(c *BSONCodec) {
		c.localTimeZone = true
	}
}

// NewBSONCodec creates a new BSON codec
func NewBSONCodec(opts ...BSONOption) *BSONCodec {
	c := &BSONCodec{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *BSONCodec) ContentType() string     { return ContentTypeBSON }
func (c *BSONCodec) ContentEncoding() string { return "" }

// Marshal encodes v as a BSON document
func (c *BSONCodec) Marshal(v any) ([]byte, error) {
	if IsNil(v) {
		return nil, nil
	}

	var buf bytes.Buffer
	vw, err := bsonrw.NewBSONValueWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("bson: %w", err)
	}
	enc, err := bson.NewEncoder(vw)
	if err != nil {
		return nil, fmt.Errorf("bson: %w", err)
	}
	if c.registry != nil {
		if err := enc.SetRegistry(c.registry); err != nil {
			return nil, fmt.Errorf("bson: %w", err)
		}
	}
	if c.jsonStructTags {
		enc.UseJSONStructTags()
	}
	if c.omitZeroStruct {
		enc.OmitZeroStruct()
	}

	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("bson: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a BSON document into v
func (c *BSONCodec) Unmarshal(data []byte, v any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	if err != nil {
		return fmt.Errorf("bson: %w", err)
	}
	if c.registry != nil {
		if err := dec.SetRegistry(c.registry); err != nil {
			return fmt.Errorf("bson: %w", err)
		}
	}
	if c.jsonStructTags {
		dec.UseJSONStructTags()
	}
	if c.documentM {
		dec.DefaultDocumentM()
	}
	if c.localTimeZone {
		dec.UseLocalTimeZone()
	}

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("bson: %w", err)
	}
	return nil
}
