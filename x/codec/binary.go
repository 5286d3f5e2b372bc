package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// BinaryCodec encodes arbitrary Go values with MessagePack. It is the generic
// binary format for payloads that have no better suited codec.
//
// MessagePack timestamps carry no zone, so decoded time.Time values are
// returned in UTC unless WithBinaryLocalTime is set.
type BinaryCodec struct {
	structTag             string
	disallowUnknownFields bool
	localTime             bool
}

// BinaryOption configures a BinaryCodec
type BinaryOption func(*BinaryCodec)

// WithBinaryStructTag reads field names from tag when a field has no
// `msgpack` tag, e.g. "json".
func WithBinaryStructTag(tag string) BinaryOption {
	return func(c *BinaryCodec) {
		c.structTag = tag
	}
}

// WithBinaryDisallowUnknownFields fails decoding when a map key has no
// matching struct field.
func WithBinaryDisallowUnknownFields() BinaryOption {
	return func(c *BinaryCodec) {
		c.disallowUnknownFields = true
	}
}

// WithBinaryLocalTime keeps decoded time.Time values in the local zone
func WithBinaryLocalTime() BinaryOption {
	return func(c *BinaryCodec) {
		c.localTime = true
	}
}

// NewBinaryCodec creates a new generic binary codec
func NewBinaryCodec(opts ...BinaryOption) *BinaryCodec {
	c := &BinaryCodec{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *BinaryCodec) ContentType() string     { return ContentTypeBinary }
func (c *BinaryCodec) ContentEncoding() string { return "" }

// Marshal encodes v to MessagePack bytes
func (c *BinaryCodec) Marshal(v any) ([]byte, error) {
	if IsNil(v) {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if c.structTag != "" {
		enc.SetCustomStructTag(c.structTag)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("binary: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack bytes into v
func (c *BinaryCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if c.structTag != "" {
		dec.SetCustomStructTag(c.structTag)
	}
	dec.DisallowUnknownFields(c.disallowUnknownFields)

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("binary: %w", err)
	}
	if !c.localTime {
		timesToUTC(reflect.ValueOf(v))
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// timesToUTC converts every settable time.Time reachable from v to UTC
func timesToUTC(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			timesToUTC(v.Elem())
		}
	case reflect.Interface:
		if v.IsNil() || !v.CanSet() {
			return
		}
		e := v.Elem()
		cp := reflect.New(e.Type()).Elem()
		cp.Set(e)
		timesToUTC(cp)
		v.Set(cp)
	case reflect.Struct:
		if v.Type() == timeType {
			if v.CanSet() {
				v.Set(reflect.ValueOf(v.Interface().(time.Time).UTC()))
			}
			return
		}
		for i := 0; i < v.NumField(); i++ {
			if f := v.Field(i); f.CanSet() {
				timesToUTC(f)
			}
		}
	case reflect.Slice, reflect.Array:
		if !mayHoldTime(v.Type().Elem()) {
			return
		}
		for i := 0; i < v.Len(); i++ {
			timesToUTC(v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() || !mayHoldTime(v.Type().Elem()) {
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			cp := reflect.New(v.Type().Elem()).Elem()
			cp.Set(iter.Value())
			timesToUTC(cp)
			v.SetMapIndex(iter.Key(), cp)
		}
	}
}

func mayHoldTime(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct, reflect.Interface, reflect.Pointer,
		reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}
