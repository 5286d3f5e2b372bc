package codec

import (
	"fmt"
	"reflect"
)

// Serializer encodes message bodies for a single content type / encoding pair
type Serializer interface {
	ContentType() string
	// ContentEncoding returns "" for uncompressed codecs
	ContentEncoding() string
	// Marshal encodes v. A nil v yields a nil slice and no error.
	Marshal(v any) ([]byte, error)
}

// Deserializer decodes message bodies produced by the matching Serializer
type Deserializer interface {
	ContentType() string
	ContentEncoding() string
	// Unmarshal decodes data into v, which must be a non-nil pointer.
	Unmarshal(data []byte, v any) error
}

// Codec is a Serializer and Deserializer sharing one descriptor
type Codec interface {
	Serializer
	Deserializer
}

// Registry maps codec descriptors to deserializers
type Registry interface {
	Register(d Deserializer) error
	Lookup(contentType, contentEncoding string) (Deserializer, bool)
	List() []Deserializer
}

// DescriptorOf returns the descriptor reported by a serializer or deserializer.
func DescriptorOf(c interface {
	ContentType() string
	ContentEncoding() string
}) Descriptor {
	return Descriptor{ContentType: c.ContentType(), ContentEncoding: c.ContentEncoding()}
}

// Encode marshals v with s, treating nil payloads as empty bodies.
func Encode(s Serializer, v any) ([]byte, error) {
	if IsNil(s) {
		return nil, fmt.Errorf("%w: serializer is nil", ErrInvalidArgument)
	}
	if IsNil(v) {
		return nil, nil
	}
	return s.Marshal(v)
}

// Decode decodes data into a freshly allocated value of typ and returns it.
// Nil data yields a nil result.
func Decode(d Deserializer, data []byte, typ reflect.Type) (any, error) {
	if data == nil {
		return nil, nil
	}
	if IsNil(d) {
		return nil, fmt.Errorf("%w: deserializer is nil", ErrInvalidArgument)
	}
	if typ == nil {
		return nil, fmt.Errorf("%w: target type is nil", ErrInvalidArgument)
	}

	// Pointer targets get a fresh element so proto.Message and friends see *T
	if typ.Kind() == reflect.Ptr {
		ptr := reflect.New(typ.Elem())
		if err := d.Unmarshal(data, ptr.Interface()); err != nil {
			return nil, err
		}
		return ptr.Interface(), nil
	}

	ptr := reflect.New(typ)
	if err := d.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// DecodeAs decodes data into a value of type T. Nil data yields the zero value.
func DecodeAs[T any](d Deserializer, data []byte) (T, error) {
	var zero T
	if data == nil {
		return zero, nil
	}

	v, err := Decode(d, data, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, _ := v.(T) // nil interface results leave the zero value
	return out, nil
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice, func,
// channel or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
