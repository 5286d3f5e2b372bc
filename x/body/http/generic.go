package http

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/compose-network/bodycodec/x/codec"
)

var (
	genericType  = reflect.TypeOf(map[string]any{})
	protobufType = reflect.TypeOf(&structpb.Struct{})
)

// PayloadFor adapts a generic JSON value to what s can marshal. Protobuf
// needs a structpb.Struct built from a JSON object.
func PayloadFor(s codec.Serializer, raw any) (any, error) {
	if codec.NormalizeToken(s.ContentType()) != codec.ContentTypeProtobuf {
		return raw, nil
	}
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("protobuf payloads must be JSON objects, got %T", raw)
	}
	return structpb.NewStruct(obj)
}

// TargetFor returns the generic type a body of contentType decodes into
// when the payload type is not known.
func TargetFor(contentType string) reflect.Type {
	if codec.NormalizeToken(contentType) == codec.ContentTypeProtobuf {
		return protobufType
	}
	return genericType
}

// Plain converts a value returned for a TargetFor type back to plain Go
// maps and slices.
func Plain(v any) any {
	if s, ok := v.(*structpb.Struct); ok {
		return s.AsMap()
	}
	return v
}
