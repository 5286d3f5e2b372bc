package body

import (
	"fmt"
	"reflect"
	"time"

	"github.com/compose-network/bodycodec/x/codec"
	"github.com/compose-network/bodycodec/x/envelope"
)

// Reader decodes message bodies with the deserializer registered for the
// message's content type and content encoding.
type Reader struct {
	registry codec.Registry
	tracer   Tracer
}

// NewReader creates a reader. Without WithRegistry the reader owns a new
// registry seeded with the built-in deserializers.
func NewReader(opts ...Option) *Reader {
	cfg := newConfig(opts)
	r := &Reader{
		registry: cfg.Registry,
		tracer:   cfg.Tracer,
	}

	if codec.IsNil(r.registry) {
		r.registry = codec.NewRegistry()
		for _, c := range codec.Builtins() {
			// built-ins always carry a content type
			_ = r.RegisterDeserializer(c)
		}
	}
	return r
}

// Registry returns the registry backing r
func (r *Reader) Registry() codec.Registry {
	return r.registry
}

// RegisteredDeserializers returns a snapshot of the registered deserializers
func (r *Reader) RegisteredDeserializers() []codec.Deserializer {
	return r.registry.List()
}

// RegisterDeserializer adds d, replacing any deserializer registered for the
// same content type and content encoding.
func (r *Reader) RegisterDeserializer(d codec.Deserializer) error {
	if err := r.registry.Register(d); err != nil {
		return err
	}
	r.tracer.DeserializerRegistered(codec.DescriptorOf(d), implName(d))
	return nil
}

// ReadBody decodes the message body into a new value of typ. A message
// without a body yields nil and no error.
func (r *Reader) ReadBody(msg *envelope.Message, typ reflect.Type) (any, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is nil", codec.ErrInvalidArgument)
	}
	if msg.Body == nil {
		r.tracer.NoBodyFound()
		return nil, nil
	}
	if typ == nil {
		return nil, fmt.Errorf("%w: body type is nil", codec.ErrInvalidArgument)
	}

	d, err := r.deserializerFor(msg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := codec.Decode(d, msg.Body, typ)
	if err != nil {
		return nil, err
	}
	r.tracer.BodyDecoded(codec.DescriptorOf(d), len(msg.Body), time.Since(start))
	return v, nil
}

// Read decodes the message body into a T. A message without a body yields
// the zero value and no error.
func Read[T any](r *Reader, msg *envelope.Message) (T, error) {
	var zero T
	if msg == nil {
		return zero, fmt.Errorf("%w: message is nil", codec.ErrInvalidArgument)
	}
	if msg.Body == nil {
		r.tracer.NoBodyFound()
		return zero, nil
	}

	d, err := r.deserializerFor(msg)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	v, err := codec.DecodeAs[T](d, msg.Body)
	if err != nil {
		return zero, err
	}
	r.tracer.BodyDecoded(codec.DescriptorOf(d), len(msg.Body), time.Since(start))
	return v, nil
}

// ReadDeclared decodes the body into the type registered in types under the
// message's MessageType property.
func (r *Reader) ReadDeclared(msg *envelope.Message, types *TypeRegistry) (any, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is nil", codec.ErrInvalidArgument)
	}
	if types == nil {
		return nil, fmt.Errorf("%w: type registry is nil", codec.ErrInvalidArgument)
	}
	if msg.Body == nil {
		r.tracer.NoBodyFound()
		return nil, nil
	}

	name, _ := msg.Properties.MessageType()
	typ, ok := types.Lookup(name)
	if !ok {
		return nil, &codec.UnknownTypeError{TypeName: name}
	}
	return r.ReadBody(msg, typ)
}

func (r *Reader) deserializerFor(msg *envelope.Message) (codec.Deserializer, error) {
	enc, _ := msg.Properties.ContentEncoding()

	d, ok := r.registry.Lookup(msg.ContentType, enc)
	if !ok {
		return nil, &codec.UnsupportedCodecError{ContentType: msg.ContentType, ContentEncoding: enc}
	}

	r.tracer.UsingDeserializer(codec.Descriptor{ContentType: msg.ContentType, ContentEncoding: enc}, implName(d))
	return d, nil
}
