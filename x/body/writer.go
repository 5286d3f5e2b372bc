package body

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/compose-network/bodycodec/x/codec"
	"github.com/compose-network/bodycodec/x/envelope"
)

// Writer serializes payloads into message bodies and stamps the metadata a
// Reader needs to reverse the process.
type Writer struct {
	mu                sync.RWMutex
	defaultSerializer codec.Serializer

	namer  TypeNamer
	tracer Tracer
}

// NewWriter creates a writer. Without WithDefaultSerializer it encodes BSON.
func NewWriter(opts ...Option) *Writer {
	cfg := newConfig(opts)
	return &Writer{
		defaultSerializer: cfg.DefaultSerializer,
		namer:             cfg.Namer,
		tracer:            cfg.Tracer,
	}
}

// DefaultSerializer returns the serializer used by WriteBody
func (w *Writer) DefaultSerializer() codec.Serializer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.defaultSerializer
}

// SetDefaultSerializer replaces the serializer used by WriteBody
func (w *Writer) SetDefaultSerializer(s codec.Serializer) error {
	if codec.IsNil(s) {
		return fmt.Errorf("%w: default serializer is nil", codec.ErrInvalidArgument)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.defaultSerializer = s
	return nil
}

// WriteBody encodes payload with the default serializer. A nil message or
// payload is a no-op.
func (w *Writer) WriteBody(msg *envelope.Message, payload any) error {
	if msg == nil || codec.IsNil(payload) {
		return nil
	}
	return w.WriteBodyWith(msg, payload, w.DefaultSerializer())
}

// WriteBodyWith encodes payload with s and updates the message body, content
// type and properties. MessageType and ContentEncoding properties already on
// the message are left untouched. Serializer errors are returned as is and
// leave the message unchanged.
func (w *Writer) WriteBodyWith(msg *envelope.Message, payload any, s codec.Serializer) error {
	if msg == nil || codec.IsNil(payload) {
		return nil
	}
	if codec.IsNil(s) {
		return fmt.Errorf("%w: serializer is nil", codec.ErrInvalidArgument)
	}

	w.tracer.UsingSerializer(implName(s))

	start := time.Now()
	data, err := s.Marshal(payload)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	msg.Body = data
	msg.ContentType = s.ContentType()

	props := msg.EnsureProperties()
	props.SetIfAbsent(envelope.PropMessageType, w.namer.TypeName(reflect.TypeOf(payload)))

	if enc := codec.NormalizeToken(s.ContentEncoding()); enc != "" {
		if props.SetIfAbsent(envelope.PropContentEncoding, enc) {
			w.tracer.ContentEncodingSet(enc)
		}
	}

	w.tracer.ContentTypeSet(msg.ContentType)
	w.tracer.BodyEncoded(codec.DescriptorOf(s), len(data), elapsed)
	return nil
}
