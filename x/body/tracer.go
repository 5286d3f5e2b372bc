package body

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/compose-network/bodycodec/x/codec"
)

// Tracer receives diagnostic events from readers and writers. Implementations
// must not block; the events never influence reading or writing.
type Tracer interface {
	DeserializerRegistered(d codec.Descriptor, deserializer string)
	UsingDeserializer(d codec.Descriptor, deserializer string)
	UsingSerializer(serializer string)
	ContentTypeSet(contentType string)
	ContentEncodingSet(contentEncoding string)
	NoBodyFound()

	// BodyEncoded and BodyDecoded report the size of a body and the time
	// its codec took, after a successful encode or decode.
	BodyEncoded(d codec.Descriptor, size int, elapsed time.Duration)
	BodyDecoded(d codec.Descriptor, size int, elapsed time.Duration)
}

// NopTracer discards every event
type NopTracer struct{}

func (NopTracer) DeserializerRegistered(codec.Descriptor, string)  {}
func (NopTracer) UsingDeserializer(codec.Descriptor, string)       {}
func (NopTracer) UsingSerializer(string)                           {}
func (NopTracer) ContentTypeSet(string)                            {}
func (NopTracer) ContentEncodingSet(string)                        {}
func (NopTracer) NoBodyFound()                                     {}
func (NopTracer) BodyEncoded(codec.Descriptor, int, time.Duration) {}
func (NopTracer) BodyDecoded(codec.Descriptor, int, time.Duration) {}

// LogTracer writes events to a zerolog logger
type LogTracer struct {
	log zerolog.Logger
}

// NewLogTracer creates a tracer logging at debug level, and at warn level for
// messages without a body.
func NewLogTracer(log zerolog.Logger) *LogTracer {
	return &LogTracer{log: log.With().Str("component", "body-codec").Logger()}
}

func (t *LogTracer) DeserializerRegistered(d codec.Descriptor, deserializer string) {
	t.log.Debug().
		Str("content_type", d.ContentType).
		Str("content_encoding", d.ContentEncoding).
		Str("deserializer", deserializer).
		Msg("Deserializer registered")
}

func (t *LogTracer) UsingDeserializer(d codec.Descriptor, deserializer string) {
	t.log.Debug().
		Str("content_type", d.ContentType).
		Str("content_encoding", d.ContentEncoding).
		Str("deserializer", deserializer).
		Msg("Deserializing body")
}

func (t *LogTracer) UsingSerializer(serializer string) {
	t.log.Debug().Str("serializer", serializer).Msg("Serializing body")
}

func (t *LogTracer) ContentTypeSet(contentType string) {
	t.log.Debug().Str("content_type", contentType).Msg("Set body content type")
}

func (t *LogTracer) ContentEncodingSet(contentEncoding string) {
	t.log.Debug().Str("content_encoding", contentEncoding).Msg("Set content encoding")
}

func (t *LogTracer) NoBodyFound() {
	t.log.Warn().Msg("No body found, skip deserialization")
}

func (t *LogTracer) BodyEncoded(d codec.Descriptor, size int, elapsed time.Duration) {
	t.log.Debug().
		Str("codec", d.String()).
		Int("size", size).
		Dur("elapsed", elapsed).
		Msg("Body encoded")
}

func (t *LogTracer) BodyDecoded(d codec.Descriptor, size int, elapsed time.Duration) {
	t.log.Debug().
		Str("codec", d.String()).
		Int("size", size).
		Dur("elapsed", elapsed).
		Msg("Body decoded")
}

// multiTracer fans events out to several tracers
type multiTracer []Tracer

// MultiTracer returns a tracer forwarding every event to each of tracers
func MultiTracer(tracers ...Tracer) Tracer {
	out := make(multiTracer, 0, len(tracers))
	for _, t := range tracers {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (m multiTracer) DeserializerRegistered(d codec.Descriptor, deserializer string) {
	for _, t := range m {
		t.DeserializerRegistered(d, deserializer)
	}
}

func (m multiTracer) UsingDeserializer(d codec.Descriptor, deserializer string) {
	for _, t := range m {
		t.UsingDeserializer(d, deserializer)
	}
}

func (m multiTracer) UsingSerializer(serializer string) {
	for _, t := range m {
		t.UsingSerializer(serializer)
	}
}

func (m multiTracer) ContentTypeSet(contentType string) {
	for _, t := range m {
		t.ContentTypeSet(contentType)
	}
}

func (m multiTracer) ContentEncodingSet(contentEncoding string) {
	for _, t := range m {
		t.ContentEncodingSet(contentEncoding)
	}
}

func (m multiTracer) NoBodyFound() {
	for _, t := range m {
		t.NoBodyFound()
	}
}

func (m multiTracer) BodyEncoded(d codec.Descriptor, size int, elapsed time.Duration) {
	for _, t := range m {
		t.BodyEncoded(d, size, elapsed)
	}
}

func (m multiTracer) BodyDecoded(d codec.Descriptor, size int, elapsed time.Duration) {
	for _, t := range m {
		t.BodyDecoded(d, size, elapsed)
	}
}

// implName names a codec implementation in trace events
func implName(v any) string {
	if w, ok := v.(interface{ Inner() codec.Codec }); ok {
		return fmt.Sprintf("%T(%T)", v, w.Inner())
	}
	return fmt.Sprintf("%T", v)
}
