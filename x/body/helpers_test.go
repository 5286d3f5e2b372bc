package body

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/compose-network/bodycodec/x/codec"
)

type mockPayload struct {
	ID        int       `json:"id"         bson:"id"         xml:"id"         msgpack:"id"`
	CreatedOn time.Time `json:"created_on" bson:"created_on" xml:"created_on" msgpack:"created_on"`
}

const mockPayloadTypeName = "github.com/compose-network/bodycodec/x/body.mockPayload"

func newMockPayload() mockPayload {
	return mockPayload{ID: 100, CreatedOn: time.Date(2017, 12, 30, 0, 0, 0, 0, time.UTC)}
}

var errFake = errors.New("fake codec failure")

type fakeSerializer struct {
	contentType     string
	contentEncoding string
	data            []byte
	err             error
}

func (f *fakeSerializer) ContentType() string     { return f.contentType }
func (f *fakeSerializer) ContentEncoding() string { return f.contentEncoding }
func (f *fakeSerializer) Marshal(_ any) ([]byte, error) {
	return f.data, f.err
}

// spyDeserializer records calls before delegating to inner
type spyDeserializer struct {
	inner codec.Deserializer

	mu    sync.Mutex
	calls int
}

func (s *spyDeserializer) ContentType() string     { return s.inner.ContentType() }
func (s *spyDeserializer) ContentEncoding() string { return s.inner.ContentEncoding() }
func (s *spyDeserializer) Unmarshal(data []byte, v any) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Unmarshal(data, v)
}

func (s *spyDeserializer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingDeserializer struct {
	contentType string
}

func (f *failingDeserializer) ContentType() string             { return f.contentType }
func (f *failingDeserializer) ContentEncoding() string         { return "" }
func (f *failingDeserializer) Unmarshal(_ []byte, _ any) error { return errFake }

// recordingTracer keeps every event as a formatted string
type recordingTracer struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTracer) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingTracer) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingTracer) DeserializerRegistered(d codec.Descriptor, deserializer string) {
	r.add("registered %s %s", d, deserializer)
}

func (r *recordingTracer) UsingDeserializer(d codec.Descriptor, deserializer string) {
	r.add("deserializer %s %s", d, deserializer)
}

func (r *recordingTracer) UsingSerializer(serializer string) {
	r.add("serializer %s", serializer)
}

func (r *recordingTracer) ContentTypeSet(contentType string) {
	r.add("content-type %s", contentType)
}

func (r *recordingTracer) ContentEncodingSet(contentEncoding string) {
	r.add("content-encoding %s", contentEncoding)
}

func (r *recordingTracer) NoBodyFound() {
	r.add("no-body")
}

func (r *recordingTracer) BodyEncoded(d codec.Descriptor, size int, _ time.Duration) {
	r.add("encoded %s %d", d, size)
}

func (r *recordingTracer) BodyDecoded(d codec.Descriptor, size int, _ time.Duration) {
	r.add("decoded %s %d", d, size)
}
