package codec

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeserializer struct {
	contentType     string
	contentEncoding string
}

func (f *fakeDeserializer) ContentType() string            { return f.contentType }
func (f *fakeDeserializer) ContentEncoding() string        { return f.contentEncoding }
func (f *fakeDeserializer) Unmarshal(_ []byte, _ any) error { return nil }

func TestRegistry_DefaultSeedsBuiltins(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	require.Len(t, r.List(), 7)

	want := []Descriptor{
		{ContentType: ContentTypeBSON},
		{ContentType: ContentTypeBSON, ContentEncoding: EncodingGzip},
		{ContentType: ContentTypeJSON},
		{ContentType: ContentTypeJSON, ContentEncoding: EncodingGzip},
		{ContentType: ContentTypeXML},
		{ContentType: ContentTypeXML, ContentEncoding: EncodingGzip},
		{ContentType: ContentTypeBinary},
	}
	for _, d := range want {
		_, ok := r.Lookup(d.ContentType, d.ContentEncoding)
		assert.True(t, ok, "missing %s", d)
	}
}

func TestRegistry_NewRegistryIsEmpty(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Empty(t, r.List())

	_, ok := r.Lookup(ContentTypeJSON, "")
	assert.False(t, ok)
}

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	d := &fakeDeserializer{contentType: "Application/Fake", contentEncoding: "GZip"}
	require.NoError(t, r.Register(d))

	got, ok := r.Lookup("APPLICATION/FAKE", "gzip")
	require.True(t, ok)
	assert.Same(t, d, got)

	got, ok = r.Lookup(" application/fake ", "GZIP")
	require.True(t, ok)
	assert.Same(t, d, got)
}

func TestRegistry_AbsentEncodingIsDistinctKey(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	plain := &fakeDeserializer{contentType: "application/fake"}
	require.NoError(t, r.Register(plain))

	_, ok := r.Lookup("application/fake", "gzip")
	assert.False(t, ok)

	got, ok := r.Lookup("application/fake", "")
	require.True(t, ok)
	assert.Same(t, plain, got)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := &fakeDeserializer{contentType: "application/fake"}
	second := &fakeDeserializer{contentType: "APPLICATION/FAKE"}
	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	got, ok := r.Lookup("application/fake", "")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Len(t, r.List(), 1)
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	err := r.Register(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	var typedNil *fakeDeserializer
	err = r.Register(typedNil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = r.Register(&fakeDeserializer{contentType: "  "})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, r.List())
}

func TestRegistry_ConcurrentRegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register(&fakeDeserializer{contentType: "application/fake"})
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Lookup(ContentTypeJSON, "")
			_ = r.List()
		}()
	}
	wg.Wait()

	_, ok := r.Lookup("application/fake", "")
	assert.True(t, ok)
}

func TestDescriptors_Sorted(t *testing.T) {
	t.Parallel()

	got := Descriptors(NewDefaultRegistry())
	require.Len(t, got, 7)
	assert.Equal(t, Descriptor{ContentType: ContentTypeBSON}, got[1])
	assert.Equal(t, Descriptor{ContentType: ContentTypeBSON, ContentEncoding: EncodingGzip}, got[2])
	assert.Equal(t, Descriptor{ContentType: ContentTypeBinary}, got[0])
}

func TestDescriptor_Equal(t *testing.T) {
	t.Parallel()

	a := Descriptor{ContentType: "Application/JSON", ContentEncoding: "GZIP"}
	b := Descriptor{ContentType: "application/json", ContentEncoding: "gzip"}
	assert.True(t, a.Equal(b))
	assert.True(t, a.HasEncoding())
	assert.Equal(t, "application/json+gzip", a.String())
	assert.False(t, a.Equal(Descriptor{ContentType: "application/json"}))
}
