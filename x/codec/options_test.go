package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
)

type jsonTagged struct {
	OrderID int    `json:"order_id"`
	Note    string `json:"note"`
}

func roundTrip[T any](t *testing.T, c Codec, in T) (T, []byte) {
	t.Helper()

	data, err := c.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeAs[T](c, data)
	require.NoError(t, err)
	return out, data
}

func TestJSONCodec_Indent(t *testing.T) {
	t.Parallel()

	out, data := roundTrip(t, NewJSONCodec(WithJSONIndent("", "  ")), newTestPayload())
	assert.Equal(t, newTestPayload(), out)
	assert.Contains(t, string(data), "\n  \"id\": 100")
	assert.False(t, strings.HasSuffix(string(data), "\n"))
}

func TestJSONCodec_HTMLEscape(t *testing.T) {
	t.Parallel()

	in := jsonTagged{OrderID: 1, Note: "<a&b>"}

	escaped, err := NewJSONCodec().Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(escaped), `\u003ca\u0026b\u003e`)

	out, data := roundTrip(t, NewJSONCodec(WithoutJSONHTMLEscape()), in)
	assert.Equal(t, in, out)
	assert.Contains(t, string(data), `"<a&b>"`)
}

func TestJSONCodec_UseNumber(t *testing.T) {
	t.Parallel()

	data := []byte(`{"id":100}`)

	plain, err := DecodeAs[map[string]any](NewJSONCodec(), data)
	require.NoError(t, err)
	assert.Equal(t, float64(100), plain["id"])

	numbers, err := DecodeAs[map[string]any](NewJSONCodec(WithJSONUseNumber()), data)
	require.NoError(t, err)
	assert.Equal(t, json.Number("100"), numbers["id"])
}

func TestJSONCodec_DisallowUnknownFields(t *testing.T) {
	t.Parallel()

	data := []byte(`{"id":100,"extra":true}`)

	out, err := DecodeAs[testPayload](NewJSONCodec(), data)
	require.NoError(t, err)
	assert.Equal(t, 100, out.ID)

	_, err = DecodeAs[testPayload](NewJSONCodec(WithJSONDisallowUnknownFields()), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}

func TestJSONCodec_TrailingData(t *testing.T) {
	t.Parallel()

	_, err := DecodeAs[testPayload](NewJSONCodec(), []byte("{\"id\":1}  \n"))
	require.NoError(t, err)

	_, err = DecodeAs[testPayload](NewJSONCodec(), []byte(`{"id":1} {"id":2}`))
	require.Error(t, err)
}

func TestXMLCodec_Indent(t *testing.T) {
	t.Parallel()

	out, data := roundTrip(t, NewXMLCodec(WithXMLIndent("", "  ")), newTestPayload())
	assert.Equal(t, newTestPayload(), out)
	assert.Contains(t, string(data), "\n  <id>100</id>")
}

func TestXMLCodec_WithoutDeclaration(t *testing.T) {
	t.Parallel()

	out, data := roundTrip(t, NewXMLCodec(WithoutXMLDeclaration()), newTestPayload())
	assert.Equal(t, newTestPayload(), out)
	assert.True(t, strings.HasPrefix(string(data), "<testPayload>"), string(data))
}

func TestXMLCodec_Lenient(t *testing.T) {
	t.Parallel()

	data := []byte(`<testPayload><id>100</id><br></testPayload>`)

	_, err := DecodeAs[testPayload](NewXMLCodec(), data)
	require.Error(t, err)

	out, err := DecodeAs[testPayload](NewXMLCodec(WithXMLLenient()), data)
	require.NoError(t, err)
	assert.Equal(t, 100, out.ID)
}

func TestBSONCodec_JSONStructTags(t *testing.T) {
	t.Parallel()

	in := jsonTagged{OrderID: 7, Note: "n"}

	_, data := roundTrip(t, NewBSONCodec(), in)
	_, err := bson.Raw(data).LookupErr("orderid")
	require.NoError(t, err)

	out, data := roundTrip(t, NewBSONCodec(WithBSONJSONStructTags()), in)
	assert.Equal(t, in, out)
	_, err = bson.Raw(data).LookupErr("order_id")
	require.NoError(t, err)
}

func TestBSONCodec_OmitZeroStruct(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		ID    int        `bson:"id"`
		Inner jsonTagged `bson:"inner,omitempty"`
	}

	_, data := roundTrip(t, NewBSONCodec(), wrapper{ID: 1})
	_, err := bson.Raw(data).LookupErr("inner")
	require.NoError(t, err)

	_, data = roundTrip(t, NewBSONCodec(WithBSONOmitZeroStruct()), wrapper{ID: 1})
	_, err = bson.Raw(data).LookupErr("inner")
	require.Error(t, err)
}

func TestBSONCodec_DocumentM(t *testing.T) {
	t.Parallel()

	data, err := NewBSONCodec().Marshal(bson.M{"id": int32(1)})
	require.NoError(t, err)

	var plain any
	require.NoError(t, NewBSONCodec().Unmarshal(data, &plain))
	assert.IsType(t, bson.D{}, plain)

	var m any
	require.NoError(t, NewBSONCodec(WithBSONDocumentM()).Unmarshal(data, &m))
	assert.Equal(t, bson.M{"id": int32(1)}, m)
}

func TestBSONCodec_Registry(t *testing.T) {
	t.Parallel()

	out, _ := roundTrip(t, NewBSONCodec(WithBSONRegistry(bson.NewRegistry())), newTestPayload())
	assert.Equal(t, newTestPayload(), out)

	out, _ = roundTrip(t, NewBSONCodec(WithBSONRegistry(nil)), newTestPayload())
	assert.Equal(t, newTestPayload(), out)
}

func TestBSONCodec_LocalTimeZone(t *testing.T) {
	t.Parallel()

	out, _ := roundTrip(t, NewBSONCodec(), newTestPayload())
	assert.Equal(t, time.UTC, out.CreatedOn.Location())

	out, _ = roundTrip(t, NewBSONCodec(WithBSONLocalTimeZone()), newTestPayload())
	assert.Equal(t, time.Local, out.CreatedOn.Location())
	assert.True(t, newTestPayload().CreatedOn.Equal(out.CreatedOn))
}

func TestBinaryCodec_TimesInUTC(t *testing.T) {
	t.Parallel()

	out, _ := roundTrip(t, NewBinaryCodec(), newTestPayload())
	assert.Equal(t, newTestPayload(), out)

	stamp := newTestPayload().CreatedOn
	nested, _ := roundTrip(t, NewBinaryCodec(), map[string]any{
		"at":   stamp,
		"list": []any{stamp},
	})
	assert.Equal(t, stamp, nested["at"])
	assert.Equal(t, []any{stamp}, nested["list"])

	ptrs, _ := roundTrip(t, NewBinaryCodec(), []*testPayload{{ID: 1, CreatedOn: stamp}})
	require.Len(t, ptrs, 1)
	assert.Equal(t, time.UTC, ptrs[0].CreatedOn.Location())
}

func TestBinaryCodec_LocalTime(t *testing.T) {
	t.Parallel()

	out, _ := roundTrip(t, NewBinaryCodec(WithBinaryLocalTime()), newTestPayload())
	assert.Equal(t, time.Local, out.CreatedOn.Location())
	assert.True(t, newTestPayload().CreatedOn.Equal(out.CreatedOn))
}

func TestBinaryCodec_StructTag(t *testing.T) {
	t.Parallel()

	c := NewBinaryCodec(WithBinaryStructTag("json"))
	in := jsonTagged{OrderID: 7, Note: "n"}

	out, data := roundTrip(t, c, in)
	assert.Equal(t, in, out)

	var raw map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &raw))
	assert.Contains(t, raw, "order_id")
}

func TestBinaryCodec_DisallowUnknownFields(t *testing.T) {
	t.Parallel()

	data, err := NewBinaryCodec().Marshal(map[string]any{"id": 100, "extra": true})
	require.NoError(t, err)

	out, err := DecodeAs[testPayload](NewBinaryCodec(), data)
	require.NoError(t, err)
	assert.Equal(t, 100, out.ID)

	_, err = DecodeAs[testPayload](NewBinaryCodec(WithBinaryDisallowUnknownFields()), data)
	require.Error(t, err)
}

func TestByNameWith_AppliesSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.JSON = []JSONOption{WithJSONIndent("", "  ")}
	s.XML = []XMLOption{WithoutXMLDeclaration()}
	s.GzipLevel = gzip.BestSpeed

	c, err := ByNameWith(NameGzipJSON, s)
	require.NoError(t, err)
	gz, ok := c.(*GzipCodec)
	require.True(t, ok)
	assert.Equal(t, gzip.BestSpeed, gz.Level())

	out, data := roundTrip(t, c, newTestPayload())
	assert.Equal(t, newTestPayload(), out)
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "\n  \"id\": 100")

	c, err = ByNameWith(NameXML, s)
	require.NoError(t, err)
	data, err = c.Marshal(newTestPayload())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "<?xml"))
}

func TestByNameWith_InvalidSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.GzipLevel = 42
	_, err := ByNameWith(NameGzipBSON, s)
	require.Error(t, err)

	_, err = ByNameWith(NameBSON, s)
	require.NoError(t, err)

	s = DefaultSettings()
	s.ProtobufMaxMessageSize = 0
	_, err = ByNameWith(NameProtobuf, s)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
