package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Content types and encodings used by the built-in codecs. These strings are
// part of the wire contract and must not change.
const (
	ContentTypeBSON     = "application/bson"
	ContentTypeJSON     = "application/json"
	ContentTypeXML      = "application/xml"
	ContentTypeProtobuf = "application/x-protobuf"

	// ContentTypeBinary keeps the spelling used by existing producers.
	ContentTypeBinary = "applicaiton/octet-stream"

	EncodingGzip = "gzip"
)

// Codec names accepted by ByName
const (
	NameBSON     = "bson"
	NameGzipBSON = "gzip-bson"
	NameJSON     = "json"
	NameGzipJSON = "gzip-json"
	NameXML      = "xml"
	NameGzipXML  = "gzip-xml"
	NameBinary   = "binary"
	NameProtobuf = "protobuf"
)

// DefaultMaxMessageSize bounds protobuf payloads created through ByName
const DefaultMaxMessageSize = 10 * 1024 * 1024

// Settings tunes the codecs created by ByNameWith. The gzip variants wrap
// a format codec built with the same format options.
type Settings struct {
	JSON   []JSONOption
	XML    []XMLOption
	BSON   []BSONOption
	Binary []BinaryOption

	GzipLevel              int
	ProtobufMaxMessageSize int
}

// DefaultSettings returns settings matching the codecs returned by Builtins
func DefaultSettings() Settings {
	return Settings{
		GzipLevel:              gzip.DefaultCompression,
		ProtobufMaxMessageSize: DefaultMaxMessageSize,
	}
}

var constructors = map[string]func(Settings) (Codec, error){
	NameBSON: func(s Settings) (Codec, error) { return NewBSONCodec(s.BSON...), nil },
	NameGzipBSON: func(s Settings) (Codec, error) {
		return NewGzipLevel(NewBSONCodec(s.BSON...), s.GzipLevel)
	},
	NameJSON: func(s Settings) (Codec, error) { return NewJSONCodec(s.JSON...), nil },
	NameGzipJSON: func(s Settings) (Codec, error) {
		return NewGzipLevel(NewJSONCodec(s.JSON...), s.GzipLevel)
	},
	NameXML: func(s Settings) (Codec, error) { return NewXMLCodec(s.XML...), nil },
	NameGzipXML: func(s Settings) (Codec, error) {
		return NewGzipLevel(NewXMLCodec(s.XML...), s.GzipLevel)
	},
	NameBinary: func(s Settings) (Codec, error) { return NewBinaryCodec(s.Binary...), nil },
	NameProtobuf: func(s Settings) (Codec, error) {
		if s.ProtobufMaxMessageSize <= 0 {
			return nil, fmt.Errorf("%w: protobuf max message size must be positive", ErrInvalidArgument)
		}
		return NewProtobufCodec(s.ProtobufMaxMessageSize), nil
	},
}

// Builtins returns fresh instances of the seven codecs every default
// registry is seeded with.
func Builtins() []Codec {
	return []Codec{
		NewBSONCodec(),
		NewJSONCodec(),
		NewXMLCodec(),
		NewGzip(NewBSONCodec()),
		NewGzip(NewJSONCodec()),
		NewGzip(NewXMLCodec()),
		NewBinaryCodec(),
	}
}

// Default returns the codec used when no serializer is chosen explicitly
func Default() Codec {
	return NewBSONCodec()
}

// ByName returns a new codec for a configuration name such as "gzip-json".
func ByName(name string) (Codec, error) {
	return ByNameWith(name, DefaultSettings())
}

// ByNameWith returns a new codec for name built with s
func ByNameWith(name string, s Settings) (Codec, error) {
	ctor, ok := constructors[NormalizeToken(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	c, err := ctor(s)
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", NormalizeToken(name), err)
	}
	return c, nil
}

// Names lists the codec names accepted by ByName
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
