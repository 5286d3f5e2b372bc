package body

import (
	"github.com/compose-network/bodycodec/x/codec"
)

// Option configures a Reader or Writer
type Option func(*Config)

// Config holds reader and writer configuration
type Config struct {
	// Tracer receives diagnostic events, defaults to NopTracer
	Tracer Tracer
	// Namer derives declared payload type names, defaults to QualifiedNaming
	Namer TypeNamer
	// Registry backs a Reader. When nil the reader seeds its own with the built-ins.
	Registry codec.Registry
	// DefaultSerializer is used by Writer.WriteBody, defaults to plain BSON
	DefaultSerializer codec.Serializer
}

// WithTracer sets the diagnostic event sink
func WithTracer(tracer Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

// WithTypeNamer sets the strategy used for the MessageType property
func WithTypeNamer(namer TypeNamer) Option {
	return func(c *Config) {
		c.Namer = namer
	}
}

// WithRegistry makes a Reader use registry as is, without seeding built-ins
func WithRegistry(registry codec.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithDefaultSerializer sets the serializer a Writer uses when none is given
func WithDefaultSerializer(s codec.Serializer) Option {
	return func(c *Config) {
		c.DefaultSerializer = s
	}
}

func newConfig(opts []Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = NopTracer{}
	}
	if cfg.Namer == nil {
		cfg.Namer = QualifiedNaming
	}
	if codec.IsNil(cfg.DefaultSerializer) {
		cfg.DefaultSerializer = codec.Default()
	}
	return cfg
}
