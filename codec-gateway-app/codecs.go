package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/compose-network/bodycodec/codec-gateway-app/config"
	"github.com/compose-network/bodycodec/x/body"
	"github.com/compose-network/bodycodec/x/codec"
)

// codecSet holds the named codecs built from configuration plus the reader
// and writer wired to them.
type codecSet struct {
	byName      map[string]codec.Codec
	defaultName string
	reader      *body.Reader
	writer      *body.Writer
}

// buildCodecs creates every named codec from the configured settings. The
// reader is seeded with the built-ins and then has each configured codec
// registered over them, so decoding honours the same options as encoding.
func buildCodecs(cfg config.CodecConfig, tracer body.Tracer) (*codecSet, error) {
	set := &codecSet{
		byName:      make(map[string]codec.Codec),
		defaultName: codec.NormalizeToken(cfg.Default),
	}

	settings := cfg.Settings()
	for _, name := range codec.Names() {
		if name == codec.NameProtobuf && !cfg.EnableProtobuf {
			continue
		}
		c, err := codec.ByNameWith(name, settings)
		if err != nil {
			return nil, err
		}
		set.byName[name] = c
	}

	def, ok := set.byName[set.defaultName]
	if !ok {
		return nil, fmt.Errorf("default codec %q is not enabled", cfg.Default)
	}

	set.reader = body.NewReader(body.WithTracer(tracer))
	for _, name := range codec.Names() {
		if c, ok := set.byName[name]; ok {
			if err := set.reader.RegisterDeserializer(c); err != nil {
				return nil, fmt.Errorf("codec %s: %w", name, err)
			}
		}
	}
	set.writer = body.NewWriter(body.WithTracer(tracer), body.WithDefaultSerializer(def))

	return set, nil
}

// buildTracer combines a debug log tracer, when tracing is on, with the
// prometheus tracer, when metrics are on.
func buildTracer(cfg *config.Config, log zerolog.Logger) body.Tracer {
	var tracers []body.Tracer
	if cfg.Codec.Trace {
		tracers = append(tracers, body.NewLogTracer(log))
	}
	if cfg.Metrics.Enabled {
		tracers = append(tracers, body.NewMetricsTracer())
	}
	if len(tracers) == 0 {
		return body.NopTracer{}
	}
	return body.MultiTracer(tracers...)
}
