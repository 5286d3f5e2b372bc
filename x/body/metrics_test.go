package body

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compose-network/bodycodec/x/codec"
	"github.com/compose-network/bodycodec/x/envelope"
)

func TestMetricsTracer_CountsEvents(t *testing.T) {
	t.Parallel()

	m := NewMetricsTracerWith(prometheus.NewRegistry())
	r := NewReader(WithTracer(m))
	w := NewWriter(WithTracer(m))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(codec.ContentTypeJSON, "gzip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(codec.ContentTypeJSON, "none")))

	msg := envelope.New()
	require.NoError(t, w.WriteBodyWith(msg, newMockPayload(), codec.NewGzip(codec.NewJSONCodec())))
	_, err := r.ReadBody(msg, mockPayloadType)
	require.NoError(t, err)

	_, err = r.ReadBody(envelope.New(), mockPayloadType)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SerializationsTotal.WithLabelValues("*codec.GzipCodec(*codec.JSONCodec)")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContentTypesTotal.WithLabelValues(codec.ContentTypeJSON)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContentEncodingsTotal.WithLabelValues("gzip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeserializationsTotal.WithLabelValues(codec.ContentTypeJSON, "gzip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EmptyBodiesTotal))

	assert.Equal(t, 1, testutil.CollectAndCount(m.EncodeDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DecodeDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(m.BodySize))
}

func TestMetricsTracer_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := NewMetricsTracerWith(reg)
	b := NewMetricsTracerWith(reg)

	a.NoBodyFound()
	b.NoBodyFound()
	assert.Equal(t, float64(2), testutil.ToFloat64(a.EmptyBodiesTotal))
}
