package body

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/compose-network/bodycodec/metrics"
	"github.com/compose-network/bodycodec/x/codec"
)

// MetricsTracer counts reader and writer events in prometheus
type MetricsTracer struct {
	registry *metrics.ComponentRegistry

	RegistrationsTotal    *prometheus.CounterVec
	DeserializationsTotal *prometheus.CounterVec
	SerializationsTotal   *prometheus.CounterVec
	ContentTypesTotal     *prometheus.CounterVec
	ContentEncodingsTotal *prometheus.CounterVec
	EmptyBodiesTotal      prometheus.Counter

	EncodeDuration *prometheus.HistogramVec
	DecodeDuration *prometheus.HistogramVec
	BodySize       *prometheus.HistogramVec
}

// NewMetricsTracer creates a tracer on the process-wide metrics registry
func NewMetricsTracer() *MetricsTracer {
	return newMetricsTracer(metrics.NewComponentRegistry("bodycodec", "body"))
}

// NewMetricsTracerWith creates a tracer registering its metrics on reg
func NewMetricsTracerWith(reg prometheus.Registerer) *MetricsTracer {
	return newMetricsTracer(metrics.NewComponentRegistryWith(reg, "bodycodec", "body"))
}

func newMetricsTracer(reg *metrics.ComponentRegistry) *MetricsTracer {
	return &MetricsTracer{
		registry: reg,

		RegistrationsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "deserializer_registrations_total",
			Help: "Total number of deserializer registrations",
		}, []string{"content_type", "content_encoding"}),

		DeserializationsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "deserializations_total",
			Help: "Total number of bodies dispatched to a deserializer",
		}, []string{"content_type", "content_encoding"}),

		SerializationsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "serializations_total",
			Help: "Total number of bodies written by serializer",
		}, []string{"serializer"}),

		ContentTypesTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "content_types_total",
			Help: "Total number of bodies written by content type",
		}, []string{"content_type"}),

		ContentEncodingsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "content_encodings_total",
			Help: "Total number of content encoding properties set",
		}, []string{"content_encoding"}),

		EmptyBodiesTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "empty_bodies_total",
			Help: "Total number of reads on messages without a body",
		}),

		EncodeDuration: reg.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "encode_duration_seconds",
			Help:    "Time spent in serializers",
			Buckets: metrics.DurationBuckets,
		}, []string{"content_type", "content_encoding"}),

		DecodeDuration: reg.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "decode_duration_seconds",
			Help:    "Time spent in deserializers",
			Buckets: metrics.DurationBuckets,
		}, []string{"content_type", "content_encoding"}),

		BodySize: reg.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "body_size_bytes",
			Help:    "Size of encoded and decoded bodies",
			Buckets: metrics.SizeBuckets,
		}, []string{"direction"}),
	}
}

func (m *MetricsTracer) DeserializerRegistered(d codec.Descriptor, _ string) {
	k := d.Key()
	m.RegistrationsTotal.WithLabelValues(k.ContentType, encodingLabel(k.ContentEncoding)).Inc()
}

func (m *MetricsTracer) UsingDeserializer(d codec.Descriptor, _ string) {
	k := d.Key()
	m.DeserializationsTotal.WithLabelValues(k.ContentType, encodingLabel(k.ContentEncoding)).Inc()
}

func (m *MetricsTracer) UsingSerializer(serializer string) {
	m.SerializationsTotal.WithLabelValues(serializer).Inc()
}

func (m *MetricsTracer) ContentTypeSet(contentType string) {
	m.ContentTypesTotal.WithLabelValues(codec.NormalizeToken(contentType)).Inc()
}

func (m *MetricsTracer) ContentEncodingSet(contentEncoding string) {
	m.ContentEncodingsTotal.WithLabelValues(contentEncoding).Inc()
}

func (m *MetricsTracer) NoBodyFound() {
	m.EmptyBodiesTotal.Inc()
}

func (m *MetricsTracer) BodyEncoded(d codec.Descriptor, size int, elapsed time.Duration) {
	k := d.Key()
	m.EncodeDuration.WithLabelValues(k.ContentType, encodingLabel(k.ContentEncoding)).Observe(elapsed.Seconds())
	m.BodySize.WithLabelValues("encode").Observe(float64(size))
}

func (m *MetricsTracer) BodyDecoded(d codec.Descriptor, size int, elapsed time.Duration) {
	k := d.Key()
	m.DecodeDuration.WithLabelValues(k.ContentType, encodingLabel(k.ContentEncoding)).Observe(elapsed.Seconds())
	m.BodySize.WithLabelValues("decode").Observe(float64(size))
}

func encodingLabel(enc string) string {
	if enc == "" {
		return "none"
	}
	return enc
}
