package middleware

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

type fieldsKey struct{}

// logFields holds request fields set by handlers for the access log line
type logFields struct {
	mu     sync.Mutex
	values map[string]string
}

// SetLogField adds key=value to the access log line of the request carried
// by ctx. Outside the Logger middleware it does nothing.
func SetLogField(ctx context.Context, key, value string) {
	f, ok := ctx.Value(fieldsKey{}).(*logFields)
	if !ok || value == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
}

func withLogFields(ctx context.Context) (context.Context, *logFields) {
	if f, ok := ctx.Value(fieldsKey{}).(*logFields); ok {
		return ctx, f
	}
	f := &logFields{}
	return context.WithValue(ctx, fieldsKey{}, f), f
}

// appendTo writes the fields to evt in key order
func (f *logFields) appendTo(evt *zerolog.Event) *zerolog.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		evt = evt.Str(k, f.values[k])
	}
	return evt
}
