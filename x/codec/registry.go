package codec

import (
	"fmt"
	"sort"
	"sync"
)

// registry implements Registry interface
type registry struct {
	mu            sync.RWMutex
	deserializers map[Descriptor]Deserializer
}

// NewRegistry creates an empty codec registry
func NewRegistry() Registry {
	return &registry{
		deserializers: make(map[Descriptor]Deserializer),
	}
}

// NewDefaultRegistry creates a registry seeded with the built-in deserializers
func NewDefaultRegistry() Registry {
	r := NewRegistry()
	for _, c := range Builtins() {
		// built-ins always carry a content type
		_ = r.Register(c)
	}
	return r
}

// Register stores d under its normalized descriptor, replacing any previous
// deserializer for the same pair.
func (r *registry) Register(d Deserializer) error {
	if IsNil(d) {
		return fmt.Errorf("%w: deserializer is nil", ErrInvalidArgument)
	}
	key := DescriptorOf(d).Key()
	if key.ContentType == "" {
		return fmt.Errorf("%w: deserializer %T has an empty content type", ErrInvalidArgument, d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.deserializers[key] = d
	return nil
}

// Lookup retrieves the deserializer registered for the given pair. An empty
// contentEncoding only matches deserializers registered without one.
func (r *registry) Lookup(contentType, contentEncoding string) (Deserializer, bool) {
	key := Descriptor{ContentType: contentType, ContentEncoding: contentEncoding}.Key()

	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deserializers[key]
	return d, ok
}

// List returns a snapshot of the registered deserializers
func (r *registry) List() []Deserializer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Deserializer, 0, len(r.deserializers))
	for _, d := range r.deserializers {
		out = append(out, d)
	}
	return out
}

// Descriptors returns the sorted descriptors of every deserializer in r.
func Descriptors(r Registry) []Descriptor {
	list := r.List()
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		out = append(out, DescriptorOf(d).Key())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContentType != out[j].ContentType {
			return out[i].ContentType < out[j].ContentType
		}
		return out[i].ContentEncoding < out[j].ContentEncoding
	})
	return out
}
