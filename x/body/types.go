package body

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/compose-network/bodycodec/x/codec"
)

// TypeRegistry resolves declared payload type names back to Go types so a
// receiver can decode a message without knowing its type up front.
type TypeRegistry struct {
	mu    sync.RWMutex
	namer TypeNamer
	types map[string]reflect.Type
}

// NewTypeRegistry creates a registry naming types with namer. The namer must
// match the one used by the writer, QualifiedNaming when nil.
func NewTypeRegistry(namer TypeNamer) *TypeRegistry {
	if namer == nil {
		namer = QualifiedNaming
	}
	return &TypeRegistry{
		namer: namer,
		types: make(map[string]reflect.Type),
	}
}

// Register adds the type of every sample under its derived name. Pointer
// samples decode to pointers.
func (r *TypeRegistry) Register(samples ...any) error {
	for _, s := range samples {
		if s == nil {
			return fmt.Errorf("%w: sample is nil", codec.ErrInvalidArgument)
		}
		t := reflect.TypeOf(s)
		if err := r.RegisterName(r.namer.TypeName(t), s); err != nil {
			return err
		}
	}
	return nil
}

// RegisterName adds the type of sample under an explicit name, for messages
// whose MessageType was pre-declared by the sender.
func (r *TypeRegistry) RegisterName(name string, sample any) error {
	if name == "" {
		return fmt.Errorf("%w: type name is empty", codec.ErrInvalidArgument)
	}
	if sample == nil {
		return fmt.Errorf("%w: sample is nil", codec.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = reflect.TypeOf(sample)
	return nil
}

// Lookup returns the type registered under name
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered type names
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	return out
}
