package body

import (
	"reflect"
	"strings"
	"unicode"
)

// TypeNamer derives the declared payload type name written to MessageType
type TypeNamer interface {
	TypeName(t reflect.Type) string
}

// QualifiedNaming names types by import path and type name.
// Example: github.com/acme/orders.OrderCreated
var QualifiedNaming TypeNamer = qualifiedNaming{}

// KebabNaming converts PascalCase type names to dot-separated lowercase.
// Example: OrderCreated → "order.created"
var KebabNaming TypeNamer = kebabNaming{}

type qualifiedNaming struct{}

func (qualifiedNaming) TypeName(t reflect.Type) string {
	t = indirect(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

type kebabNaming struct{}

func (kebabNaming) TypeName(t reflect.Type) string {
	t = indirect(t)
	if t.Name() == "" {
		return t.String()
	}
	return splitPascalCase(t.Name(), ".")
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// splitPascalCase splits a PascalCase string into lowercase words joined by sep.
func splitPascalCase(s string, sep string) string {
	if s == "" {
		return ""
	}

	var words []string
	var current strings.Builder

	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		words = append(words, strings.ToLower(current.String()))
	}

	return strings.Join(words, sep)
}
