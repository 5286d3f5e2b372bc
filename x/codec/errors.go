package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a required argument is missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedCodec is returned when no deserializer matches a message.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrUnknownType is returned when a declared payload type cannot be resolved.
	ErrUnknownType = errors.New("unknown payload type")
)

const notApplicable = "N/A"

// UnsupportedCodecError names the content type and encoding that had no
// registered deserializer.
type UnsupportedCodecError struct {
	ContentType     string
	ContentEncoding string
}

// Error implements the error interface
func (e *UnsupportedCodecError) Error() string {
	enc := e.ContentEncoding
	if enc == "" {
		enc = notApplicable
	}
	return fmt.Sprintf("no deserializer registered for %s and %s", e.ContentType, enc)
}

// Is makes errors.Is(err, ErrUnsupportedCodec) match.
func (e *UnsupportedCodecError) Is(target error) bool {
	return target == ErrUnsupportedCodec
}

// UnknownTypeError names a declared payload type with no registered Go type.
type UnknownTypeError struct {
	TypeName string
}

// Error implements the error interface
func (e *UnknownTypeError) Error() string {
	if e.TypeName == "" {
		return "message carries no declared payload type"
	}
	return fmt.Sprintf("no type registered for declared payload type %q", e.TypeName)
}

// Is makes errors.Is(err, ErrUnknownType) match.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}
