package body

import "sync"

var (
	defaultReaderOnce sync.Once
	defaultReader     *Reader

	defaultWriterOnce sync.Once
	defaultWriter     *Writer
)

// DefaultReader returns the process-wide reader, built with the built-in
// deserializers on first use. Registrations on it are visible process-wide.
func DefaultReader() *Reader {
	defaultReaderOnce.Do(func() {
		defaultReader = NewReader()
	})
	return defaultReader
}

// DefaultWriter returns the process-wide writer, built on first use
func DefaultWriter() *Writer {
	defaultWriterOnce.Do(func() {
		defaultWriter = NewWriter()
	})
	return defaultWriter
}
