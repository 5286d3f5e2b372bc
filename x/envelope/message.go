package envelope

import (
	"github.com/google/uuid"
)

// Message is the transport envelope a body is written to and read from.
// A nil Body means the message carries no payload; an empty non-nil Body is
// a payload of zero bytes. In JSON the two are null and "".
type Message struct {
	MessageID   string     `json:"message_id,omitempty"   yaml:"message_id,omitempty"`
	ContentType string     `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Body        []byte     `json:"body"                   yaml:"body,omitempty"`
	Properties  Properties `json:"properties,omitempty"   yaml:"properties,omitempty"`
}

// New creates an empty message with a fresh random ID
func New() *Message {
	return &Message{
		MessageID:  uuid.NewString(),
		Properties: make(Properties),
	}
}

// NewWithBody creates a message carrying an already encoded body
func NewWithBody(contentType string, body []byte, props Properties) *Message {
	m := New()
	m.ContentType = contentType
	m.Body = body
	for k, v := range props {
		m.Properties[k] = v
	}
	return m
}

// HasBody reports whether the message carries a payload
func (m *Message) HasBody() bool {
	return m != nil && m.Body != nil
}

// EnsureProperties allocates the property map if it is missing and returns it
func (m *Message) EnsureProperties() Properties {
	if m.Properties == nil {
		m.Properties = make(Properties)
	}
	return m.Properties
}

// Clone returns a copy of m with its own body slice and property map
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := &Message{
		MessageID:   m.MessageID,
		ContentType: m.ContentType,
	}
	if m.Body != nil {
		out.Body = append([]byte{}, m.Body...)
	}
	if m.Properties != nil {
		out.Properties = make(Properties, len(m.Properties))
		for k, v := range m.Properties {
			out.Properties[k] = v
		}
	}
	return out
}
