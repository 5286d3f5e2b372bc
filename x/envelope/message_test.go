package envelope

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AssignsID(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	_, err := uuid.Parse(a.MessageID)
	require.NoError(t, err)
	assert.NotEqual(t, a.MessageID, b.MessageID)
	assert.NotNil(t, a.Properties)
	assert.False(t, a.HasBody())
}

func TestNewWithBody_CopiesProperties(t *testing.T) {
	t.Parallel()

	props := Properties{PropMessageType: "orders.Created"}
	m := NewWithBody("application/json", []byte(`{}`), props)
	m.Properties["extra"] = 1

	assert.True(t, m.HasBody())
	assert.Equal(t, "application/json", m.ContentType)
	assert.False(t, props.Has("extra"))
}

func TestProperties_ContentEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		props Properties
		want  string
		ok    bool
	}{
		{"missing", Properties{}, "", false},
		{"lowercased", Properties{PropContentEncoding: " GZip "}, "gzip", true},
		{"not a string", Properties{PropContentEncoding: 42}, "", false},
		{"empty", Properties{PropContentEncoding: ""}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.props.ContentEncoding()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}

	var nilProps Properties
	_, ok := nilProps.ContentEncoding()
	assert.False(t, ok)
}

func TestProperties_SetIfAbsent(t *testing.T) {
	t.Parallel()

	p := Properties{PropMessageType: "declared"}
	assert.False(t, p.SetIfAbsent(PropMessageType, "other"))
	assert.True(t, p.SetIfAbsent(PropContentEncoding, "gzip"))

	mt, ok := p.MessageType()
	require.True(t, ok)
	assert.Equal(t, "declared", mt)
}

func TestMessage_Clone(t *testing.T) {
	t.Parallel()

	m := NewWithBody("application/json", []byte("x"), Properties{"k": "v"})
	c := m.Clone()
	c.Body[0] = 'y'
	c.Properties["k"] = "w"

	assert.Equal(t, []byte("x"), m.Body)
	assert.Equal(t, "v", m.Properties["k"])
	assert.Equal(t, m.MessageID, c.MessageID)

	var nilMsg *Message
	assert.Nil(t, nilMsg.Clone())
}

func TestMessage_JSONKeepsEmptyBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    []byte
		hasBody bool
	}{
		{"no body", nil, false},
		{"empty body", []byte{}, true},
		{"body", []byte{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(&Message{ContentType: "application/fake", Body: tt.body})
			require.NoError(t, err)

			var out Message
			require.NoError(t, json.Unmarshal(data, &out))
			assert.Equal(t, tt.hasBody, out.HasBody())
			assert.Equal(t, tt.body, out.Body)
		})
	}
}
