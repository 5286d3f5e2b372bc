package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"google.golang.org/protobuf/proto"
)

const lengthPrefixSize = 4

// ProtobufCodec implements length-prefixed protobuf encoding.
// Content-Type: application/x-protobuf
type ProtobufCodec struct {
	maxMessageSize int
	marshal        proto.MarshalOptions
	unmarshal      proto.UnmarshalOptions

	// Buffer pool for marshaling
	bufferPool sync.Pool
}

// NewProtobufCodec creates a new protobuf codec
func NewProtobufCodec(maxMessageSize int) *ProtobufCodec {
	return &ProtobufCodec{
		maxMessageSize: maxMessageSize,
		marshal:        proto.MarshalOptions{Deterministic: true},
		bufferPool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 0, 1024) // Start with 1KB capacity
				return &buf
			},
		},
	}
}

func (c *ProtobufCodec) ContentType() string     { return ContentTypeProtobuf }
func (c *ProtobufCodec) ContentEncoding() string { return "" }

// MaxMessageSize returns the maximum message size
func (c *ProtobufCodec) MaxMessageSize() int {
	return c.maxMessageSize
}

// Marshal encodes a proto.Message with a big endian length prefix
func (c *ProtobufCodec) Marshal(v any) ([]byte, error) {
	if IsNil(v) {
		return nil, nil
	}
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf: value does not implement proto.Message: %T", v)
	}

	// Get reusable buffer from pool
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)

	// Reserve the length prefix, then marshal after it
	buf := append((*bufPtr)[:0], 0, 0, 0, 0)
	buf, err := c.marshal.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("protobuf: failed to marshal: %w", err)
	}
	*bufPtr = buf

	dataLen := len(buf) - lengthPrefixSize
	if dataLen > c.maxMessageSize {
		return nil, fmt.Errorf("protobuf: message size %d exceeds max %d", dataLen, c.maxMessageSize)
	}
	if dataLen > math.MaxUint32 {
		return nil, fmt.Errorf("protobuf: message size %d exceeds uint32 max", dataLen)
	}
	binary.BigEndian.PutUint32(buf[:lengthPrefixSize], uint32(dataLen))

	// Return copy since buf goes back to pool
	result := make([]byte, len(buf))
	copy(result, buf)
	return result, nil
}

// Unmarshal decodes a length-prefixed message into v, which must be a proto.Message
func (c *ProtobufCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("protobuf: target does not implement proto.Message: %T", v)
	}
	if len(data) < lengthPrefixSize {
		return fmt.Errorf("protobuf: data too short for length prefix")
	}

	length := binary.BigEndian.Uint32(data[:lengthPrefixSize])
	if int64(length) > int64(c.maxMessageSize) {
		return fmt.Errorf("protobuf: message size %d exceeds max %d", length, c.maxMessageSize)
	}
	if len(data) < lengthPrefixSize+int(length) {
		return fmt.Errorf("protobuf: data too short for claimed message length")
	}

	return c.unmarshal.Unmarshal(data[lengthPrefixSize:lengthPrefixSize+int(length)], msg)
}
