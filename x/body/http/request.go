package http

import "github.com/compose-network/bodycodec/x/envelope"

// codecInfo describes one registered deserializer.
type codecInfo struct {
	ContentType     string `json:"content_type"`
	ContentEncoding string `json:"content_encoding,omitempty"`
	Deserializer    string `json:"deserializer"`
}

type codecsResp struct {
	Codecs  []codecInfo `json:"codecs"`
	Names   []string    `json:"names"`
	Default string      `json:"default"`
}

type encodeResp struct {
	Codec   string            `json:"codec"`
	Message *envelope.Message `json:"message"`
}

type decodeResp struct {
	MessageID       string `json:"message_id,omitempty"`
	MessageType     string `json:"message_type,omitempty"`
	ContentType     string `json:"content_type"`
	ContentEncoding string `json:"content_encoding,omitempty"`
	Payload         any    `json:"payload"`
}
