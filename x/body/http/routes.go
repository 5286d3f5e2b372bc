package http

// Route patterns for the body codec HTTP surface.
const (
	routeCodecs = "/v1/codecs"
	routeEncode = "/v1/encode"
	routeDecode = "/v1/decode"
)

// Route names for mux URL building.
const (
	routeNameCodecs = "body_codecs"
	routeNameEncode = "body_encode"
	routeNameDecode = "body_decode"
)

// Query parameters accepted by the encode route.
const (
	queryCodec       = "codec"
	queryMessageType = "type"
)
