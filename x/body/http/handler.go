package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	apicommon "github.com/compose-network/bodycodec/server/api"
	"github.com/compose-network/bodycodec/server/api/middleware"
	"github.com/compose-network/bodycodec/x/body"
	"github.com/compose-network/bodycodec/x/codec"
	"github.com/compose-network/bodycodec/x/envelope"
)

const defaultMaxBodyBytes = 4 << 20

// Handler exposes a Reader and Writer over HTTP. Payloads travel as JSON and
// are re-encoded with the requested codec.
type Handler struct {
	reader *body.Reader
	writer *body.Writer
	log    zerolog.Logger

	maxBodyBytes int64

	mu           sync.RWMutex
	codecs       map[string]codec.Codec
	defaultCodec string
}

// NewHandler creates a handler serving every built-in codec by name. The
// writer's default serializer is used when a request names no codec.
func NewHandler(reader *body.Reader, writer *body.Writer, log zerolog.Logger) *Handler {
	h := &Handler{
		reader:       reader,
		writer:       writer,
		log:          log.With().Str("component", "body-http").Logger(),
		maxBodyBytes: defaultMaxBodyBytes,
		codecs:       make(map[string]codec.Codec),
	}
	for _, name := range codec.Names() {
		if name == codec.NameProtobuf {
			continue // needs a configured size limit, see AddCodec
		}
		c, err := codec.ByName(name)
		if err != nil {
			continue
		}
		h.codecs[name] = c
	}
	return h
}

// AddCodec makes c selectable under name on the encode route, replacing any
// codec with the same name. The reader must hold a matching deserializer for
// the decode route to accept its output.
func (h *Handler) AddCodec(name string, c codec.Codec) error {
	name = codec.NormalizeToken(name)
	if name == "" || codec.IsNil(c) {
		return fmt.Errorf("%w: codec name and codec are required", codec.ErrInvalidArgument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.codecs[name] = c
	return nil
}

// SetDefaultCodec names the codec reported as default on the codecs route.
func (h *Handler) SetDefaultCodec(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultCodec = codec.NormalizeToken(name)
}

// SetMaxBodyBytes caps request bodies. Non-positive values keep the default.
func (h *Handler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBodyBytes = n
	}
}

func (h *Handler) lookupCodec(name string) (codec.Codec, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.codecs[codec.NormalizeToken(name)]
	return c, ok
}

func (h *Handler) codecNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.codecs))
	for n := range h.codecs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (h *Handler) handleCodecs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	list := h.reader.RegisteredDeserializers()
	infos := make([]codecInfo, 0, len(list))
	for _, d := range list {
		k := codec.DescriptorOf(d).Key()
		infos = append(infos, codecInfo{
			ContentType:     k.ContentType,
			ContentEncoding: k.ContentEncoding,
			Deserializer:    fmt.Sprintf("%T", d),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ContentType != infos[j].ContentType {
			return infos[i].ContentType < infos[j].ContentType
		}
		return infos[i].ContentEncoding < infos[j].ContentEncoding
	})

	h.mu.RLock()
	def := h.defaultCodec
	h.mu.RUnlock()

	apicommon.WriteJSON(w, http.StatusOK, codecsResp{Codecs: infos, Names: h.codecNames(), Default: def})
}

func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	serializer := h.writer.DefaultSerializer()
	name := strings.TrimSpace(r.URL.Query().Get(queryCodec))
	if name != "" {
		c, ok := h.lookupCodec(name)
		if !ok {
			apicommon.WriteError(w, r, http.StatusBadRequest, "unknown_codec",
				fmt.Sprintf("unknown codec %q", name), map[string]any{"known": h.codecNames()})
			return
		}
		serializer = c
	}
	middleware.SetLogField(r.Context(), "codec", codec.DescriptorOf(serializer).String())

	var raw any
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxBodyBytes)).Decode(&raw); err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request", nil)
		return
	}

	payload, err := PayloadFor(serializer, raw)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_payload", err.Error(), nil)
		return
	}

	msg := envelope.New()
	if mt := strings.TrimSpace(r.URL.Query().Get(queryMessageType)); mt != "" {
		msg.Properties[envelope.PropMessageType] = mt
	}
	middleware.SetLogField(r.Context(), "message_id", msg.MessageID)

	if err := h.writer.WriteBodyWith(msg, payload, serializer); err != nil {
		h.log.Debug().Err(err).Str("codec", name).Msg("Failed to encode payload")
		apicommon.WriteError(w, r, http.StatusUnprocessableEntity, "encode_failed", err.Error(), nil)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, encodeResp{Codec: codec.DescriptorOf(serializer).String(), Message: msg})
}

func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var msg envelope.Message
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxBodyBytes)).Decode(&msg); err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request", nil)
		return
	}
	if strings.TrimSpace(msg.ContentType) == "" && msg.Body != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "missing_content_type", "content_type is required", nil)
		return
	}

	mt, _ := msg.Properties.MessageType()
	enc, _ := msg.Properties.ContentEncoding()
	middleware.SetLogField(r.Context(), "codec", codec.Descriptor{ContentType: msg.ContentType, ContentEncoding: enc}.String())
	middleware.SetLogField(r.Context(), "message_id", msg.MessageID)
	middleware.SetLogField(r.Context(), "message_type", mt)

	v, err := h.reader.ReadBody(&msg, TargetFor(msg.ContentType))
	if err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, decodeResp{
		MessageID:       msg.MessageID,
		MessageType:     mt,
		ContentType:     msg.ContentType,
		ContentEncoding: enc,
		Payload:         Plain(v),
	})
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var unsupported *codec.UnsupportedCodecError
	switch {
	case errors.As(err, &unsupported):
		apicommon.WriteError(w, r, http.StatusUnsupportedMediaType, "unsupported_codec", err.Error(), map[string]any{
			"content_type":     unsupported.ContentType,
			"content_encoding": unsupported.ContentEncoding,
		})
	case errors.Is(err, codec.ErrInvalidArgument):
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_argument", err.Error(), nil)
	default:
		h.log.Debug().Err(err).Msg("Failed to decode body")
		apicommon.WriteError(w, r, http.StatusUnprocessableEntity, "decode_failed", err.Error(), nil)
	}
}
