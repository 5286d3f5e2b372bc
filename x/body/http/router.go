package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMux binds gorilla/mux routes.
func (h *Handler) RegisterMux(r *mux.Router) {
	r.HandleFunc(routeCodecs, h.handleCodecs).Methods(http.MethodGet).Name(routeNameCodecs)
	r.HandleFunc(routeEncode, h.handleEncode).Methods(http.MethodPost).Name(routeNameEncode)
	r.HandleFunc(routeDecode, h.handleDecode).Methods(http.MethodPost).Name(routeNameDecode)
}
