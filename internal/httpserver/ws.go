package httpserver

import (
	"net/http"
	"strings"

	"lv-simtrade/internal/hub"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub      *hub.Hub
	router   *WSRouter
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, router *WSRouter, origin string) *WSHandler {
	return &WSHandler{
		hub:    h,
		router: router,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	reqOrigin := r.Header.Get("Origin")
	// Allow both localhost and 127.0.0.1 variants for development
	if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
		if strings.Contains(reqOrigin, "localhost") || strings.Contains(reqOrigin, "127.0.0.1") {
			return true
		}
	}
	return strings.EqualFold(reqOrigin, origin)
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := h.hub.Add(conn)
	defer h.hub.Remove(client)
	go client.WritePump()
	client.ReadPump(h.router.Handle)
}
