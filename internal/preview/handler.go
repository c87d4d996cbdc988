package preview

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TokenValidator returns the viewer named by a token.
type TokenValidator func(token string) (string, error)

type Handler struct {
	hub            *Hub
	validate       TokenValidator
	originPatterns []string
}

// NewHandler serves GET /ws/preview/{documentId}?token=. originPatterns are
// host patterns accepted in the Origin header.
func NewHandler(hub *Hub, validate TokenValidator, originPatterns []string) *Handler {
	return &Handler{hub: hub, validate: validate, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	viewer, err := h.validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, viewer, documentID, uuid.New().String())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	go client.RenderPump(ctx)
	client.ReadPump(ctx)
}
