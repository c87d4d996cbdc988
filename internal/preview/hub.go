// Package preview streams rendered draw commands to websocket viewers. Each
// viewer gets frames for its own page and zoom, and every viewer of a document
// gets a new frame whenever the document changes.
package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const renderTimeout = 10 * time.Second

// Renderer produces draw commands for one page of a document.
// *project.Service implements it.
type Renderer interface {
	Commands(ctx context.Context, documentID, pageID string, zoom float64) ([]byte, error)
}

type Room struct {
	documentID string
	clients    map[string]*Client // clientID -> client
}

func NewRoom(documentID string) *Room {
	return &Room{
		documentID: documentID,
		clients:    make(map[string]*Client),
	}
}

type Hub struct {
	renderer Renderer

	mu         sync.RWMutex
	rooms      map[string]*Room // documentID -> room
	register   chan *Client
	unregister chan *Client
	refresh    chan string
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(renderer Renderer) *Hub {
	return &Hub{
		renderer:   renderer,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan string, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case documentID := <-h.refresh:
			h.refreshRoom(documentID)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Refresh re-renders the document for all of its viewers.
func (h *Hub) Refresh(documentID string) {
	select {
	case h.refresh <- documentID:
	case <-h.done:
	default:
		slog.Warn("refresh queue full", "document", documentID)
	}
}

// RefreshAll re-renders every open document, for example after an image
// finished loading.
func (h *Hub) RefreshAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Refresh(id)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		room = NewRoom(client.DocumentID)
		h.rooms[client.DocumentID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		Viewer:   client.Viewer,
		Viewport: client.Viewport(),
	})
	client.Send(&Message{
		Type:       TypeWelcome,
		DocumentID: client.DocumentID,
		ClientID:   client.ClientID,
		Payload:    welcome,
	})
	client.invalidate()

	slog.Info("viewer joined", "viewer", client.Viewer, "document", client.DocumentID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()

	if len(room.clients) == 0 {
		delete(h.rooms, client.DocumentID)
	}
	h.mu.Unlock()

	slog.Info("viewer left", "viewer", client.Viewer, "document", client.DocumentID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.close()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeViewportUpdate:
		var v Viewport
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			slog.Warn("invalid viewport payload", "error", err)
			sender.Send(errorMessage(sender, "invalid viewport payload"))
			return
		}
		sender.setViewport(v)
		sender.invalidate()
	default:
		slog.Warn("unknown message type", "type", msg.Type, "viewer", sender.Viewer)
	}
}

func (h *Hub) refreshRoom(documentID string) {
	h.mu.RLock()
	room, ok := h.rooms[documentID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.invalidate()
	}
}

// renderFor renders the client's viewport and sends it a frame, or an error
// message when rendering failed.
func (h *Hub) renderFor(c *Client) {
	v := c.Viewport()

	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	cmds, err := h.renderer.Commands(ctx, c.DocumentID, v.Page, v.Zoom)
	if err != nil {
		slog.Warn("render preview", "document", c.DocumentID, "page", v.Page, "error", err)
		c.Send(errorMessage(c, err.Error()))
		return
	}

	payload, _ := json.Marshal(FramePayload{Page: v.Page, Zoom: v.Zoom, Commands: cmds})
	c.Send(&Message{
		Type:       TypeFrame,
		DocumentID: c.DocumentID,
		ClientID:   c.ClientID,
		Payload:    payload,
	})
}

func errorMessage(c *Client, text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{
		Type:       TypeError,
		DocumentID: c.DocumentID,
		ClientID:   c.ClientID,
		Payload:    payload,
	}
}
