package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// dirty holds at most one pending render; done closes with the client.
	dirty chan struct{}
	done  chan struct{}

	Viewer     string
	DocumentID string
	ClientID   string

	mu       sync.Mutex
	viewport Viewport
	closed   bool
}

func NewClient(hub *Hub, conn *websocket.Conn, viewer, documentID, clientID string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 16),
		dirty:      make(chan struct{}, 1),
		done:       make(chan struct{}),
		Viewer:     viewer,
		DocumentID: documentID,
		ClientID:   clientID,
		viewport:   Viewport{Zoom: 1},
	}
}

// Viewport returns the client's current viewport.
func (c *Client) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *Client) setViewport(v Viewport) {
	if !(v.Zoom > 0) {
		v.Zoom = 1
	}
	c.mu.Lock()
	c.viewport = v
	c.mu.Unlock()
}

// invalidate schedules a render. Requests made while a render is running
// collapse into one follow-up render.
func (c *Client) invalidate() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// RenderPump renders the client's frames one at a time, so frames reach the
// viewer in the order their renders started.
func (c *Client) RenderPump(ctx context.Context) {
	for {
		select {
		case <-c.dirty:
			c.hub.renderFor(c)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "viewer", c.Viewer)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "viewer", c.Viewer)
			continue
		}

		msg.ClientID = c.ClientID
		msg.DocumentID = c.DocumentID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "viewer", c.Viewer)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the client. Messages to a slow client are dropped;
// the next frame replaces whatever was lost.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "viewer", c.Viewer, "type", msg.Type)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
		close(c.done)
	}
}
