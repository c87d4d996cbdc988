package preview

import "encoding/json"

type Message struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server -> client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeError   = "error"

	// Client -> server
	TypeViewportUpdate = "viewport.update"
)

// Viewport is what a client is looking at. An empty Page means the first
// page of the document.
type Viewport struct {
	Page string  `json:"page,omitempty"`
	Zoom float64 `json:"zoom"`
}

type WelcomePayload struct {
	ClientID string   `json:"clientId"`
	Viewer   string   `json:"viewer"`
	Viewport Viewport `json:"viewport"`
}

// FramePayload carries the draw commands of one rendered page.
type FramePayload struct {
	Page     string          `json:"page,omitempty"`
	Zoom     float64         `json:"zoom"`
	Commands json.RawMessage `json:"commands"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
