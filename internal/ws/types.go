package ws

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/benbeisheim/boardview-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeLoad        MessageType = "load"
	MessageTypePointerDown MessageType = "pointerDown"
	MessageTypePointerMove MessageType = "pointerMove"
	MessageTypePointerUp   MessageType = "pointerUp"
	MessageTypeCancel      MessageType = "cancel"

	// server -> client
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeFrame    MessageType = "frame"
	MessageTypeStatus   MessageType = "status"
	MessageTypeError    MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

type LoadPayload struct {
	FEN string `json:"fen"`
}

// Hit is one ray intersection reported by the renderer, closest first. Part
// names the sub-mesh that was hit; empty means the piece root.
type Hit struct {
	PieceID uuid.UUID `json:"pieceId"`
	Part    string    `json:"part,omitempty"`
}

type PointerDownPayload struct {
	Ray  model.Ray `json:"ray"`
	Hits []Hit     `json:"hits"`
}

type PointerMovePayload struct {
	Ray model.Ray `json:"ray"`
}

type PieceView struct {
	ID       uuid.UUID       `json:"id"`
	Type     model.PieceType `json:"type"`
	Color    model.Color     `json:"color"`
	Square   *model.Square   `json:"square,omitempty"`
	Position model.Vec3      `json:"position"`
}

func NewPieceView(p *model.Piece) PieceView {
	v := PieceView{ID: p.ID, Type: p.Type, Color: p.Color, Position: p.Position()}
	if sq, ok := p.Square(); ok {
		v.Square = &sq
	}
	return v
}

type Snapshot struct {
	BoardID         string      `json:"board_id"`
	FEN             string      `json:"fen"`
	Placement       string      `json:"placement"`
	ControlsEnabled bool        `json:"controls_enabled"`
	Dragging        bool        `json:"dragging"`
	Pieces          []PieceView `json:"pieces"`
}

// Frame carries the scene changes made since the previous frame.
type Frame struct {
	Added           []PieceView `json:"added,omitempty"`
	Removed         []uuid.UUID `json:"removed,omitempty"`
	Moved           []PieceView `json:"moved,omitempty"`
	ControlsEnabled *bool       `json:"controls_enabled,omitempty"`
}

func (f Frame) Empty() bool {
	return len(f.Added) == 0 && len(f.Removed) == 0 && len(f.Moved) == 0 && f.ControlsEnabled == nil
}

type Status struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}
