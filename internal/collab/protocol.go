package collab

import (
	"encoding/json"

	"github.com/dragpoint/geodrag/internal/session"
)

type Message struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// PointerPayload is a pointer event in world coordinates. A missing Inside
// means the pointer is inside the plot area.
type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Inside *bool   `json:"inside,omitempty"`
}

func (p PointerPayload) inside() bool { return p.Inside == nil || *p.Inside }

type WelcomePayload struct {
	ClientID string        `json:"clientId"`
	Holder   string        `json:"holder,omitempty"`
	Frame    session.Frame `json:"frame"`
}

// SceneUpdatePayload carries a new frame and who holds the drag.
type SceneUpdatePayload struct {
	Holder string        `json:"holder,omitempty"`
	Frame  session.Frame `json:"frame"`
}

type PresencePayload struct {
	SessionID string     `json:"sessionId,omitempty"`
	Cursor    *CursorPos `json:"cursor,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Pointer input (client → room)
	TypePointerPress   = "pointer.press"
	TypePointerMotion  = "pointer.motion"
	TypePointerRelease = "pointer.release"

	// Scene sync (room → clients)
	TypeSceneUpdate = "scene.update"

	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

func newMessage(typ string, payload interface{}) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
