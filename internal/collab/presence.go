package collab

// Presence tracks where the clients of one room point. It is owned by the
// room goroutine.
type Presence struct {
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresence() *Presence {
	return &Presence{presences: make(map[string]*PresencePayload)}
}

func (p *Presence) Join(clientID, sessionID string) {
	p.presences[clientID] = &PresencePayload{SessionID: sessionID}
}

// Move records a cursor and returns the updated presence.
func (p *Presence) Move(clientID string, x, y float64) *PresencePayload {
	pr, ok := p.presences[clientID]
	if !ok {
		pr = &PresencePayload{}
		p.presences[clientID] = pr
	}
	pr.Cursor = &CursorPos{X: x, Y: y}
	return pr
}

func (p *Presence) Remove(clientID string) {
	delete(p.presences, clientID)
}

func (p *Presence) StateMessage() *Message {
	all := make(map[string]*PresencePayload, len(p.presences))
	for k, v := range p.presences {
		cp := *v
		all[k] = &cp
	}
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: all})
}
