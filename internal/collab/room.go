package collab

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dragpoint/geodrag/internal/session"
)

type eventKind int

const (
	eventJoin eventKind = iota
	eventLeave
	eventMessage
)

type event struct {
	kind   eventKind
	client *Client
	msg    *Message
}

// Room is one shared construction. A single goroutine owns the session, so
// pointer events from every client are applied in arrival order. Only the
// client holding the drag may move the free point; the others only move
// their cursors.
type Room struct {
	id       string
	sess     *session.Session
	clients  map[string]*Client // clientID -> client
	presence *Presence
	holder   string
	seq      int64
	inbox    chan event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	log      *slog.Logger
}

func NewRoom(id string, sess *session.Session, log *slog.Logger) *Room {
	if log == nil {
		log = slog.Default()
	}
	return &Room{
		id:       id,
		sess:     sess,
		clients:  make(map[string]*Client),
		presence: NewPresence(),
		inbox:    make(chan event, 64),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      log.With("room", id),
	}
}

func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case ev := <-r.inbox:
			r.handle(ev)
		case <-r.stop:
			for {
				select {
				case ev := <-r.inbox:
					r.handle(ev)
				default:
					return
				}
			}
		}
	}
}

// post hands ev to the room goroutine. Events posted after the room
// stopped are dropped.
func (r *Room) post(ev event) {
	select {
	case r.inbox <- ev:
	case <-r.done:
	}
}

// close stops the room once pending events are handled.
func (r *Room) close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Room) handle(ev event) {
	switch ev.kind {
	case eventJoin:
		r.join(ev.client)
	case eventLeave:
		r.leave(ev.client)
	case eventMessage:
		r.handleMessage(ev.client, ev.msg)
	}
}

func (r *Room) join(c *Client) {
	r.clients[c.ClientID] = c
	r.presence.Join(c.ClientID, c.SessionID)

	welcome := newMessage(TypeWelcome, WelcomePayload{
		ClientID: c.ClientID,
		Holder:   r.holder,
		Frame:    r.sess.Frame(),
	})
	welcome.RoomID = r.id
	welcome.Seq = r.seq
	c.Send(welcome)
	c.Send(r.presence.StateMessage())

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{ClientID: c.ClientID, SessionID: c.SessionID})
	join.ClientID = c.ClientID
	r.broadcast(join, c.ClientID)

	r.log.Info("client joined", "client", c.ClientID, "session", c.SessionID, "clients", len(r.clients))
}

func (r *Room) leave(c *Client) {
	if _, ok := r.clients[c.ClientID]; !ok {
		return
	}
	delete(r.clients, c.ClientID)
	c.closeSend()
	r.presence.Remove(c.ClientID)

	leave := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: c.ClientID})
	leave.ClientID = c.ClientID
	r.broadcast(leave, "")

	if r.holder == c.ClientID {
		r.sess.Release(0, 0)
		r.holder = ""
		r.broadcastFrame()
	}
	r.log.Info("client left", "client", c.ClientID, "clients", len(r.clients))
}

func (r *Room) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePointerPress, TypePointerMotion, TypePointerRelease:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			r.sendError(sender, "invalid pointer payload")
			return
		}
		switch msg.Type {
		case TypePointerPress:
			r.press(sender, p)
		case TypePointerMotion:
			r.motion(sender, p)
		default:
			r.release(sender, p)
		}
	default:
		r.log.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		r.sendError(sender, "unknown message type "+msg.Type)
	}
}

func (r *Room) press(sender *Client, p PointerPayload) {
	if r.holder != "" && r.holder != sender.ClientID {
		r.sendError(sender, "drag held by another client")
		return
	}
	if r.holder == sender.ClientID {
		return
	}
	if !r.sess.Press(p.X, p.Y, p.inside()) {
		return
	}
	r.holder = sender.ClientID
	r.broadcastFrame()
}

func (r *Room) motion(sender *Client, p PointerPayload) {
	if sender.ClientID != r.holder {
		pr := r.presence.Move(sender.ClientID, p.X, p.Y)
		msg := newMessage(TypePresenceUpdate, pr)
		msg.ClientID = sender.ClientID
		r.broadcast(msg, sender.ClientID)
		return
	}
	if r.sess.Motion(p.X, p.Y, p.inside()) {
		r.broadcastFrame()
	}
}

func (r *Room) release(sender *Client, p PointerPayload) {
	if sender.ClientID != r.holder {
		return
	}
	r.sess.Release(p.X, p.Y)
	r.holder = ""
	r.broadcastFrame()
}

func (r *Room) broadcastFrame() {
	r.broadcast(newMessage(TypeSceneUpdate, SceneUpdatePayload{
		Holder: r.holder,
		Frame:  r.sess.Frame(),
	}), "")
}

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	r.seq++
	msg.Seq = r.seq
	msg.RoomID = r.id
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}

func (r *Room) sendError(c *Client, text string) {
	msg := newMessage(TypeError, ErrorPayload{Message: text})
	msg.RoomID = r.id
	c.Send(msg)
}
