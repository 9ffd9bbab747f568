package collab

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/session"
)

func builtinLoader(_ context.Context, id string) (*construction.Compiled, error) {
	def, ok := construction.Builtin(id)
	if !ok {
		return nil, errors.New("not found")
	}
	return construction.Compile(def)
}

func newTestRoom(t *testing.T, id string) *Room {
	t.Helper()
	c, err := builtinLoader(context.Background(), id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess, err := session.FromCompiled(c, nil, nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return NewRoom(id, sess, nil)
}

// drain returns every queued message without blocking.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("decode: %v", err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func types(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func lastOf(t *testing.T, msgs []Message, typ string) Message {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == typ {
			return msgs[i]
		}
	}
	t.Fatalf("no %s in %v", typ, types(msgs))
	return Message{}
}

func pointer(typ string, x, y float64) *Message {
	return newMessage(typ, PointerPayload{X: x, Y: y})
}

func TestJoinSendsWelcome(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	b := NewClient(nil, nil, r.id, "sess_b", "b")

	r.handle(event{kind: eventJoin, client: a})
	got := drain(t, a)
	if len(got) != 2 || got[0].Type != TypeWelcome || got[1].Type != TypePresenceState {
		t.Fatalf("a got %v, want welcome then presence.state", types(got))
	}
	var w WelcomePayload
	if err := json.Unmarshal(got[0].Payload, &w); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if w.ClientID != "a" || w.Frame.Construction != "rotation-locus" || w.Frame.Free != [2]float64{-2, 0} {
		t.Errorf("welcome = %+v", w)
	}

	r.handle(event{kind: eventJoin, client: b})
	join := lastOf(t, drain(t, a), TypePresenceJoin)
	if join.ClientID != "b" {
		t.Errorf("join from %q, want b", join.ClientID)
	}
	var st PresenceStatePayload
	json.Unmarshal(lastOf(t, drain(t, b), TypePresenceState).Payload, &st)
	if len(st.Presences) != 2 {
		t.Errorf("presence state has %d entries, want 2", len(st.Presences))
	}
}

func TestDragIsHeldByOneClient(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	b := NewClient(nil, nil, r.id, "sess_b", "b")
	r.handle(event{kind: eventJoin, client: a})
	r.handle(event{kind: eventJoin, client: b})
	drain(t, a)
	drain(t, b)

	r.handle(event{kind: eventMessage, client: a, msg: pointer(TypePointerPress, -2, 0.1)})
	if r.holder != "a" {
		t.Fatalf("holder = %q, want a", r.holder)
	}
	var up SceneUpdatePayload
	json.Unmarshal(lastOf(t, drain(t, b), TypeSceneUpdate).Payload, &up)
	if up.Holder != "a" || up.Frame.State != "dragging" {
		t.Errorf("update = holder %q state %s", up.Holder, up.Frame.State)
	}
	drain(t, a)

	// b cannot take over the drag
	r.handle(event{kind: eventMessage, client: b, msg: pointer(TypePointerPress, -2, 0)})
	if got := drain(t, b); len(got) != 1 || got[0].Type != TypeError {
		t.Errorf("b got %v, want an error", types(got))
	}

	// b's motion only moves its cursor
	r.handle(event{kind: eventMessage, client: b, msg: pointer(TypePointerMotion, 1, 1)})
	if got := drain(t, a); len(got) != 1 || got[0].Type != TypePresenceUpdate {
		t.Errorf("a got %v, want presence.update", types(got))
	}
	if got := r.sess.Frame().Free; got != [2]float64{-2, 0} {
		t.Errorf("free moved to %v by a non-holder", got)
	}

	r.handle(event{kind: eventMessage, client: a, msg: pointer(TypePointerMotion, 3, 5)})
	json.Unmarshal(lastOf(t, drain(t, b), TypeSceneUpdate).Payload, &up)
	if up.Frame.Free != [2]float64{3, 0} {
		t.Errorf("free = %v, want (3,0)", up.Frame.Free)
	}

	r.handle(event{kind: eventMessage, client: a, msg: pointer(TypePointerRelease, 3, 5)})
	if r.holder != "" {
		t.Errorf("holder after release = %q", r.holder)
	}
	json.Unmarshal(lastOf(t, drain(t, b), TypeSceneUpdate).Payload, &up)
	if up.Holder != "" || up.Frame.State != "idle" {
		t.Errorf("update after release = holder %q state %s", up.Holder, up.Frame.State)
	}
}

func TestHolderLeaveReleasesDrag(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	b := NewClient(nil, nil, r.id, "sess_b", "b")
	r.handle(event{kind: eventJoin, client: a})
	r.handle(event{kind: eventJoin, client: b})
	r.handle(event{kind: eventMessage, client: a, msg: pointer(TypePointerPress, -2, 0)})
	drain(t, b)

	r.handle(event{kind: eventLeave, client: a})
	if r.holder != "" || r.sess.Dragging() {
		t.Fatal("drag survived its holder leaving")
	}
	got := drain(t, b)
	lastOf(t, got, TypePresenceLeave)
	lastOf(t, got, TypeSceneUpdate)

	drain(t, a)
	if _, ok := <-a.send; ok {
		t.Error("send channel of departed client still open")
	}

	// b can now grab the point
	r.handle(event{kind: eventMessage, client: b, msg: pointer(TypePointerPress, -2, 0)})
	if r.holder != "b" {
		t.Errorf("holder = %q, want b", r.holder)
	}
}

func TestBadMessages(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	r.handle(event{kind: eventJoin, client: a})
	drain(t, a)

	tests := []struct {
		name string
		msg  *Message
	}{
		{"unknown type", &Message{Type: "scene.reset"}},
		{"bad payload", &Message{Type: TypePointerPress, Payload: json.RawMessage(`"nope"`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.handle(event{kind: eventMessage, client: a, msg: tt.msg})
			if got := drain(t, a); len(got) != 1 || got[0].Type != TypeError {
				t.Errorf("got %v, want one error", types(got))
			}
		})
	}
}

func TestMotionOutsidePlotIsIgnored(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	r.handle(event{kind: eventJoin, client: a})
	r.handle(event{kind: eventMessage, client: a, msg: pointer(TypePointerPress, -2, 0)})
	drain(t, a)

	outside := false
	r.handle(event{kind: eventMessage, client: a, msg: newMessage(TypePointerMotion, PointerPayload{X: 3, Y: 5, Inside: &outside})})
	if got := drain(t, a); len(got) != 0 {
		t.Errorf("got %v, want nothing", types(got))
	}
}

func TestPressOutsidePlotDoesNotGrab(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	r.handle(event{kind: eventJoin, client: a})
	drain(t, a)

	outside := false
	r.handle(event{kind: eventMessage, client: a, msg: newMessage(TypePointerPress, PointerPayload{X: -2, Y: 0, Inside: &outside})})
	if r.holder != "" || r.sess.Dragging() {
		t.Errorf("press outside the plot area grabbed the point (holder %q)", r.holder)
	}
	if got := drain(t, a); len(got) != 0 {
		t.Errorf("got %v, want nothing", types(got))
	}
}

func TestSendAfterLeave(t *testing.T) {
	r := newTestRoom(t, "rotation-locus")
	a := NewClient(nil, nil, r.id, "sess_a", "a")
	r.handle(event{kind: eventJoin, client: a})
	r.handle(event{kind: eventLeave, client: a})
	r.handle(event{kind: eventLeave, client: a})
	a.closeSend()
	a.Send(newMessage(TypeError, ErrorPayload{Message: "late"}))

	drain(t, a)
	if _, ok := <-a.send; ok {
		t.Error("message delivered to a client that left")
	}
}

func recv(t *testing.T, c *Client, typ string) Message {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case data := <-c.send:
			var m Message
			json.Unmarshal(data, &m)
			if m.Type == typ {
				return m
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func TestHubRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(builtinLoader, nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	a := NewClient(h, nil, "perpendicular-foot", "sess_a", "a")
	if err := h.Register(a); err != nil {
		t.Fatalf("Register: %v", err)
	}
	recv(t, a, TypeWelcome)

	if err := h.Register(NewClient(h, nil, "no-such-room", "sess_x", "x")); err == nil {
		t.Error("Register into an unknown construction succeeded")
	}

	h.route(a, pointer(TypePointerPress, 0, 2))
	h.route(a, pointer(TypePointerMotion, 0, 1))
	var up SceneUpdatePayload
	for up.Frame.Free != [2]float64{0, 1} {
		json.Unmarshal(recv(t, a, TypeSceneUpdate).Payload, &up)
	}

	h.Unregister(a)
	b := NewClient(h, nil, "rotation-locus", "sess_b", "b")
	if err := h.Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if n := h.Rooms(); n != 1 {
		t.Errorf("rooms = %d, want 1 after the last client left", n)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}
	if err := h.Register(b); !errors.Is(err, ErrClosed) {
		t.Errorf("Register after stop = %v, want ErrClosed", err)
	}
}
