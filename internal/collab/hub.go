package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/session"
)

var ErrClosed = errors.New("collab: hub closed")

// Loader compiles the construction a room is keyed by.
type Loader func(ctx context.Context, id string) (*construction.Compiled, error)

type joinRequest struct {
	client *Client
	result chan error
}

// Hub owns the rooms. A room is created on its first join and dropped when
// its last client leaves, so every new room starts from the initial scene.
type Hub struct {
	load Loader
	log  *slog.Logger

	mu      sync.RWMutex
	rooms   map[string]*Room // construction ID -> room
	members map[string]int

	register   chan joinRequest
	unregister chan *Client
	done       chan struct{}
}

func NewHub(load Loader, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		load:       load,
		log:        log,
		rooms:      make(map[string]*Room),
		members:    make(map[string]int),
		register:   make(chan joinRequest),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves joins and leaves until ctx is done, then closes every room.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case req := <-h.register:
			req.result <- h.addClient(ctx, req.client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register joins client to its room, loading the construction if the room
// does not exist yet.
func (h *Hub) Register(client *Client) error {
	req := joinRequest{client: client, result: make(chan error, 1)}
	select {
	case h.register <- req:
		return <-req.result
	case <-h.done:
		return ErrClosed
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(ctx context.Context, client *Client) error {
	h.mu.RLock()
	room, ok := h.rooms[client.RoomID]
	h.mu.RUnlock()

	if !ok {
		c, err := h.load(ctx, client.RoomID)
		if err != nil {
			return fmt.Errorf("load room %s: %w", client.RoomID, err)
		}
		sess, err := session.FromCompiled(c, nil, h.log)
		if err != nil {
			return fmt.Errorf("start room %s: %w", client.RoomID, err)
		}
		room = NewRoom(client.RoomID, sess, h.log)
		go room.run()

		h.mu.Lock()
		h.rooms[client.RoomID] = room
		h.mu.Unlock()
	}

	h.mu.Lock()
	h.members[client.RoomID]++
	h.mu.Unlock()

	room.post(event{kind: eventJoin, client: client})
	return nil
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.members[client.RoomID]--
	last := h.members[client.RoomID] <= 0
	if last {
		delete(h.rooms, client.RoomID)
		delete(h.members, client.RoomID)
	}
	h.mu.Unlock()

	room.post(event{kind: eventLeave, client: client})
	if last {
		room.close()
		h.log.Info("room closed", "room", client.RoomID)
	}
}

func (h *Hub) route(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.RoomID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	room.post(event{kind: eventMessage, client: sender, msg: msg})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.members = make(map[string]int)
	h.mu.Unlock()

	for _, room := range rooms {
		room.close()
		<-room.done
	}
}

// Rooms returns the number of open rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
