package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// DefaultRoom is where clients land until they join a game room.
const DefaultRoom = "tables"

// GameRoom names the room that receives updates for one game.
func GameRoom(gameID string) string {
	return "game:" + gameID
}

// Hub manages websocket clients and room-based broadcasts. All room state is
// owned by the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	join       chan joinReq
	broadcast  chan Broadcast

	done     chan struct{}
	stopOnce sync.Once

	rooms map[string]map[*Client]bool
}

type joinReq struct {
	Client *Client
	Room   string
}

type Broadcast struct {
	Room    string
	Type    string
	Payload any
}

// Message is the envelope of every frame sent to a client.
type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

func Encode(typ string, payload any) ([]byte, error) {
	return json.Marshal(Message{
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinReq),
		broadcast:  make(chan Broadcast, 256),
		done:       make(chan struct{}),
		rooms:      map[string]map[*Client]bool{},
	}
}

// Run processes hub events until Stop is called. Stopping closes every
// client's send channel.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for _, clients := range h.rooms {
				for c := range clients {
					c.closeSend()
				}
			}
			h.rooms = map[string]map[*Client]bool{}
			return
		case c := <-h.register:
			h.addClient(c, c.Room)
		case c := <-h.unregister:
			h.dropClient(c)
		case jr := <-h.join:
			h.removeClient(jr.Client)
			h.addClient(jr.Client, jr.Room)
		case b := <-h.broadcast:
			h.broadcastToRoom(b.Room, b.Type, b.Payload)
		}
	}
}

// Stop ends Run. Calls made after Stop are dropped.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- joinReq{Client: c, Room: room}:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(room, typ string, payload any) {
	select {
	case h.broadcast <- Broadcast{Room: room, Type: typ, Payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client, room string) {
	if c == nil {
		return
	}
	if room == "" {
		room = DefaultRoom
	}
	c.Room = room
	if h.rooms[room] == nil {
		h.rooms[room] = map[*Client]bool{}
	}
	h.rooms[room][c] = true
}

// removeClient takes c out of its room without closing it.
func (h *Hub) removeClient(c *Client) {
	if c == nil || h.rooms[c.Room] == nil {
		return
	}
	delete(h.rooms[c.Room], c)
	if len(h.rooms[c.Room]) == 0 {
		delete(h.rooms, c.Room)
	}
}

func (h *Hub) dropClient(c *Client) {
	if c == nil {
		return
	}
	h.removeClient(c)
	c.closeSend()
}

func (h *Hub) broadcastToRoom(room, typ string, payload any) {
	clients := h.rooms[room]
	if len(clients) == 0 {
		return
	}
	data, err := Encode(typ, payload)
	if err != nil {
		log.Printf("ws broadcast marshal error: room=%s type=%s err=%v", room, typ, err)
		return
	}
	for c := range clients {
		if queued, _ := c.enqueue(data); !queued {
			// slow or dead client
			h.dropClient(c)
		}
	}
}
