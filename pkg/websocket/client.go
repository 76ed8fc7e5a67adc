package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// Client is a single websocket connection registered to a room.
type Client struct {
	Conn *websocket.Conn
	Hub  *Hub

	Room   string
	UserID int64

	// Send is closed by the hub; mu and closed guard every send and the close.
	Send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, hub *Hub, room string, userID int64) *Client {
	return &Client{
		Conn:   conn,
		Hub:    hub,
		Room:   room,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// enqueue queues b without blocking. open is false once Send has been closed.
func (c *Client) enqueue(b []byte) (queued, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, false
	}
	select {
	case c.Send <- b:
		return true, true
	default:
		return false, true
	}
}

// SendJSON queues a message for this client only. It reports false when the
// message was dropped because the client is not keeping up or is closed.
func (c *Client) SendJSON(typ string, payload any) bool {
	b, err := Encode(typ, payload)
	if err != nil {
		log.Printf("ws encode error: user_id=%d type=%s err=%v", c.UserID, typ, err)
		return false
	}
	queued, open := c.enqueue(b)
	if open && !queued {
		log.Printf("ws send drop: user_id=%d type=%s", c.UserID, typ)
	}
	return queued
}

func (c *Client) ReadPump(onMessage func([]byte)) {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error: user_id=%d err=%v", c.UserID, err)
			}
			return
		}
		if onMessage != nil {
			onMessage(message)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("ws ping error: %v", err)
				return
			}
		}
	}
}
