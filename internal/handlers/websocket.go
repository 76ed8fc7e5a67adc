package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"twenty-one-go/internal/auth"
	"twenty-one-go/internal/config"
	"twenty-one-go/internal/middleware"
	ws "twenty-one-go/pkg/websocket"
)

const wsMoveTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			// Non-browser clients (no Origin) are allowed.
			return true
		}
		if cfgDevAllowAll() {
			return true
		}
		if cfgIsDev() {
			return isLocalhostOrigin(origin) || isAllowedOrigin(origin)
		}
		return isAllowedOrigin(origin)
	},
}

// set by config at startup
var originMu sync.RWMutex
var allowedOrigins = map[string]bool{}
var devMode = false
var devAllowAll = false

func SetWebSocketOriginPolicy(isDev bool, allowAllDev bool, origins []string) {
	originMu.Lock()
	defer originMu.Unlock()
	devMode = isDev
	devAllowAll = allowAllDev
	allowedOrigins = map[string]bool{}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowedOrigins[o] = true
		}
	}
}

func cfgIsDev() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode
}
func cfgDevAllowAll() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode && devAllowAll
}
func isAllowedOrigin(origin string) bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return allowedOrigins[origin]
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// WebSocketHandler upgrades the connection and registers the client in the
// default room. Clients then join a game's room to receive its updates.
func WebSocketHandler(d *Deps, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := wsToken(c, cfg)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := auth.ParseAndValidateToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Preconditions before attempting the upgrade so we can return HTTP errors normally.
		hub, ok := currentHub()
		if !ok {
			log.Printf("WebSocketHandler no hub available: user_id=%d", claims.UserID)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime unavailable"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocketHandler upgrade failed: method=%s path=%s remote=%s origin=%q err=%v",
				c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Request.Header.Get("Origin"), err,
			)
			return
		}

		client := ws.NewClient(conn, hub, ws.DefaultRoom, claims.UserID)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump(func(msg []byte) {
			handleWSMessage(d, client, msg)
		})

		client.SendJSON("connected", map[string]any{
			"user_id": client.UserID,
			"room":    ws.DefaultRoom,
		})
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsGamePayload struct {
	GameID string `json:"game_id"`
	Type   string `json:"type,omitempty"`
}

func handleWSMessage(d *Deps, client *ws.Client, msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		client.SendJSON("error", map[string]any{"error": "invalid json"})
		return
	}

	var p wsGamePayload
	if in.Type == "join_game" || in.Type == "move" {
		if err := json.Unmarshal(in.Payload, &p); err != nil || strings.TrimSpace(p.GameID) == "" {
			client.SendJSON("error", map[string]any{"error": "invalid payload"})
			return
		}
		p.GameID = strings.TrimSpace(p.GameID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsMoveTimeout)
	defer cancel()

	switch in.Type {
	case "join_game":
		g, err := d.Games.Get(ctx, client.UserID, p.GameID)
		if err != nil {
			_, errMsg := apiError(err)
			client.SendJSON("error", map[string]any{"error": errMsg})
			return
		}
		client.Hub.Join(client, ws.GameRoom(g.ID))
		client.SendJSON("game_update", buildGameView(g))
	case "leave_game":
		client.Hub.Join(client, ws.DefaultRoom)
		client.SendJSON("left_game", nil)
	case "move":
		moveType := strings.ToLower(strings.TrimSpace(p.Type))
		view, err := ApplyMove(ctx, d, client.UserID, p.GameID, moveType)
		if err != nil {
			_, errMsg := apiError(err)
			client.SendJSON("error", map[string]any{"error": errMsg, "game_id": p.GameID})
			return
		}
		// the game room already got the broadcast; this acks the sender
		client.SendJSON("move_ok", map[string]any{"game_id": view.ID, "stage": view.Stage})
	case "ping":
		client.SendJSON("pong", nil)
	default:
		client.SendJSON("error", map[string]any{"error": "unknown message type"})
	}
}

// wsToken accepts the session cookie or a Bearer header, and a ?token= query
// parameter only when the config allows it.
func wsToken(c *gin.Context, cfg config.Config) string {
	if t := middleware.TokenFromRequest(c); t != "" {
		return t
	}
	if cfg.WSAllowQueryTokens {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}
