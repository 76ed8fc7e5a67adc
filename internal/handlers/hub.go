package handlers

import (
	ws "twenty-one-go/pkg/websocket"
)

// hubProvider is set by main at startup so HTTP handlers can broadcast realtime updates.
var hubProvider func() (*ws.Hub, bool)

func SetHubProvider(p func() (*ws.Hub, bool)) {
	hubProvider = p
}

func currentHub() (*ws.Hub, bool) {
	if hubProvider == nil {
		return nil, false
	}
	hub, ok := hubProvider()
	return hub, ok && hub != nil
}

func broadcastGameUpdate(view *GameView) {
	if hub, ok := currentHub(); ok {
		hub.Broadcast(ws.GameRoom(view.ID), "game_update", view)
	}
}

func broadcastGameDestroyed(gameID string) {
	if hub, ok := currentHub(); ok {
		hub.Broadcast(ws.GameRoom(gameID), "game_destroyed", map[string]string{"id": gameID})
	}
}
