package server

import (
	"log/slog"

	"echohole/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsUpgradeRequired rejects plain HTTP requests to websocket routes.
func wsUpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketHandler returns a websocket handler that registers connections
// with the hub for audience. Admin routes are guarded by AdminRequired.
func (s *Server) WebsocketHandler(audience notifications.Audience) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(conn, audience)
		if err != nil {
			slog.Warn("websocket register failed",
				slog.String("audience", string(audience)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
