package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades the connection and attaches it to the
// notification hub. Auth happens in AuthRequired before the upgrade, so
// the userID is already in locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthorized"))
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Realtime unavailable"))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("websocket register failed for user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Connection limit reached"))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
