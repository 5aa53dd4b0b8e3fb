package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade guards /ws/board/:boardId. Plain HTTP requests get 426;
// the board id and viewer id are copied into wsBoardID and wsViewerID, the
// locals the websocket handler reads after the upgrade.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		boardID := c.Params("boardId")
		if boardID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "board ID is required",
			})
		}

		viewerID, _ := c.Locals("viewerID").(string)
		if viewerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "viewer ID is required",
			})
		}

		c.Locals("wsBoardID", boardID)
		c.Locals("wsViewerID", viewerID)
		return c.Next()
	}
}
