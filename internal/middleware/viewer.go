package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// maxViewerIDLen bounds ids used as connection map keys and in log lines.
const maxViewerIDLen = 64

// EnsureViewerID puts the viewer id in locals under "viewerID". Browsers
// cannot set headers on a websocket handshake, so the viewerId query
// parameter is accepted when X-Viewer-ID is absent.
func EnsureViewerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("viewerID") != nil {
			return c.Next()
		}

		viewerID := c.Get("X-Viewer-ID")
		if viewerID == "" {
			viewerID = c.Query("viewerId")
		}

		switch {
		case viewerID == "":
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "viewer ID missing: send X-Viewer-ID or ?viewerId=",
			})
		case len(viewerID) > maxViewerIDLen:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "viewer ID too long",
			})
		}

		c.Locals("viewerID", viewerID)
		return c.Next()
	}
}
