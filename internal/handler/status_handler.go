package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"doc-workbench-be/internal/pkg/logger"
	"doc-workbench-be/internal/pkg/serverutils"
	internalWS "doc-workbench-be/internal/websocket"
)

// StatusHandler exposes the websocket endpoint that streams status banner
// events to the browser.
type StatusHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStatusHandler(hub *internalWS.Hub, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer. The workbench identity
// comes from the session cookie set by the workbench middleware, so the
// handshake carries it without extra query params.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	workbenchID, ok := c.Locals("workbench_id").(string)
	if !ok || workbenchID == "" {
		workbenchID = c.Cookies(serverutils.WorkbenchCookie)
	}
	if workbenchID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing workbench session cookie"})
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StatusHandler", "Starting WebSocket session", map[string]interface{}{"workbench_id": workbenchID})
			internalWS.ServeWs(h.hub, conn, workbenchID)
			h.logger.Info("StatusHandler", "WebSocket session ended", map[string]interface{}{"workbench_id": workbenchID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket route.
func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
