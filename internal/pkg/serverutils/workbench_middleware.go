package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const WorkbenchCookie = "workbench_session"

// WorkbenchMiddleware resolves the browser's workbench id from its session
// cookie, minting one on first contact. Handlers read it from
// ctx.Locals("workbench_id").
func WorkbenchMiddleware(ctx *fiber.Ctx) error {
	id := ctx.Cookies(WorkbenchCookie)
	if id == "" {
		id = uuid.NewString()
		ctx.Cookie(&fiber.Cookie{
			Name:     WorkbenchCookie,
			Value:    id,
			Expires:  time.Now().Add(24 * time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	ctx.Locals("workbench_id", id)
	return ctx.Next()
}
