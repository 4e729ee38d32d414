package serverutils

import (
	"errors"

	"doc-workbench-be/pkg/chat/router"
	"doc-workbench-be/pkg/store"
	"doc-workbench-be/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into response envelopes so
// no handler error escapes as an unhandled exception. The taxonomy:
// local precondition failures map to 4xx, upstream-reported statuses pass
// through, transport failures become 502.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			return ctx.Status(statusErr.Status).JSON(ErrorResponse(statusErr.Status, err.Error()))
		}

		switch {
		case errors.Is(err, store.ErrDefaultCollection),
			errors.Is(err, store.ErrOperationInFlight),
			errors.Is(err, router.ErrNoSession):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, err.Error()))
		case errors.Is(err, store.ErrCollectionNotFound),
			errors.Is(err, store.ErrFileNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))
		}

		// Anything else is an upstream transport failure or a bug; either
		// way the caller gets a terminal state, never a hung request.
		return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, err.Error()))
	}
}
