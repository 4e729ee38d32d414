package controller

import (
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/serverutils"
	"doc-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	SetSearchMode(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("", c.History)
	h.Post("/send", c.Send)
	h.Put("/search-mode", c.SetSearchMode)
	h.Post("/clear", c.Clear)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.Send(ctx.Context(), benchId, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res := c.service.History(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) SetSearchMode(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.SetSearchModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	c.service.SetSearchMode(ctx.Context(), benchId, req.Enabled)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success set search mode", nil))
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	c.service.Clear(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear chat", nil))
}
