package controller

import (
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/serverutils"
	"doc-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	RegenerateSection(ctx *fiber.Ctx) error
	UpdateSection(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
}

type ragController struct {
	service service.IRagService
}

func NewRagController(service service.IRagService) IRagController {
	return &ragController{service: service}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Get("", c.GetAll)
	h.Post("/generate", c.Generate)
	h.Post("/section/regenerate", c.RegenerateSection)
	h.Put("/section", c.UpdateSection)
}

func (c *ragController) Generate(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.GenerateRagRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Generate(ctx.Context(), benchId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate sections", res))
}

func (c *ragController) RegenerateSection(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.RegenerateSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RegenerateSection(ctx.Context(), benchId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success regenerate section", res))
}

func (c *ragController) UpdateSection(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.UpdateSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.UpdateSection(ctx.Context(), benchId, &req)
	return ctx.JSON(serverutils.SuccessResponse("Success update section", res))
}

func (c *ragController) GetAll(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res := c.service.Sections(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse("Success get sections", res))
}
