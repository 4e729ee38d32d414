package controller

import (
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/serverutils"
	"doc-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICollectionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
	Load(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ToggleExpanded(ctx *fiber.Ctx) error
}

type collectionController struct {
	service service.ICollectionService
}

func NewCollectionController(service service.ICollectionService) ICollectionController {
	return &collectionController{service: service}
}

func (c *collectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/collection/v1")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Post("/refresh", c.Refresh)
	h.Post(":id/ingest", c.Ingest)
	h.Post(":id/load", c.Load)
	h.Get(":id/export", c.Export)
	h.Put(":id/rename", c.Rename)
	h.Delete(":id", c.Delete)
	h.Put(":id/expanded", c.ToggleExpanded)
}

func (c *collectionController) Create(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.CreateCollectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), benchId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create collection", res))
}

func (c *collectionController) GetAll(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res := c.service.List(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse("Success get all collections", res))
}

func (c *collectionController) Refresh(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res, err := c.service.Refresh(ctx.Context(), benchId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh collections", res))
}

func (c *collectionController) Ingest(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	res, err := c.service.Ingest(ctx.Context(), benchId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest collection", res))
}

func (c *collectionController) Load(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	if err := c.service.Load(ctx.Context(), benchId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success load collection", nil))
}

func (c *collectionController) Export(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	body, contentType, filename, err := c.service.Export(ctx.Context(), benchId, id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.SendStream(body)
}

func (c *collectionController) Rename(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	var req dto.RenameCollectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Rename(ctx.Context(), benchId, id, req.NewName); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename collection", nil))
}

func (c *collectionController) Delete(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	if err := c.service.Delete(ctx.Context(), benchId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete collection", nil))
}

func (c *collectionController) ToggleExpanded(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	id := ctx.Params("id")

	c.service.ToggleExpanded(ctx.Context(), benchId, id)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success toggle collection", nil))
}
