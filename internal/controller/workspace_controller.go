package controller

import (
	"io"

	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/serverutils"
	"doc-workbench-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	RefreshFiles(ctx *fiber.Ctx) error
	FileContent(ctx *fiber.Ctx) error
	RemoveFile(ctx *fiber.Ctx) error
	SetPreviewCsv(ctx *fiber.Ctx) error
	SetPreviewFile(ctx *fiber.Ctx) error
	ClearPreview(ctx *fiber.Ctx) error
	PreviewTable(ctx *fiber.Ctx) error
	SetSelection(ctx *fiber.Ctx) error
	ToggleSelection(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type workspaceController struct {
	service service.IWorkspaceService
}

func NewWorkspaceController(service service.IWorkspaceService) IWorkspaceController {
	return &workspaceController{service: service}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workspace/v1")
	h.Get("", c.State)
	h.Post("/upload", c.Upload)
	h.Post("/refresh", c.RefreshFiles)
	h.Get("/files/:name", c.FileContent)
	h.Delete("/files/:name", c.RemoveFile)
	h.Put("/preview/csv", c.SetPreviewCsv)
	h.Put("/preview/file", c.SetPreviewFile)
	h.Delete("/preview", c.ClearPreview)
	h.Get("/tables/:csv/preview", c.PreviewTable)
	h.Put("/selection", c.SetSelection)
	h.Put("/selection/toggle", c.ToggleSelection)
	h.Post("/clear", c.Clear)
}

func (c *workspaceController) State(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res := c.service.State(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse("Success get workspace state", res))
}

func (c *workspaceController) Upload(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Multipart form expected")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files in request")
	}

	inputs := make([]service.UploadInput, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unreadable file in request")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unreadable file in request")
		}
		inputs = append(inputs, service.UploadInput{Name: h.Filename, Data: data})
	}

	res, err := c.service.Upload(ctx.Context(), benchId, inputs)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload files", res))
}

func (c *workspaceController) RefreshFiles(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	res, err := c.service.RefreshFiles(ctx.Context(), benchId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh session files", res))
}

func (c *workspaceController) FileContent(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	name := ctx.Params("name")

	data, contentType, err := c.service.FileContent(ctx.Context(), benchId, name)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, contentType)
	return ctx.Send(data)
}

func (c *workspaceController) RemoveFile(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	name := ctx.Params("name")

	c.service.RemoveFile(ctx.Context(), benchId, name)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove file", nil))
}

func (c *workspaceController) SetPreviewCsv(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.SetPreviewCsvRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.service.SetPreviewCsv(ctx.Context(), benchId, req.CsvFilename)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success set table preview", nil))
}

func (c *workspaceController) SetPreviewFile(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.SetPreviewFileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SetPreviewFile(ctx.Context(), benchId, req.Name); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success set file preview", nil))
}

func (c *workspaceController) ClearPreview(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	c.service.ClearPreview(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear preview", nil))
}

func (c *workspaceController) PreviewTable(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)
	csvFilename := ctx.Params("csv")

	res, err := c.service.PreviewTable(ctx.Context(), benchId, csvFilename)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success preview table", res))
}

func (c *workspaceController) SetSelection(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.SetSelectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	c.service.SetSelection(ctx.Context(), benchId, req.Names)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success set selection", nil))
}

func (c *workspaceController) ToggleSelection(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	var req dto.ToggleSelectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.service.ToggleSelection(ctx.Context(), benchId, req.Name)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success toggle selection", nil))
}

func (c *workspaceController) Clear(ctx *fiber.Ctx) error {
	benchId := ctx.Locals("workbench_id").(string)

	c.service.Clear(ctx.Context(), benchId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear workspace", nil))
}
