package controller

import (
	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEditorController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	SetValue(ctx *fiber.Ctx) error
	Command(ctx *fiber.Ctx) error
	Paste(ctx *fiber.Ctx) error
	InsertImages(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
}

type editorController struct {
	editorService service.IEditorService
	auth          fiber.Handler
}

func NewEditorController(editorService service.IEditorService, auth fiber.Handler) IEditorController {
	return &editorController{editorService: editorService, auth: auth}
}

func (c *editorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/editor/v1/sessions")
	h.Use(c.auth, serverutils.RequireAdmin)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id/value", c.SetValue)
	h.Post("/:id/commands", c.Command)
	h.Post("/:id/paste", c.Paste)
	h.Post("/:id/images", c.InsertImages)
	h.Delete("/:id", c.Close)
}

func (c *editorController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateEditorSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.ErrBadRequest("invalid request body")
		}
	}
	res, err := c.editorService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Editor session opened", res))
}

func (c *editorController) Show(ctx *fiber.Ctx) error {
	res, err := c.editorService.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Editor session", res))
}

func (c *editorController) SetValue(ctx *fiber.Ctx) error {
	var req dto.SetEditorValueRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	res, err := c.editorService.SetValue(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Value updated", res))
}

func (c *editorController) Command(ctx *fiber.Ctx) error {
	var req dto.EditorCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.editorService.Command(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Command applied", res))
}

func (c *editorController) Paste(ctx *fiber.Ctx) error {
	var req dto.EditorPasteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	res, err := c.editorService.Paste(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Pasted", res))
}

func (c *editorController) InsertImages(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return serverutils.ErrBadRequest("invalid multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["files[]"]
	}
	res, err := c.editorService.InsertImages(ctx.UserContext(), ctx.Params("id"), files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Images inserted", res))
}

func (c *editorController) Close(ctx *fiber.Ctx) error {
	if err := c.editorService.Close(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Editor session closed", nil))
}
