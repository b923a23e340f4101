package controller

import (
	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	ListByCourse(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type contentController struct {
	contentService service.IContentService
	auth           fiber.Handler
}

func NewContentController(contentService service.IContentService, auth fiber.Handler) IContentController {
	return &contentController{contentService: contentService, auth: auth}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	r.Get("/courses/v1/:courseId/content", c.ListByCourse)
	r.Post("/courses/v1/:courseId/content", c.auth, serverutils.RequireAdmin, c.Create)

	h := r.Group("/content/v1")
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.auth, serverutils.RequireAdmin, c.Update)
	h.Delete("/:id", c.auth, serverutils.RequireAdmin, c.Delete)
}

func (c *contentController) ListByCourse(ctx *fiber.Ctx) error {
	courseId, err := serverutils.ParamUUID(ctx, "courseId")
	if err != nil {
		return err
	}
	res, err := c.contentService.ListByCourse(ctx.UserContext(), courseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Course content", res))
}

func (c *contentController) Create(ctx *fiber.Ctx) error {
	courseId, err := serverutils.ParamUUID(ctx, "courseId")
	if err != nil {
		return err
	}
	var req dto.CreateContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	req.CourseId = courseId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Content created", res))
}

func (c *contentController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.contentService.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Content", res))
}

func (c *contentController) Update(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Content updated", res))
}

func (c *contentController) Delete(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.contentService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Content deleted", nil))
}
