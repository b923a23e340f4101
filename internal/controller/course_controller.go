package controller

import (
	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICourseController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type courseController struct {
	courseService service.ICourseService
	auth          fiber.Handler
}

func NewCourseController(courseService service.ICourseService, auth fiber.Handler) ICourseController {
	return &courseController{courseService: courseService, auth: auth}
}

func (c *courseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/courses/v1")
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Post("", c.auth, serverutils.RequireAdmin, c.Create)
	h.Patch("/:id", c.auth, serverutils.RequireAdmin, c.Update)
	h.Delete("/:id", c.auth, serverutils.RequireAdmin, c.Delete)
}

func (c *courseController) List(ctx *fiber.Ctx) error {
	res, err := c.courseService.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Courses", res))
}

func (c *courseController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.courseService.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Course", res))
}

// Create accepts JSON or a multipart form with an optional "image" file.
func (c *courseController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateCourseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	image, err := optionalFile(ctx, "image")
	if err != nil {
		return err
	}

	res, err := c.courseService.Create(ctx.UserContext(), userId, &req, image)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Course created", res))
}

func (c *courseController) Update(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.courseService.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Course updated", res))
}

func (c *courseController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.courseService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Course deleted", nil))
}
