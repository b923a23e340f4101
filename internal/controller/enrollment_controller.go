package controller

import (
	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEnrollmentController interface {
	RegisterRoutes(r fiber.Router)
	ListMine(ctx *fiber.Ctx) error
	Enroll(ctx *fiber.Ctx) error
}

type enrollmentController struct {
	enrollmentService service.IEnrollmentService
	auth              fiber.Handler
}

func NewEnrollmentController(enrollmentService service.IEnrollmentService, auth fiber.Handler) IEnrollmentController {
	return &enrollmentController{enrollmentService: enrollmentService, auth: auth}
}

func (c *enrollmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/enrollments/v1")
	h.Use(c.auth)
	h.Get("", c.ListMine)
	h.Post("", c.Enroll)
}

func (c *enrollmentController) ListMine(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.enrollmentService.ListMine(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Enrolled courses", res))
}

func (c *enrollmentController) Enroll(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.EnrollRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.enrollmentService.Enroll(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Enrolled", res))
}
