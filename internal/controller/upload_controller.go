package controller

import (
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
	auth          fiber.Handler
}

func NewUploadController(uploadService service.IUploadService, auth fiber.Handler) IUploadController {
	return &uploadController{uploadService: uploadService, auth: auth}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload/v1", c.auth, c.Upload)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.ErrBadRequest("missing file")
	}
	res, err := c.uploadService.Upload(ctx.UserContext(), file)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("File uploaded", res))
}
