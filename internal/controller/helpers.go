package controller

import (
	"mime/multipart"
	"strings"

	"lms-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

func isMultipart(ctx *fiber.Ctx) bool {
	return strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// optionalFile returns the named upload, or nil when the request carries none.
func optionalFile(ctx *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, serverutils.ErrBadRequest("invalid multipart form")
	}
	if files := form.File[field]; len(files) > 0 {
		return files[0], nil
	}
	return nil, nil
}
