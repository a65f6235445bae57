package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/auth"
	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/service"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

func caller(c *fiber.Ctx) (domain.Identity, error) {
	claims, err := auth.IdentityFromContext(c)
	if err != nil {
		return domain.Identity{}, err
	}
	return claims.Identity(), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// withUpload opens the multipart file under field and hands it to fn. The file is closed afterwards.
func withUpload(c *fiber.Ctx, field string, fn func(service.Upload) error) error {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return apperrors.NewValidationError("No file uploaded", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer f.Close()

	return fn(service.Upload{
		Reader:       f,
		Size:         fh.Size,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get(fiber.HeaderContentType),
	})
}
