package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/service"
)

// DocumentHandler serves owner-scoped document uploads for doctors and patients.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs handler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload handles POST /api/{doctor,patient}/upload-document with multipart fields document and description.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var doc *domain.Document
	err = withUpload(c, "document", func(u service.Upload) error {
		var err error
		doc, err = h.documents.Upload(c.UserContext(), me, u, utils.CopyString(c.FormValue("description")))
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Document uploaded successfully", "document": doc})
}

// List handles GET /api/{doctor,patient}/documents.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	docs, err := h.documents.List(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// Download handles GET /api/{doctor,patient}/documents/:id/download.
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	doc, rc, err := h.documents.Open(c.UserContext(), me, c.Params("id"))
	if err != nil {
		return err
	}
	c.Attachment(doc.OriginalName)
	c.Set(fiber.HeaderContentType, doc.MimeType)
	return c.SendStream(rc, int(doc.Size))
}

// Delete handles DELETE /api/{doctor,patient}/documents/:id.
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), me, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Document deleted"})
}
