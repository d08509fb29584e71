package httpapi

import (
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// AttachmentHandler serves record attachment endpoints.
type AttachmentHandler struct {
	attachments *services.AttachmentService
	logger      logging.Logger
}

// NewAttachmentHandler constructs an AttachmentHandler.
func NewAttachmentHandler(attachments *services.AttachmentService, logger logging.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, logger: logger}
}

// Upload handles POST /records/:id/attachments with raw file bytes in the
// body. Responds with the asset projection only.
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	body := c.Body()
	if len(body) == 0 {
		return fail(c, fiber.StatusBadRequest, "empty body")
	}

	a, err := h.attachments.UploadAttachment(c.UserContext(), principal.User.ID, id, body)
	if err != nil {
		return failErr(c, err)
	}
	h.logger.Info(c.UserContext(), "attachment uploaded", "record_id", id, "attachment_id", a.ID)
	return c.Status(fiber.StatusCreated).JSON(assetResponse{ID: a.ID})
}

// File handles GET /records/:id/attachments/:assetId/file by redirecting to
// a short-lived download URL.
func (h *AttachmentHandler) File(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	assetID, ok := pathID(c, "assetId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed asset id")
	}
	principal, _ := principalFrom(c)
	url, err := h.attachments.AttachmentURL(c.UserContext(), principal.User.ID, id, assetID)
	if err != nil {
		return failErr(c, err)
	}
	return c.Redirect(url, fiber.StatusFound)
}

// Delete handles DELETE /records/:id/attachments/:assetId. The row goes
// first; the blob is removed best-effort afterwards.
func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	assetID, ok := pathID(c, "assetId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed asset id")
	}
	principal, _ := principalFrom(c)
	if err := h.attachments.DeleteAttachment(c.UserContext(), principal.User.ID, id, assetID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
