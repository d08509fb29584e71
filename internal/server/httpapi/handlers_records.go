package httpapi

import (
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// RecordHandler serves record CRUD and companion endpoints.
type RecordHandler struct {
	records *services.RecordService
	logger  logging.Logger
}

// NewRecordHandler constructs a RecordHandler.
func NewRecordHandler(records *services.RecordService, logger logging.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

// List handles GET /records: active records the principal owns or
// accompanies.
func (h *RecordHandler) List(c *fiber.Ctx) error {
	principal, _ := principalFrom(c)
	result, err := h.records.List(c.UserContext(), principal.User.ID)
	if err != nil {
		return failErr(c, err)
	}

	responses := make([]recordResponse, 0, len(result))
	for _, rec := range result {
		responses = append(responses, toRecordResponse(rec))
	}
	return c.JSON(responses)
}

// Create handles POST /records. The record row and its companion pivot rows
// are written in one transaction.
func (h *RecordHandler) Create(c *fiber.Ctx) error {
	principal, _ := principalFrom(c)

	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.records.Create(c.UserContext(), principal.User.ID, toRecordParams(req))
	if err != nil {
		return failErr(c, err)
	}
	h.logger.Info(c.UserContext(), "record created", "record_id", rec.ID, "creator_id", rec.CreatorID)
	return c.Status(fiber.StatusCreated).JSON(toRecordResponse(rec))
}

// Get handles GET /records/:id.
func (h *RecordHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	rec, err := h.records.Get(c.UserContext(), principal.User.ID, id)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Update handles PUT /records/:id. Owner only.
func (h *RecordHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)

	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.records.Update(c.UserContext(), principal.User.ID, id, toRecordParams(req))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Delete handles DELETE /records/:id: a state transition, not a row removal.
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	if err := h.records.Delete(c.UserContext(), principal.User.ID, id); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddCompanion handles POST /records/:id/companions/:userId.
func (h *RecordHandler) AddCompanion(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed user id")
	}
	principal, _ := principalFrom(c)
	if err := h.records.AddCompanion(c.UserContext(), principal.User.ID, id, userID); err != nil {
		return failErr(c, err)
	}
	return respondSuccess(c)
}

// RemoveCompanion handles DELETE /records/:id/companions/:userId.
func (h *RecordHandler) RemoveCompanion(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed user id")
	}
	principal, _ := principalFrom(c)
	if err := h.records.RemoveCompanion(c.UserContext(), principal.User.ID, id, userID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toRecordParams(req recordRequest) services.RecordParams {
	return services.RecordParams{
		Title:        req.Title,
		Note:         req.Note,
		OccurredOn:   req.OccurredOn,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Mood:         req.Mood,
		CompanionIDs: req.CompanionIDs,
	}
}
