package httpapi

import (
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// FriendHandler serves the friendship endpoints under /users/:id/friends.
type FriendHandler struct {
	friends *services.FriendService
	logger  logging.Logger
}

// NewFriendHandler constructs a FriendHandler.
func NewFriendHandler(friends *services.FriendService, logger logging.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, logger: logger}
}

// List handles GET /users/:id/friends.
func (h *FriendHandler) List(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	result, err := h.friends.List(c.UserContext(), principal.User.ID, id)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toUserResponses(result))
}

// Add handles POST /users/:id/friends with {"friend_id": "..."}.
func (h *FriendHandler) Add(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)

	var req addFriendRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	friend, err := h.friends.Add(c.UserContext(), principal.User.ID, id, req.FriendID)
	if err != nil {
		return failErr(c, err)
	}
	h.logger.Info(c.UserContext(), "friend added", "person_id", id, "friend_id", req.FriendID)
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(friend))
}

// Get handles GET /users/:id/friends/:friendId. The friendship row is the
// authority: 404 when absent, even if the user exists.
func (h *FriendHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed friend id")
	}
	principal, _ := principalFrom(c)
	friend, err := h.friends.Get(c.UserContext(), principal.User.ID, id, friendID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toUserResponse(friend))
}

// Remove handles DELETE /users/:id/friends/:friendId.
func (h *FriendHandler) Remove(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed friend id")
	}
	principal, _ := principalFrom(c)
	if err := h.friends.Remove(c.UserContext(), principal.User.ID, id, friendID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
