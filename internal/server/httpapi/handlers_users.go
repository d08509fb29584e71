package httpapi

import (
	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves account, session, and avatar endpoints.
type UserHandler struct {
	users       *services.UserService
	attachments *services.AttachmentService
	logger      logging.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService, attachments *services.AttachmentService, logger logging.Logger) *UserHandler {
	return &UserHandler{users: users, attachments: attachments, logger: logger}
}

// SignUp handles POST /users/signup. Returns the created user and their
// first token with 201.
func (h *UserHandler) SignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	user, token, err := h.users.SignUp(c.UserContext(), services.SignUpParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		OSName:    req.OSName,
		TimeZone:  req.TimeZone,
	})
	if err != nil {
		h.logger.Warn(c.UserContext(), "sign up failed", "username", req.Username, "err", err)
		return failErr(c, err)
	}

	h.logger.Info(c.UserContext(), "user signed up", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token.Token, User: toUserResponse(user)})
}

// Login handles POST /users/login behind basic auth. Reuses the device's
// active token when one exists.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	principal, ok := principalFrom(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}

	token, err := h.users.Login(c.UserContext(), principal.User, req.OSName, req.TimeZone)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(authResponse{Token: token.Token, User: toUserResponse(principal.User)})
}

// Logout handles DELETE /users/logout. The body's (os_name, time_zone) must
// match the authenticating token, otherwise 404 and the token stays active.
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	principal, ok := principalFrom(c)
	if !ok || principal.Token == nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req logoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}

	if err := h.users.Logout(c.UserContext(), principal.Token, req.OSName, req.TimeZone); err != nil {
		return failErr(c, err)
	}
	h.logger.Info(c.UserContext(), "user logged out", "user_id", principal.User.ID)
	return respondSuccess(c)
}

// GetUser handles GET /users/:id. Self-access only.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	user, err := h.users.GetUser(c.UserContext(), principal.User.ID, id)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// UpdateUser handles PUT /users/:id. Self-access only; names and email only.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed body")
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.users.UpdateProfile(c.UserContext(), principal.User.ID, id,
		req.FirstName, req.LastName, req.Email)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// SearchUsers handles GET /users/search?q=.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return fail(c, fiber.StatusBadRequest, "missing query")
	}
	result, err := h.users.Search(c.UserContext(), q)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(toUserResponses(result))
}

// SetAvatar handles PUT /users/:id/avatar with raw image bytes in the body.
func (h *UserHandler) SetAvatar(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	principal, _ := principalFrom(c)
	body := c.Body()
	if len(body) == 0 {
		return fail(c, fiber.StatusBadRequest, "empty body")
	}

	avatar, err := h.attachments.SetAvatar(c.UserContext(), principal.User.ID, id, body)
	if err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(assetResponse{ID: avatar.ID})
}

// AvatarFile handles GET /users/:id/avatar/:assetId/file by redirecting to a
// short-lived download URL.
func (h *UserHandler) AvatarFile(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed id")
	}
	assetID, ok := pathID(c, "assetId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "malformed asset id")
	}
	url, err := h.attachments.AvatarURL(c.UserContext(), id, assetID)
	if err != nil {
		return failErr(c, err)
	}
	return c.Redirect(url, fiber.StatusFound)
}
