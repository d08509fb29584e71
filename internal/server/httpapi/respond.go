// Package httpapi exposes the REST surface of the CostMate server with
// gofiber: route registration, basic/bearer authentication middleware, and
// the translation of service errors into HTTP statuses.
package httpapi

import (
	"errors"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// errorBody is the wire shape of every failure response.
type errorBody struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// fail writes the canonical error body with the given status.
func fail(c *fiber.Ctx, status int, reason string) error {
	return c.Status(status).JSON(errorBody{Error: true, Reason: reason})
}

// failErr maps a service error onto an HTTP status. Every handler goes
// through this single mapping so identical domain failures always produce
// identical statuses.
func failErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrBadRequest), errors.Is(err, common.ErrValidation):
		return fail(c, fiber.StatusBadRequest, "bad request")
	case services.IsAuthError(err):
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, common.ErrAlreadyExists):
		return fail(c, fiber.StatusBadRequest, "already exists")
	default:
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
}

// success is the canonical body for operations with nothing else to return.
type success struct {
	Success bool `json:"success"`
}

func respondSuccess(c *fiber.Ctx) error {
	return c.JSON(success{Success: true})
}
