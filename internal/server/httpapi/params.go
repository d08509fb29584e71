package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// pathID returns the named path parameter after checking it parses as a
// UUID. Rejecting malformed ids here keeps them out of the database, where
// they would surface as driver errors and map to 500 instead of 400.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
