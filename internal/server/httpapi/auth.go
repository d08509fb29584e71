package httpapi

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// Principal is the authenticated user attached to the request, together with
// the token that authenticated it (nil for basic auth).
type Principal struct {
	User  *models.User
	Token *models.Token
}

const principalKey = "principal"

// Authenticator turns a credential carried by the request into a Principal.
// Two implementations exist: basic (login route) and bearer (everything
// else), selected per route at registration time.
type Authenticator interface {
	// Middleware rejects the request with 401 unless a valid credential is
	// present, otherwise stores the Principal in the request context.
	Middleware() fiber.Handler
}

// principalFrom returns the Principal stored by an Authenticator middleware.
func principalFrom(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok
}

// BasicAuthenticator validates an "Authorization: Basic ..." header against
// stored usernames and bcrypt password hashes.
type BasicAuthenticator struct {
	users UserAuthenticator
}

// UserAuthenticator is the slice of the user service the authenticators need.
type UserAuthenticator interface {
	AuthenticateBasic(ctx context.Context, username, password string) (*models.User, error)
	AuthenticateToken(ctx context.Context, value string) (*models.User, *models.Token, error)
}

// NewBasicAuthenticator constructs a BasicAuthenticator.
func NewBasicAuthenticator(users UserAuthenticator) *BasicAuthenticator {
	return &BasicAuthenticator{users: users}
}

func (a *BasicAuthenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, password, ok := parseBasic(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fail(c, fiber.StatusUnauthorized, "missing credentials")
		}
		user, err := a.users.AuthenticateBasic(c.UserContext(), username, password)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "unauthorized")
		}
		c.Locals(principalKey, &Principal{User: user})
		return c.Next()
	}
}

// BearerAuthenticator validates an "Authorization: Bearer ..." header against
// stored tokens. Unknown and revoked tokens produce the same 401 so callers
// cannot probe token existence.
type BearerAuthenticator struct {
	users UserAuthenticator
}

// NewBearerAuthenticator constructs a BearerAuthenticator.
func NewBearerAuthenticator(users UserAuthenticator) *BearerAuthenticator {
	return &BearerAuthenticator{users: users}
}

func (a *BearerAuthenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, ok := parseBearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fail(c, fiber.StatusUnauthorized, "missing token")
		}
		user, token, err := a.users.AuthenticateToken(c.UserContext(), value)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "unauthorized")
		}
		c.Locals(principalKey, &Principal{User: user, Token: token})
		return c.Next()
	}
}

func parseBasic(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

func parseBearer(header string) (value string, ok bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
