package httpapi

import (
	"context"

	"github.com/ebalakin/costmate/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server owns the fiber app and route registration.
type Server struct {
	addr   string
	app    *fiber.App
	logger logging.Logger
}

// Handlers bundles everything route registration needs.
type Handlers struct {
	Basic       Authenticator
	Bearer      Authenticator
	Users       *UserHandler
	Friends     *FriendHandler
	Records     *RecordHandler
	Attachments *AttachmentHandler
}

// NewServer builds the fiber app with all routes registered under /v1.
func NewServer(addr string, h Handlers, logger logging.Logger) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	users := v1.Group("/users")
	users.Post("/signup", h.Users.SignUp)
	users.Post("/login", h.Basic.Middleware(), h.Users.Login)
	users.Delete("/logout", h.Bearer.Middleware(), h.Users.Logout)
	users.Get("/search", h.Bearer.Middleware(), h.Users.SearchUsers)
	users.Get("/:id", h.Bearer.Middleware(), h.Users.GetUser)
	users.Put("/:id", h.Bearer.Middleware(), h.Users.UpdateUser)
	users.Put("/:id/avatar", h.Bearer.Middleware(), h.Users.SetAvatar)
	users.Get("/:id/avatar/:assetId/file", h.Bearer.Middleware(), h.Users.AvatarFile)

	users.Get("/:id/friends", h.Bearer.Middleware(), h.Friends.List)
	users.Post("/:id/friends", h.Bearer.Middleware(), h.Friends.Add)
	users.Get("/:id/friends/:friendId", h.Bearer.Middleware(), h.Friends.Get)
	users.Delete("/:id/friends/:friendId", h.Bearer.Middleware(), h.Friends.Remove)

	records := v1.Group("/records", h.Bearer.Middleware())
	records.Get("/", h.Records.List)
	records.Post("/", h.Records.Create)
	records.Get("/:id", h.Records.Get)
	records.Put("/:id", h.Records.Update)
	records.Delete("/:id", h.Records.Delete)
	records.Post("/:id/companions/:userId", h.Records.AddCompanion)
	records.Delete("/:id/companions/:userId", h.Records.RemoveCompanion)
	records.Post("/:id/attachments", h.Attachments.Upload)
	records.Get("/:id/attachments/:assetId/file", h.Attachments.File)
	records.Delete("/:id/attachments/:assetId", h.Attachments.Delete)

	return &Server{addr: addr, app: app, logger: logger}
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}
