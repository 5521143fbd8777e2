// Package httpapi exposes the services over a JSON REST API built on fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/dmitrijs2005/reviewhub/internal/logging"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/config"
	"github.com/dmitrijs2005/reviewhub/internal/server/metrics"
	"github.com/dmitrijs2005/reviewhub/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the HTTP layer delegates to. Ping is optional
// and backs the health check.
type Deps struct {
	Users    *services.UserService
	Reviews  *services.ReviewService
	Comments *services.CommentService
	Tokens   *auth.TokenService
	Metrics  *metrics.Metrics
	Ping     func(context.Context) error
}

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger

	users    *services.UserService
	reviews  *services.ReviewService
	comments *services.CommentService
	tokens   *auth.TokenService
	metrics  *metrics.Metrics
	ping     func(context.Context) error
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, d Deps) *HTTPServer {
	s := &HTTPServer{
		address:  cfg.HTTPAddress,
		logger:   l.With("module", "http_server"),
		users:    d.Users,
		reviews:  d.Reviews,
		comments: d.Comments,
		tokens:   d.Tokens,
		metrics:  d.Metrics,
		ping:     d.Ping,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "reviewhub",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(requestid.New())
	s.app.Use(s.observe)
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	s.routes(cfg)
	return s
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) routes(cfg *config.Config) {
	authLimit := passThrough
	if cfg.AuthRateLimit > 0 {
		authLimit = limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
			},
		})
	}

	s.app.Get("/health", s.health)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	s.app.Post("/register", authLimit, s.register)
	s.app.Post("/login", authLimit, s.login)

	s.app.Get("/users", s.listUsers)
	s.app.Get("/users/:id", s.getUser)
	s.app.Get("/users/:id/reviews", s.listUserReviews)
	s.app.Delete("/users/:id", s.requireAuth, s.deleteUser)
	s.app.Get("/me", s.requireAuth, s.me)

	s.app.Get("/reviews", s.listReviews)
	s.app.Get("/reviews/:id", s.getReview)
	s.app.Post("/reviews", s.requireAuth, s.createReview)
	s.app.Put("/reviews/:id", s.requireAuth, s.updateReview)
	s.app.Delete("/reviews/:id", s.requireAuth, s.deleteReview)
	s.app.Post("/reviews/:id/image", s.requireAuth, s.requestImageUpload)
	s.app.Get("/reviews/:id/image", s.imageURL)

	s.app.Get("/reviews/:id/comments", s.listComments)
	s.app.Post("/reviews/:id/comments", s.requireAuth, s.createComment)
	s.app.Put("/comments/:id", s.requireAuth, s.updateComment)
	s.app.Delete("/comments/:id", s.requireAuth, s.deleteComment)
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

func (s *HTTPServer) health(c *fiber.Ctx) error {
	if s.ping != nil {
		if err := s.ping(c.UserContext()); err != nil {
			s.logger.Error(c.UserContext(), "health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
