package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lnky-dev/lnky/internal/app/service"
	inthttp "github.com/lnky-dev/lnky/internal/http/handler"
	"github.com/lnky-dev/lnky/internal/http/middleware"
	httpUtil "github.com/lnky-dev/lnky/internal/http/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
type Dependencies struct {
	Logger        *zap.Logger
	Redis         *redis.Client
	LinkService   service.LinkService
	UserService   service.UserService
	ViewPublisher *service.ViewPublisher
	Sessions      *httpUtil.SessionSigner
	SecureCookies bool
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	log := s.deps.Logger

	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(log))
	s.app.Use(middleware.Recovery(log))
	s.app.Use(middleware.CORS())

	authHandler := inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger:      log,
		UserService: s.deps.UserService,
		Sessions:    s.deps.Sessions,
		Secure:      s.deps.SecureCookies,
	})
	linkHandler := inthttp.NewLinkHandler(inthttp.LinkDeps{
		Logger:      log,
		LinkService: s.deps.LinkService,
	})
	userHandler := inthttp.NewUserHandler(inthttp.UserDeps{
		Logger:      log,
		UserService: s.deps.UserService,
		LinkService: s.deps.LinkService,
	})
	profileHandler := inthttp.NewProfileHandler(inthttp.ProfileDeps{
		Logger:        log,
		UserService:   s.deps.UserService,
		LinkService:   s.deps.LinkService,
		ViewPublisher: s.deps.ViewPublisher,
	})

	api := s.app.Group("/api")

	// Public API surface: signup/login and the availability check, each with
	// its own rate limit bucket.
	if s.deps.Redis != nil {
		api.Use("/auth/signup", middleware.RateLimit(s.deps.Redis, middleware.SignupRateLimitConfig(), log))
		api.Use("/username/check", middleware.RateLimit(s.deps.Redis, middleware.UsernameRateLimitConfig(), log))
	}
	authHandler.Register(api)

	// Authenticated API surface.
	authed := api.Group("", middleware.Auth(s.deps.Sessions))
	linkHandler.Register(authed)
	userHandler.Register(authed)

	// Public profile surface, registered last so the vanity path does not
	// shadow /api or /health.
	var viewsLimiter fiber.Handler
	if s.deps.Redis != nil {
		viewsLimiter = middleware.RateLimit(s.deps.Redis, middleware.ViewsRateLimitConfig(), log)
	}
	profileHandler.Register(s.app, viewsLimiter)
}
