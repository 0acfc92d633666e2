package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/service"
	inthttp "github.com/avelns/shortlinkd/internal/http/handler"
	"github.com/avelns/shortlinkd/internal/http/middleware"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
type Dependencies struct {
	Logger          *zap.Logger
	Postgres        *pgxpool.Pool
	Redis           *redis.Client
	NATS            *nats.Conn
	JetStream       nats.JetStreamContext
	LinkService     service.LinkService
	SettingsService service.SettingsService
	Captcha         inthttp.CaptchaVerifier

	AdminPassword    string
	RootRedirect     string
	FallbackURL      string
	TurnstileSiteKey string
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

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

// App exposes the underlying Fiber app. Used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.CORS())

	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:          s.deps.Logger,
		LinkService:     s.deps.LinkService,
		SettingsService: s.deps.SettingsService,
		Captcha:         s.deps.Captcha,
		AdminAuth:       middleware.AdminAuth(s.deps.AdminPassword),
	})
	apiHandler.Register(s.app)

	pageHandler := inthttp.NewPageHandler(inthttp.PageDeps{
		Logger:           s.deps.Logger,
		TurnstileSiteKey: s.deps.TurnstileSiteKey,
	})
	pageHandler.Register(s.app)

	// Registered last: GET /:slug is the catch-all.
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:       s.deps.Logger,
		LinkService:  s.deps.LinkService,
		RootRedirect: s.deps.RootRedirect,
		FallbackURL:  s.deps.FallbackURL,
		Postgres:     s.deps.Postgres,
		Redis:        s.deps.Redis,
	})
	redirectHandler.Register(s.app)
}
