package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/service"
	"github.com/avelns/shortlinkd/internal/http/view"
)

const healthPingTimeout = 2 * time.Second

// RedirectDeps groups dependencies required by the visitor-facing routes.
type RedirectDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
	// RootRedirect is where GET / goes; FallbackURL is where unknown,
	// expired and disabled slugs go.
	RootRedirect string
	FallbackURL  string
	Postgres     *pgxpool.Pool
	Redis        *redis.Client
}

// RedirectHandler implements slug resolution plus the root and health routes.
type RedirectHandler struct {
	logger       *zap.Logger
	linkService  service.LinkService
	rootRedirect string
	fallbackURL  string
	postgres     *pgxpool.Pool
	redis        *redis.Client
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:       logger,
		linkService:  deps.LinkService,
		rootRedirect: deps.RootRedirect,
		fallbackURL:  deps.FallbackURL,
		postgres:     deps.Postgres,
		redis:        deps.Redis,
	}
}

// Register wires visitor routes onto the provided router. The slug route is
// the catch-all and must be registered after every other GET route.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Root)
	router.Get("/robots.txt", h.Robots)
	router.Get("/health", h.Health)
	router.Get("/:slug", h.Resolve)
}

// Root sends visitors of the bare domain to the configured landing URL.
func (h *RedirectHandler) Root(c *fiber.Ctx) error {
	target := h.rootRedirect
	if target == "" {
		target = "https://example.com"
	}
	return c.Redirect(target, fiber.StatusFound)
}

// Robots keeps crawlers away from the admin surface.
func (h *RedirectHandler) Robots(c *fiber.Ctx) error {
	return c.SendString("User-agent: *\nDisallow: /a\nDisallow: /api/admin")
}

// Health reports service status along with store connectivity.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(userContext(c), healthPingTimeout)
	defer cancel()

	status := fiber.Map{
		"service": "shortlinkd",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if h.postgres != nil {
		if err := h.postgres.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["postgres"] = "unreachable"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
		}
	}

	return c.JSON(status)
}

// Resolve handles GET /:slug and maps the resolution outcome onto a
// response: 302, interstitial HTML, paused page or the fallback redirect.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	slug := c.Params("slug")

	resolution, err := h.linkService.Resolve(userContext(c), slug, service.Visitor{
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
	if err != nil {
		h.logger.Error("failed to resolve slug", zap.Error(err), zap.String("slug", slug))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	switch resolution.Outcome {
	case service.OutcomePaused:
		return c.
			Status(fiber.StatusServiceUnavailable).
			Type("html", "utf-8").
			SendString(view.PausedPage)

	case service.OutcomeInterstitial:
		html, err := view.RenderInterstitialPage(view.InterstitialPageData{
			TargetURL: resolution.TargetURL,
		})
		if err != nil {
			h.logger.Error("failed to render interstitial page", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to render page",
			})
		}
		return c.Type("html", "utf-8").SendString(html)

	case service.OutcomeRedirect:
		h.logger.Debug("redirecting short link",
			zap.String("slug", slug), zap.String("target", resolution.TargetURL))
		return c.Redirect(resolution.TargetURL, fiber.StatusFound)

	default:
		// Unknown, expired and disabled slugs all land here.
		return c.Redirect(h.fallback(), fiber.StatusFound)
	}
}

func (h *RedirectHandler) fallback() string {
	if h.fallbackURL == "" {
		return "/"
	}
	return h.fallbackURL
}
