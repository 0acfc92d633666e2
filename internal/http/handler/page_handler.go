package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/http/view"
)

// PageDeps groups dependencies required by the HTML page routes.
type PageDeps struct {
	Logger           *zap.Logger
	TurnstileSiteKey string
}

// PageHandler serves the public create page and the admin page.
type PageHandler struct {
	logger           *zap.Logger
	turnstileSiteKey string
}

// NewPageHandler creates a page handler with the provided dependencies.
func NewPageHandler(deps PageDeps) *PageHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		logger:           logger,
		turnstileSiteKey: deps.TurnstileSiteKey,
	}
}

// Register wires the page routes onto the provided router.
func (h *PageHandler) Register(router fiber.Router) {
	router.Get("/c", h.PublicPage)
	router.Get("/a", h.AdminPage)
}

// PublicPage handles GET /c
func (h *PageHandler) PublicPage(c *fiber.Ctx) error {
	html, err := view.RenderPublicPage(view.PublicPageData{
		TurnstileSiteKey: h.turnstileSiteKey,
	})
	if err != nil {
		h.logger.Error("failed to render public page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

// AdminPage handles GET /a
func (h *PageHandler) AdminPage(c *fiber.Ctx) error {
	return c.Type("html", "utf-8").SendString(view.AdminPage)
}
