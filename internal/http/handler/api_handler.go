package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/model"
	"github.com/avelns/shortlinkd/internal/app/repository"
	"github.com/avelns/shortlinkd/internal/app/service"
)

// CaptchaVerifier validates anti-automation tokens for public creation.
type CaptchaVerifier interface {
	Configured() bool
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger          *zap.Logger
	LinkService     service.LinkService
	SettingsService service.SettingsService
	Captcha         CaptchaVerifier
	// AdminAuth guards every route under /api/admin.
	AdminAuth fiber.Handler
}

// APIHandler implements the public create endpoint and the admin API.
type APIHandler struct {
	logger          *zap.Logger
	linkService     service.LinkService
	settingsService service.SettingsService
	captcha         CaptchaVerifier
	adminAuth       fiber.Handler
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:          logger,
		linkService:     deps.LinkService,
		settingsService: deps.SettingsService,
		captcha:         deps.Captcha,
		adminAuth:       deps.AdminAuth,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/create", h.PublicCreate)

	admin := api.Group("/admin", h.adminAuth)
	{
		admin.Post("/login", h.Login)
		admin.Get("/links", h.ListLinks)
		admin.Post("/create", h.AdminCreate)
		admin.Post("/update", h.UpdateLink)
		admin.Post("/delete", h.DeleteLink)
		admin.Get("/config", h.GetConfig)
		admin.Post("/config", h.SaveConfig)
		admin.Post("/test-tg", h.TestNotification)
	}
}

// CreateLinkRequest represents the request body for creating a link. The
// captcha token is only read for public callers.
type CreateLinkRequest struct {
	URL       string `json:"url"`
	Slug      string `json:"slug,omitempty"`
	Expires   string `json:"expires,omitempty"`
	Turnstile string `json:"cf-turnstile-response,omitempty"`
}

// PublicCreate handles POST /api/create. The captcha check runs before
// anything touches the store.
func (h *APIHandler) PublicCreate(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if h.captcha == nil || !h.captcha.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Turnstile not configured on server",
		})
	}

	ctx := userContext(c)
	ip := c.IP()

	valid, err := h.captcha.Verify(ctx, req.Turnstile, ip)
	if err != nil {
		h.logger.Error("captcha verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Captcha verification unavailable",
		})
	}
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid captcha",
		})
	}

	return h.create(c, req, false, ip)
}

// Login handles POST /api/admin/login. Authentication already happened in
// the middleware; this only confirms the credential and fires the optional
// login notification.
func (h *APIHandler) Login(c *fiber.Ctx) error {
	h.settingsService.NotifyLogin(userContext(c))
	return c.JSON(fiber.Map{"success": true})
}

// AdminCreate handles POST /api/admin/create. Same allocator as the public
// path, with the caller-trust flag lifting the minimum slug length.
func (h *APIHandler) AdminCreate(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	return h.create(c, req, true, c.IP())
}

func (h *APIHandler) create(c *fiber.Ctx, req CreateLinkRequest, admin bool, ip string) error {
	link, err := h.linkService.CreateLink(userContext(c), service.CreateLinkInput{
		URL:         req.URL,
		Slug:        req.Slug,
		Expires:     req.Expires,
		AdminCaller: admin,
		CreatorIP:   ip,
	})
	if err != nil {
		return h.createError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"slug":    link.Slug,
	})
}

func (h *APIHandler) createError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid URL format",
		})
	case errors.Is(err, service.ErrInvalidSlug):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid slug characters",
		})
	case errors.Is(err, repository.ErrSlugTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Slug already taken",
		})
	case errors.Is(err, service.ErrExpirationInPast):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expiration must be in future",
		})
	case errors.Is(err, service.ErrInvalidExpiration):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expiration",
		})
	}

	h.logger.Error("failed to create link", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to create link",
	})
}

// ListLinks handles GET /api/admin/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	search := c.Query("search")

	links, err := h.linkService.ListLinks(userContext(c), page, search)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}

	if links == nil {
		links = []model.Link{}
	}
	return c.JSON(fiber.Map{
		"links": links,
	})
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	Slug         string  `json:"slug"`
	Status       *string `json:"status,omitempty"`
	Interstitial *bool   `json:"interstitial,omitempty"`
}

// UpdateLink handles POST /api/admin/update. Missing slugs are silent
// no-ops.
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "slug is required",
		})
	}

	err := h.linkService.UpdateLink(userContext(c), req.Slug, service.UpdateLinkInput{
		Status:       req.Status,
		Interstitial: req.Interstitial,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "status must be one of: active, paused, disabled",
			})
		}
		h.logger.Error("failed to update link", zap.Error(err), zap.String("slug", req.Slug))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update link",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteLinkRequest represents the request body for deleting a link.
type DeleteLinkRequest struct {
	Slug string `json:"slug"`
}

// DeleteLink handles POST /api/admin/delete. Missing slugs are silent
// no-ops.
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	var req DeleteLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "slug is required",
		})
	}

	if err := h.linkService.DeleteLink(userContext(c), req.Slug); err != nil {
		h.logger.Error("failed to delete link", zap.Error(err), zap.String("slug", req.Slug))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete link",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetConfig handles GET /api/admin/config
func (h *APIHandler) GetConfig(c *fiber.Ctx) error {
	settings, hasTG, err := h.settingsService.Get(userContext(c))
	if err != nil {
		h.logger.Error("failed to load settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load settings",
		})
	}

	return c.JSON(fiber.Map{
		"tg_notify_create": settings.NotifyOnCreate,
		"tg_notify_login":  settings.NotifyOnLogin,
		"tg_notify_update": settings.NotifyOnUpdate,
		"has_tg":           hasTG,
	})
}

// SaveConfigRequest represents the notification toggle payload.
type SaveConfigRequest struct {
	NotifyOnCreate bool `json:"tg_notify_create"`
	NotifyOnLogin  bool `json:"tg_notify_login"`
	NotifyOnUpdate bool `json:"tg_notify_update"`
}

// SaveConfig handles POST /api/admin/config
func (h *APIHandler) SaveConfig(c *fiber.Ctx) error {
	var req SaveConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := h.settingsService.Save(userContext(c), &model.Settings{
		NotifyOnCreate: req.NotifyOnCreate,
		NotifyOnLogin:  req.NotifyOnLogin,
		NotifyOnUpdate: req.NotifyOnUpdate,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotifierNotConfigured) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Telegram secrets not configured",
			})
		}
		h.logger.Error("failed to save settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save settings",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// TestNotification handles POST /api/admin/test-tg
func (h *APIHandler) TestNotification(c *fiber.Ctx) error {
	if err := h.settingsService.SendTest(userContext(c)); err != nil {
		if errors.Is(err, service.ErrNotifierNotConfigured) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Telegram secrets not configured",
			})
		}
		h.logger.Error("failed to send test notification", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to send test notification",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
