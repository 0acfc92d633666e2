package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/avelns/shortlinkd/internal/app/model"
	"github.com/avelns/shortlinkd/internal/app/service"
	"github.com/avelns/shortlinkd/internal/http/middleware"
)

const testAdminPassword = "hunter2"

type stubLinkService struct {
	createFn  func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error)
	resolveFn func(ctx context.Context, slug string, visitor service.Visitor) (service.Resolution, error)
	listFn    func(ctx context.Context, page int, search string) ([]model.Link, error)
	updateFn  func(ctx context.Context, slug string, input service.UpdateLinkInput) error
	deleteFn  func(ctx context.Context, slug string) error
}

func (s *stubLinkService) CreateLink(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &model.Link{Slug: input.Slug, URL: input.URL}, nil
}

func (s *stubLinkService) Resolve(ctx context.Context, slug string, visitor service.Visitor) (service.Resolution, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, slug, visitor)
	}
	return service.Resolution{Outcome: service.OutcomeNotFound}, nil
}

func (s *stubLinkService) ListLinks(ctx context.Context, page int, search string) ([]model.Link, error) {
	if s.listFn != nil {
		return s.listFn(ctx, page, search)
	}
	return nil, nil
}

func (s *stubLinkService) UpdateLink(ctx context.Context, slug string, input service.UpdateLinkInput) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, slug, input)
	}
	return nil
}

func (s *stubLinkService) DeleteLink(ctx context.Context, slug string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, slug)
	}
	return nil
}

type stubSettingsService struct {
	getFn      func(ctx context.Context) (*model.Settings, bool, error)
	saveFn     func(ctx context.Context, settings *model.Settings) error
	sendTestFn func(ctx context.Context) error
	loggedIn   bool
}

func (s *stubSettingsService) Get(ctx context.Context) (*model.Settings, bool, error) {
	if s.getFn != nil {
		return s.getFn(ctx)
	}
	return &model.Settings{}, false, nil
}

func (s *stubSettingsService) Save(ctx context.Context, settings *model.Settings) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, settings)
	}
	return nil
}

func (s *stubSettingsService) SendTest(ctx context.Context) error {
	if s.sendTestFn != nil {
		return s.sendTestFn(ctx)
	}
	return nil
}

func (s *stubSettingsService) NotifyLogin(ctx context.Context) {
	s.loggedIn = true
}

type stubCaptcha struct {
	configured bool
	valid      bool
	err        error
}

func (s *stubCaptcha) Configured() bool {
	return s.configured
}

func (s *stubCaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return s.valid, s.err
}

func newTestAPIApp(links service.LinkService, settings service.SettingsService, captcha CaptchaVerifier) *fiber.App {
	app := fiber.New()
	NewAPIHandler(APIDeps{
		LinkService:     links,
		SettingsService: settings,
		Captcha:         captcha,
		AdminAuth:       middleware.AdminAuth(testAdminPassword),
	}).Register(app)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}
