package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avelns/shortlinkd/internal/app/model"
	"github.com/avelns/shortlinkd/internal/app/repository"
)

type mockLinkRepository struct {
	createFn             func(ctx context.Context, link *model.Link) error
	getFn                func(ctx context.Context, slug string) (*model.Link, error)
	listFn               func(ctx context.Context, limit, offset int, search string) ([]model.Link, error)
	updateStatusFn       func(ctx context.Context, slug, status string) (int64, error)
	updateInterstitialFn func(ctx context.Context, slug string, interstitial bool) (int64, error)
	incrementFn          func(ctx context.Context, slug string) error
	deleteFn             func(ctx context.Context, slug string) error
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) List(ctx context.Context, limit, offset int, search string) ([]model.Link, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset, search)
	}
	return nil, nil
}

func (m *mockLinkRepository) UpdateStatus(ctx context.Context, slug, status string) (int64, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, slug, status)
	}
	return 1, nil
}

func (m *mockLinkRepository) UpdateInterstitial(ctx context.Context, slug string, interstitial bool) (int64, error) {
	if m.updateInterstitialFn != nil {
		return m.updateInterstitialFn(ctx, slug, interstitial)
	}
	return 1, nil
}

func (m *mockLinkRepository) IncrementVisits(ctx context.Context, slug string) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, slug)
	}
	return nil
}

func (m *mockLinkRepository) Delete(ctx context.Context, slug string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, slug)
	}
	return nil
}

type mockSettingsRepository struct {
	settings model.Settings
	getErr   error
	saved    *model.Settings
}

func (m *mockSettingsRepository) EnsureDefault(ctx context.Context) error {
	return nil
}

func (m *mockSettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	m.saved = settings
	return nil
}

type mockVisitRecorder struct {
	recorded chan string
}

func newMockVisitRecorder() *mockVisitRecorder {
	return &mockVisitRecorder{recorded: make(chan string, 8)}
}

func (m *mockVisitRecorder) Record(slug, ip, userAgent string) error {
	m.recorded <- slug
	return nil
}

type mockNotifier struct {
	configured bool
	sent       chan string
}

func newMockNotifier(configured bool) *mockNotifier {
	return &mockNotifier{configured: configured, sent: make(chan string, 8)}
}

func (m *mockNotifier) Configured() bool {
	return m.configured
}

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	m.sent <- text
	return nil
}

func newTestService(repo repository.LinkRepository) LinkService {
	return NewLinkService(repo, &mockSettingsRepository{}, nil, nil, nil)
}

func TestCreateLink_CustomSlug(t *testing.T) {
	var stored *model.Link
	repo := &mockLinkRepository{
		createFn: func(ctx context.Context, link *model.Link) error {
			stored = link
			return nil
		},
	}

	svc := newTestService(repo)
	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:       "https://example.com/a",
		Slug:      "abc",
		CreatorIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.Slug != "abc" {
		t.Fatalf("expected slug abc, got %s", link.Slug)
	}
	if stored == nil {
		t.Fatal("expected link to be persisted")
	}
	if stored.Status != model.StatusActive {
		t.Fatalf("expected status active, got %s", stored.Status)
	}
	if stored.Interstitial {
		t.Fatal("expected interstitial to start false")
	}
	if stored.VisitCount != 0 {
		t.Fatalf("expected visit count 0, got %d", stored.VisitCount)
	}
	if stored.CreatedAt == 0 {
		t.Fatal("expected created_at to be set")
	}
	if stored.ExpiresAt != nil {
		t.Fatal("expected no expiry")
	}
	if stored.CreatorIP != "203.0.113.7" {
		t.Fatalf("expected creator ip to be recorded, got %q", stored.CreatorIP)
	}
}

func TestCreateLink_InvalidURL(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	cases := []string{
		"",
		"not a url",
		"example.com/no-scheme",
		"/relative/path",
		"https://" + strings.Repeat("x", 1001),
	}
	for _, raw := range cases {
		_, err := svc.CreateLink(context.Background(), CreateLinkInput{URL: raw})
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("url %q: expected ErrInvalidURL, got %v", raw, err)
		}
	}
}

func TestCreateLink_InvalidSlug(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	cases := []string{"ab$c", "a b", "slash/slug", "ab"}
	for _, slug := range cases {
		_, err := svc.CreateLink(context.Background(), CreateLinkInput{
			URL:  "https://example.com",
			Slug: slug,
		})
		if !errors.Is(err, ErrInvalidSlug) {
			t.Fatalf("slug %q: expected ErrInvalidSlug, got %v", slug, err)
		}
	}
}

func TestCreateLink_AdminAllowsShortSlug(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:         "https://example.com",
		Slug:        "x",
		AdminCaller: true,
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.Slug != "x" {
		t.Fatalf("expected slug x, got %s", link.Slug)
	}
}

func TestCreateLink_SlugTaken(t *testing.T) {
	// An existing record blocks the slug even when it is expired or disabled.
	past := time.Now().Add(-time.Hour).UnixMilli()
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{
				Slug:      slug,
				Status:    model.StatusDisabled,
				ExpiresAt: &past,
			}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:  "https://example.com",
		Slug: "abc",
	})
	if !errors.Is(err, repository.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestCreateLink_SlugTakenOnInsertRace(t *testing.T) {
	// Both requests pass the existence check; the store rejects the second
	// insert and that must surface as ErrSlugTaken.
	repo := &mockLinkRepository{
		createFn: func(ctx context.Context, link *model.Link) error {
			return repository.ErrSlugTaken
		},
	}
	svc := newTestService(repo)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:  "https://example.com",
		Slug: "abc",
	})
	if !errors.Is(err, repository.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestCreateLink_GeneratesRandomSlug(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL: "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if len(link.Slug) != randomSlugLength {
		t.Fatalf("expected %d-char slug, got %q", randomSlugLength, link.Slug)
	}
	for _, r := range link.Slug {
		if !strings.ContainsRune(slugAlphabet, r) {
			t.Fatalf("slug %q contains unexpected character %q", link.Slug, r)
		}
	}
}

func TestCreateLink_ExpirationInPast(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:     "https://example.com",
		Expires: "2000-01-01T00:00",
	})
	if !errors.Is(err, ErrExpirationInPast) {
		t.Fatalf("expected ErrExpirationInPast, got %v", err)
	}
}

func TestCreateLink_ExpirationUnparseable(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:     "https://example.com",
		Expires: "next tuesday",
	})
	if !errors.Is(err, ErrInvalidExpiration) {
		t.Fatalf("expected ErrInvalidExpiration, got %v", err)
	}
}

func TestCreateLink_FutureExpiration(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	var stored *model.Link
	repo := &mockLinkRepository{
		createFn: func(ctx context.Context, link *model.Link) error {
			stored = link
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:     "https://example.com",
		Slug:    "abc",
		Expires: future.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if stored.ExpiresAt == nil {
		t.Fatal("expected expiry to be stored")
	}
	// RFC 3339 carries seconds; the stored value must land within the minute.
	if diff := *stored.ExpiresAt - future.UnixMilli(); diff < -60000 || diff > 60000 {
		t.Fatalf("stored expiry %d too far from %d", *stored.ExpiresAt, future.UnixMilli())
	}
}

func TestCreateLink_NotifiesWhenToggleOn(t *testing.T) {
	notifier := newMockNotifier(true)
	settings := &mockSettingsRepository{settings: model.Settings{NotifyOnCreate: true}}
	svc := NewLinkService(&mockLinkRepository{}, settings, nil, notifier, nil)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:  "https://example.com",
		Slug: "abc",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	select {
	case text := <-notifier.sent:
		if !strings.Contains(text, "abc") {
			t.Fatalf("notification %q does not mention the slug", text)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a create notification")
	}
}

func TestCreateLink_NoNotificationWhenToggleOff(t *testing.T) {
	notifier := newMockNotifier(true)
	settings := &mockSettingsRepository{}
	svc := NewLinkService(&mockLinkRepository{}, settings, nil, notifier, nil)

	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		URL:  "https://example.com",
		Slug: "abc",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	select {
	case text := <-notifier.sent:
		t.Fatalf("unexpected notification: %q", text)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	res, err := svc.Resolve(context.Background(), "missing", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected OutcomeNotFound, got %v", res.Outcome)
	}
}

func TestResolve_ExpiredBehavesLikeMissing(t *testing.T) {
	past := time.Now().Add(-time.Minute).UnixMilli()
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{
				Slug:      slug,
				URL:       "https://example.com",
				Status:    model.StatusActive,
				ExpiresAt: &past,
			}, nil
		},
	}
	svc := newTestService(repo)

	expired, err := svc.Resolve(context.Background(), "old", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	missing, err := newTestService(&mockLinkRepository{}).Resolve(context.Background(), "old", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if expired != missing {
		t.Fatalf("expired resolution %+v differs from missing resolution %+v", expired, missing)
	}
}

func TestResolve_Disabled(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{Slug: slug, URL: "https://example.com", Status: model.StatusDisabled}, nil
		},
	}
	svc := newTestService(repo)

	res, err := svc.Resolve(context.Background(), "off", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected OutcomeNotFound, got %v", res.Outcome)
	}
}

func TestResolve_PausedNeverRedirects(t *testing.T) {
	// The paused page wins even when the interstitial flag is set.
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{
				Slug:         slug,
				URL:          "https://example.com",
				Status:       model.StatusPaused,
				Interstitial: true,
			}, nil
		},
	}
	recorder := newMockVisitRecorder()
	svc := NewLinkService(repo, &mockSettingsRepository{}, recorder, nil, nil)

	res, err := svc.Resolve(context.Background(), "held", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != OutcomePaused {
		t.Fatalf("expected OutcomePaused, got %v", res.Outcome)
	}
	if res.TargetURL != "" {
		t.Fatalf("paused resolution must not expose the target, got %q", res.TargetURL)
	}

	select {
	case slug := <-recorder.recorded:
		t.Fatalf("unexpected visit recorded for %q", slug)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResolve_ActiveRedirectRecordsVisit(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{Slug: slug, URL: "https://example.com/a", Status: model.StatusActive}, nil
		},
	}
	recorder := newMockVisitRecorder()
	svc := NewLinkService(repo, &mockSettingsRepository{}, recorder, nil, nil)

	res, err := svc.Resolve(context.Background(), "abc", Visitor{IP: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != OutcomeRedirect {
		t.Fatalf("expected OutcomeRedirect, got %v", res.Outcome)
	}
	if res.TargetURL != "https://example.com/a" {
		t.Fatalf("expected target url, got %q", res.TargetURL)
	}

	select {
	case slug := <-recorder.recorded:
		if slug != "abc" {
			t.Fatalf("visit recorded for wrong slug %q", slug)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a visit to be recorded")
	}
}

func TestResolve_InterstitialRecordsVisit(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return &model.Link{
				Slug:         slug,
				URL:          "https://example.com/a",
				Status:       model.StatusActive,
				Interstitial: true,
			}, nil
		},
	}
	recorder := newMockVisitRecorder()
	svc := NewLinkService(repo, &mockSettingsRepository{}, recorder, nil, nil)

	res, err := svc.Resolve(context.Background(), "abc", Visitor{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != OutcomeInterstitial {
		t.Fatalf("expected OutcomeInterstitial, got %v", res.Outcome)
	}
	if res.TargetURL != "https://example.com/a" {
		t.Fatalf("expected target url, got %q", res.TargetURL)
	}

	select {
	case <-recorder.recorded:
	case <-time.After(time.Second):
		t.Fatal("expected a visit to be recorded")
	}
}

func TestResolve_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, slug string) (*model.Link, error) {
			return nil, storeErr
		},
	}
	svc := newTestService(repo)

	_, err := svc.Resolve(context.Background(), "abc", Visitor{})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestUpdateLink_StatusIdempotent(t *testing.T) {
	applied := make([]string, 0, 2)
	repo := &mockLinkRepository{
		updateStatusFn: func(ctx context.Context, slug, status string) (int64, error) {
			applied = append(applied, status)
			return 1, nil
		},
	}
	svc := newTestService(repo)

	status := model.StatusActive
	for i := 0; i < 2; i++ {
		if err := svc.UpdateLink(context.Background(), "abc", UpdateLinkInput{Status: &status}); err != nil {
			t.Fatalf("UpdateLink returned error: %v", err)
		}
	}

	if len(applied) != 2 || applied[0] != applied[1] {
		t.Fatalf("expected the same overwrite twice, got %v", applied)
	}
}

func TestUpdateLink_InvalidStatus(t *testing.T) {
	svc := newTestService(&mockLinkRepository{})

	status := "archived"
	err := svc.UpdateLink(context.Background(), "abc", UpdateLinkInput{Status: &status})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateLink_NotifiesOnChange(t *testing.T) {
	notifier := newMockNotifier(true)
	settings := &mockSettingsRepository{settings: model.Settings{NotifyOnUpdate: true}}
	svc := NewLinkService(&mockLinkRepository{}, settings, nil, notifier, nil)

	interstitial := true
	if err := svc.UpdateLink(context.Background(), "abc", UpdateLinkInput{Interstitial: &interstitial}); err != nil {
		t.Fatalf("UpdateLink returned error: %v", err)
	}

	select {
	case text := <-notifier.sent:
		if !strings.Contains(text, "Interstitial: true") {
			t.Fatalf("notification %q does not describe the change", text)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an update notification")
	}
}

func TestUpdateLink_NoFieldsNoNotification(t *testing.T) {
	notifier := newMockNotifier(true)
	settings := &mockSettingsRepository{settings: model.Settings{NotifyOnUpdate: true}}
	svc := NewLinkService(&mockLinkRepository{}, settings, nil, notifier, nil)

	if err := svc.UpdateLink(context.Background(), "abc", UpdateLinkInput{}); err != nil {
		t.Fatalf("UpdateLink returned error: %v", err)
	}

	select {
	case text := <-notifier.sent:
		t.Fatalf("unexpected notification: %q", text)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListLinks_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	var gotSearch string
	repo := &mockLinkRepository{
		listFn: func(ctx context.Context, limit, offset int, search string) ([]model.Link, error) {
			gotLimit, gotOffset, gotSearch = limit, offset, search
			return []model.Link{{Slug: "a"}, {Slug: "b"}}, nil
		},
	}
	svc := newTestService(repo)

	links, err := svc.ListLinks(context.Background(), 3, "ab")
	if err != nil {
		t.Fatalf("ListLinks returned error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if gotLimit != 20 || gotOffset != 40 || gotSearch != "ab" {
		t.Fatalf("unexpected query: limit=%d offset=%d search=%q", gotLimit, gotOffset, gotSearch)
	}

	// Page numbers below one clamp to the first page.
	if _, err := svc.ListLinks(context.Background(), 0, ""); err != nil {
		t.Fatalf("ListLinks returned error: %v", err)
	}
	if gotOffset != 0 {
		t.Fatalf("expected offset 0 for page 0, got %d", gotOffset)
	}
}

func TestDeleteLink(t *testing.T) {
	var deleted string
	repo := &mockLinkRepository{
		deleteFn: func(ctx context.Context, slug string) error {
			deleted = slug
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.DeleteLink(context.Background(), "abc"); err != nil {
		t.Fatalf("DeleteLink returned error: %v", err)
	}
	if deleted != "abc" {
		t.Fatalf("expected delete of abc, got %q", deleted)
	}
}
