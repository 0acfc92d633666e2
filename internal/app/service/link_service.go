package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/model"
	"github.com/avelns/shortlinkd/internal/app/repository"
)

var (
	// ErrInvalidURL signals a missing, oversized or malformed target URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidSlug signals a slug with bad characters or, for public
	// callers, fewer than three characters.
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrExpirationInPast signals an expiry that is not strictly in the future.
	ErrExpirationInPast = errors.New("expiration must be in future")
	// ErrInvalidExpiration signals an expiry that could not be parsed.
	ErrInvalidExpiration = errors.New("invalid expiration")
	// ErrInvalidStatus signals an unrecognised link status.
	ErrInvalidStatus = errors.New("invalid status")
)

const (
	maxURLLength     = 1000
	minPublicSlugLen = 3
	randomSlugLength = 6
	slugAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"

	notifyTimeout = 5 * time.Second
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Outcome classifies how a slug resolution should be answered.
type Outcome int

const (
	// OutcomeNotFound covers unknown, expired and disabled slugs alike; the
	// visitor is sent to the fallback URL with no distinct signal.
	OutcomeNotFound Outcome = iota
	// OutcomePaused renders the paused page and never redirects.
	OutcomePaused
	// OutcomeInterstitial renders the countdown page for the target URL.
	OutcomeInterstitial
	// OutcomeRedirect issues a 302 to the target URL.
	OutcomeRedirect
)

// Resolution is the result of resolving a slug.
type Resolution struct {
	Outcome   Outcome
	TargetURL string
}

// Visitor carries best-effort client details for visit recording.
type Visitor struct {
	IP        string
	UserAgent string
}

// VisitRecorder accepts visit events for asynchronous counting. Failures are
// logged and never affect the resolution that produced the event.
type VisitRecorder interface {
	Record(slug, ip, userAgent string) error
}

// Notifier delivers human-readable event text to an external chat channel.
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, text string) error
}

// LinkService implements slug allocation, resolution and admin mutation.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	Resolve(ctx context.Context, slug string, visitor Visitor) (Resolution, error)
	ListLinks(ctx context.Context, page int, search string) ([]model.Link, error)
	UpdateLink(ctx context.Context, slug string, input UpdateLinkInput) error
	DeleteLink(ctx context.Context, slug string) error
}

type linkService struct {
	repo     repository.LinkRepository
	settings repository.SettingsRepository
	visits   VisitRecorder
	notifier Notifier
	logger   *zap.Logger
}

// NewLinkService returns a service implementation backed by the given
// repositories. The visit recorder and notifier may be nil; the related side
// effects are then skipped.
func NewLinkService(
	repo repository.LinkRepository,
	settings repository.SettingsRepository,
	visits VisitRecorder,
	notifier Notifier,
	logger *zap.Logger,
) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		repo:     repo,
		settings: settings,
		visits:   visits,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateLinkInput captures data required to create a link.
type CreateLinkInput struct {
	URL  string
	Slug string
	// Expires is the raw expiry from the request, either an HTML
	// datetime-local value (local time) or RFC 3339. Empty means no expiry.
	Expires string
	// AdminCaller lifts the minimum slug length; public callers need three
	// characters or more.
	AdminCaller bool
	CreatorIP   string
}

// UpdateLinkInput captures the admin-mutable fields. Nil means unchanged.
type UpdateLinkInput struct {
	Status       *string
	Interstitial *bool
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if err := validateTargetURL(input.URL); err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		generated, err := randomSlug()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		slug = generated
	} else if !validSlug(slug, input.AdminCaller) {
		return nil, ErrInvalidSlug
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, repository.ErrSlugTaken
	} else if !errors.Is(err, repository.ErrLinkNotFound) {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	now := time.Now()
	expiresAt, err := parseExpiry(input.Expires, now)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		Slug:         slug,
		URL:          input.URL,
		CreatedAt:    now.UnixMilli(),
		ExpiresAt:    expiresAt,
		Status:       model.StatusActive,
		Interstitial: false,
		VisitCount:   0,
		CreatorIP:    input.CreatorIP,
	}

	// The existence check above is not atomic with the insert; a concurrent
	// creation for the same slug surfaces here as ErrSlugTaken via the
	// primary key constraint.
	if err := s.repo.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, repository.ErrSlugTaken
		}
		return nil, fmt.Errorf("create link: %w", err)
	}

	s.notifyCreate(link, input.AdminCaller)

	return link, nil
}

func (s *linkService) Resolve(ctx context.Context, slug string, visitor Visitor) (Resolution, error) {
	link, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return Resolution{Outcome: OutcomeNotFound}, nil
		}
		return Resolution{}, fmt.Errorf("load link: %w", err)
	}

	// Expired links behave identically to missing links.
	if link.Expired(time.Now().UnixMilli()) {
		return Resolution{Outcome: OutcomeNotFound}, nil
	}

	switch link.Status {
	case model.StatusDisabled:
		return Resolution{Outcome: OutcomeNotFound}, nil
	case model.StatusPaused:
		return Resolution{Outcome: OutcomePaused}, nil
	}

	s.recordVisit(link.Slug, visitor)

	if link.Interstitial {
		return Resolution{Outcome: OutcomeInterstitial, TargetURL: link.URL}, nil
	}
	return Resolution{Outcome: OutcomeRedirect, TargetURL: link.URL}, nil
}

func (s *linkService) ListLinks(ctx context.Context, page int, search string) ([]model.Link, error) {
	const perPage = 20
	if page < 1 {
		page = 1
	}

	links, err := s.repo.List(ctx, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) UpdateLink(ctx context.Context, slug string, input UpdateLinkInput) error {
	var changes []string

	if input.Status != nil {
		if !model.ValidStatus(*input.Status) {
			return ErrInvalidStatus
		}
		if _, err := s.repo.UpdateStatus(ctx, slug, *input.Status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		changes = append(changes, "Status: "+*input.Status)
	}

	if input.Interstitial != nil {
		if _, err := s.repo.UpdateInterstitial(ctx, slug, *input.Interstitial); err != nil {
			return fmt.Errorf("update interstitial: %w", err)
		}
		changes = append(changes, fmt.Sprintf("Interstitial: %t", *input.Interstitial))
	}

	if len(changes) > 0 {
		s.notifyUpdate(slug, changes)
	}

	return nil
}

func (s *linkService) DeleteLink(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	s.notifyUpdate(slug, []string{"Deleted"})
	return nil
}

// recordVisit dispatches exactly one best-effort increment attempt; the
// response never waits for it.
func (s *linkService) recordVisit(slug string, visitor Visitor) {
	if s.visits == nil {
		return
	}
	go func() {
		if err := s.visits.Record(slug, visitor.IP, visitor.UserAgent); err != nil {
			s.logger.Error("failed to record visit", zap.Error(err), zap.String("slug", slug))
		}
	}()
}

func (s *linkService) notifyCreate(link *model.Link, adminCaller bool) {
	title := "New Link Created"
	text := fmt.Sprintf("<b>%s</b>\nSlug: <code>%s</code>\nURL: %s\nIP: %s",
		title, link.Slug, link.URL, link.CreatorIP)
	if adminCaller {
		title = "Admin Link Created"
		text = fmt.Sprintf("<b>%s</b>\nSlug: <code>%s</code>\nURL: %s",
			title, link.Slug, link.URL)
	}

	s.sendNotification(text, func(settings *model.Settings) bool {
		return settings.NotifyOnCreate
	})
}

func (s *linkService) notifyUpdate(slug string, changes []string) {
	text := fmt.Sprintf("<b>Link Updated</b>\nSlug: <code>%s</code>", slug)
	for _, change := range changes {
		text += "\n" + change
	}

	s.sendNotification(text, func(settings *model.Settings) bool {
		return settings.NotifyOnUpdate
	})
}

// sendNotification delivers text through the notifier when the matching
// toggle is on. Fire and forget: failures are logged, never surfaced.
func (s *linkService) sendNotification(text string, enabled func(*model.Settings) bool) {
	if s.notifier == nil || !s.notifier.Configured() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		settings, err := s.settings.Get(ctx)
		if err != nil {
			s.logger.Warn("failed to load notification settings", zap.Error(err))
			return
		}
		if !enabled(settings) {
			return
		}

		if err := s.notifier.Send(ctx, text); err != nil {
			s.logger.Warn("failed to send notification", zap.Error(err))
		}
	}()
}

func validateTargetURL(raw string) error {
	if raw == "" || len(raw) > maxURLLength {
		return ErrInvalidURL
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func validSlug(slug string, adminCaller bool) bool {
	if !slugPattern.MatchString(slug) {
		return false
	}
	if !adminCaller && len(slug) < minPublicSlugLen {
		return false
	}
	return true
}

// randomSlug draws six lowercase alphanumerics. Collisions are rare enough
// that there is no regeneration loop; a clash surfaces as ErrSlugTaken.
func randomSlug() (string, error) {
	out := make([]byte, randomSlugLength)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = slugAlphabet[n.Int64()]
	}
	return string(out), nil
}

// parseExpiry converts the raw expiry into Unix milliseconds. The value must
// be strictly in the future.
func parseExpiry(raw string, now time.Time) (*int64, error) {
	if raw == "" {
		return nil, nil
	}

	ts, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, ErrInvalidExpiration
		}
	}

	millis := ts.UnixMilli()
	if millis <= now.UnixMilli() {
		return nil, ErrExpirationInPast
	}
	return &millis, nil
}
