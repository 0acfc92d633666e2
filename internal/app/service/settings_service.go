package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/model"
	"github.com/avelns/shortlinkd/internal/app/repository"
)

// ErrNotifierNotConfigured signals that the Telegram credentials are absent
// from the environment; settings writes and test messages are rejected then.
var ErrNotifierNotConfigured = errors.New("telegram secrets not configured")

// SettingsService manages the notification toggles and the channel tests
// that depend on them.
type SettingsService interface {
	Get(ctx context.Context) (*model.Settings, bool, error)
	Save(ctx context.Context, settings *model.Settings) error
	SendTest(ctx context.Context) error
	// NotifyLogin fires the admin-login notification when its toggle is on.
	NotifyLogin(ctx context.Context)
}

type settingsService struct {
	repo     repository.SettingsRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewSettingsService returns a settings service backed by the given
// repository and notifier.
func NewSettingsService(repo repository.SettingsRepository, notifier Notifier, logger *zap.Logger) SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &settingsService{repo: repo, notifier: notifier, logger: logger}
}

// Get returns the toggles plus whether the notifier is configured. Reads
// always succeed once the default row exists.
func (s *settingsService) Get(ctx context.Context) (*model.Settings, bool, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load settings: %w", err)
	}
	return settings, s.notifierConfigured(), nil
}

func (s *settingsService) Save(ctx context.Context, settings *model.Settings) error {
	if !s.notifierConfigured() {
		return ErrNotifierNotConfigured
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *settingsService) SendTest(ctx context.Context) error {
	if !s.notifierConfigured() {
		return ErrNotifierNotConfigured
	}

	text := "<b>Test Message</b>\nThis is a test notification from your short link service."
	if err := s.notifier.Send(ctx, text); err != nil {
		return fmt.Errorf("send test notification: %w", err)
	}
	return nil
}

func (s *settingsService) NotifyLogin(ctx context.Context) {
	if !s.notifierConfigured() {
		return
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load notification settings", zap.Error(err))
		return
	}
	if !settings.NotifyOnLogin {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Send(sendCtx, "<b>Admin Login</b>\nAn admin credential was verified."); err != nil {
			s.logger.Warn("failed to send login notification", zap.Error(err))
		}
	}()
}

func (s *settingsService) notifierConfigured() bool {
	return s.notifier != nil && s.notifier.Configured()
}
