package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avelns/shortlinkd/internal/app/model"
)

func TestSettingsGet(t *testing.T) {
	repo := &mockSettingsRepository{settings: model.Settings{NotifyOnCreate: true}}
	svc := NewSettingsService(repo, newMockNotifier(true), nil)

	settings, hasNotifier, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !settings.NotifyOnCreate {
		t.Fatal("expected NotifyOnCreate to be on")
	}
	if !hasNotifier {
		t.Fatal("expected notifier to be reported as configured")
	}
}

func TestSettingsGet_UnconfiguredNotifier(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{}, newMockNotifier(false), nil)

	_, hasNotifier, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if hasNotifier {
		t.Fatal("expected notifier to be reported as unconfigured")
	}
}

func TestSettingsSave(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc := NewSettingsService(repo, newMockNotifier(true), nil)

	err := svc.Save(context.Background(), &model.Settings{NotifyOnLogin: true})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if repo.saved == nil || !repo.saved.NotifyOnLogin {
		t.Fatal("expected settings to be persisted")
	}
}

func TestSettingsSave_RejectedWhenUnconfigured(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc := NewSettingsService(repo, newMockNotifier(false), nil)

	err := svc.Save(context.Background(), &model.Settings{NotifyOnCreate: true})
	if !errors.Is(err, ErrNotifierNotConfigured) {
		t.Fatalf("expected ErrNotifierNotConfigured, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("settings must not be persisted without a notifier")
	}
}

func TestSendTest(t *testing.T) {
	notifier := newMockNotifier(true)
	svc := NewSettingsService(&mockSettingsRepository{}, notifier, nil)

	if err := svc.SendTest(context.Background()); err != nil {
		t.Fatalf("SendTest returned error: %v", err)
	}

	select {
	case text := <-notifier.sent:
		if !strings.Contains(text, "Test Message") {
			t.Fatalf("unexpected test message %q", text)
		}
	default:
		t.Fatal("expected a test message to be sent")
	}
}

func TestSendTest_RejectedWhenUnconfigured(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{}, newMockNotifier(false), nil)

	if err := svc.SendTest(context.Background()); !errors.Is(err, ErrNotifierNotConfigured) {
		t.Fatalf("expected ErrNotifierNotConfigured, got %v", err)
	}
}

func TestNotifyLogin(t *testing.T) {
	notifier := newMockNotifier(true)
	repo := &mockSettingsRepository{settings: model.Settings{NotifyOnLogin: true}}
	svc := NewSettingsService(repo, notifier, nil)

	svc.NotifyLogin(context.Background())

	select {
	case text := <-notifier.sent:
		if !strings.Contains(text, "Admin Login") {
			t.Fatalf("unexpected login message %q", text)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a login notification")
	}
}

func TestNotifyLogin_ToggleOff(t *testing.T) {
	notifier := newMockNotifier(true)
	svc := NewSettingsService(&mockSettingsRepository{}, notifier, nil)

	svc.NotifyLogin(context.Background())

	select {
	case text := <-notifier.sent:
		t.Fatalf("unexpected notification: %q", text)
	case <-time.After(100 * time.Millisecond):
	}
}
