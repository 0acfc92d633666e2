// Package notify delivers best-effort event notifications through the
// Telegram Bot API. Delivery failures are the caller's to swallow; nothing
// here retries.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends messages to a fixed chat via the Bot API.
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// Option customises a Telegram notifier.
type Option func(*Telegram)

// WithAPIBase overrides the Bot API base URL. Used by tests.
func WithAPIBase(base string) Option {
	return func(t *Telegram) {
		t.apiBase = base
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Telegram) {
		t.client = client
	}
}

// NewTelegram builds a notifier for the given bot token and chat. Either
// value may be empty; Configured then reports false and Send refuses to run.
func NewTelegram(botToken, chatID string, opts ...Option) *Telegram {
	t := &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Configured reports whether both the bot token and chat id are present.
func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

// Send delivers text as an HTML-formatted message.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if !t.Configured() {
		return fmt.Errorf("telegram: bot token or chat id missing")
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: send message: unexpected status %d", resp.StatusCode)
	}
	return nil
}
