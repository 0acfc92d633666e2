package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigured(t *testing.T) {
	cases := []struct {
		token, chat string
		want        bool
	}{
		{"", "", false},
		{"token", "", false},
		{"", "chat", false},
		{"token", "chat", true},
	}
	for _, c := range cases {
		tg := NewTelegram(c.token, c.chat)
		if got := tg.Configured(); got != c.want {
			t.Fatalf("Configured(%q, %q) = %v, want %v", c.token, c.chat, got, c.want)
		}
	}
}

func TestSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "42", WithAPIBase(srv.URL))
	if err := tg.Send(context.Background(), "<b>hello</b>"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["chat_id"] != "42" {
		t.Fatalf("unexpected chat_id %q", gotBody["chat_id"])
	}
	if gotBody["text"] != "<b>hello</b>" {
		t.Fatalf("unexpected text %q", gotBody["text"])
	}
	if gotBody["parse_mode"] != "HTML" {
		t.Fatalf("unexpected parse_mode %q", gotBody["parse_mode"])
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "42", WithAPIBase(srv.URL))
	if err := tg.Send(context.Background(), "hi"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestSend_Unconfigured(t *testing.T) {
	tg := NewTelegram("", "")
	if err := tg.Send(context.Background(), "hi"); err == nil {
		t.Fatal("expected an error when unconfigured")
	}
}
