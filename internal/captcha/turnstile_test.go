package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigured(t *testing.T) {
	if NewTurnstile("").Configured() {
		t.Fatal("expected empty secret to report unconfigured")
	}
	if !NewTurnstile("secret").Configured() {
		t.Fatal("expected non-empty secret to report configured")
	}
}

func TestVerify(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"secret":   r.PostForm.Get("secret"),
			"response": r.PostForm.Get("response"),
			"remoteip": r.PostForm.Get("remoteip"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	ts := NewTurnstile("secret-key", WithVerifyURL(srv.URL))
	ok, err := ts.Verify(context.Background(), "token-123", "203.0.113.7")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to pass")
	}

	if gotForm["secret"] != "secret-key" {
		t.Fatalf("unexpected secret %q", gotForm["secret"])
	}
	if gotForm["response"] != "token-123" {
		t.Fatalf("unexpected response %q", gotForm["response"])
	}
	if gotForm["remoteip"] != "203.0.113.7" {
		t.Fatalf("unexpected remoteip %q", gotForm["remoteip"])
	}
}

func TestVerify_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	ts := NewTurnstile("secret-key", WithVerifyURL(srv.URL))
	ok, err := ts.Verify(context.Background(), "bad-token", "")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail")
	}
}

func TestVerify_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ts := NewTurnstile("secret-key", WithVerifyURL(srv.URL))
	if _, err := ts.Verify(context.Background(), "token", ""); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
