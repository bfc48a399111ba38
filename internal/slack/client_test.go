package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		opts        []Option
		wantErr     error
		wantTimeout time.Duration
	}{
		{name: "defaults", url: "https://hooks.slack.com/services/T123/B456/xyz", wantTimeout: defaultRequestTimeout},
		{name: "missing url", url: "", wantErr: ErrMissingWebhookURL},
		{name: "nil http client keeps default", url: "https://hooks.slack.com/test", opts: []Option{WithHTTPClient(nil)}, wantTimeout: defaultRequestTimeout},
		{name: "custom timeout", url: "https://hooks.slack.com/test", opts: []Option{WithTimeout(3 * time.Second)}, wantTimeout: 3 * time.Second},
		{name: "zero timeout ignored", url: "https://hooks.slack.com/test", opts: []Option{WithTimeout(0)}, wantTimeout: defaultRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.url, tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if client.webhookURL != tt.url {
				t.Errorf("expected webhook URL %s, got %s", tt.url, client.webhookURL)
			}

			if client.httpClient.Timeout != tt.wantTimeout {
				t.Errorf("expected timeout %v, got %v", tt.wantTimeout, client.httpClient.Timeout)
			}
		})
	}
}

func TestNew_WithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: 30 * time.Second}

	client, err := New("https://hooks.slack.com/test", WithHTTPClient(custom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.httpClient != custom {
		t.Error("expected custom HTTP client to be set")
	}
}

func TestSend(t *testing.T) {
	var got Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("expected JSON content type, got %s", ct)
		}

		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	msg := Message{
		Text:   "fallback",
		Blocks: []Block{Header("Heads up"), Markdown("body"), Divider()},
	}

	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Text != "fallback" {
		t.Errorf("expected fallback text, got %q", got.Text)
	}

	if len(got.Blocks) != 3 || got.Blocks[0].Type != "header" || got.Blocks[2].Type != "divider" {
		t.Errorf("unexpected blocks %+v", got.Blocks)
	}
}

func TestSend_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	if err := client.Send(context.Background(), Message{Text: "test"}); err == nil {
		t.Fatal("expected error for server error response")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}

	addr := ln.Addr().String()
	_ = ln.Close()

	unreachable, err := New("http://"+addr+"/hook", WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	err = unreachable.Send(context.Background(), Message{Text: "test"})
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed, got %v", err)
	}
}

func TestFields(t *testing.T) {
	b := Fields([2]string{"URL", "https://example.com/"}, [2]string{"Risk score", "95"})

	if b.Type != "section" {
		t.Fatalf("expected section block, got %s", b.Type)
	}

	if len(b.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(b.Fields))
	}

	if b.Fields[1].Type != "mrkdwn" || b.Fields[1].Text != "*Risk score:*\n95" {
		t.Errorf("unexpected field %+v", b.Fields[1])
	}
}

func TestClip(t *testing.T) {
	short := "fits"
	if clip(short) != short {
		t.Errorf("expected short text untouched")
	}

	long := strings.Repeat("é", maxFieldText)
	clipped := clip(long)

	if len(clipped) > maxFieldText {
		t.Errorf("expected at most %d bytes, got %d", maxFieldText, len(clipped))
	}

	if !utf8.ValidString(clipped) {
		t.Error("expected clipped text to remain valid UTF-8")
	}

	if !strings.HasSuffix(clipped, "…") {
		t.Error("expected ellipsis suffix")
	}
}
