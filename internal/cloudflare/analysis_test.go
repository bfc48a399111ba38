package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-account", "test-token",
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	return client
}

func writeAIResponse(t *testing.T, w http.ResponseWriter, success bool, text string) {
	t.Helper()

	resp := aiRunResponse{Success: success}
	resp.Result.Response = text

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestSummarize_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		if r.URL.Path != "/accounts/test-account/ai/run/"+DefaultModel {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token, got %q", got)
		}

		var reqBody aiRunRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		if len(reqBody.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(reqBody.Messages))
		}

		if reqBody.Messages[0].Role != "system" || !strings.Contains(reqBody.Messages[0].Content, "forms, links, and scripts") {
			t.Errorf("unexpected system prompt: %+v", reqBody.Messages[0])
		}

		if !strings.Contains(reqBody.Messages[1].Content, "<form>") {
			t.Errorf("expected HTML in user prompt, got %q", reqBody.Messages[1].Content)
		}

		writeAIResponse(t, w, true, "  A login form posts to a foreign domain.  ")
	})

	summary, err := client.Summarize(context.Background(), "<html><form></form></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "A login form posts to a foreign domain." {
		t.Errorf("unexpected summary %q", summary)
	}
}

func TestSuggest_IncludesURLAndExamples(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var reqBody aiRunRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		if !strings.Contains(reqBody.Messages[0].Content, "cmneo.xyz") {
			t.Error("expected known phishing examples in system prompt")
		}

		if !strings.Contains(reqBody.Messages[1].Content, "URL: https://acme.example/") {
			t.Errorf("expected URL in user prompt, got %q", reqBody.Messages[1].Content)
		}

		writeAIResponse(t, w, true, "Check for lookalike domains.")
	})

	suggestions, err := client.Suggest(context.Background(), "https://acme.example/", "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if suggestions != "Check for lookalike domains." {
		t.Errorf("unexpected suggestions %q", suggestions)
	}
}

func TestRun_NonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Summarize(context.Background(), "<html></html>")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestRun_Unsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"errors":[{"code":5007,"message":"model not found"}],"result":{}}`))
	})

	_, err := client.Summarize(context.Background(), "<html></html>")
	if !errors.Is(err, ErrInferenceFailed) {
		t.Fatalf("expected ErrInferenceFailed, got %v", err)
	}

	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected upstream message in error, got %v", err)
	}
}

func TestRun_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAIResponse(t, w, true, "   ")
	})

	_, err := client.Suggest(context.Background(), "https://acme.example/", "<html></html>")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAIResponse(t, w, true, "late")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Summarize(ctx, "<html></html>")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAIResponse(t, w, true, "```json\n{\"result\": \"phishing\", \"reason\": \"Brand name on an unrelated domain\"}\n```")
	})

	verdict, err := client.Classify(context.Background(), "https://paypa1-login.example/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verdict.Result != VerdictPhishing {
		t.Errorf("expected %s, got %s", VerdictPhishing, verdict.Result)
	}

	if verdict.Reason != "Brand name on an unrelated domain" {
		t.Errorf("unexpected reason %q", verdict.Reason)
	}
}

func TestParseVerdict(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "safe", text: `{"result":"Safe","reason":"well known"}`, want: VerdictSafe},
		{name: "prose around json", text: "Sure! {\"result\":\"SAFE\",\"reason\":\"ok\"} Hope this helps.", want: VerdictSafe},
		{name: "no json", text: "I think it is safe", wantErr: true},
		{name: "unknown result", text: `{"result":"Maybe","reason":"unsure"}`, wantErr: true},
		{name: "broken json", text: `{"result": Safe}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseVerdict(tc.text)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedVerdict) {
					t.Errorf("expected ErrMalformedVerdict, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Result != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Result)
			}
		})
	}
}
