package cloudflare

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/theopenlane/httpsling"
)

const (
	// aiRunPath is the Workers AI inference endpoint, suffixed with the model name
	aiRunPath = "ai/run/"
)

// message is a single chat turn sent to the model
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// aiRunRequest is the request body for a Workers AI text generation call
type aiRunRequest struct {
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// apiMessage is an error or informational entry in a Cloudflare API envelope
type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// aiRunResponse is the Cloudflare API envelope for a text generation result
type aiRunResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Response string `json:"response"`
	} `json:"result"`
	Errors []apiMessage `json:"errors"`
}

// run sends a system and user prompt to the configured model and returns the generated text
func (c *Client) run(ctx context.Context, system, user string) (string, error) {
	body := aiRunRequest{
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: c.maxTokens,
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL(aiRunPath+c.model)),
		httpsling.Post(),
		httpsling.BearerAuth(c.apiToken),
		httpsling.JSONBody(body),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var cfResp aiRunResponse

	resp, err := requester.ReceiveWithContext(ctx, &cfResp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !cfResp.Success {
		if len(cfResp.Errors) > 0 {
			return "", fmt.Errorf("%w: %s", ErrInferenceFailed, cfResp.Errors[0].Message)
		}

		return "", ErrInferenceFailed
	}

	text := strings.TrimSpace(cfResp.Result.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
