package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const summarizeSystemPrompt = `You are a security analyst specializing in phishing detection. Analyze the HTML content you are given and provide a concise summary of its structure, highlighting any suspicious elements or potential red flags. Be concise, and focus on aspects of the HTML that might be relevant to phishing. Pay special attention to forms, links, and scripts.`

const suggestSystemPrompt = `You are a cybersecurity expert specializing in phishing detection.

Analyze the website URL and HTML content you are given and provide suggestions on how to improve the phishing detection rules and indicators used to assess it.

Here are some examples of known phishing URLs. Use these as a reference to identify similar patterns in the provided URL.
- https://tjarjetacredbhd2025.imi.lat/
- https://cyberflarezonex.ru.com/bin/
- https://allegro.marshalle.shop
- https://cooppank-ee.earnity.co.tz
- https://swedbank-eesti.turvalinekonto.info
- https://cmneo.xyz
- https://inicio-off.shop/
- https://eligible-hyperliquid.xyz/
- http://www.exodus-wallet.co.com

Provide specific recommendations for identifying phishing attempts based on the URL and HTML structure. Focus on potential red flags and patterns, like the use of specific terms often associated with phishing scams, suspicious URLs, or unusual HTML structures. Return your suggestions as plain text.`

const classifySystemPrompt = `Analyze the URL you are given and classify it as "Safe" or "Phishing".
Reply only with a JSON object like this:
{
  "result": "Safe or Phishing",
  "reason": "short reason why"
}`

const (
	// VerdictSafe is the classification for a URL judged benign
	VerdictSafe = "Safe"
	// VerdictPhishing is the classification for a URL judged malicious
	VerdictPhishing = "Phishing"
)

// Verdict is a quick URL-only classification
type Verdict struct {
	// Result is either Safe or Phishing
	Result string `json:"result"`
	// Reason is a short justification from the model
	Reason string `json:"reason"`
}

// Summarize produces a security-focused summary of a page's HTML structure
func (c *Client) Summarize(ctx context.Context, html string) (string, error) {
	return c.run(ctx, summarizeSystemPrompt, "HTML Content:\n"+html)
}

// Suggest produces phishing detection recommendations for a page
func (c *Client) Suggest(ctx context.Context, pageURL, html string) (string, error) {
	return c.run(ctx, suggestSystemPrompt, fmt.Sprintf("URL: %s\nHTML Content: %s", pageURL, html))
}

// Classify asks the model for a Safe or Phishing verdict on a URL without fetching it
func (c *Client) Classify(ctx context.Context, pageURL string) (Verdict, error) {
	text, err := c.run(ctx, classifySystemPrompt, "URL: "+pageURL)
	if err != nil {
		return Verdict{}, err
	}

	return parseVerdict(text)
}

// parseVerdict pulls the JSON object out of a model reply, tolerating surrounding prose or code fences
func parseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedVerdict)
	}

	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrMalformedVerdict, err)
	}

	switch {
	case strings.EqualFold(v.Result, VerdictSafe):
		v.Result = VerdictSafe
	case strings.EqualFold(v.Result, VerdictPhishing):
		v.Result = VerdictPhishing
	default:
		return Verdict{}, fmt.Errorf("%w: unknown result %q", ErrMalformedVerdict, v.Result)
	}

	return v, nil
}
