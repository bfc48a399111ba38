package extractor

import (
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/theopenlane/shieldphish/internal/domain"
)

const (
	// resourceFanOutThreshold is the number of distinct foreign resource domains a page may reference before it is flagged
	resourceFanOutThreshold = 5
)

// suspiciousKeywords are matched case-insensitively against the page body text
var suspiciousKeywords = []string{
	"verify",
	"account",
	"update",
	"secure",
	"bank",
	"login",
	"password",
	"urgent",
	"suspension",
	"confirm",
}

// Signals are the structural phishing indicators found in a page
type Signals struct {
	// PageDomain is the registrable domain of the analyzed page, empty for IP hosts
	PageDomain string `json:"pageDomain"`
	// Keywords lists each suspicious keyword present in the body text
	Keywords []string `json:"keywords"`
	// KeywordCount is the number of distinct keywords present
	KeywordCount int `json:"keywordCount"`
	// CrossDomainForms counts forms whose action points at a different registrable domain
	CrossDomainForms int `json:"crossDomainForms"`
	// CrossDomainForm is true when at least one form posts off-domain
	CrossDomainForm bool `json:"crossDomainForm"`
	// ResourceDomains are the distinct foreign domains referenced by scripts, links and images
	ResourceDomains []string `json:"resourceDomains"`
	// ResourceFanOut is true when more than five foreign resource domains are referenced
	ResourceFanOut bool `json:"resourceFanOut"`
	// CanonicalMismatch is true when the canonical link names another registrable domain
	CanonicalMismatch bool `json:"canonicalMismatch"`
	// HasPasswordField is true when the page contains a password input
	HasPasswordField bool `json:"hasPasswordField"`
	// ExternalFormWithPassword is true when a password input and an off-domain form coexist
	ExternalFormWithPassword bool `json:"externalFormWithPassword"`
	// HiddenIframes counts iframes sized or styled to be invisible
	HiddenIframes int `json:"hiddenIframes"`
}

// Extract derives structural signals from html served at page. Unparseable markup yields empty signals
func Extract(html string, page *url.URL) Signals {
	signals := Signals{
		Keywords:        []string{},
		ResourceDomains: []string{},
	}

	if page == nil {
		return signals
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return signals
	}

	origin := domain.Origin(page)
	signals.PageDomain = domain.Registrable(page.Hostname())

	signals.Keywords = matchKeywords(doc)
	signals.KeywordCount = len(signals.Keywords)

	signals.CrossDomainForms = countCrossDomainForms(doc, origin, signals.PageDomain)
	signals.CrossDomainForm = signals.CrossDomainForms > 0

	signals.ResourceDomains = foreignResourceDomains(doc, origin, signals.PageDomain)
	signals.ResourceFanOut = len(signals.ResourceDomains) > resourceFanOutThreshold

	signals.CanonicalMismatch = canonicalMismatch(doc, origin, signals.PageDomain)

	signals.HasPasswordField = hasPasswordField(doc)
	signals.ExternalFormWithPassword = signals.HasPasswordField && signals.CrossDomainForm

	signals.HiddenIframes = countHiddenIframes(doc)

	return signals
}

func matchKeywords(doc *goquery.Document) []string {
	text := strings.ToLower(doc.Find("body").Text())

	return lo.Filter(suspiciousKeywords, func(keyword string, _ int) bool {
		return strings.Contains(text, keyword)
	})
}

func countCrossDomainForms(doc *goquery.Document, origin *url.URL, pageDomain string) int {
	count := 0

	doc.Find("form[action]").Each(func(_ int, form *goquery.Selection) {
		action, _ := form.Attr("action")

		target, ok := resolve(origin, action)
		if !ok {
			return
		}

		// javascript: and mailto: actions have no host and so never match a named page domain
		if domain.Registrable(target.Hostname()) != pageDomain {
			count++
		}
	})

	return count
}

func foreignResourceDomains(doc *goquery.Document, origin *url.URL, pageDomain string) []string {
	seen := map[string]struct{}{}

	doc.Find("script[src], link[href], img[src]").Each(func(_ int, el *goquery.Selection) {
		ref := el.AttrOr("src", "")
		if ref == "" {
			ref = el.AttrOr("href", "")
		}

		target, ok := resolve(origin, ref)
		if !ok {
			return
		}

		resourceDomain := domain.Registrable(target.Hostname())
		if resourceDomain != "" && resourceDomain != pageDomain {
			seen[resourceDomain] = struct{}{}
		}
	})

	domains := lo.Keys(seen)
	slices.Sort(domains)

	return domains
}

func canonicalMismatch(doc *goquery.Document, origin *url.URL, pageDomain string) bool {
	href := doc.Find(`link[rel="canonical"]`).First().AttrOr("href", "")

	target, ok := resolve(origin, href)
	if !ok {
		return false
	}

	return domain.Registrable(target.Hostname()) != pageDomain
}

func hasPasswordField(doc *goquery.Document) bool {
	found := false

	doc.Find("input[type]").EachWithBreak(func(_ int, input *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(input.AttrOr("type", "")), "password") {
			found = true
		}

		return !found
	})

	return found
}

func countHiddenIframes(doc *goquery.Document) int {
	return doc.Find("iframe").FilterFunction(func(_ int, frame *goquery.Selection) bool {
		if _, hidden := frame.Attr("hidden"); hidden {
			return true
		}

		if tiny(frame.AttrOr("width", "")) || tiny(frame.AttrOr("height", "")) {
			return true
		}

		style := strings.ReplaceAll(strings.ToLower(frame.AttrOr("style", "")), " ", "")

		return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
	}).Length()
}

// tiny reports whether an iframe dimension renders it effectively invisible
func tiny(dimension string) bool {
	switch strings.TrimSuffix(strings.TrimSpace(dimension), "px") {
	case "0", "1":
		return true
	default:
		return false
	}
}

// resolve parses ref relative to base, reporting false for empty or malformed references
func resolve(base *url.URL, ref string) (*url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}

	target, err := base.Parse(ref)
	if err != nil {
		return nil, false
	}

	return target, true
}
