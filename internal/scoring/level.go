package scoring

import (
	"github.com/theopenlane/shieldphish/internal/domain"
	"github.com/theopenlane/shieldphish/internal/types"
)

// RiskLevel buckets a score for presentation
type RiskLevel string

const (
	// RiskLow is a score below 40
	RiskLow RiskLevel = "low"
	// RiskMedium is a score from 40 up to 70
	RiskMedium RiskLevel = "medium"
	// RiskHigh is a score of 70 or more
	RiskHigh RiskLevel = "high"

	mediumThreshold = 40
	highThreshold   = 70
)

const (
	explainHighRisk   = "The site uses suspicious or misleading domain patterns."
	explainInvalidSSL = "SSL certificate is invalid or self-signed, which is often used by fake sites."
	explainIframes    = "Hidden iframes detected. They may hide phishing forms or redirects."
	explainDirectIP   = "Direct IP usage found. This is often a red flag for phishing sites."
	explainNoIssues   = "No major issues detected. This website appears legitimate."
)

// Level maps a score to its risk level
func Level(score int) RiskLevel {
	switch {
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Explain derives human-readable statements from a result
func Explain(result *types.AnalysisResult) []string {
	if result == nil {
		return []string{}
	}

	explanation := []string{}

	if Level(result.RiskScore) == RiskHigh {
		explanation = append(explanation, explainHighRisk)
	}

	if !result.SSL.Valid {
		explanation = append(explanation, explainInvalidSSL)
	}

	if result.HiddenIframes > 0 {
		explanation = append(explanation, explainIframes)
	}

	if u, err := domain.ParseTarget(result.URL); err == nil && domain.IsIPHost(u.Hostname()) {
		explanation = append(explanation, explainDirectIP)
	}

	if len(explanation) == 0 {
		explanation = append(explanation, explainNoIssues)
	}

	return explanation
}
