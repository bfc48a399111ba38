package scoring

import (
	"github.com/theopenlane/shieldphish/internal/extractor"
	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	// MinScore is the lowest possible risk score
	MinScore = 0
	// MaxScore is the highest possible risk score
	MaxScore = 100
	// OverrideFloor is the minimum score for credential harvesting over an untrusted channel
	OverrideFloor = 90

	weightInvalidSSL        = 30
	weightKeyword           = 5
	capKeywords             = 25
	weightCrossDomainForm   = 40
	weightResourceFanOut    = 15
	weightCanonicalMismatch = 10
)

// Reason identifies a rule that contributed to a score
type Reason string

const (
	// ReasonInvalidSSL is added when the TLS assessment is not valid
	ReasonInvalidSSL Reason = "invalid_ssl"
	// ReasonKeywords is added per distinct suspicious keyword, capped
	ReasonKeywords Reason = "suspicious_keywords"
	// ReasonCrossDomainForm is added once per form posting off-domain
	ReasonCrossDomainForm Reason = "cross_domain_form"
	// ReasonResourceFanOut is added when resources span many foreign domains
	ReasonResourceFanOut Reason = "resource_fan_out"
	// ReasonCanonicalMismatch is added when the canonical link names another domain
	ReasonCanonicalMismatch Reason = "canonical_mismatch"
)

// Contribution is a single additive term of a score
type Contribution struct {
	Reason Reason `json:"reason"`
	Points int    `json:"points"`
}

// Breakdown itemizes the additive terms for ssl and signals, before clamping and override
func Breakdown(ssl types.SSLAssessment, signals extractor.Signals) []Contribution {
	contributions := []Contribution{}

	if !ssl.Valid {
		contributions = append(contributions, Contribution{Reason: ReasonInvalidSSL, Points: weightInvalidSSL})
	}

	if signals.KeywordCount > 0 {
		contributions = append(contributions, Contribution{
			Reason: ReasonKeywords,
			Points: min(signals.KeywordCount*weightKeyword, capKeywords),
		})
	}

	if signals.CrossDomainForms > 0 {
		contributions = append(contributions, Contribution{
			Reason: ReasonCrossDomainForm,
			Points: signals.CrossDomainForms * weightCrossDomainForm,
		})
	}

	if signals.ResourceFanOut {
		contributions = append(contributions, Contribution{Reason: ReasonResourceFanOut, Points: weightResourceFanOut})
	}

	if signals.CanonicalMismatch {
		contributions = append(contributions, Contribution{Reason: ReasonCanonicalMismatch, Points: weightCanonicalMismatch})
	}

	return contributions
}

// Score combines the TLS assessment and structural signals into a risk score in [0, 100].
// An invalid certificate together with a password field and an off-domain form scores at least 90
func Score(ssl types.SSLAssessment, signals extractor.Signals) int {
	total := 0
	for _, c := range Breakdown(ssl, signals) {
		total += c.Points
	}

	score := max(MinScore, min(total, MaxScore))

	if Override(ssl, signals) {
		score = max(score, OverrideFloor)
	}

	return score
}

// Override reports whether the credential-harvesting floor applies
func Override(ssl types.SSLAssessment, signals extractor.Signals) bool {
	return !ssl.Valid && signals.HasPasswordField && signals.CrossDomainForm
}
