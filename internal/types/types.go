package types

import "time"

// SSLAssessment describes the trust state of a target's TLS certificate
type SSLAssessment struct {
	Valid     bool       `json:"valid" example:"true" description:"Whether the certificate chain is trusted, matches the host and is unexpired"`
	Error     string     `json:"error,omitempty" example:"Certificate has expired." description:"Explanation when the certificate is not valid"`
	Subject   string     `json:"subject,omitempty" example:"CN=example.com" description:"Leaf certificate subject"`
	Issuer    string     `json:"issuer,omitempty" example:"CN=R11,O=Let's Encrypt,C=US" description:"Leaf certificate issuer"`
	ValidFrom *time.Time `json:"validFrom,omitempty" description:"Start of the certificate validity window"`
	ValidTo   *time.Time `json:"validTo,omitempty" description:"End of the certificate validity window"`
}

// AnalysisResult is the persisted outcome of analyzing a single URL
type AnalysisResult struct {
	URL           string        `json:"url" example:"https://example.com/" description:"Normalized URL that was analyzed"`
	SSL           SSLAssessment `json:"ssl" description:"TLS certificate assessment"`
	HTMLSummary   string        `json:"htmlSummary" description:"AI generated summary of the page structure"`
	Suggestions   string        `json:"suggestions" description:"AI generated phishing detection suggestions"`
	RiskScore     int           `json:"riskScore" example:"35" description:"Risk score between 0 and 100"`
	HiddenIframes int           `json:"hiddenIframes" example:"0" description:"Number of iframes rendered invisibly on the page"`
	CreatedAt     time.Time     `json:"createdAt" description:"Time the analysis was computed"`
}

// HistoryRecord is a denormalized entry in a user's analysis history
type HistoryRecord struct {
	ID        string    `json:"id" example:"0b6c7c1e-5b8e-4c0a-9f47-0a3c2f0e9d11"`
	URL       string    `json:"url" example:"https://example.com/"`
	RiskScore int       `json:"riskScore" example:"35"`
	CreatedAt time.Time `json:"createdAt"`
}
