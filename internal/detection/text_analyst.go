package detection

import (
	"context"
	"regexp"
	"strings"
)

// Keyword categories scored by the text analyst.
var (
	urgencyKeywords = []string{
		"urgent", "immediate", "now", "today", "tonight", "blocked",
		"suspended", "expires", "deadline", "limited time", "act now",
	}
	financialKeywords = []string{
		"otp", "cvv", "pin", "upi", "account", "bank", "payment",
		"transfer", "money", "rupees", "verify", "kyc", "pan card",
		"aadhar", "credit card", "debit card", "wallet",
	}
	authorityKeywords = []string{
		"bank", "government", "police", "rbi", "income tax", "it department",
		"law enforcement", "legal action", "court", "sebi", "customs",
		"ministry", "official", "authorized", "certified",
	}
	threatKeywords = []string{
		"arrest", "fine", "penalty", "jail", "legal action", "lawsuit",
		"criminal case", "investigation", "warrant", "confiscate", "seize",
	}
	urgencyPhrases = []string{
		"within 24 hours", "before tonight", "expires today", "last chance",
		"final notice", "immediate action required", "act before",
	}
	credentialRequests = []string{
		"send otp", "share otp", "give pin", "enter cvv",
	}
)

var (
	upiHintRe     = regexp.MustCompile(`\b[\w.\-]+@[\w.\-]+\b`)
	phoneHintRe   = regexp.MustCompile(`(?:\+91[\s-]?)?[6-9]\d{9}`)
	accountHintRe = regexp.MustCompile(`\b\d{9,18}\b`)
)

// TextAnalyst scores messages for linguistic scam patterns and psychological
// triggers.
type TextAnalyst struct{}

// NewTextAnalyst creates the text content signal.
func NewTextAnalyst() *TextAnalyst {
	return &TextAnalyst{}
}

// Name implements Signal.
func (a *TextAnalyst) Name() string { return "text_analyst" }

// Evaluate scores the message across keyword categories and derives
// indicator tags. The composite risk is boosted when multiple indicators
// co-occur.
func (a *TextAnalyst) Evaluate(_ context.Context, text string) (Finding, error) {
	lower := strings.ToLower(text)

	urgencyScore := keywordRatio(lower, urgencyKeywords)
	financialScore := keywordRatio(lower, financialKeywords)
	authorityScore := keywordRatio(lower, authorityKeywords)
	threatScore := keywordRatio(lower, threatKeywords)

	hasUrgencyPhrase := containsAny(lower, urgencyPhrases)
	hasTimePressure := hasUrgencyPhrase || urgencyScore > 0.15

	hasUPI := upiHintRe.MatchString(text)
	hasPhone := phoneHintRe.MatchString(text)
	hasAccount := accountHintRe.MatchString(text)

	requestingCredentials := containsAny(lower, credentialRequests)
	claimingAuthority := authorityScore > 0.1 && (threatScore > 0.05 || urgencyScore > 0.1)

	var indicators []string
	if hasTimePressure {
		indicators = append(indicators, IndicatorUrgencyTactic)
	}
	if requestingCredentials {
		indicators = append(indicators, IndicatorCredentialRequest)
	}
	if claimingAuthority {
		indicators = append(indicators, IndicatorAuthorityClaim)
	}
	if threatScore > 0.1 {
		indicators = append(indicators, IndicatorThreateningLanguage)
	}
	if hasUPI || hasPhone || hasAccount {
		indicators = append(indicators, IndicatorFinancialIdentifiers)
	}

	risk := urgencyScore*0.25 + financialScore*0.30 + authorityScore*0.20 + threatScore*0.25
	if len(indicators) >= 2 {
		risk = min(risk*1.3, 1.0)
	}

	return Finding{
		Signal:          a.Name(),
		RiskScore:       risk,
		Confidence:      0.8,
		Indicators:      indicators,
		FinancialDomain: financialScore > 0 || hasUPI || hasAccount,
	}, nil
}

func keywordRatio(lower string, keywords []string) float64 {
	var hits int
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
