package detection

// Indicator tags produced by detection signals and consumed by consensus
// classification.
const (
	IndicatorUrgencyTactic        = "urgency_tactic"
	IndicatorCredentialRequest    = "credential_request"
	IndicatorAuthorityClaim       = "authority_impersonation"
	IndicatorThreateningLanguage  = "threatening_language"
	IndicatorFinancialIdentifiers = "financial_identifiers_present"
	IndicatorMaliciousLink        = "malicious_link"
)

// ScamType classifies the scheme a detected scam belongs to.
type ScamType string

const (
	ScamTypeBankFraud               ScamType = "bank_fraud"
	ScamTypeCredentialPhishing      ScamType = "credential_phishing"
	ScamTypePhishingLink            ScamType = "phishing_link"
	ScamTypeGovernmentImpersonation ScamType = "government_impersonation_scam"
	ScamTypeAuthorityScam           ScamType = "authority_scam"
	ScamTypePaymentScam             ScamType = "payment_scam"
	ScamTypeGeneric                 ScamType = "generic_scam"
)

// Finding is the transient output of a single detection signal. It is
// consumed by the consensus engine and never persisted beyond one decision.
type Finding struct {
	Signal     string
	RiskScore  float64
	Confidence float64
	Indicators []string

	// FinancialDomain is set when the signal observed banking or payment
	// vocabulary; classification uses it to split bank fraud from generic
	// credential phishing.
	FinancialDomain bool
}

// SignalContribution records how one signal influenced the fused verdict.
type SignalContribution struct {
	Signal       string  `json:"signal"`
	RiskScore    float64 `json:"risk_score"`
	Confidence   float64 `json:"confidence"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"effective_contribution"`
}

// Verdict is the fused scam/no-scam decision. Read-only once produced.
type Verdict struct {
	ScamDetected    bool                 `json:"scam_detected"`
	RiskScore       float64              `json:"consensus_risk_score"`
	Confidence      float64              `json:"confidence"`
	Indicators      []string             `json:"all_indicators"`
	HighRiskSignals []string             `json:"high_risk_signals"`
	Breakdown       []SignalContribution `json:"signal_breakdown"`
	TotalSignals    int                  `json:"total_signals"`
	Threshold       float64              `json:"threshold_used"`
}
