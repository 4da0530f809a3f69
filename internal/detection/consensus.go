package detection

import "sort"

// highRiskCutoff is the risk score above which a signal is reported as a
// high-risk contributor, independent of the fused decision.
const highRiskCutoff = 0.7

// Engine fuses per-signal findings into a single verdict using weighted
// voting. Aggregation is pure and deterministic; an Engine is safe for
// concurrent use without synchronization.
type Engine struct {
	threshold float64
	weights   map[string]float64
}

// NewEngine creates a consensus engine with the given scam threshold.
// The verdict's scam flag is set when the weighted risk strictly exceeds it.
func NewEngine(threshold float64) *Engine {
	return &Engine{
		threshold: threshold,
		weights: map[string]float64{
			"text_analyst":         1.0,
			"link_checker":         1.2, // links are strong indicators
			"ocr_agent":            1.0,
			"adversarial_detector": 0.8, // experimental, weighted down
		},
	}
}

// weightFor returns the configured weight for a signal, defaulting to 1.0.
func (e *Engine) weightFor(signal string) float64 {
	if w, ok := e.weights[signal]; ok {
		return w
	}
	return 1.0
}

// Aggregate fuses findings into a verdict. An empty input always yields a
// non-scam, zero-confidence verdict.
func (e *Engine) Aggregate(findings []Finding) Verdict {
	if len(findings) == 0 {
		return Verdict{Threshold: e.threshold}
	}

	var totalRisk, totalWeight, totalConfidence float64
	indicatorSet := make(map[string]struct{})
	breakdown := make([]SignalContribution, 0, len(findings))
	var highRisk []string

	for _, f := range findings {
		weight := e.weightFor(f.Signal)
		effective := weight * f.Confidence

		totalRisk += f.RiskScore * effective
		totalWeight += effective
		totalConfidence += f.Confidence

		for _, ind := range f.Indicators {
			indicatorSet[ind] = struct{}{}
		}
		if f.RiskScore > highRiskCutoff {
			highRisk = append(highRisk, f.Signal)
		}

		breakdown = append(breakdown, SignalContribution{
			Signal:       f.Signal,
			RiskScore:    f.RiskScore,
			Confidence:   f.Confidence,
			Weight:       weight,
			Contribution: f.RiskScore * effective,
		})
	}

	var risk float64
	if totalWeight > 0 {
		risk = totalRisk / totalWeight
	}

	indicators := make([]string, 0, len(indicatorSet))
	for ind := range indicatorSet {
		indicators = append(indicators, ind)
	}
	sort.Strings(indicators)

	return Verdict{
		ScamDetected:    risk > e.threshold,
		RiskScore:       risk,
		Confidence:      totalConfidence / float64(len(findings)),
		Indicators:      indicators,
		HighRiskSignals: highRisk,
		Breakdown:       breakdown,
		TotalSignals:    len(findings),
		Threshold:       e.threshold,
	}
}

// ClassifyScamType maps indicator tags to a scam category using ordered
// pattern rules; the first matching rule wins.
func (e *Engine) ClassifyScamType(indicators []string, findings []Finding) ScamType {
	has := make(map[string]bool, len(indicators))
	for _, ind := range indicators {
		has[ind] = true
	}

	switch {
	case has[IndicatorCredentialRequest] && mentionsFinancialDomain(findings):
		return ScamTypeBankFraud
	case has[IndicatorCredentialRequest]:
		return ScamTypeCredentialPhishing
	case has[IndicatorMaliciousLink]:
		return ScamTypePhishingLink
	case has[IndicatorAuthorityClaim] && has[IndicatorThreateningLanguage]:
		return ScamTypeGovernmentImpersonation
	case has[IndicatorAuthorityClaim]:
		return ScamTypeAuthorityScam
	case has[IndicatorUrgencyTactic] && has[IndicatorFinancialIdentifiers]:
		return ScamTypePaymentScam
	default:
		return ScamTypeGeneric
	}
}

func mentionsFinancialDomain(findings []Finding) bool {
	for _, f := range findings {
		if f.FinancialDomain {
			return true
		}
	}
	return false
}
