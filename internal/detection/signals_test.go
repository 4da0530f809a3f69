package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

func TestTextAnalystScamMessage(t *testing.T) {
	analyst := NewTextAnalyst()
	f, err := analyst.Evaluate(context.Background(), "URGENT: your bank account is blocked. Send OTP to 9876543210 immediately or face legal action")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if f.RiskScore <= 0 {
		t.Error("scam message should carry positive risk")
	}
	if !hasIndicator(f, IndicatorUrgencyTactic) {
		t.Errorf("expected urgency indicator, got %v", f.Indicators)
	}
	if !hasIndicator(f, IndicatorCredentialRequest) {
		t.Errorf("expected credential request indicator, got %v", f.Indicators)
	}
	if !hasIndicator(f, IndicatorFinancialIdentifiers) {
		t.Errorf("expected financial identifiers indicator, got %v", f.Indicators)
	}
	if !f.FinancialDomain {
		t.Error("banking vocabulary should mark the financial domain")
	}
}

func TestTextAnalystBenignMessage(t *testing.T) {
	analyst := NewTextAnalyst()
	f, err := analyst.Evaluate(context.Background(), "Hey, are we still on for dinner on Saturday?")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(f.Indicators) != 0 {
		t.Errorf("benign message should carry no indicators, got %v", f.Indicators)
	}
	if f.RiskScore > 0.1 {
		t.Errorf("benign message risk too high: %f", f.RiskScore)
	}
}

func TestLinkCheckerNoURLs(t *testing.T) {
	checker := NewLinkChecker(nil, nil)
	f, err := checker.Evaluate(context.Background(), "no links here")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if f.RiskScore != 0 || f.Confidence != 1.0 {
		t.Errorf("messages without urls should be benign, got %+v", f)
	}
}

func TestLinkCheckerHeuristics(t *testing.T) {
	checker := NewLinkChecker(nil, nil)

	tests := []struct {
		name    string
		text    string
		flagged bool
	}{
		{"shortener", "click https://bit.ly/abc now", true},
		{"suspicious tld", "visit https://free-money.xyz/offer", true},
		{"raw ip", "go to http://192.168.10.5/login", true},
		{"clean url", "docs at https://example.com/help", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := checker.Evaluate(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			got := hasIndicator(f, IndicatorMaliciousLink)
			if got != tt.flagged {
				t.Errorf("expected flagged=%v, got finding %+v", tt.flagged, f)
			}
		})
	}
}

type stubReputation struct {
	malicious bool
	err       error
}

func (s *stubReputation) IsMalicious(_ context.Context, _ string) (bool, error) {
	return s.malicious, s.err
}

func TestLinkCheckerReputationFailOpen(t *testing.T) {
	checker := NewLinkChecker(&stubReputation{err: errors.New("service down")}, logging.Default())
	f, err := checker.Evaluate(context.Background(), "see https://example.com/page")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if hasIndicator(f, IndicatorMaliciousLink) {
		t.Error("reputation failure must be treated as benign")
	}
}

func TestLinkCheckerReputationFlagged(t *testing.T) {
	checker := NewLinkChecker(&stubReputation{malicious: true}, logging.Default())
	f, err := checker.Evaluate(context.Background(), "see https://example.com/page")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !hasIndicator(f, IndicatorMaliciousLink) {
		t.Error("reputation hit should flag a malicious link")
	}
	if f.RiskScore <= 0.4 {
		t.Errorf("critical threat should boost risk, got %f", f.RiskScore)
	}
}

type failingSignal struct{}

func (f *failingSignal) Name() string { return "flaky" }
func (f *failingSignal) Evaluate(_ context.Context, _ string) (Finding, error) {
	return Finding{}, errors.New("boom")
}

type panickySignal struct{}

func (p *panickySignal) Name() string { return "panicky" }
func (p *panickySignal) Evaluate(_ context.Context, _ string) (Finding, error) {
	panic("unexpected")
}

func TestSystemIsolatesFailedSignals(t *testing.T) {
	engine := NewEngine(0.1)
	system := NewSystem(engine, logging.Default(), NewTextAnalyst(), &failingSignal{}, &panickySignal{})

	result := system.Analyze(context.Background(), "URGENT: send otp now to verify your bank account")
	if len(result.Findings) != 1 {
		t.Fatalf("expected only the healthy signal to contribute, got %d findings", len(result.Findings))
	}
	if result.Findings[0].Signal != "text_analyst" {
		t.Errorf("expected text_analyst finding, got %s", result.Findings[0].Signal)
	}
}

func TestSystemClassifiesOnDetection(t *testing.T) {
	engine := NewEngine(0.01)
	system := NewSystem(engine, logging.Default(), NewTextAnalyst())

	result := system.Analyze(context.Background(), "URGENT: send otp now to verify your bank account or face arrest")
	if !result.Verdict.ScamDetected {
		t.Fatalf("expected detection with low threshold, verdict %+v", result.Verdict)
	}
	if result.ScamType != ScamTypeBankFraud {
		t.Errorf("credential request with bank vocabulary should classify as bank_fraud, got %s", result.ScamType)
	}
}

func TestSystemAllSignalsFail(t *testing.T) {
	engine := NewEngine(0.5)
	system := NewSystem(engine, logging.Default(), &failingSignal{})

	result := system.Analyze(context.Background(), "anything")
	if result.Verdict.ScamDetected {
		t.Error("no surviving signals must yield a non-scam verdict")
	}
	if result.Verdict.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", result.Verdict.Confidence)
	}
}

func hasIndicator(f Finding, indicator string) bool {
	for _, ind := range f.Indicators {
		if ind == indicator {
			return true
		}
	}
	return false
}
