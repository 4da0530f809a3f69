package intel

import (
	"reflect"
	"testing"
	"time"
)

var extractNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func findByKind(items []Item, kind Kind) []Item {
	var out []Item
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

func hasItem(items []Item, kind Kind, value string) bool {
	for _, item := range items {
		if item.Kind == kind && item.Value == value {
			return true
		}
	}
	return false
}

func TestExtractScamMessage(t *testing.T) {
	text := "URGENT: account blocked, send OTP to 9876543210, pay to scam@ybl"
	items := Extract(text, extractNow)

	if !hasItem(items, KindPhone, "9876543210") {
		t.Errorf("expected phone 9876543210, got %+v", items)
	}
	if !hasItem(items, KindPaymentHandle, "scam@ybl") {
		t.Errorf("expected payment handle scam@ybl, got %+v", items)
	}
	// The ten-digit phone must not double-count as a bank account.
	if len(findByKind(items, KindBankAccount)) != 0 {
		t.Errorf("phone number leaked into bank accounts: %+v", items)
	}
	// UPI handles have no TLD and must not be reported as emails.
	if len(findByKind(items, KindEmail)) != 0 {
		t.Errorf("payment handle leaked into emails: %+v", items)
	}
}

func TestExtractDeterminism(t *testing.T) {
	text := "Call +91-9876543210 or visit https://bit.ly/fake-kyc now. IFSC SBIN0001234, account 123456789012"
	first := Extract(text, extractNow)
	second := Extract(text, extractNow)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtractShortenedURLHighRisk(t *testing.T) {
	items := Extract("click https://bit.ly/win-prize today", extractNow)
	urls := findByKind(items, KindURL)
	if len(urls) != 1 {
		t.Fatalf("expected 1 url, got %+v", urls)
	}
	if !urls[0].HighRisk {
		t.Error("shortened url should be flagged high risk")
	}
	if urls[0].Confidence != 0.95 {
		t.Errorf("full url confidence should be 0.95, got %f", urls[0].Confidence)
	}
}

func TestExtractStandaloneShortener(t *testing.T) {
	items := Extract("open bit.ly/free-cash for your refund", extractNow)
	urls := findByKind(items, KindURL)
	if len(urls) != 1 {
		t.Fatalf("expected 1 url, got %+v", urls)
	}
	if urls[0].Value != "https://bit.ly/free-cash" {
		t.Errorf("expected scheme added to shortener mention, got %s", urls[0].Value)
	}
	if !urls[0].HighRisk {
		t.Error("standalone shortener should be high risk")
	}
}

func TestExtractBankAccountAndRoutingCode(t *testing.T) {
	items := Extract("transfer to account 123456789012345 IFSC HDFC0004321", extractNow)
	if !hasItem(items, KindBankAccount, "123456789012345") {
		t.Errorf("expected bank account, got %+v", items)
	}
	if !hasItem(items, KindRoutingCode, "HDFC0004321") {
		t.Errorf("expected routing code, got %+v", items)
	}
	accounts := findByKind(items, KindBankAccount)
	if len(accounts) != 1 || accounts[0].Confidence != 0.70 {
		t.Errorf("bank account should carry matcher confidence 0.70: %+v", accounts)
	}
}

func TestExtractCryptoAddresses(t *testing.T) {
	text := "send BTC to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa or ETH 0x52908400098527886E0F7030069857D2E4169EE7"
	items := Extract(text, extractNow)
	if len(findByKind(items, KindCryptoBTC)) != 1 {
		t.Errorf("expected one BTC address, got %+v", items)
	}
	if len(findByKind(items, KindCryptoETH)) != 1 {
		t.Errorf("expected one ETH address, got %+v", items)
	}
}

func TestExtractRemoteToolAndOrganization(t *testing.T) {
	items := Extract("I am from SBI bank, install AnyDesk to verify your KYC", extractNow)
	tools := findByKind(items, KindRemoteTool)
	if len(tools) != 1 || tools[0].Value != "anydesk" || !tools[0].HighRisk {
		t.Errorf("expected high-risk anydesk mention, got %+v", tools)
	}
	orgs := findByKind(items, KindOrganization)
	if len(orgs) != 1 || orgs[0].Value != "SBI" {
		t.Errorf("expected single organization claim SBI, got %+v", orgs)
	}
}

func TestExtractOrganizationFirstMatchOnly(t *testing.T) {
	items := Extract("calling from SBI on behalf of RBI and HDFC", extractNow)
	orgs := findByKind(items, KindOrganization)
	if len(orgs) != 1 {
		t.Errorf("only the first organization claim should be recorded, got %+v", orgs)
	}
}

func TestExtractEmailKeptWhenNotPaymentHandle(t *testing.T) {
	items := Extract("write to support@fake-bank.com", extractNow)
	if !hasItem(items, KindEmail, "support@fake-bank.com") {
		t.Errorf("expected email, got %+v", items)
	}
}

func TestDeduplicateOrderIndependent(t *testing.T) {
	a := Item{Kind: KindPaymentHandle, Value: "scam@ybl", Confidence: 0.95, ExtractedAt: extractNow}
	b := Item{Kind: KindPaymentHandle, Value: "SCAM@ybl", Confidence: 0.90, ExtractedAt: extractNow}
	c := Item{Kind: KindPhone, Value: "9876543210", Confidence: 0.90, ExtractedAt: extractNow}

	first := Deduplicate([]Item{a, b, c})
	second := Deduplicate([]Item{b, a, c})
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("case-insensitive duplicates should collapse: %+v / %+v", first, second)
	}
}

func TestFilterByConfidence(t *testing.T) {
	items := []Item{
		{Kind: KindPaymentHandle, Value: "a@ybl", Confidence: 0.95},
		{Kind: KindBankAccount, Value: "123456789", Confidence: 0.70},
	}
	filtered := FilterByConfidence(items, 0.75)
	if len(filtered) != 1 || filtered[0].Kind != KindPaymentHandle {
		t.Errorf("expected only the payment handle above 0.75, got %+v", filtered)
	}
}

func TestSummarize(t *testing.T) {
	items := []Item{
		{Kind: KindPaymentHandle, Value: "a@ybl", Confidence: 0.95},
		{Kind: KindURL, Value: "https://bit.ly/x", Confidence: 0.90, HighRisk: true},
		{Kind: KindURL, Value: "https://example.com", Confidence: 0.95},
	}
	s := Summarize(items)
	if s.Total != 3 {
		t.Errorf("expected total 3, got %d", s.Total)
	}
	if s.ByKind[KindURL] != 2 {
		t.Errorf("expected 2 urls, got %d", s.ByKind[KindURL])
	}
	if s.HighRiskCount != 1 {
		t.Errorf("expected 1 high-risk item, got %d", s.HighRiskCount)
	}
	want := (0.95 + 0.90 + 0.95) / 3
	if diff := s.AvgConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected avg confidence %f, got %f", want, s.AvgConfidence)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.AvgConfidence != 0 {
		t.Errorf("empty summary should be zero-valued: %+v", s)
	}
}
