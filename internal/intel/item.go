package intel

import (
	"strings"
	"time"
)

// Kind enumerates the categories of intelligence the pipeline can extract.
type Kind string

const (
	KindPaymentHandle Kind = "upi_id"
	KindPhone         Kind = "phone_number"
	KindBankAccount   Kind = "bank_account"
	KindURL           Kind = "url"
	KindEmail         Kind = "email"
	KindCryptoBTC     Kind = "crypto_wallet_btc"
	KindCryptoETH     Kind = "crypto_wallet_eth"
	KindRoutingCode   Kind = "ifsc_code"
	KindRemoteTool    Kind = "scam_app_mention"
	KindOrganization  Kind = "claimed_organization"
)

// HighValueKinds are the kinds considered strong evidence when validating a
// session report before delivery.
var HighValueKinds = map[Kind]struct{}{
	KindPaymentHandle: {},
	KindPhone:         {},
	KindBankAccount:   {},
	KindURL:           {},
	KindEmail:         {},
}

// Item is a structured fact extracted from message text. Items are never
// mutated after creation, only filtered and aggregated for reporting.
type Item struct {
	Kind        Kind      `json:"type"`
	Value       string    `json:"value"`
	Confidence  float64   `json:"confidence"`
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"timestamp"`
	HighRisk    bool      `json:"high_risk,omitempty"`
}

// key is the deduplication identity of an item.
func (i Item) key() string {
	return string(i.Kind) + "\x00" + normalizeValue(i.Kind, i.Value)
}

// IsHighValue reports whether the item's kind counts as high-value evidence.
func (i Item) IsHighValue() bool {
	_, ok := HighValueKinds[i.Kind]
	return ok
}

func normalizeValue(kind Kind, value string) string {
	switch kind {
	case KindPaymentHandle, KindEmail, KindRemoteTool:
		return strings.ToLower(value)
	case KindRoutingCode, KindOrganization:
		return strings.ToUpper(value)
	default:
		return value
	}
}

// Deduplicate collapses items sharing the same (kind, normalized value) pair,
// keeping the first occurrence. Input order is preserved.
func Deduplicate(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	unique := make([]Item, 0, len(items))
	for _, item := range items {
		k := item.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}

// FilterByConfidence returns the items whose confidence meets the threshold.
func FilterByConfidence(items []Item, threshold float64) []Item {
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Confidence >= threshold {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Summary aggregates reporting statistics over a set of items.
type Summary struct {
	Total         int          `json:"total_items"`
	ByKind        map[Kind]int `json:"by_type"`
	HighRiskCount int          `json:"high_risk_count"`
	AvgConfidence float64      `json:"avg_confidence"`
}

// Summarize computes counts by kind, the high-risk count, and the mean
// confidence across items.
func Summarize(items []Item) Summary {
	s := Summary{ByKind: make(map[Kind]int)}
	var total float64
	for _, item := range items {
		s.Total++
		s.ByKind[item.Kind]++
		if item.HighRisk {
			s.HighRiskCount++
		}
		total += item.Confidence
	}
	if s.Total > 0 {
		s.AvgConfidence = total / float64(s.Total)
	}
	return s
}

// MeanConfidence returns the average confidence across items, or 0 for an
// empty slice.
func MeanConfidence(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	var total float64
	for _, item := range items {
		total += item.Confidence
	}
	return total / float64(len(items))
}
