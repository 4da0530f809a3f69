package intel

import (
	"regexp"
	"strings"
	"time"
)

const sourceMessageContent = "message_content"

// Pattern matchers, one per intelligence kind. Payment handles are recognized
// by a closed set of known provider suffixes; phone numbers by the Indian
// numbering plan with a looser international fallback.
var (
	paymentHandleRe    = regexp.MustCompile(`(?i)\b[\w.\-]+@(?:ybl|paytm|okaxis|okicici|okhdfcbank|upi|ibl|freecharge|apl|waicici|waaxis|wahdfcbank|axisbank|sbi|icici|hdfc|kotak|indus)\b`)
	phoneIndiaRe       = regexp.MustCompile(`(?:\+91[-\s]?)?[6-9]\d{9}`)
	phoneIndiaAnchored = regexp.MustCompile(`^(?:\+91[-\s]?)?[6-9]\d{9}`)
	phoneIntlRe        = regexp.MustCompile(`\+\d{1,3}[-\s]?\d{6,12}`)
	bankAccountRe      = regexp.MustCompile(`\b\d{9,18}\b`)
	routingCodeRe      = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	urlRe              = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	shortenerRe        = regexp.MustCompile(`(?:bit\.ly|tinyurl\.com|goo\.gl|ow\.ly|t\.co|buff\.ly)/[\w\-]+`)
	emailRe            = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	cryptoBTCRe        = regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)
	cryptoETHRe        = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)
	separatorRe        = regexp.MustCompile(`[-\s]`)
)

// remoteAccessTools are application names scammers push victims to install.
var remoteAccessTools = []string{
	"anydesk", "teamviewer", "quicksupport", "aeroadmin",
	"screenshare", "remote desktop", "ammyy admin",
}

// impersonatedOrganizations are institutions commonly claimed by scammers.
var impersonatedOrganizations = []string{
	"sbi", "hdfc", "icici", "axis", "kotak", "pnb", "bob",
	"canara", "union", "rbi", "reserve bank",
}

// Extract scans text against the full pattern battery and returns one item
// per match, deduplicated by (kind, normalized value) within this call.
// The scan is pure: identical input yields identical items for a fixed now.
func Extract(text string, now time.Time) []Item {
	var items []Item

	add := func(item Item) {
		items = append(items, item)
	}

	// Payment handles first: emails are excluded against them below.
	for _, m := range paymentHandleRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindPaymentHandle,
			Value:       strings.ToLower(m),
			Confidence:  0.95,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	for _, m := range phoneIndiaRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindPhone,
			Value:       separatorRe.ReplaceAllString(m, ""),
			Confidence:  0.90,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}
	for _, m := range phoneIntlRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindPhone,
			Value:       separatorRe.ReplaceAllString(m, ""),
			Confidence:  0.85,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	fullURLs := make(map[string]struct{})
	for _, m := range urlRe.FindAllString(text, -1) {
		shortened := shortenerRe.MatchString(m)
		fullURLs[m] = struct{}{}
		add(Item{
			Kind:        KindURL,
			Value:       m,
			Confidence:  0.95,
			Source:      sourceMessageContent,
			ExtractedAt: now,
			HighRisk:    shortened,
		})
	}
	// Standalone shortener mentions without a scheme, e.g. "bit.ly/xyz".
	for _, m := range shortenerRe.FindAllString(text, -1) {
		full := "https://" + m
		if _, ok := fullURLs[full]; ok {
			continue
		}
		if covered(fullURLs, m) {
			continue
		}
		add(Item{
			Kind:        KindURL,
			Value:       full,
			Confidence:  0.90,
			Source:      sourceMessageContent,
			ExtractedAt: now,
			HighRisk:    true,
		})
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		if paymentHandleRe.MatchString(m) {
			continue
		}
		add(Item{
			Kind:        KindEmail,
			Value:       strings.ToLower(m),
			Confidence:  0.90,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	for _, m := range bankAccountRe.FindAllString(text, -1) {
		// Digit runs that parse as phone numbers are reported as phones only.
		if phoneIndiaAnchored.MatchString(m) {
			continue
		}
		add(Item{
			Kind:        KindBankAccount,
			Value:       m,
			Confidence:  0.70,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	for _, m := range routingCodeRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindRoutingCode,
			Value:       strings.ToUpper(m),
			Confidence:  0.95,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	for _, m := range cryptoBTCRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindCryptoBTC,
			Value:       m,
			Confidence:  0.85,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}
	for _, m := range cryptoETHRe.FindAllString(text, -1) {
		add(Item{
			Kind:        KindCryptoETH,
			Value:       m,
			Confidence:  0.90,
			Source:      sourceMessageContent,
			ExtractedAt: now,
		})
	}

	lower := strings.ToLower(text)
	for _, tool := range remoteAccessTools {
		if strings.Contains(lower, tool) {
			add(Item{
				Kind:        KindRemoteTool,
				Value:       tool,
				Confidence:  0.80,
				Source:      sourceMessageContent,
				ExtractedAt: now,
				HighRisk:    true,
			})
		}
	}

	// Only the first matching organization claim is recorded.
	for _, org := range impersonatedOrganizations {
		if strings.Contains(lower, org) {
			add(Item{
				Kind:        KindOrganization,
				Value:       strings.ToUpper(org),
				Confidence:  0.75,
				Source:      sourceMessageContent,
				ExtractedAt: now,
			})
			break
		}
	}

	return Deduplicate(items)
}

// covered reports whether the schemeless shortener mention is a suffix of an
// already extracted full URL.
func covered(fullURLs map[string]struct{}, mention string) bool {
	for u := range fullURLs {
		if strings.Contains(u, mention) {
			return true
		}
	}
	return false
}
