package detection

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// Reputation classifies a URL as malicious or benign. Implementations must
// be fail-open: callers treat any error as benign.
type Reputation interface {
	IsMalicious(ctx context.Context, rawURL string) (bool, error)
}

var linkRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// shortenerDomains are link shorteners frequently used to hide phishing
// destinations.
var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "t.co",
	"buff.ly", "adf.ly", "is.gd", "cli.gs", "tiny.cc",
}

// suspiciousTLDs are free or throwaway TLD zones over-represented in scams.
var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq",
	".xyz", ".top", ".work", ".click",
}

var ipHostRe = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+(?::\d+)?$`)

type linkThreat struct {
	URL      string
	Kind     string
	Critical bool
}

// LinkChecker analyzes URLs in messages using heuristics plus an optional
// reputation service.
type LinkChecker struct {
	reputation Reputation
	logger     *logging.Logger
}

// NewLinkChecker creates the link signal. reputation may be nil, in which
// case only heuristics apply.
func NewLinkChecker(reputation Reputation, logger *logging.Logger) *LinkChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &LinkChecker{reputation: reputation, logger: logger}
}

// Name implements Signal.
func (c *LinkChecker) Name() string { return "link_checker" }

// Evaluate extracts URLs and scores them against shortener, TLD, raw-IP and
// reputation checks. A message with no URLs is benign with full confidence.
func (c *LinkChecker) Evaluate(ctx context.Context, text string) (Finding, error) {
	urls := linkRe.FindAllString(text, -1)
	if len(urls) == 0 {
		return Finding{Signal: c.Name(), RiskScore: 0, Confidence: 1.0}, nil
	}

	var threats []linkThreat
	for _, raw := range urls {
		host := hostOf(raw)

		for _, short := range shortenerDomains {
			if strings.Contains(host, short) {
				threats = append(threats, linkThreat{URL: raw, Kind: "shortened_url"})
				break
			}
		}
		for _, tld := range suspiciousTLDs {
			if strings.HasSuffix(host, tld) {
				threats = append(threats, linkThreat{URL: raw, Kind: "suspicious_domain"})
				break
			}
		}
		if ipHostRe.MatchString(host) {
			threats = append(threats, linkThreat{URL: raw, Kind: "ip_address_url"})
		}

		if c.reputation != nil {
			malicious, err := c.reputation.IsMalicious(ctx, raw)
			if err != nil {
				// Fail open: reputation outages never block analysis.
				c.logger.Warn("url reputation lookup failed", "url", raw, "error", err)
			} else if malicious {
				threats = append(threats, linkThreat{URL: raw, Kind: "reputation_flagged", Critical: true})
			}
		}
	}

	risk := min(float64(len(threats))*0.4, 1.0)
	for _, t := range threats {
		if t.Critical {
			risk = min(risk+0.3, 1.0)
			break
		}
	}

	var indicators []string
	if len(threats) > 0 {
		indicators = append(indicators, IndicatorMaliciousLink)
	}

	return Finding{
		Signal:     c.Name(),
		RiskScore:  risk,
		Confidence: 0.95,
		Indicators: indicators,
	}, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host)
}
