package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SafeBrowsingClient queries the Google Safe Browsing v4 lookup API.
// A missing credential disables lookups entirely; transport and protocol
// errors surface to the caller, which treats them as benign.
type SafeBrowsingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSafeBrowsingClient builds a reputation client. Returns nil when apiKey
// is empty so callers can skip wiring the signal dependency.
func NewSafeBrowsingClient(apiKey, baseURL string) *SafeBrowsingClient {
	if apiKey == "" {
		return nil
	}
	return &SafeBrowsingClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type threatMatchRequest struct {
	ThreatInfo struct {
		ThreatTypes      []string            `json:"threatTypes"`
		PlatformTypes    []string            `json:"platformTypes"`
		ThreatEntryTypes []string            `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatMatchResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// IsMalicious implements Reputation.
func (c *SafeBrowsingClient) IsMalicious(ctx context.Context, rawURL string) (bool, error) {
	if c == nil {
		return false, errors.New("detection: safe browsing client not configured")
	}

	var reqBody threatMatchRequest
	reqBody.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING"}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	reqBody.ThreatInfo.ThreatEntries = []map[string]string{{"url": rawURL}}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return false, fmt.Errorf("detection: failed to marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("detection: failed to build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("detection: lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("detection: lookup returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("detection: failed to read lookup response: %w", err)
	}

	var parsed threatMatchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return false, fmt.Errorf("detection: failed to decode lookup response: %w", err)
	}
	return len(parsed.Matches) > 0, nil
}
