package callback

import (
	"fmt"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/engagement"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/intel"
)

// DefaultConfidence is reported when no aggregate confidence is
// available from detection.
const DefaultConfidence = 0.85

const apiVersion = "2.0.0"

// IntelligenceItem is one extracted artifact in the wire format the
// evaluation endpoint expects.
type IntelligenceItem struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// TranscriptTurn is one conversation entry in the wire format.
type TranscriptTurn struct {
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Metadata carries reporting extras alongside the required fields.
type Metadata struct {
	APIVersion        string  `json:"api_version"`
	IntelligenceCount int     `json:"intelligence_count"`
	AvgConfidence     float64 `json:"avg_confidence"`
}

// Payload is the final-result report posted to the evaluation endpoint.
type Payload struct {
	SessionID              string             `json:"sessionId"`
	ScamType               string             `json:"scamType"`
	IntelligenceGathered   []IntelligenceItem `json:"intelligenceGathered"`
	ConversationTranscript []TranscriptTurn   `json:"conversationTranscript"`
	Confidence             float64            `json:"confidence"`
	TotalTurns             int                `json:"totalTurns"`
	Timestamp              string             `json:"timestamp"`
	Metadata               Metadata           `json:"metadata"`
}

// BuildPayload assembles the final report for one session. A zero
// confidence falls back to the default.
func BuildPayload(
	sessionID string,
	scamType detection.ScamType,
	items []intel.Item,
	transcript []engagement.Turn,
	totalTurns int,
	confidence float64,
	now time.Time,
) Payload {
	if scamType == "" {
		scamType = detection.ScamTypeGeneric
	}
	if confidence <= 0 {
		confidence = DefaultConfidence
	}

	gathered := make([]IntelligenceItem, 0, len(items))
	for _, item := range items {
		gathered = append(gathered, IntelligenceItem{
			Type:       string(item.Kind),
			Value:      item.Value,
			Confidence: item.Confidence,
			Timestamp:  item.ExtractedAt.UTC().Format(time.RFC3339),
		})
	}

	conversation := make([]TranscriptTurn, 0, len(transcript))
	for _, turn := range transcript {
		conversation = append(conversation, TranscriptTurn{
			Role:      string(turn.Role),
			Message:   turn.Message,
			Timestamp: turn.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return Payload{
		SessionID:              sessionID,
		ScamType:               string(scamType),
		IntelligenceGathered:   gathered,
		ConversationTranscript: conversation,
		Confidence:             confidence,
		TotalTurns:             totalTurns,
		Timestamp:              now.UTC().Format(time.RFC3339),
		Metadata: Metadata{
			APIVersion:        apiVersion,
			IntelligenceCount: len(gathered),
			AvgConfidence:     intel.MeanConfidence(items),
		},
	}
}

// Validate checks the payload quality bar: at least three items, one of
// them high value, and a reasonable average confidence. A failed check
// never blocks delivery; callers log the reason and send anyway.
func Validate(items []intel.Item) (bool, string) {
	if len(items) < 3 {
		return false, fmt.Sprintf("insufficient intelligence: %d/3 minimum required", len(items))
	}

	var hasHighValue bool
	for _, item := range items {
		if item.IsHighValue() {
			hasHighValue = true
			break
		}
	}
	if !hasHighValue {
		return false, "no high-value intelligence items (UPI, phone, account, URL, email)"
	}

	if avg := intel.MeanConfidence(items); avg < 0.5 {
		return false, fmt.Sprintf("average confidence too low: %.2f < 0.5", avg)
	}

	return true, "all validations passed"
}
