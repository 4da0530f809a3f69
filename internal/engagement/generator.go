package engagement

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

var generatorTracer = otel.Tracer("engagement.generator")

// Prompt carries everything a response generator needs to stay in
// character for one reply.
type Prompt struct {
	ScammerMessage string
	Identity       *persona.Identity
	StateContext   string
	Examples       []string
	History        []Turn
}

// Generator produces the persona's next reply.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeminiGenerator implements Generator using Google's Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	modelID string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, modelID string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("engagement: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("engagement: failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		modelID: modelID,
	}, nil
}

// Generate asks Gemini for a persona-consistent reply.
func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	ctx, span := generatorTracer.Start(ctx, "gemini.generate")
	defer span.End()

	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(0.8)
	model.SetTopP(0.9)
	model.SetTopK(40)
	// Short outputs read more like messaging-app replies.
	model.SetMaxOutputTokens(200)

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPromptText(p)))
	if err != nil {
		return "", fmt.Errorf("engagement: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("engagement: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("engagement: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// Close releases resources held by the Gemini client.
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// BuildPromptText renders a Prompt into the full instruction text sent
// to the model.
func BuildPromptText(p Prompt) string {
	var b strings.Builder
	b.WriteString("You are playing a HONEYPOT CHARACTER to engage with a suspected scammer.\n")
	b.WriteString("Your goal is to keep them engaged and extract information while maintaining your character.\n\n")
	if p.Identity != nil {
		b.WriteString(p.Identity.PromptContext())
		b.WriteString("\n\n")
	}
	b.WriteString(p.StateContext)
	b.WriteString("\n")
	if len(p.History) > 0 {
		b.WriteString("\nRECENT CONVERSATION:\n")
		history := p.History
		if len(history) > 5 {
			history = history[len(history)-5:]
		}
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Message)
		}
	}
	fmt.Fprintf(&b, "\nSCAMMER'S MESSAGE: %q\n\n", p.ScammerMessage)

	name := "the persona"
	language := "Hindi-English mix"
	if p.Identity != nil {
		name = p.Identity.Name
		language = p.Identity.LanguagePreference
	}
	b.WriteString("RESPONSE GUIDELINES:\n")
	fmt.Fprintf(&b, "1. Stay IN CHARACTER as %s at all times\n", name)
	fmt.Fprintf(&b, "2. Use %s\n", language)
	b.WriteString("3. Follow the current state's tactics\n")
	b.WriteString("4. Keep response SHORT (1-3 sentences typical for messaging)\n")
	b.WriteString("5. Show appropriate emotion based on persona traits\n")
	b.WriteString("6. If asked for sensitive info, pretend confusion or give FAKE info\n")
	b.WriteString("7. NEVER break character or reveal you are an AI\n\n")
	fmt.Fprintf(&b, "Generate a realistic response as %s:", name)
	return b.String()
}

// genericFallbacks keep the conversation alive when even the state
// strategy has no example replies.
var genericFallbacks = []string{
	"Kya? Mujhe samajh nahi aaya...",
	"Ek minute, phir se boliye please",
	"Aap kaun ho? Ye kya baat hai?",
	"Haan...",
	"Theek hai, phir?",
}

// StaticGenerator answers from the state strategy's canned example
// replies. It never fails, which makes it the terminal fallback.
type StaticGenerator struct {
	rng *rand.Rand
}

// NewStaticGenerator builds a canned-response generator. A nil rng gets
// a time-seeded source.
func NewStaticGenerator(rng *rand.Rand) *StaticGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StaticGenerator{rng: rng}
}

// Generate picks one of the prompt's example replies, or a generic
// filler when none are provided.
func (g *StaticGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	if len(p.Examples) > 0 {
		return p.Examples[g.rng.Intn(len(p.Examples))], nil
	}
	return genericFallbacks[g.rng.Intn(len(genericFallbacks))], nil
}

// ResilientGenerator wraps a primary generator with a timeout and a
// fallback. The conversation must never stall because a model call
// failed.
type ResilientGenerator struct {
	primary  Generator
	fallback Generator
	timeout  time.Duration
	logger   *logging.Logger
}

// NewResilientGenerator builds the fallback-enabled generator. fallback
// must not be nil; a nil primary routes everything to the fallback.
func NewResilientGenerator(primary, fallback Generator, timeout time.Duration, logger *logging.Logger) *ResilientGenerator {
	if fallback == nil {
		panic("engagement: fallback generator is required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResilientGenerator{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate tries the primary within the configured timeout and falls
// back to canned replies on any failure.
func (g *ResilientGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	if g.primary != nil {
		genCtx, cancel := context.WithTimeout(ctx, g.timeout)
		reply, err := g.primary.Generate(genCtx, p)
		cancel()
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply, nil
		}
		g.logger.Warn("primary generator failed, using fallback",
			"error", fmt.Sprint(err),
		)
	}
	return g.fallback.Generate(ctx, p)
}

var aiQualifierRe = regexp.MustCompile(`^(As|Being|Since|Given that|I understand|I see|I will|Let me)[^,]*,\s*`)

// PostProcess roughs up generated text so it reads like a human typed
// it on a phone.
func PostProcess(text string, id *persona.Identity, rng *rand.Rand) string {
	text = aiQualifierRe.ReplaceAllString(text, "")
	text = strings.Trim(text, `"'`)

	if id != nil && rng != nil {
		if id.ShouldAddTypo(rng) {
			if patterns := id.TypoPatterns(); len(patterns) > 0 {
				p := patterns[rng.Intn(len(patterns))]
				text = strings.Replace(text, p.From, p.To, 1)
			}
		}
		if id.TechSavviness == persona.TechLow && rng.Float64() < 0.3 {
			fillers := []string{"umm", "aaaa", "matlab", "wo kya hai"}
			text = fillers[rng.Intn(len(fillers))] + "... " + text
		}
		if rng.Float64() < 0.1 {
			text = strings.Replace(text, ",", "...,", 1)
		}
	}

	if len(text) > 300 {
		sentences := strings.Split(text, ".")
		if len(sentences) > 2 {
			text = strings.Join(sentences[:2], ". ") + "."
		}
	}
	return strings.TrimSpace(text)
}
