package persona

import (
	"fmt"
	"math/rand"
	"strings"
)

// TechSavviness grades how comfortable a persona is with technology.
// It drives typo frequency and filler-word usage.
type TechSavviness string

const (
	TechLow    TechSavviness = "low"
	TechMedium TechSavviness = "medium"
	TechHigh   TechSavviness = "high"
)

// TypoPattern is a substring swap applied to generated text to mimic
// imperfect typing.
type TypoPattern struct {
	From string
	To   string
}

// Identity holds the fixed biography of a persona. These attributes
// never change mid-conversation so the character cannot contradict
// itself.
type Identity struct {
	Name               string
	Age                int
	Gender             string
	Location           string
	Occupation         string
	Family             string
	Backstory          string
	LanguagePreference string

	Personality       []string
	TechSavviness     TechSavviness
	EmotionalTriggers []string
	Formality         string
	CommonPhrases     []string
	ResponsePattern   string

	revealedFacts []string
}

var identityTemplates = map[Archetype]Identity{
	ArchetypeElderlyRetired: {
		Name:               "Shanti Devi",
		Age:                68,
		Gender:             "female",
		Location:           "Varanasi, Uttar Pradesh",
		Occupation:         "retired school teacher",
		Family:             "husband passed away 5 years ago; 2 sons (both work in cities); 3 grandchildren",
		Backstory:          "Lives alone in family home. Modest pension. Not very tech-savvy but has smartphone to talk to grandchildren.",
		LanguagePreference: "Hindi-English mix (Hinglish)",
		Personality:        []string{"trusting", "lonely", "religious", "traditional"},
		TechSavviness:      TechLow,
		EmotionalTriggers:  []string{"family concern", "respect for authority", "fear of government"},
		Formality:          "polite, uses 'ji' suffix",
		CommonPhrases:      []string{"beta", "arre", "kya baat hai", "mujhe samajh nahi aaya"},
		ResponsePattern:    "asks many questions, needs step-by-step guidance",
	},
	ArchetypeMiddleAgedBusiness: {
		Name:               "Rajesh Kumar Sharma",
		Age:                48,
		Gender:             "male",
		Location:           "Jaipur, Rajasthan",
		Occupation:         "small garment shop owner",
		Family:             "wife Sunita; 1 daughter (college), 1 son (school)",
		Backstory:          "Runs family business for 20 years. Has multiple bank accounts for business. Worried about online fraud.",
		LanguagePreference: "Hindi with some English terms",
		Personality:        []string{"cautious", "busy", "practical", "slightly suspicious"},
		TechSavviness:      TechMedium,
		EmotionalTriggers:  []string{"business threat", "bank issues", "family safety"},
		Formality:          "semi-formal",
		CommonPhrases:      []string{"dekhiye", "bataiye", "ye kaise hoga", "time nahi hai"},
		ResponsePattern:    "asks for verification, wants quick resolution",
	},
	ArchetypeYoungProfessional: {
		Name:               "Priya Nair",
		Age:                27,
		Gender:             "female",
		Location:           "Bangalore, Karnataka",
		Occupation:         "IT professional at startup",
		Family:             "unmarried; parents live in Kerala",
		Backstory:          "Works from home. Uses UPI daily. Has investment accounts. Aware of scams but can still be tricked with sophisticated approaches.",
		LanguagePreference: "English with occasional Hindi",
		Personality:        []string{"tech-aware", "busy", "impatient", "somewhat skeptical"},
		TechSavviness:      TechHigh,
		EmotionalTriggers:  []string{"investment fraud", "job offers", "credit card issues"},
		Formality:          "casual professional",
		CommonPhrases:      []string{"what's this about?", "can you verify?", "send official email"},
		ResponsePattern:    "demands proof, checks links carefully, may catch obvious scams",
	},
}

// IdentityFor returns a fresh copy of the identity template for an
// archetype, defaulting to the middle-aged business profile.
func IdentityFor(archetype Archetype) *Identity {
	tmpl, ok := identityTemplates[archetype]
	if !ok {
		tmpl = identityTemplates[ArchetypeMiddleAgedBusiness]
	}
	id := tmpl
	id.revealedFacts = nil
	return &id
}

// AddRevealedFact tracks a detail the persona has shared so later
// responses stay consistent with it.
func (id *Identity) AddRevealedFact(fact string) {
	for _, f := range id.revealedFacts {
		if f == fact {
			return
		}
	}
	id.revealedFacts = append(id.revealedFacts, fact)
}

// RevealedFacts returns facts shared so far, in order.
func (id *Identity) RevealedFacts() []string { return id.revealedFacts }

// PromptContext renders the identity as prompt text for the response
// generator.
func (id *Identity) PromptContext() string {
	var b strings.Builder
	b.WriteString("PERSONA PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", id.Name)
	fmt.Fprintf(&b, "- Age: %d years old\n", id.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", id.Gender)
	fmt.Fprintf(&b, "- Location: %s\n", id.Location)
	fmt.Fprintf(&b, "- Occupation: %s\n", id.Occupation)
	fmt.Fprintf(&b, "- Family: %s\n", id.Family)
	fmt.Fprintf(&b, "- Background: %s\n", id.Backstory)
	fmt.Fprintf(&b, "- Language: %s\n\n", id.LanguagePreference)
	b.WriteString("BEHAVIORAL TRAITS:\n")
	fmt.Fprintf(&b, "- Personality: %s\n", strings.Join(id.Personality, ", "))
	fmt.Fprintf(&b, "- Tech savviness: %s\n", id.TechSavviness)
	fmt.Fprintf(&b, "- Emotional triggers: %s\n", strings.Join(id.EmotionalTriggers, ", "))
	fmt.Fprintf(&b, "- Speaking style: %s\n", id.Formality)
	fmt.Fprintf(&b, "- Common phrases: %s\n", strings.Join(id.CommonPhrases, ", "))
	fmt.Fprintf(&b, "- Response pattern: %s\n\n", id.ResponsePattern)
	b.WriteString("FACTS ALREADY REVEALED IN CONVERSATION:\n")
	if len(id.revealedFacts) == 0 {
		b.WriteString("- None yet")
	} else {
		for i, fact := range id.revealedFacts {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s", fact)
		}
	}
	return b.String()
}

// ValidateResponse checks a candidate reply against fixed biography
// facts. A false result means the reply would break character.
func (id *Identity) ValidateResponse(response string) (bool, string) {
	lower := strings.ToLower(response)

	if strings.Contains(id.Family, "passed away") {
		if strings.Contains(lower, "my husband") || strings.Contains(lower, "my wife") {
			if !strings.Contains(lower, "passed away") && !strings.Contains(lower, "died") {
				return false, "mentioned spouse as if alive, but spouse is deceased"
			}
		}
	}

	switch id.Gender {
	case "female":
		if strings.Contains(lower, "i am a man") || strings.Contains(lower, "as a man") {
			return false, "gender inconsistency detected"
		}
	case "male":
		if strings.Contains(lower, "i am a woman") || strings.Contains(lower, "as a woman") {
			return false, "gender inconsistency detected"
		}
	}

	return true, "consistent"
}

// TypoPatterns returns the substring swaps plausible for this persona's
// tech savviness. Highly tech-savvy personas type correctly.
func (id *Identity) TypoPatterns() []TypoPattern {
	switch id.TechSavviness {
	case TechLow:
		return []TypoPattern{
			{"the", "teh"},
			{"you", "yuo"},
			{"please", "pls"},
			{"okay", "ok"},
			{".", ".."},
		}
	case TechMedium:
		return []TypoPattern{
			{"okay", "ok"},
			{"please", "pls"},
		}
	default:
		return nil
	}
}

// ShouldAddTypo draws whether a typo gets injected into the next reply.
func (id *Identity) ShouldAddTypo(rng *rand.Rand) bool {
	var p float64
	switch id.TechSavviness {
	case TechLow:
		p = 0.25
	case TechHigh:
		p = 0.02
	default:
		p = 0.10
	}
	return rng.Float64() < p
}
