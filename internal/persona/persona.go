package persona

import "github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"

// Archetype names a persona behavior profile governing timing patterns.
type Archetype string

const (
	ArchetypeElderlyRetired     Archetype = "elderly_retired"
	ArchetypeMiddleAgedBusiness Archetype = "middle_aged_business"
	ArchetypeYoungProfessional  Archetype = "young_professional"
)

// Platform identifies the channel a conversation is happening on. It bounds
// message length and media capabilities.
type Platform string

const (
	PlatformSMS      Platform = "sms"
	PlatformWhatsApp Platform = "whatsapp"
	PlatformEmail    Platform = "email"
)

// Constraints describe what a platform supports.
type Constraints struct {
	MaxLength          int
	CanSendImages      bool
	CanSendAudio       bool
	CanSendLinks       bool
	SupportsFormatting bool
}

var platformConstraints = map[Platform]Constraints{
	PlatformSMS:      {MaxLength: 160, CanSendLinks: true},
	PlatformWhatsApp: {MaxLength: 4096, CanSendImages: true, CanSendAudio: true, CanSendLinks: true, SupportsFormatting: true},
	PlatformEmail:    {MaxLength: 65536, CanSendImages: true, CanSendLinks: true, SupportsFormatting: true},
}

// ConstraintsFor returns the constraints for a platform, defaulting to the
// most restrictive (SMS) when the tag is unknown.
func ConstraintsFor(platform Platform) Constraints {
	if c, ok := platformConstraints[platform]; ok {
		return c
	}
	return platformConstraints[PlatformSMS]
}

// ParsePlatform maps a free-form channel tag onto the closed Platform set.
func ParsePlatform(tag string) Platform {
	switch Platform(tag) {
	case PlatformWhatsApp:
		return PlatformWhatsApp
	case PlatformEmail:
		return PlatformEmail
	default:
		return PlatformSMS
	}
}

// ArchetypeForScamType picks the victim archetype most credible for a scam
// scheme. Banking and authority scams target less tech-savvy victims.
func ArchetypeForScamType(scamType detection.ScamType) Archetype {
	switch scamType {
	case detection.ScamTypeBankFraud, detection.ScamTypeGovernmentImpersonation, detection.ScamTypeAuthorityScam:
		return ArchetypeElderlyRetired
	case detection.ScamTypePhishingLink, detection.ScamTypeCredentialPhishing:
		return ArchetypeMiddleAgedBusiness
	case detection.ScamTypePaymentScam:
		return ArchetypeYoungProfessional
	default:
		return ArchetypeMiddleAgedBusiness
	}
}
