package persona

import (
	"fmt"
	"math/rand"
	"time"
)

// timeOfDay is minutes since midnight.
type timeOfDay int

func at(hour, minute int) timeOfDay {
	return timeOfDay(hour*60 + minute)
}

func clock(t time.Time) timeOfDay {
	return at(t.Hour(), t.Minute())
}

func (t timeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// window is an intra-day time range. Start and End are on the same day.
type window struct {
	start, end timeOfDay
}

func (w window) contains(t timeOfDay) bool {
	return t >= w.start && t <= w.end
}

// profile holds the daily routine of one archetype.
type profile struct {
	wake, sleep        timeOfDay
	lunch              *window
	busy               []window
	responseMultiplier float64
	readingSecPerChar  float64
}

var profiles = map[Archetype]profile{
	ArchetypeElderlyRetired: {
		wake:  at(5, 30),
		sleep: at(21, 30),
		lunch: &window{at(12, 0), at(13, 0)},
		// Evening prayer hour counts as a busy window.
		busy:               []window{{at(18, 0), at(19, 0)}},
		responseMultiplier: 1.5,
		readingSecPerChar:  0.2,
	},
	ArchetypeMiddleAgedBusiness: {
		wake:               at(6, 30),
		sleep:              at(23, 0),
		lunch:              &window{at(13, 0), at(14, 0)},
		busy:               []window{{at(10, 0), at(12, 0)}, {at(15, 0), at(18, 0)}},
		responseMultiplier: 1.0,
		readingSecPerChar:  0.1,
	},
	ArchetypeYoungProfessional: {
		wake:               at(7, 30),
		sleep:              at(0, 30), // night owl, sleeps past midnight
		lunch:              &window{at(13, 0), at(14, 0)},
		busy:               []window{{at(10, 0), at(11, 0)}, {at(14, 0), at(15, 0)}},
		responseMultiplier: 0.7,
		readingSecPerChar:  0.05,
	},
}

// Probabilities for the human-imperfection behaviors. Availability and break
// decisions are non-deterministic across calls by design.
const (
	lunchSlowdownChance   = 0.5
	busyUnavailableChance = 0.3
	distractionChance     = 0.15
	earlyBreakChance      = 0.10
	lateBreakChance       = 0.20
	earlyBreakTurnCount   = 5
	lateBreakTurnCount    = 10
	minimumDelay          = 2 * time.Second
)

var earlyBreakExcuses = []string{
	"Ek minute, chai bana rahi hoon",
	"Wait, door pe koi aaya hai",
	"Phone pe dusra call aa raha hai",
	"Abhi busy hoon, thodi der mein reply karti hoon",
}

var lateBreakExcuses = []string{
	"Mujhe bahar jaana hai, baad mein baat karte hain",
	"Khana banana hai, thodi der mein milte hain",
	"Koi aa gaya ghar pe, message baad mein",
}

// Model decides when a persona appears awake and how long its replies
// should be delayed to read as human. All randomness flows through the
// injected source so tests can supply deterministic sequences.
type Model struct {
	archetype Archetype
	profile   profile
	rng       *rand.Rand

	minDelay time.Duration
	maxDelay time.Duration
}

// NewModel builds a temporal model for the archetype. Unknown archetypes
// fall back to the middle-aged business profile. A nil rng gets a
// time-seeded source.
func NewModel(archetype Archetype, minDelay, maxDelay time.Duration, rng *rand.Rand) *Model {
	p, ok := profiles[archetype]
	if !ok {
		archetype = ArchetypeMiddleAgedBusiness
		p = profiles[archetype]
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if minDelay <= 0 {
		minDelay = 10 * time.Second
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Model{
		archetype: archetype,
		profile:   p,
		rng:       rng,
		minDelay:  minDelay,
		maxDelay:  maxDelay,
	}
}

// Archetype returns the effective archetype after fallback.
func (m *Model) Archetype() Archetype { return m.archetype }

// Availability reports whether the persona would respond at the given
// moment, with a human-readable reason. Sleep windows wrap midnight for
// night-owl profiles.
func (m *Model) Availability(now time.Time) (bool, string) {
	t := clock(now)
	wake, sleep := m.profile.wake, m.profile.sleep

	var sleeping bool
	if sleep > wake {
		sleeping = t < wake || t >= sleep
	} else {
		// Sleep time past midnight: asleep between sleep and wake only.
		sleeping = t >= sleep && t < wake
	}
	if sleeping {
		return false, fmt.Sprintf("persona is sleeping (sleep %s, wake %s)", sleep, wake)
	}

	if m.profile.lunch != nil && m.profile.lunch.contains(t) {
		if m.rng.Float64() < lunchSlowdownChance {
			return true, "during lunch break, may respond slowly"
		}
	}

	for _, w := range m.profile.busy {
		if w.contains(t) {
			if m.rng.Float64() < busyUnavailableChance {
				return false, fmt.Sprintf("busy between %s and %s", w.start, w.end)
			}
		}
	}

	return true, "available"
}

// ResponseDelay computes a human-plausible delay before replying to a
// message of the given length. The result never goes below the floor.
func (m *Model) ResponseDelay(messageLength int) time.Duration {
	if messageLength < 0 {
		messageLength = 0
	}

	base := m.uniformSeconds(m.minDelay.Seconds(), m.maxDelay.Seconds())
	reading := float64(messageLength) * m.profile.readingSecPerChar
	delay := (base + reading) * m.profile.responseMultiplier

	if m.rng.Float64() < distractionChance {
		delay += m.uniformSeconds(60, 300)
	}

	// Typing time for a short reply.
	delay += m.uniformSeconds(10, 45)

	d := time.Duration(delay * float64(time.Second))
	if d < minimumDelay {
		d = minimumDelay
	}
	return d
}

// ShouldTakeBreak decides whether the persona spontaneously walks away
// mid-conversation, returning the excuse to send. Break likelihood rises
// with cumulative turn count.
func (m *Model) ShouldTakeBreak(turns int) (bool, string) {
	if turns >= earlyBreakTurnCount && m.rng.Float64() < earlyBreakChance {
		return true, earlyBreakExcuses[m.rng.Intn(len(earlyBreakExcuses))]
	}
	if turns >= lateBreakTurnCount && m.rng.Float64() < lateBreakChance {
		return true, lateBreakExcuses[m.rng.Intn(len(lateBreakExcuses))]
	}
	return false, ""
}

// Greeting returns a salutation appropriate for the time of day.
func (m *Model) Greeting(now time.Time) string {
	var options []string
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		options = []string{"Namaste", "Good morning", "Suprabhat"}
	case hour >= 12 && hour < 17:
		options = []string{"Namaskar", "Hello", "Ji"}
	case hour >= 17 && hour < 21:
		options = []string{"Shubh sandhya", "Good evening", "Namaskar"}
	default:
		options = []string{"Ji", "Hello", "Haan"}
	}
	return options[m.rng.Intn(len(options))]
}

func (m *Model) uniformSeconds(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + m.rng.Float64()*(hi-lo)
}
