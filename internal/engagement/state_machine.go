package engagement

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/intel"
)

// State names a phase of the engagement flow. Conversations walk from
// first contact toward a graceful exit while drawing out as much
// intelligence as possible.
type State string

const (
	StateInitial           State = "initial"
	StateConfusion         State = "confusion"
	StateBuildingTrust     State = "building_trust"
	StateFeignedCompliance State = "feigned_compliance"
	StateDelayTactics      State = "delay_tactics"
	StateConclusion        State = "conclusion"
)

// progression bounds how long a conversation lingers in one state and
// where it may go next. An empty next set marks a terminal state.
type progression struct {
	next     []State
	minTurns int
	maxTurns int
}

var stateProgression = map[State]progression{
	StateInitial:           {next: []State{StateConfusion}, minTurns: 1, maxTurns: 2},
	StateConfusion:         {next: []State{StateBuildingTrust, StateConfusion}, minTurns: 2, maxTurns: 4},
	StateBuildingTrust:     {next: []State{StateFeignedCompliance}, minTurns: 2, maxTurns: 5},
	StateFeignedCompliance: {next: []State{StateDelayTactics, StateFeignedCompliance}, minTurns: 2, maxTurns: 6},
	StateDelayTactics:      {next: []State{StateConclusion, StateDelayTactics}, minTurns: 2, maxTurns: 5},
	StateConclusion:        {next: nil, minTurns: 1, maxTurns: 2},
}

// Strategy describes how the persona should behave while a state is
// active. Example responses double as canned fallbacks when generation
// is unavailable.
type Strategy struct {
	Goal             string
	Tactics          []string
	ExampleResponses []string
}

var stateStrategies = map[State]Strategy{
	StateInitial: {
		Goal: "Express surprise and mild concern",
		Tactics: []string{
			"Ask who is calling",
			"Express confusion about the issue",
			"Ask for clarification",
		},
		ExampleResponses: []string{
			"Kaun bol raha hai? Mujhe samajh nahi aaya...",
			"Kya baat hai? Mera account mein koi problem hai?",
			"Aap kaun hai? Ye konsi company se bol rahe hai?",
		},
	},
	StateConfusion: {
		Goal: "Extract scammer's claims and build narrative",
		Tactics: []string{
			"Ask scammer to repeat and explain slowly",
			"Express technical confusion",
			"Ask for official verification",
		},
		ExampleResponses: []string{
			"Mujhe samajh nahi aa raha, thoda dhire boliye na",
			"Ye OTP kya hota hai? Mujhe nahi pata ye sab",
			"Aap sach mein bank se bol rahe ho? Kaise yakeen karun?",
		},
	},
	StateBuildingTrust: {
		Goal: "Make scammer believe persona is complying",
		Tactics: []string{
			"Express willingness to help resolve issue",
			"Share minor fake details",
			"Ask for more specific instructions",
		},
		ExampleResponses: []string{
			"Haan haan, main madad karungi, bataiye kya karna hai",
			"Mera phone number hai 98xxxxxxxx, ab kya karun?",
			"Theek hai, main app download karti hoon, phir?",
		},
	},
	StateFeignedCompliance: {
		Goal: "Pretend to follow instructions while extracting info",
		Tactics: []string{
			"Claim to be doing what scammer asks without doing it",
			"Report fake errors and issues",
			"Ask for alternative methods to get more intel",
		},
		ExampleResponses: []string{
			"Maine link click kiya par error aa raha hai...",
			"OTP aaya hai par galat type ho gaya, dobara bhejo",
			"Ye app install nahi ho raha, koi aur tarika hai?",
		},
	},
	StateDelayTactics: {
		Goal: "Stall and extract maximum intelligence",
		Tactics: []string{
			"Create fake technical issues",
			"Claim network problems",
			"Say need to get help from family member",
			"Ask scammer for their contact details",
		},
		ExampleResponses: []string{
			"Network bahut slow hai, thodi der mein try karti hoon",
			"Mera beta aayega, usse poochhti hoon ye sab",
			"Aapka WhatsApp number dedo, kal baat karte hain",
			"Ye payment fail ho gaya, aapka UPI ID do",
		},
	},
	StateConclusion: {
		Goal: "Gracefully end without alerting scammer",
		Tactics: []string{
			"Claim battery or phone dying",
			"Say someone came to the door",
			"Claim will call back later",
		},
		ExampleResponses: []string{
			"Battery khatam ho rahi hai, baad mein baat karte hain",
			"Koi aaya hai, main phir call karti hoon",
			"Mujhe doctor ke paas jaana hai, kal baat karein",
		},
	},
}

// Transition records one state change for the session history.
type Transition struct {
	From      State     `json:"from_state"`
	To        State     `json:"to_state"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is a point-in-time snapshot of a machine.
type Summary struct {
	SessionID         string    `json:"session_id"`
	TotalTurns        int       `json:"total_turns"`
	CurrentState      State     `json:"current_state"`
	StatesVisited     []State   `json:"states_visited"`
	IntelligenceCount int       `json:"intelligence_count"`
	CreatedAt         time.Time `json:"created_at"`
	IsComplete        bool      `json:"is_complete"`
}

// Machine drives the engagement lifecycle for one session. It is not
// safe for concurrent use; callers serialize access per session.
type Machine struct {
	sessionID    string
	current      State
	turnCount    int
	turnsInState int
	maxTurns     int
	history      []Transition
	items        []intel.Item
	createdAt    time.Time
	rng          *rand.Rand
}

// NewMachine starts a machine in the initial state. maxTurns bounds the
// whole conversation; values below 1 fall back to 20. A nil rng gets a
// time-seeded source.
func NewMachine(sessionID string, maxTurns int, rng *rand.Rand) *Machine {
	if maxTurns < 1 {
		maxTurns = 20
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Machine{
		sessionID: sessionID,
		current:   StateInitial,
		maxTurns:  maxTurns,
		createdAt: time.Now().UTC(),
		rng:       rng,
	}
}

// CurrentState returns the active state.
func (m *Machine) CurrentState() State { return m.current }

// TurnCount returns the total turns recorded so far.
func (m *Machine) TurnCount() int { return m.turnCount }

// MaxTurns returns the configured conversation cap.
func (m *Machine) MaxTurns() int { return m.maxTurns }

// Items returns the intelligence accumulated across all turns.
func (m *Machine) Items() []intel.Item { return m.items }

// CurrentStrategy returns the behavioral strategy for the active state.
func (m *Machine) CurrentStrategy() Strategy { return stateStrategies[m.current] }

// StrategyFor returns the strategy for an arbitrary state.
func StrategyFor(state State) Strategy { return stateStrategies[state] }

// RecordTurn registers one scammer/agent exchange, stores any extracted
// intelligence, and advances the state when the progression rules say
// to.
func (m *Machine) RecordTurn(items []intel.Item) {
	m.turnCount++
	m.turnsInState++
	if len(items) > 0 {
		m.items = append(m.items, items...)
	}
	if m.shouldTransition() {
		m.transition()
	}
}

func (m *Machine) shouldTransition() bool {
	p := stateProgression[m.current]

	if m.turnsInState < p.minTurns {
		return false
	}
	if m.turnsInState >= p.maxTurns {
		return true
	}
	// Wind down before hitting the hard cap so the conclusion state
	// still gets a turn or two.
	if m.turnCount >= m.maxTurns-2 {
		return true
	}
	return m.rng.Float64() < transitionProbability(m.turnsInState, p.minTurns, p.maxTurns)
}

// transitionProbability ramps linearly from 0 at minTurns to 1 at
// maxTurns.
func transitionProbability(turnsInState, minTurns, maxTurns int) float64 {
	if maxTurns <= minTurns {
		return 1
	}
	return float64(turnsInState-minTurns) / float64(maxTurns-minTurns)
}

func (m *Machine) transition() {
	p := stateProgression[m.current]
	if len(p.next) == 0 {
		// Terminal state, nowhere to go.
		return
	}

	from := m.current
	if m.turnCount >= m.maxTurns {
		m.current = StateConclusion
	} else {
		m.current = p.next[m.rng.Intn(len(p.next))]
	}
	m.turnsInState = 0
	m.history = append(m.history, Transition{
		From:      from,
		To:        m.current,
		Turn:      m.turnCount,
		Timestamp: time.Now().UTC(),
	})
}

// IsComplete reports whether the conversation has run its course. It is
// a pure read and stays true once true.
func (m *Machine) IsComplete() bool {
	if m.current == StateConclusion && m.turnsInState >= 1 {
		return true
	}
	return m.turnCount >= m.maxTurns
}

// Snapshot builds a summary of the session so far.
func (m *Machine) Snapshot() Summary {
	visited := make([]State, 0, len(m.history))
	for _, t := range m.history {
		visited = append(visited, t.From)
	}
	return Summary{
		SessionID:         m.sessionID,
		TotalTurns:        m.turnCount,
		CurrentState:      m.current,
		StatesVisited:     visited,
		IntelligenceCount: len(m.items),
		CreatedAt:         m.createdAt,
		IsComplete:        m.IsComplete(),
	}
}

// PromptContext renders the current state and strategy as prompt text
// for the response generator.
func (m *Machine) PromptContext() string {
	s := m.CurrentStrategy()

	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT CONVERSATION STATE: %s\n", m.current)
	fmt.Fprintf(&b, "Turn: %d / %d\n\n", m.turnCount, m.maxTurns)
	fmt.Fprintf(&b, "GOAL: %s\n\n", s.Goal)
	b.WriteString("TACTICS TO USE:\n")
	for _, t := range s.Tactics {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString("\nEXAMPLE RESPONSES:\n")
	for _, r := range s.ExampleResponses {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	fmt.Fprintf(&b, "\nINTELLIGENCE COLLECTED SO FAR: %d items", len(m.items))
	return b.String()
}
