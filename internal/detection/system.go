package detection

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// Signal is one independent detection heuristic. Signals must be safe for
// concurrent use.
type Signal interface {
	Name() string
	Evaluate(ctx context.Context, text string) (Finding, error)
}

// Result bundles the fused verdict with the classified scam type and the
// findings that produced it.
type Result struct {
	Verdict  Verdict
	ScamType ScamType
	Findings []Finding
}

// System runs all registered signals against a message concurrently and
// fuses their findings through the consensus engine. A signal that fails is
// excluded from fusion rather than aborting the analysis.
type System struct {
	signals []Signal
	engine  *Engine
	logger  *logging.Logger
}

// NewSystem wires the detection signals to a consensus engine.
func NewSystem(engine *Engine, logger *logging.Logger, signals ...Signal) *System {
	if engine == nil {
		panic("detection: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &System{signals: signals, engine: engine, logger: logger}
}

// Analyze evaluates every signal in parallel, drops failed signals, and
// returns the consensus result. The scam type is only classified when the
// verdict flags a scam.
func (s *System) Analyze(ctx context.Context, text string) Result {
	findings := make([]Finding, len(s.signals))
	failed := make([]bool, len(s.signals))

	g, gctx := errgroup.WithContext(ctx)
	for i, sig := range s.signals {
		g.Go(func() error {
			f, err := s.evaluateSignal(gctx, sig, text)
			if err != nil {
				s.logger.Warn("detection signal failed", "signal", sig.Name(), "error", err)
				failed[i] = true
				return nil
			}
			findings[i] = f
			return nil
		})
	}
	_ = g.Wait() // signal errors never abort the group

	valid := make([]Finding, 0, len(findings))
	for i, f := range findings {
		if !failed[i] {
			valid = append(valid, f)
		}
	}

	verdict := s.engine.Aggregate(valid)
	result := Result{Verdict: verdict, Findings: valid}
	if verdict.ScamDetected {
		result.ScamType = s.engine.ClassifyScamType(verdict.Indicators, valid)
	}
	return result
}

// evaluateSignal isolates a single signal, converting panics into errors so
// one misbehaving heuristic cannot take down the decision path.
func (s *System) evaluateSignal(ctx context.Context, sig Signal, text string) (f Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detection: signal %s panicked: %v", sig.Name(), r)
		}
	}()
	return sig.Evaluate(ctx, text)
}
