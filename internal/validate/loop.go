package validate

import (
	"context"
	"fmt"

	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/logging"
	"github.com/joss/testsmith/internal/maven"
)

// MaxAttempts is the retry budget. The attempt counter is the loop's
// sole progress guarantee: it terminates after at most this many
// persist-compile-execute cycles regardless of failure kind.
const MaxAttempts = 3

// CompileRunner is the external build collaborator, scoped to a single
// test class per call.
type CompileRunner interface {
	CompileTest(ctx context.Context, testClass string) maven.Result
	RunTest(ctx context.Context, testClass string) maven.Result
}

// Persister writes a candidate to its conventional location and returns
// the written path.
type Persister interface {
	Write(target domain.TestTarget, code string, integration bool) (string, error)
}

// RepairRequest carries everything the external generator needs to
// produce a replacement candidate.
type RepairRequest struct {
	Code      string
	Failure   domain.FailureRecord
	RawOutput string
}

// Repairer is the external generation collaborator. The loop does not
// check that the replacement differs from the original: an unchanged
// candidate simply re-fails and spends another attempt.
type Repairer interface {
	Repair(ctx context.Context, req RepairRequest) (string, error)
}

// Result is the externally visible outcome of a loop run. Code always
// holds the last candidate, validated or not, so callers never lose the
// best-available text on exhaustion.
type Result struct {
	Code     string
	Success  bool
	Attempts []domain.ValidationAttempt
}

// AttemptCount returns how many attempts were consumed.
func (r *Result) AttemptCount() int {
	return len(r.Attempts)
}

// LastFailure returns the most recent failure, nil when none.
func (r *Result) LastFailure() *domain.FailureRecord {
	for i := len(r.Attempts) - 1; i >= 0; i-- {
		if r.Attempts[i].Failure != nil {
			return r.Attempts[i].Failure
		}
	}
	return nil
}

// Loop validates a candidate test through persist, compile, and execute
// phases, requesting repairs between failed attempts.
type Loop struct {
	build    CompileRunner
	persist  Persister
	repairer Repairer
	recovery *logging.RecoveryHandler
	log      *logging.Logger
}

// NewLoop wires a validation loop from its collaborators.
func NewLoop(build CompileRunner, persist Persister, repairer Repairer) *Loop {
	return &Loop{
		build:    build,
		persist:  persist,
		repairer: repairer,
		recovery: logging.NewRecoveryHandler("validate"),
		log:      logging.New("validate"),
	}
}

// Run executes the bounded validate-and-fix state machine. Exactly one
// compile-or-run failure is resolved per iteration. A persistence
// failure is fatal with no retry; every other failure consumes one
// attempt and, while budget remains, triggers a repair request.
func (l *Loop) Run(ctx context.Context, code string, target domain.TestTarget, integration bool) *Result {
	result := &Result{Code: code}
	testClass := target.TestClass(integration)
	log := l.log.WithTarget(target.Class)

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		log.Info("attempt_started", map[string]any{"attempt": attempt, "max": MaxAttempts})

		failure, raw := l.runAttempt(ctx, result, target, integration, testClass)
		if failure == nil {
			result.Success = true
			result.Attempts = append(result.Attempts, domain.ValidationAttempt{
				Index:   attempt,
				Phase:   domain.PhaseExecute,
				Success: true,
			})
			log.Info("validated", map[string]any{"attempts": attempt})
			return result
		}

		result.Attempts = append(result.Attempts, domain.ValidationAttempt{
			Index:   attempt,
			Phase:   failure.Phase,
			Failure: failure,
		})

		if failure.Kind == domain.FailPersistence {
			// Environment error, not a content error: retrying the same
			// write cannot help.
			log.Error("persist_failed", nil, fmt.Errorf("%s", failure.Message))
			return result
		}

		if attempt == MaxAttempts {
			break
		}

		repaired, err := l.repairer.Repair(ctx, RepairRequest{
			Code:      result.Code,
			Failure:   *failure,
			RawOutput: raw,
		})
		if err != nil {
			// A failed repair keeps the current candidate; the next
			// attempt re-fails and spends the budget honestly.
			log.Warn("repair_failed", map[string]any{"attempt": attempt}, err)
			continue
		}
		result.Code = CleanCode(repaired)
	}

	log.Warn("retries_exhausted", map[string]any{"attempts": MaxAttempts}, nil)
	return result
}

// runAttempt performs one persist-compile-execute cycle. It returns nil
// on success, otherwise the classified failure plus the raw output that
// produced it. Panics in any phase classify as internal failures.
func (l *Loop) runAttempt(ctx context.Context, result *Result, target domain.TestTarget, integration bool, testClass string) (*domain.FailureRecord, string) {
	var failure *domain.FailureRecord
	var raw string

	err := l.recovery.WrapError(func() error {
		if _, err := l.persist.Write(target, result.Code, integration); err != nil {
			failure = &domain.FailureRecord{
				Phase:   domain.PhasePersist,
				Kind:    domain.FailPersistence,
				Message: truncate(err.Error(), messageExcerptLimit),
			}
			return nil
		}

		if compile := l.build.CompileTest(ctx, testClass); !compile.OK() {
			failure = classifyPhase(compile, domain.PhaseCompile)
			raw = compile.Output
			return nil
		}

		if run := l.build.RunTest(ctx, testClass); !run.OK() {
			failure = classifyPhase(run, domain.PhaseExecute)
			raw = run.Output
			return nil
		}

		return nil
	})
	if err != nil {
		failure = &domain.FailureRecord{
			Phase:   domain.PhaseInternal,
			Kind:    domain.FailInternal,
			Message: truncate(err.Error(), messageExcerptLimit),
		}
	}

	return failure, raw
}

// classifyPhase turns a Maven result into a failure record. Timeouts
// get the harshest classification and no partial credit.
func classifyPhase(res maven.Result, phase domain.FailurePhase) *domain.FailureRecord {
	if res.TimedOut {
		return &domain.FailureRecord{
			Phase:   domain.PhaseTimeout,
			Kind:    domain.FailTimeout,
			Message: string(phase) + " timed out",
		}
	}

	rec := Classify(res.Output)
	rec.Phase = phase
	if phase == domain.PhaseCompile && rec.Kind == domain.FailUncategorized {
		rec.Kind = domain.FailCompilation
	}
	return &rec
}
