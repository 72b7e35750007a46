package engine

import (
	"context"
	"time"
)

// Verdict is the outcome of one answer submission.
type Verdict string

const (
	// VerdictNone means nothing was evaluated: blank input, a double
	// submit while a correct transition is in flight, or a submission
	// outside the answering state.
	VerdictNone Verdict = "none"
	// VerdictTryAgain means the answer was evaluated and rejected.
	VerdictTryAgain Verdict = "try_again"
	// VerdictCorrect means the answer matched; the session advanced.
	VerdictCorrect Verdict = "correct"
)

// Outcome reports a submission result to the presentation layer.
type Outcome struct {
	Verdict Verdict
	// Hint is the follow-up text for a correct answer; blank when the
	// clue has none configured (the caller renders its default text).
	Hint string
	// RevealDelay tells the presentation how long the "Correct" feedback
	// was held before the hint took over.
	RevealDelay time.Duration
}

// Submit evaluates one answer while the session is answering. Exactly
// one non-empty submission produces a verdict; once a correct answer is
// in flight every further submission is a no-op.
func (e *Engine) Submit(ctx context.Context, s *Session, answer string) Outcome {
	s.mu.Lock()
	if s.state != StateAnswering || s.answered {
		s.mu.Unlock()
		return Outcome{Verdict: VerdictNone}
	}

	correct, evaluated := s.clue.CheckAnswer(answer)
	if !evaluated {
		// Blank input: re-prompt silently.
		s.mu.Unlock()
		return Outcome{Verdict: VerdictNone}
	}
	if !correct {
		s.mu.Unlock()
		return Outcome{Verdict: VerdictTryAgain}
	}

	// Lock the session before any durable write completes so a double
	// click or repeated Enter cannot advance twice.
	s.answered = true
	team := s.team.Name
	position := s.position
	hint := s.clue.HintText()
	s.mu.Unlock()

	// The durable write must not block the feedback, and must survive
	// the request context ending once the response is sent.
	go e.recordSolved(context.WithoutCancel(ctx), team, position)

	// Hold the "Correct" feedback briefly before revealing the hint.
	_ = e.sleep(ctx, e.revealDelay)

	s.mu.Lock()
	s.state = StateAdvancing
	s.mu.Unlock()

	return Outcome{
		Verdict:     VerdictCorrect,
		Hint:        hint,
		RevealDelay: e.revealDelay,
	}
}
