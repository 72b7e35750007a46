// Package engine drives the hunt progression state machine: identity
// resolution, gating against durable progress, answer evaluation, and
// optimistic advancement with a bounded write retry.
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
	"github.com/louisbranch/trailhunt/internal/platform/timeouts"
	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
)

const tracerName = "github.com/louisbranch/trailhunt/internal/services/hunt/engine"

// Config assembles an Engine.
type Config struct {
	Teams    storage.TeamStore
	Clues    storage.ClueStore
	Progress storage.ProgressStore
	Tracks   domain.Tracks

	// RevealDelay is how long the "Correct" feedback stays visible before
	// the follow-up hint takes over. Defaults to 600ms.
	RevealDelay time.Duration
	// RetryBackoff is the fixed delay before the single advance-write
	// retry. Defaults to 2s.
	RetryBackoff time.Duration

	// Sleep, Now, and Logf are injectable for tests. Defaults use the
	// wall clock and the standard logger.
	Sleep func(context.Context, time.Duration) error
	Now   func() time.Time
	Logf  func(format string, args ...any)

	// OnAdvanceResult observes every completed advance write, including
	// the error of a write that failed after its retry. The participant
	// flow never blocks on it.
	OnAdvanceResult func(teamName string, position int, err error)
}

// Engine orchestrates hunt sessions over the storage contracts.
type Engine struct {
	teams    storage.TeamStore
	clues    storage.ClueStore
	progress storage.ProgressStore
	tracks   domain.Tracks

	revealDelay  time.Duration
	retryBackoff time.Duration

	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
	logf      func(format string, args ...any)
	onAdvance func(teamName string, position int, err error)

	tracer trace.Tracer
}

// New creates an engine, applying defaults for unset config fields.
func New(cfg Config) *Engine {
	e := &Engine{
		teams:        cfg.Teams,
		clues:        cfg.Clues,
		progress:     cfg.Progress,
		tracks:       cfg.Tracks,
		revealDelay:  cfg.RevealDelay,
		retryBackoff: cfg.RetryBackoff,
		sleep:        cfg.Sleep,
		now:          cfg.Now,
		logf:         cfg.Logf,
		onAdvance:    cfg.OnAdvanceResult,
		tracer:       otel.Tracer(tracerName),
	}
	if e.revealDelay <= 0 {
		e.revealDelay = timeouts.RevealDelay
	}
	if e.retryBackoff <= 0 {
		e.retryBackoff = timeouts.AdvanceRetryBackoff
	}
	if e.sleep == nil {
		e.sleep = sleepContext
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logf == nil {
		e.logf = log.Printf
	}
	return e
}

// Tracks returns the engine's track table.
func (e *Engine) Tracks() domain.Tracks {
	return e.tracks
}

// Load runs one page entry: locator parsing, identity verification, and
// gating. teamName is the locally cached identity and may be blank.
// Load never returns an error; failures land the session in its terminal
// failed state so the caller can render them.
func (e *Engine) Load(ctx context.Context, locator string, teamName string) *Session {
	ctx, span := e.tracer.Start(ctx, "hunt.load")
	defer span.End()

	s := &Session{state: StateLoading}

	external, err := domain.ParseLocator(locator)
	if err != nil {
		return s.fail(err)
	}
	s.external = external
	span.SetAttributes(attribute.Int("hunt.external_position", external))

	if teamName == "" {
		s.state = StateRegistering
		return s
	}

	team, err := e.teams.TeamByName(ctx, teamName)
	if errors.Is(err, storage.ErrNotFound) {
		// The cached identity is stale (store reset or never durably
		// registered). Purge it and re-register rather than failing.
		s.state = StateRegistering
		s.staleIdentity = true
		return s
	}
	if err != nil {
		return s.fail(apperrors.Wrap(apperrors.CodeStorageUnavailable, "verify team", err))
	}

	s.team = team
	return e.gate(ctx, s)
}

// Register validates and durably registers a team, then gates the session
// for the locator that triggered registration. A concurrent registration
// of the same name adopts the stored team, including its sticky group.
func (e *Engine) Register(ctx context.Context, locator string, name string, group string) (*Session, error) {
	ctx, span := e.tracer.Start(ctx, "hunt.register")
	defer span.End()

	external, err := domain.ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	team, err := domain.NewTeam(name, group, e.tracks, e.now())
	if err != nil {
		return nil, err
	}

	stored, err := e.teams.RegisterTeam(ctx, team)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "register team", err)
	}
	span.SetAttributes(
		attribute.String("hunt.team", stored.Name),
		attribute.String("hunt.group", string(stored.Group)),
	)

	s := &Session{state: StateLoading, external: external, team: stored}
	return e.gate(ctx, s), nil
}

// gate resolves the allowed position and selects the session's view
// state. The question is only fetched after the gating read completed.
func (e *Engine) gate(ctx context.Context, s *Session) *Session {
	ctx, span := e.tracer.Start(ctx, "hunt.gate")
	defer span.End()

	position, err := e.tracks.Translate(s.team.Group, s.external)
	if err != nil {
		return s.fail(err)
	}
	s.position = position

	allowed, err := e.progress.CurrentAllowedPosition(ctx, s.team.Name)
	if err != nil {
		// Never fail open: a failed gating read blocks the question.
		return s.fail(apperrors.Wrap(apperrors.CodeStorageUnavailable, "read allowed position", err))
	}
	s.allowed = allowed

	decision := domain.Gate(position, allowed)
	span.SetAttributes(
		attribute.Int("hunt.position", position),
		attribute.Int("hunt.allowed", allowed),
		attribute.String("hunt.decision", string(decision)),
	)

	if decision == domain.DecisionBlocked {
		s.state = StateBlocked
		return s
	}

	clue, err := e.clues.ClueByPosition(ctx, s.team.Group, position)
	if errors.Is(err, storage.ErrNotFound) {
		return s.fail(apperrors.New(apperrors.CodeClueNotFound, "no clue at position"))
	}
	if err != nil {
		return s.fail(apperrors.Wrap(apperrors.CodeStorageUnavailable, "load clue", err))
	}
	s.clue = clue

	if decision == domain.DecisionReadOnly {
		s.state = StateReadOnlySolved
	} else {
		s.state = StateAnswering
	}
	return s
}

// recordSolved durably records a solve with one fixed-backoff retry. It
// runs detached from the request: the participant already saw "Correct"
// and a lost write must not undo that. A write lost despite the retry is
// surfaced to the log and the trace, and heals visibly on the next load.
func (e *Engine) recordSolved(ctx context.Context, teamName string, position int) {
	ctx, span := e.tracer.Start(ctx, "hunt.record_solved",
		trace.WithAttributes(
			attribute.String("hunt.team", teamName),
			attribute.Int("hunt.position", position),
		))
	defer span.End()

	err := e.progress.RecordSolved(ctx, teamName, position)
	if err != nil {
		if sleepErr := e.sleep(ctx, e.retryBackoff); sleepErr == nil {
			err = e.progress.RecordSolved(ctx, teamName, position)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "advance write lost")
		e.logf("record solved position %d for team %q failed after retry: %v", position, teamName, err)
	}
	if e.onAdvance != nil {
		e.onAdvance(teamName, position, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
