// Package runner drives the game at a fixed tick rate and performs the
// effects each tick asks for.
package runner

import (
	"context"
	"math/rand"
	"time"

	"github.com/andresmejia3/facepill/internal/audio"
	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/game"
	"github.com/andresmejia3/facepill/internal/input"
	"github.com/andresmejia3/facepill/internal/render"
	"github.com/andresmejia3/facepill/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const pendingRounds = 16

// RoundRecorder persists judged rounds.
type RoundRecorder interface {
	InsertRound(ctx context.Context, r store.Round) (string, error)
}

// Config holds the tick cadence and the celebration canvas.
type Config struct {
	TickRate int
	Width    float64
	Height   float64
	Clock    func() time.Time
}

// Deps are the collaborators a Runner talks to. Recorder and Manual may be nil.
type Deps struct {
	Holder   *detect.Holder
	Player   audio.Player
	Renderer render.Renderer
	Recorder RoundRecorder
	Manual   func(ctx context.Context) bool
	Log      *logrus.Logger
}

// Runner owns the Session. Only the tick goroutine touches it.
type Runner struct {
	cfg  Config
	deps Deps

	SessionID   uuid.UUID
	session     game.Session
	celebration game.Celebration
	rng         *rand.Rand
	rounds      chan store.Round
}

// New returns a runner whose session starts in the Start phase.
func New(cfg Config, deps Deps) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if deps.Player == nil {
		deps.Player = audio.Silent{}
	}
	r := &Runner{
		cfg:       cfg,
		deps:      deps,
		SessionID: uuid.New(),
		session:   game.NewSession(cfg.Clock()),
		rng:       rand.New(rand.NewSource(cfg.Clock().UnixNano())),
	}
	if deps.Recorder != nil {
		r.rounds = make(chan store.Round, pendingRounds)
	}
	return r
}

// Session returns the current game state.
func (r *Runner) Session() game.Session { return r.session }

// Celebration returns the running win animation, if any.
func (r *Runner) Celebration() game.Celebration { return r.celebration }

// Run ticks until ctx is done or a Quit event arrives. Quit returns nil.
func (r *Runner) Run(ctx context.Context, events <-chan input.Event) error {
	g, gctx := errgroup.WithContext(ctx)

	if r.rounds != nil {
		g.Go(func() error { return r.record(gctx) })
	}

	g.Go(func() error {
		if r.rounds != nil {
			defer close(r.rounds)
		}
		ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TickRate))
		defer ticker.Stop()

		r.deps.Log.WithField("session_id", r.SessionID).Info("session started")
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}

			in, manual, quit, open := drain(events)
			if !open {
				events = nil
			}
			if quit {
				r.deps.Log.WithField("session_id", r.SessionID).Info("quit requested")
				return nil
			}
			if manual {
				r.manualDetect(gctx)
			}
			r.Tick(gctx, r.cfg.Clock(), in)
		}
	})

	return g.Wait()
}

// drain collects every event queued since the last tick without blocking.
func drain(events <-chan input.Event) (in game.Input, manual, quit, open bool) {
	open = true
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return in, manual, quit, false
			}
			switch ev {
			case input.Press:
				in.Press = true
			case input.ManualDetect:
				manual = true
			case input.Quit:
				quit = true
			}
		default:
			return in, manual, quit, open
		}
	}
}

func (r *Runner) manualDetect(ctx context.Context) {
	if r.deps.Manual == nil || r.session.Phase == game.PhaseStart {
		return
	}
	go func() {
		if !r.deps.Manual(ctx) {
			r.deps.Log.Debug("manual detection throttled")
		}
	}()
}

// Tick advances the session once at now, applies the resulting effects and
// draws the plan.
func (r *Runner) Tick(ctx context.Context, now time.Time, in game.Input) game.Plan {
	prev := r.session.Phase
	next, plan := game.Advance(r.session, now, in, r.deps.Holder.Latest())
	r.session = next

	if plan.Entered {
		entry := r.deps.Log.WithFields(logrus.Fields{
			"session_id": r.SessionID,
			"round":      plan.Round,
			"from":       prev,
			"to":         plan.Phase,
		})
		if prev.CanTransitionTo(plan.Phase) {
			entry.Debug("phase changed")
		} else {
			entry.Warn("unexpected phase change")
		}
	}
	r.apply(ctx, now, plan)

	if r.celebration.Active(now) {
		r.celebration = game.StepCelebration(r.celebration, now, r.rng)
	} else {
		r.celebration = game.Celebration{}
	}

	if r.deps.Renderer != nil {
		if err := r.deps.Renderer.Draw(plan, r.celebration); err != nil {
			r.deps.Log.Warnf("render failed: %v", err)
		}
	}
	return plan
}

func (r *Runner) apply(ctx context.Context, now time.Time, plan game.Plan) {
	if plan.ClearSnapshot {
		r.deps.Holder.Clear()
		r.celebration = game.Celebration{}
	}

	if plan.Judged != nil {
		j := *plan.Judged
		r.deps.Log.WithFields(logrus.Fields{
			"session_id": r.SessionID,
			"round":      plan.Round,
			"result":     j.Result,
			"faces":      j.Faces,
			"openness":   j.Openness,
		}).Info("round judged")
		r.enqueue(plan.Round, j, now)
	}

	if plan.Cue != game.CueNone {
		if err := r.deps.Player.Play(ctx, string(plan.Cue)); err != nil {
			r.deps.Log.WithField("cue", plan.Cue).Warnf("audio cue failed: %v", err)
		}
	}

	if plan.Celebrate {
		r.celebration = game.NewCelebration(r.rng, now, r.cfg.Width, r.cfg.Height)
	}
}

func (r *Runner) enqueue(round int, j game.Judgment, now time.Time) {
	if r.rounds == nil {
		return
	}
	rec := store.Round{
		SessionID: r.SessionID,
		Round:     round,
		Result:    string(j.Result),
		Faces:     j.Faces,
		JudgedAt:  now,
	}
	if j.Openness >= 0 {
		d := j.Openness
		rec.Openness = &d
	}
	select {
	case r.rounds <- rec:
	default:
		r.deps.Log.WithField("round", round).Warn("round history backlog full, dropping record")
	}
}

// record writes queued rounds until the queue is closed. Writes are not tied
// to ctx so the last round still lands after a quit.
func (r *Runner) record(ctx context.Context) error {
	wctx := context.WithoutCancel(ctx)
	for rec := range r.rounds {
		c, cancel := context.WithTimeout(wctx, 5*time.Second)
		id, err := r.deps.Recorder.InsertRound(c, rec)
		cancel()
		if err != nil {
			r.deps.Log.WithField("round", rec.Round).Errorf("failed to save round: %v", err)
			continue
		}
		r.deps.Log.WithFields(logrus.Fields{"id": id, "round": rec.Round}).Debug("round saved")
	}
	return nil
}
