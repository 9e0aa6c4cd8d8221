package game

import (
	"math"
	"time"

	"github.com/andresmejia3/facepill/internal/types"
)

// Cue names an audio cue.
type Cue string

const (
	CueNone Cue = ""
	CueWin  Cue = "win"
	CueLose Cue = "lose"
)

// Session is the whole game state of one player session. It is a value:
// Advance takes one and returns the next.
type Session struct {
	Phase      Phase
	PhaseStart time.Time
	Round      int
	Result     Result
	Judgment   Judgment
	CueFired   bool
}

// Input is the external input observed since the previous tick.
type Input struct {
	// Press is the start button in Start and the restart click in Result.
	// It is ignored in the other phases.
	Press bool
}

// Plan is what the renderer and the effect layer need for one tick.
type Plan struct {
	Phase   Phase
	Round   int
	Elapsed time.Duration
	Entered bool // the phase was entered on this tick

	CountdownDigit   int // 3, 2, 1, then 0 for GO
	Remaining        time.Duration
	RemainingSeconds int
	Progress         float64

	Result Result
	Label  string
	Flavor string
	Prompt string

	// One-shot effects. Set only on the tick that produced them.
	Cue           Cue
	Celebrate     bool
	ClearSnapshot bool
	Judged        *Judgment
}

// NewSession returns a session waiting for the start press.
func NewSession(now time.Time) Session {
	return Session{Phase: PhaseStart, PhaseStart: now}
}

// Elapsed returns the time spent in the current phase, never negative.
func (s Session) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.PhaseStart)
	if d < 0 {
		return 0
	}
	return d
}

// Advance runs one tick of the state machine. At most one transition happens
// per call and the new phase's clock starts at now. The snapshot is only read
// on the Drinking -> Result edge.
func Advance(s Session, now time.Time, in Input, snap *types.Snapshot) (Session, Plan) {
	var fx Plan

	switch s.Phase {
	case PhaseStart:
		if in.Press {
			s = s.enterCountdown(now)
			fx.Entered = true
		}
	case PhaseCountdown:
		if s.Elapsed(now) >= CountdownDuration {
			s = s.enter(PhaseDrinking, now)
			fx.Entered = true
		}
	case PhaseDrinking:
		if s.Elapsed(now) >= DrinkingDuration {
			j := Judge(snap)
			s.Result = j.Result
			s.Judgment = j
			s = s.enter(PhaseResult, now)
			fx.Entered = true
			fx.Judged = &j
			if !s.CueFired {
				fx.Cue = cueFor(j.Result)
				fx.Celebrate = j.Result == ResultWin
				s.CueFired = true
			}
		}
	case PhaseResult:
		if in.Press {
			s = s.enterCountdown(now)
			fx.Entered = true
			fx.ClearSnapshot = true
		}
	default:
		s = NewSession(now)
		fx.Entered = true
	}

	plan := s.plan(now)
	plan.Entered = fx.Entered
	plan.Cue = fx.Cue
	plan.Celebrate = fx.Celebrate
	plan.ClearSnapshot = fx.ClearSnapshot
	plan.Judged = fx.Judged
	return s, plan
}

func (s Session) enter(p Phase, now time.Time) Session {
	s.Phase = p
	s.PhaseStart = now
	return s
}

// enterCountdown starts a fresh round.
func (s Session) enterCountdown(now time.Time) Session {
	s = s.enter(PhaseCountdown, now)
	s.Round++
	s.Result = ResultUnset
	s.Judgment = Judgment{}
	s.CueFired = false
	return s
}

func (s Session) plan(now time.Time) Plan {
	elapsed := s.Elapsed(now)
	p := Plan{
		Phase:   s.Phase,
		Round:   s.Round,
		Elapsed: elapsed,
		Result:  s.Result,
	}

	switch s.Phase {
	case PhaseStart:
		p.Label = TitleText
		p.Flavor = IntroText
		p.Prompt = StartHintText
	case PhaseCountdown:
		p.CountdownDigit = CountdownValue(elapsed)
		if p.CountdownDigit > 0 {
			p.Prompt = CountdownPrompt
		} else {
			p.Label = GoText
			p.Prompt = GoPrompt
		}
	case PhaseDrinking:
		p.Remaining = DrinkingRemaining(elapsed)
		p.RemainingSeconds = int(math.Ceil(p.Remaining.Seconds()))
		p.Progress = DrinkingProgress(elapsed)
		p.Label = DrinkingText
		p.Prompt = DrinkingPrompt
	case PhaseResult:
		if s.Result == ResultWin {
			p.Label, p.Flavor = WinLabel, WinFlavor
		} else {
			p.Label, p.Flavor = LoseLabel, LoseFlavor
		}
		p.Prompt = RestartHintText
	}
	return p
}

// CountdownValue maps countdown elapsed time to the displayed digit:
// 3, 2, 1 for each second, then 0 ("GO") for the last second.
func CountdownValue(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	v := 3 - int(elapsed/CountdownStep)
	if v < 0 {
		return 0
	}
	return v
}

// DrinkingRemaining returns the time left in the drinking window, clamped at 0.
func DrinkingRemaining(elapsed time.Duration) time.Duration {
	r := DrinkingDuration - elapsed
	if r < 0 {
		return 0
	}
	return r
}

// DrinkingProgress returns elapsed/DrinkingDuration clamped to [0,1].
func DrinkingProgress(elapsed time.Duration) float64 {
	f := float64(elapsed) / float64(DrinkingDuration)
	return math.Max(0, math.Min(1, f))
}

func cueFor(r Result) Cue {
	if r == ResultWin {
		return CueWin
	}
	return CueLose
}
