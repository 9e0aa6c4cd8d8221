package game

// Phase is the current stage of a round.
type Phase string

const (
	PhaseStart     Phase = "start"
	PhaseCountdown Phase = "countdown"
	PhaseDrinking  Phase = "drinking"
	PhaseResult    Phase = "result"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid.
// Result -> Countdown is the only backward edge (restart).
func (p Phase) CanTransitionTo(target Phase) bool {
	switch p {
	case PhaseStart:
		return target == PhaseCountdown
	case PhaseCountdown:
		return target == PhaseDrinking
	case PhaseDrinking:
		return target == PhaseResult
	case PhaseResult:
		return target == PhaseCountdown
	default:
		return false
	}
}

// Result is the outcome of a round.
type Result string

const (
	ResultUnset Result = ""
	ResultWin   Result = "win"
	ResultLose  Result = "lose"
)

func (r Result) String() string {
	if r == ResultUnset {
		return "unset"
	}
	return string(r)
}
