package rules

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a phase change is not in the transition table.
var ErrIllegalTransition = errors.New("illegal phase transition")

// Phase is the current stage of the turn state machine.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseDraw
	PhaseRedraw
	PhaseAttack
	PhaseEnd
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseDealing:  "dealing",
	PhaseDraw:     "draw",
	PhaseRedraw:   "redraw",
	PhaseAttack:   "attack",
	PhaseEnd:      "end",
	PhaseGameOver: "gameOver",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// transitions lists the phases reachable from each phase.
var transitions = map[Phase][]Phase{
	PhaseDealing:  {PhaseDraw, PhaseGameOver},
	PhaseDraw:     {PhaseAttack, PhaseRedraw, PhaseEnd, PhaseGameOver},
	PhaseRedraw:   {PhaseDraw, PhaseAttack, PhaseEnd},
	PhaseAttack:   {PhaseDraw, PhaseEnd},
	PhaseEnd:      {PhaseDealing, PhaseGameOver},
	PhaseGameOver: {},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TurnManager tracks the phase, the attacking side and the turn number.
type TurnManager struct {
	phase      Phase
	attacker   Side
	turnNumber int
	// seq increases on every phase change so delayed actions can detect staleness.
	seq uint64
}

// NewTurnManager starts in the dealing phase on turn 1.
func NewTurnManager(attacker Side) *TurnManager {
	return &TurnManager{
		phase:      PhaseDealing,
		attacker:   attacker,
		turnNumber: 1,
	}
}

// Phase returns the current phase.
func (tm *TurnManager) Phase() Phase { return tm.phase }

// Attacker returns the side whose turn it is.
func (tm *TurnManager) Attacker() Side { return tm.attacker }

// Defender returns the side being attacked.
func (tm *TurnManager) Defender() Side { return tm.attacker.Opponent() }

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int { return tm.turnNumber }

// Seq returns the phase-change sequence number.
func (tm *TurnManager) Seq() uint64 { return tm.seq }

// IsOver reports whether the game reached its terminal phase.
func (tm *TurnManager) IsOver() bool { return tm.phase == PhaseGameOver }

// SetAttacker assigns the attacking side. Only allowed before play starts.
func (tm *TurnManager) SetAttacker(side Side) {
	tm.attacker = side
}

// Advance moves to the given phase if the transition table allows it.
func (tm *TurnManager) Advance(to Phase) error {
	if !CanTransition(tm.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, tm.phase, to)
	}
	tm.phase = to
	tm.seq++
	return nil
}

// EndTurn flips the attacker and increments the turn number.
// The phase is left as-is; the caller advances it.
func (tm *TurnManager) EndTurn() Side {
	tm.attacker = tm.attacker.Opponent()
	tm.turnNumber++
	return tm.attacker
}
