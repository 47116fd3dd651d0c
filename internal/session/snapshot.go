package session

import (
	"time"

	"github.com/park285/darkchess/internal/domain"
)

// Snapshot is a read-only copy of the controller state for renderers.
// Nothing in it aliases controller memory.
type Snapshot struct {
	SessionID      string
	Phase          Phase
	Position       domain.Position
	SideToMove     domain.Side
	Selected       domain.Square
	HasSelection   bool
	Targets        []domain.Square
	Timed          bool
	WhiteRemaining time.Duration
	BlackRemaining time.Duration
	History        []HistoryEntry
	Terminal       *TerminalReason
}

// Remaining returns the clock value shown for side.
func (s Snapshot) Remaining(side domain.Side) time.Duration {
	if side == domain.Black {
		return s.BlackRemaining
	}
	return s.WhiteRemaining
}

// IsTarget reports whether sq is a legal destination of the current selection.
func (s Snapshot) IsTarget(sq domain.Square) bool {
	for _, t := range s.Targets {
		if t == sq {
			return true
		}
	}
	return false
}

// Snapshot captures the current state with live clock values.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{SessionID: c.id, Phase: c.Phase()}
	if !c.started {
		return snap
	}
	now := c.now()
	sel := c.sel.clone()
	snap.Position = c.pos
	snap.SideToMove = c.oracle.SideToMove(c.pos)
	snap.Selected, snap.HasSelection = sel.From()
	snap.Targets = sel.Targets()
	snap.Timed = c.clock.Timed()
	snap.WhiteRemaining = c.clock.Remaining(domain.White, now)
	snap.BlackRemaining = c.clock.Remaining(domain.Black, now)
	snap.History = c.history.Entries()
	if c.terminal != nil {
		r := *c.terminal
		snap.Terminal = &r
	}
	return snap
}
