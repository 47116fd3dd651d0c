package session

import (
	"fmt"
	"time"

	"github.com/park285/darkchess/internal/domain"
)

// HistoryEntry is one applied move. Number is 1-based.
type HistoryEntry struct {
	Number  int
	Move    domain.Move
	Elapsed time.Duration
}

func (e HistoryEntry) Seconds() float64 { return e.Elapsed.Seconds() }

// Label is the side-panel form, e.g. "3. g1f3 (2.4s)".
func (e HistoryEntry) Label() string {
	return fmt.Sprintf("%d. %s (%.1fs)", e.Number, e.Move, e.Seconds())
}

// History is the append-only record of a session's moves.
type History struct {
	entries []HistoryEntry
}

func (h *History) Append(mv domain.Move, elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	h.entries = append(h.entries, HistoryEntry{Number: len(h.entries) + 1, Move: mv, Elapsed: elapsed})
}

// Entries returns a copy in play order.
func (h *History) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Moves() []domain.Move {
	out := make([]domain.Move, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Move
	}
	return out
}
