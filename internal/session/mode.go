package session

import (
	"strconv"
	"time"
)

// Config is fixed for the lifetime of a session.
type Config struct {
	Timed   bool
	Initial time.Duration
}

// Mode is the archive label of the configuration.
func (c Config) Mode() string {
	if c.Timed {
		return "timed"
	}
	return "casual"
}

// TimeControl is the PGN TimeControl value: base seconds, or "-" for untimed play.
func (c Config) TimeControl() string {
	if !c.Timed {
		return "-"
	}
	initial := c.Initial
	if initial <= 0 {
		initial = DefaultInitial
	}
	return strconv.Itoa(int(initial / time.Second))
}

// ModeChoice is the answer of the pre-session mode selector.
type ModeChoice int

const (
	ModeCasual ModeChoice = iota
	ModeTimed
	ModeAbort
)

func (m ModeChoice) String() string {
	switch m {
	case ModeCasual:
		return "Friendly PvP"
	case ModeTimed:
		return "Competitive PvP"
	default:
		return "Quit"
	}
}

// ModeChoices lists the selector options in display order.
func ModeChoices() []ModeChoice { return []ModeChoice{ModeCasual, ModeTimed, ModeAbort} }

// ConfigFor turns a selector answer into a session config. ok is false on abort.
func ConfigFor(choice ModeChoice, initial time.Duration) (Config, bool) {
	if initial <= 0 {
		initial = DefaultInitial
	}
	switch choice {
	case ModeCasual:
		return Config{Timed: false, Initial: initial}, true
	case ModeTimed:
		return Config{Timed: true, Initial: initial}, true
	}
	return Config{}, false
}
