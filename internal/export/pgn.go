// Package export serializes finished sessions to PGN movetext and the plain-text move log.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Game carries everything BuildPGN needs. Moves are in play order, SAN or coordinate notation.
type Game struct {
	Event       string
	Site        string
	Round       string
	Date        time.Time
	White       string
	Black       string
	Result      string
	TimeControl string
	Termination string
	Moves       []string
}

// BuildPGN renders a single-game PGN with the Seven Tag Roster and numbered movetext.
func BuildPGN(g Game) string {
	var b strings.Builder
	date := g.Date
	if date.IsZero() {
		date = time.Now()
	}
	result := strings.TrimSpace(g.Result)
	if result == "" {
		result = "*"
	}

	b.WriteString(fmt.Sprintf("[Event \"%s\"]\n", orUnknown(g.Event)))
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", orUnknown(g.Site)))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[Round \"%s\"]\n", orUnknown(g.Round)))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", orUnknown(g.White)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", orUnknown(g.Black)))
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", result))
	if tc := sanitizePGN(g.TimeControl); tc != "" {
		b.WriteString(fmt.Sprintf("[TimeControl \"%s\"]\n", tc))
	}
	if term := terminationTag(g.Termination); term != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", term))
	}
	b.WriteString("\n")

	for i := 0; i < len(g.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(g.Moves[i])))
		if i+1 < len(g.Moves) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(g.Moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	b.WriteString("\n")
	return b.String()
}

// terminationTag maps a game-ending reason to a PGN Termination value.
// Endings decided on the board are "normal".
func terminationTag(reason string) string {
	r := strings.ToLower(sanitizePGN(reason))
	switch r {
	case "checkmate", "stalemate", "insufficient material", "fivefold repetition", "seventy-five move rule":
		return "normal"
	}
	return r
}

func orUnknown(s string) string {
	s = sanitizePGN(s)
	if s == "" {
		return "?"
	}
	return s
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

// LogLine is one entry of the plain-text move log.
type LogLine struct {
	Number  int
	Move    string
	Seconds float64
}

// FormatLog renders one "<N>. <move> - <seconds> sec" line per move.
func FormatLog(lines []LogLine) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%d. %s - %.2f sec\n", l.Number, l.Move, l.Seconds)
	}
	return b.String()
}
