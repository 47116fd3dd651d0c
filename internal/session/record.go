package session

import (
	"time"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/export"
	"go.uber.org/zap"
)

const eventName = "Dark Chess"

// ExportHistory renders the PGN movetext and the plain-text move log.
// It may be called at any point once a move has been played.
func (c *Controller) ExportHistory() (movetext, log string, err error) {
	if !c.started || c.history.Len() == 0 {
		return "", "", ErrEmptyHistory
	}
	entries := c.history.Entries()
	moves, _ := c.notation()
	movetext = export.BuildPGN(c.pgnGame(moves))

	lines := make([]export.LogLine, len(entries))
	for i, e := range entries {
		lines[i] = export.LogLine{Number: e.Number, Move: e.Move.String(), Seconds: e.Seconds()}
	}
	return movetext, export.FormatLog(lines), nil
}

// Record summarises the session for archiving.
func (c *Controller) Record(endedAt time.Time) (*domain.GameRecord, error) {
	if !c.started || c.history.Len() == 0 {
		return nil, ErrEmptyHistory
	}
	entries := c.history.Entries()
	uci := make([]string, len(entries))
	secs := make([]float64, len(entries))
	for i, e := range entries {
		uci[i] = e.Move.String()
		secs[i] = e.Seconds()
	}
	moves, isSAN := c.notation()
	var san []string
	if isSAN {
		san = moves
	}

	rec := &domain.GameRecord{
		SessionUUID: c.id,
		Mode:        c.cfg.Mode(),
		WhiteName:   c.white,
		BlackName:   c.black,
		Result:      "*",
		MovesUCI:    uci,
		MovesSAN:    san,
		MoveSeconds: secs,
		PGN:         export.BuildPGN(c.pgnGame(moves)),
		StartedAt:   c.startedAt,
		EndedAt:     endedAt,
	}
	if c.terminal != nil {
		rec.Result = c.terminal.Result
		rec.ResultMethod = string(c.terminal.Kind)
	}
	now := c.now()
	rec.WhiteRemaining = c.clock.Remaining(domain.White, now)
	rec.BlackRemaining = c.clock.Remaining(domain.Black, now)
	if d := endedAt.Sub(c.startedAt); d > 0 {
		rec.Duration = d
	}
	return rec, nil
}

// notation returns the played moves in SAN when the oracle can encode them,
// otherwise in coordinate notation.
func (c *Controller) notation() ([]string, bool) {
	moves := c.history.Moves()
	if enc, ok := c.oracle.(SANEncoder); ok {
		san, err := enc.EncodeSAN(moves)
		if err == nil && len(san) == len(moves) {
			return san, true
		}
		c.log.Warn("san_encode_failed", zap.String("session_id", c.id), zap.Error(err))
	}
	out := make([]string, len(moves))
	for i, mv := range moves {
		out[i] = mv.String()
	}
	return out, false
}

func (c *Controller) pgnGame(moves []string) export.Game {
	g := export.Game{
		Event:       eventName,
		Site:        c.site,
		Round:       "1",
		Date:        c.startedAt,
		White:       c.white,
		Black:       c.black,
		Result:      "*",
		TimeControl: c.cfg.TimeControl(),
		Moves:       moves,
	}
	if c.terminal != nil {
		g.Result = c.terminal.Result
		g.Termination = string(c.terminal.Kind)
	}
	return g
}
