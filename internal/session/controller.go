// Package session owns one game: position, selection, clocks, history and termination.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/obslog"
	"go.uber.org/zap"
)

// ErrEmptyHistory is returned by exports when no move has been played.
var ErrEmptyHistory = errors.New("session: no moves to export")

// Oracle is the rules engine the controller consults. Positions it returns are never mutated.
type Oracle interface {
	Initial() domain.Position
	LegalMovesFrom(pos domain.Position, from domain.Square) []domain.Move
	IsLegal(pos domain.Position, mv domain.Move) bool
	Apply(pos domain.Position, mv domain.Move) (domain.Position, error)
	SideToMove(pos domain.Position) domain.Side
	HasNoLegalMoves(pos domain.Position) bool
	Termination(pos domain.Position) domain.Termination
	ResultDescription(pos domain.Position) string
}

// SANEncoder is implemented by oracles able to write standard algebraic notation.
// Without it exports fall back to coordinate notation.
type SANEncoder interface {
	EncodeSAN(moves []domain.Move) ([]string, error)
}

// Phase is the controller's state-machine state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingSelection
	PhaseSelectionActive
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingSelection:
		return "awaiting_selection"
	case PhaseSelectionActive:
		return "selection_active"
	case PhaseTerminal:
		return "terminal"
	}
	return "idle"
}

// TerminalReason explains why a session ended.
type TerminalReason struct {
	Kind        domain.Termination
	Result      string      // PGN token
	Mover       domain.Side // side to move (or flagged) at the end
	Description string
}

// Draw reports whether nobody won.
func (r TerminalReason) Draw() bool { return r.Kind.IsDraw() }

// Winner returns the winning side; ok is false for draws.
func (r TerminalReason) Winner() (domain.Side, bool) {
	if r.Draw() {
		return domain.White, false
	}
	return r.Mover.Opponent(), true
}

// Option configures a Controller.
type Option func(*Controller)

// WithNow replaces the time source. Tests use it to drive the clocks.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPromotion sets the piece a pawn becomes when a click reaches the last rank.
func WithPromotion(kind domain.PieceKind) Option {
	return func(c *Controller) {
		switch kind {
		case domain.Queen, domain.Rook, domain.Bishop, domain.Knight:
			c.promotion = kind
		}
	}
}

// WithPlayers sets the names written to export headers.
func WithPlayers(white, black string) Option {
	return func(c *Controller) {
		if s := strings.TrimSpace(white); s != "" {
			c.white = s
		}
		if s := strings.TrimSpace(black); s != "" {
			c.black = s
		}
	}
}

func WithSite(site string) Option {
	return func(c *Controller) { c.site = strings.TrimSpace(site) }
}

// Controller is the session state machine. It is not safe for concurrent use;
// callers confine it to one goroutine.
type Controller struct {
	oracle    Oracle
	now       func() time.Time
	log       *zap.Logger
	promotion domain.PieceKind
	white     string
	black     string
	site      string

	started   bool
	id        string
	cfg       Config
	startedAt time.Time
	pos       domain.Position
	clock     *Clock
	history   History
	sel       Selection
	terminal  *TerminalReason
}

func New(oracle Oracle, opts ...Option) *Controller {
	c := &Controller{
		oracle:    oracle,
		now:       time.Now,
		log:       obslog.L(),
		promotion: domain.Queen,
		white:     "White",
		black:     "Black",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a new game from the initial arrangement, discarding any previous one.
func (c *Controller) Start(cfg Config) {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultInitial
	}
	now := c.now()
	c.started = true
	c.id = uuid.NewString()
	c.cfg = cfg
	c.startedAt = now
	c.pos = c.oracle.Initial()
	c.history = History{}
	c.sel = Selection{}
	c.terminal = nil
	c.clock = NewClock(cfg.Timed, cfg.Initial, c.oracle.SideToMove(c.pos), now)
	c.log.Info("session_start",
		zap.String("session_id", c.id),
		zap.String("mode", cfg.Mode()),
		zap.Duration("initial", cfg.Initial),
	)
}

// OnSquareClicked handles one click on a board square. Clicks that select
// nothing, target nothing, or arrive after the game ended are ignored.
func (c *Controller) OnSquareClicked(sq domain.Square) {
	if !c.started || c.terminal != nil || !sq.Valid() {
		return
	}
	// a flag that fell between frame checks still ends the game before this click
	if c.IsTerminal() != nil {
		return
	}
	if c.sel.Active() {
		if mv, ok := c.sel.moveTo(sq, c.promotion); ok {
			c.play(mv)
			return
		}
		if c.ownPiece(sq) {
			c.selectSquare(sq)
			return
		}
		c.log.Debug("click_ignored", zap.String("session_id", c.id), zap.Stringer("square", sq))
		return
	}
	if c.ownPiece(sq) {
		c.selectSquare(sq)
		return
	}
	c.log.Debug("click_ignored", zap.String("session_id", c.id), zap.Stringer("square", sq))
}

func (c *Controller) ownPiece(sq domain.Square) bool {
	pc, ok := c.pos.PieceAt(sq)
	return ok && pc.Side == c.oracle.SideToMove(c.pos)
}

func (c *Controller) selectSquare(sq domain.Square) {
	c.sel = Selection{active: true, from: sq, moves: c.oracle.LegalMovesFrom(c.pos, sq)}
}

func (c *Controller) play(mv domain.Move) {
	if !c.oracle.IsLegal(c.pos, mv) {
		c.log.Warn("move_rejected", zap.String("session_id", c.id), zap.Stringer("move", mv))
		c.sel = Selection{}
		return
	}
	next, err := c.oracle.Apply(c.pos, mv)
	if err != nil {
		c.log.Warn("move_apply_failed", zap.String("session_id", c.id), zap.Stringer("move", mv), zap.Error(err))
		c.sel = Selection{}
		return
	}
	now := c.now()
	elapsed := c.clock.Elapsed(now)
	mover := c.oracle.SideToMove(c.pos)

	c.pos = next
	c.history.Append(mv, elapsed)
	c.clock.Tick(elapsed)
	c.clock.Handover(c.oracle.SideToMove(next), now)
	c.sel = Selection{}

	c.log.Info("move_applied",
		zap.String("session_id", c.id),
		zap.Int("ply", c.history.Len()),
		zap.Stringer("side", mover),
		zap.Stringer("move", mv),
		zap.Float64("seconds", elapsed.Seconds()),
	)
}

// IsTerminal returns the reason the game is over, or nil while it runs.
// The first reason found is latched: the selection is dropped, the clocks
// stop and later clicks have no effect.
func (c *Controller) IsTerminal() *TerminalReason {
	if !c.started {
		return nil
	}
	if c.terminal != nil {
		r := *c.terminal
		return &r
	}
	now := c.now()
	mover := c.oracle.SideToMove(c.pos)
	var reason *TerminalReason
	switch {
	case c.oracle.HasNoLegalMoves(c.pos):
		kind := c.oracle.Termination(c.pos)
		if kind == domain.NotTerminated {
			kind = domain.Stalemate
		}
		reason = &TerminalReason{
			Kind:        kind,
			Result:      domain.ResultToken(kind, mover),
			Mover:       mover,
			Description: c.oracle.ResultDescription(c.pos),
		}
	case c.clock.Expired(now):
		result := domain.ResultToken(domain.TimeForfeit, mover)
		reason = &TerminalReason{
			Kind:        domain.TimeForfeit,
			Result:      result,
			Mover:       mover,
			Description: fmt.Sprintf("%s by %s", result, domain.TimeForfeit),
		}
	default:
		return nil
	}

	c.clock.Stop(now)
	c.sel = Selection{}
	c.terminal = reason
	c.log.Info("session_terminal",
		zap.String("session_id", c.id),
		zap.String("termination", string(reason.Kind)),
		zap.String("result", reason.Result),
		zap.Int("plies", c.history.Len()),
	)
	r := *reason
	return &r
}

// Phase reports the state-machine state. It does not evaluate termination.
func (c *Controller) Phase() Phase {
	switch {
	case !c.started:
		return PhaseIdle
	case c.terminal != nil:
		return PhaseTerminal
	case c.sel.Active():
		return PhaseSelectionActive
	}
	return PhaseAwaitingSelection
}

// Config returns the configuration passed to Start.
func (c *Controller) Config() Config { return c.cfg }

// SessionID is the identifier assigned by Start.
func (c *Controller) SessionID() string { return c.id }
