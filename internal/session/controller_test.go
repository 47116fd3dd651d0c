package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/rules"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time           { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestController(t *testing.T, oracle Oracle, cfg Config, opts ...Option) (*Controller, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithNow(clk.now), WithLogger(zap.NewNop())}, opts...)
	c := New(oracle, opts...)
	c.Start(cfg)
	return c, clk
}

func square(t *testing.T, s string) domain.Square {
	t.Helper()
	sq, err := domain.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func click(t *testing.T, c *Controller, squares ...string) {
	t.Helper()
	for _, s := range squares {
		c.OnSquareClicked(square(t, s))
	}
}

// playMoves enters each UCI move as two clicks, waiting think before the second.
func playMoves(t *testing.T, c *Controller, clk *fakeClock, think time.Duration, ucis ...string) {
	t.Helper()
	for _, u := range ucis {
		before := c.history.Len()
		click(t, c, u[0:2])
		clk.advance(think)
		click(t, c, u[2:4])
		if c.history.Len() != before+1 {
			t.Fatalf("move %s was not applied", u)
		}
	}
}

func TestCasualSelectThenMove(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: false})

	click(t, c, "e4")
	if c.Snapshot().HasSelection {
		t.Fatalf("empty square must not select")
	}
	click(t, c, "e7")
	if c.Snapshot().HasSelection {
		t.Fatalf("opponent piece must not select")
	}

	click(t, c, "e2")
	snap := c.Snapshot()
	if !snap.HasSelection || snap.Selected != square(t, "e2") {
		t.Fatalf("expected e2 selected, got %+v", snap)
	}
	if len(snap.Targets) != 2 || !snap.IsTarget(square(t, "e3")) || !snap.IsTarget(square(t, "e4")) {
		t.Fatalf("unexpected targets %v", snap.Targets)
	}
	if c.Phase() != PhaseSelectionActive {
		t.Fatalf("phase = %s", c.Phase())
	}

	clk.advance(1500 * time.Millisecond)
	click(t, c, "e4")

	snap = c.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(snap.History))
	}
	e := snap.History[0]
	if e.Number != 1 || e.Move.String() != "e2e4" || e.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected entry %+v", e)
	}
	if snap.SideToMove != domain.Black {
		t.Fatalf("side to move should flip to black")
	}
	if snap.HasSelection || len(snap.Targets) != 0 {
		t.Fatalf("selection must clear after a move")
	}
	if snap.WhiteRemaining != DefaultInitial || snap.BlackRemaining != DefaultInitial {
		t.Fatalf("casual clocks must not move: %v %v", snap.WhiteRemaining, snap.BlackRemaining)
	}
	if c.Phase() != PhaseAwaitingSelection {
		t.Fatalf("phase = %s", c.Phase())
	}
}

func TestNonTargetClickKeepsSelection(t *testing.T) {
	c, _ := newTestController(t, rules.NewOracle(), Config{})
	click(t, c, "e2", "e5")
	snap := c.Snapshot()
	if !snap.HasSelection || snap.Selected != square(t, "e2") {
		t.Fatalf("selection should survive a non-target click, got %+v", snap)
	}
	click(t, c, "d7")
	if !c.Snapshot().HasSelection || c.history.Len() != 0 {
		t.Fatalf("opponent piece click must be ignored")
	}
}

func TestTimeForfeitLatches(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: 500 * time.Millisecond})
	click(t, c, "e2")
	if r := c.IsTerminal(); r != nil {
		t.Fatalf("not terminal yet, got %+v", r)
	}

	clk.advance(600 * time.Millisecond)
	r := c.IsTerminal()
	if r == nil || r.Kind != domain.TimeForfeit {
		t.Fatalf("expected time forfeit, got %+v", r)
	}
	if r.Result != "0-1" || r.Description != "0-1 by time forfeit" {
		t.Fatalf("unexpected result %+v", r)
	}
	if w, ok := r.Winner(); !ok || w != domain.Black {
		t.Fatalf("black should win on white's flag")
	}

	fen := c.Snapshot().Position.FEN()
	click(t, c, "e2", "e4", "g1", "f3")
	snap := c.Snapshot()
	if snap.Position.FEN() != fen || len(snap.History) != 0 {
		t.Fatalf("position changed after terminal")
	}
	if snap.HasSelection {
		t.Fatalf("selection must be empty at terminal")
	}
	if snap.WhiteRemaining != 0 {
		t.Fatalf("flagged clock should read zero, got %v", snap.WhiteRemaining)
	}
	if c.Phase() != PhaseTerminal {
		t.Fatalf("phase = %s", c.Phase())
	}
	clk.advance(time.Minute)
	if again := c.IsTerminal(); again == nil || again.Kind != domain.TimeForfeit {
		t.Fatalf("terminal reason must stay latched, got %+v", again)
	}
}

func TestClickAfterFlagLatchesForfeit(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: 500 * time.Millisecond})
	click(t, c, "e2")
	clk.advance(600 * time.Millisecond)
	fen := c.Snapshot().Position.FEN()

	click(t, c, "e4")
	snap := c.Snapshot()
	if len(snap.History) != 0 || snap.Position.FEN() != fen {
		t.Fatalf("move played on a flagged clock, history %v", snap.History)
	}
	if snap.Terminal == nil || snap.Terminal.Kind != domain.TimeForfeit {
		t.Fatalf("expected time forfeit latched by the click, got %+v", snap.Terminal)
	}
	if snap.WhiteRemaining != 0 || snap.BlackRemaining != 500*time.Millisecond {
		t.Fatalf("clocks = %v / %v", snap.WhiteRemaining, snap.BlackRemaining)
	}
	if r := c.IsTerminal(); r == nil || r.Result != "0-1" {
		t.Fatalf("IsTerminal = %+v", r)
	}
}

func TestReselectDoesNotTouchClockOrHistory(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: time.Minute})
	click(t, c, "e2")
	clk.advance(2 * time.Second)
	click(t, c, "g1")

	snap := c.Snapshot()
	if snap.Selected != square(t, "g1") {
		t.Fatalf("expected g1 selected, got %s", snap.Selected)
	}
	if len(snap.Targets) != 2 || !snap.IsTarget(square(t, "f3")) || !snap.IsTarget(square(t, "h3")) {
		t.Fatalf("targets should follow the new piece, got %v", snap.Targets)
	}
	if len(snap.History) != 0 {
		t.Fatalf("reselection must not record history")
	}
	if c.clock.remaining[domain.White] != time.Minute {
		t.Fatalf("reselection must not commit clock time")
	}
	if snap.WhiteRemaining != 58*time.Second || snap.BlackRemaining != time.Minute {
		t.Fatalf("unexpected clocks %v %v", snap.WhiteRemaining, snap.BlackRemaining)
	}

	clk.advance(time.Second)
	click(t, c, "f3")
	if got := c.history.Entries()[0].Elapsed; got != 3*time.Second {
		t.Fatalf("elapsed should run from the previous move, got %v", got)
	}
}

type stuckOracle struct {
	*rules.Oracle
}

func (stuckOracle) HasNoLegalMoves(domain.Position) bool { return true }

func TestOracleTerminationWithoutTimeCheck(t *testing.T) {
	c, _ := newTestController(t, stuckOracle{rules.NewOracle()}, Config{Timed: true, Initial: time.Hour})
	click(t, c, "e2")
	r := c.IsTerminal()
	if r == nil || r.Kind != domain.Stalemate {
		t.Fatalf("expected oracle-reported end, got %+v", r)
	}
	if !r.Draw() || r.Result != "1/2-1/2" {
		t.Fatalf("stalemate is a draw, got %+v", r)
	}
	if c.Snapshot().HasSelection {
		t.Fatalf("selection must clear at terminal")
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: time.Minute})
	playMoves(t, c, clk, time.Second, "f2f3", "e7e5", "g2g4", "d8h4")

	r := c.IsTerminal()
	if r == nil || r.Kind != domain.Checkmate {
		t.Fatalf("expected checkmate, got %+v", r)
	}
	if r.Description != "0-1 by checkmate" || r.Mover != domain.White {
		t.Fatalf("unexpected reason %+v", r)
	}
	snap := c.Snapshot()
	if snap.WhiteRemaining != 58*time.Second || snap.BlackRemaining != 58*time.Second {
		t.Fatalf("clocks should freeze at the end: %v %v", snap.WhiteRemaining, snap.BlackRemaining)
	}
	clk.advance(10 * time.Second)
	if c.Snapshot().WhiteRemaining != 58*time.Second {
		t.Fatalf("stopped clock kept running")
	}
}

func TestQuitMidSessionExports(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{}, WithPlayers("Ann", "Ben"))
	moves := []string{"e2e4", "c7c5", "g1f3"}
	thinks := []time.Duration{1234 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}
	for i, u := range moves {
		playMoves(t, c, clk, thinks[i], u)
	}

	movetext, log, err := c.ExportHistory()
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if !strings.Contains(movetext, "1. e4 c5 2. Nf3 *") || !strings.Contains(movetext, "[White \"Ann\"]") {
		t.Fatalf("unexpected movetext:\n%s", movetext)
	}

	parsed, err := rules.DecodePGN(strings.NewReader(movetext))
	if err != nil {
		t.Fatalf("DecodePGN: %v", err)
	}
	if len(parsed) != len(moves) {
		t.Fatalf("round trip length %d, want %d", len(parsed), len(moves))
	}
	for i, mv := range c.history.Moves() {
		if parsed[i] != mv {
			t.Fatalf("ply %d: parsed %s, played %s", i+1, parsed[i], mv)
		}
	}

	lines := strings.Split(strings.TrimSuffix(log, "\n"), "\n")
	if len(lines) != len(moves) {
		t.Fatalf("log has %d lines, want %d", len(lines), len(moves))
	}
	for i, e := range c.history.Entries() {
		want := fmt.Sprintf("%d. %s - %.2f sec", i+1, moves[i], e.Seconds())
		if lines[i] != want {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i], want)
		}
	}
	if lines[0] != "1. e2e4 - 1.23 sec" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestExportRoundTripCapturesPromotionCastling(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{})
	playMoves(t, c, clk, time.Second,
		"h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6e4", "g6g7", "e4d6", "g7h8",
		"b8c6", "g1f3", "a7a6", "e2e3", "a6a5", "f1e2", "a5a4", "e1g1",
	)

	movetext, _, err := c.ExportHistory()
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	for _, san := range []string{"hxg5", "gxh8=Q", "O-O"} {
		if !strings.Contains(movetext, san) {
			t.Fatalf("movetext missing %s:\n%s", san, movetext)
		}
	}
	parsed, err := rules.DecodePGN(strings.NewReader(movetext))
	if err != nil {
		t.Fatalf("DecodePGN: %v", err)
	}
	played := c.history.Moves()
	if len(parsed) != len(played) {
		t.Fatalf("round trip length %d, want %d", len(parsed), len(played))
	}
	for i := range played {
		if parsed[i] != played[i] {
			t.Fatalf("ply %d: parsed %s, played %s", i+1, parsed[i], played[i])
		}
	}
}

func TestExportEmptyHistory(t *testing.T) {
	c, _ := newTestController(t, rules.NewOracle(), Config{})
	if _, _, err := c.ExportHistory(); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if _, err := c.Record(time.Now()); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory from Record, got %v", err)
	}
}

func TestHistoryCountsOnlyAppliedMoves(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{})
	applied := 0
	seq := []struct {
		sq    string
		moves bool
	}{
		{"a3", false}, {"e2", false}, {"e5", false}, {"e4", true},
		{"e4", false}, {"d7", false}, {"d5", true},
		{"e4", false}, {"d5", true},
		{"d8", false}, {"h4", false}, {"d5", true},
	}
	for _, step := range seq {
		clk.advance(100 * time.Millisecond)
		click(t, c, step.sq)
		if step.moves {
			applied++
		}
		if c.history.Len() != applied {
			t.Fatalf("after click %s history=%d, want %d", step.sq, c.history.Len(), applied)
		}
		if step.moves && c.Snapshot().HasSelection {
			t.Fatalf("selection must clear after move on %s", step.sq)
		}
	}
}

func TestRemainingNonIncreasingWhileOnMove(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: 2 * time.Second})
	prevWhite := c.Snapshot().WhiteRemaining
	for i := 0; i < 30; i++ {
		clk.advance(100 * time.Millisecond)
		snap := c.Snapshot()
		if snap.WhiteRemaining > prevWhite || snap.WhiteRemaining < 0 {
			t.Fatalf("white clock went from %v to %v", prevWhite, snap.WhiteRemaining)
		}
		if snap.BlackRemaining != 2*time.Second {
			t.Fatalf("frozen clock changed: %v", snap.BlackRemaining)
		}
		prevWhite = snap.WhiteRemaining
	}
	if prevWhite != 0 {
		t.Fatalf("expected white clock to bottom out at zero, got %v", prevWhite)
	}
}

func TestTimedMoveChargesMover(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: time.Minute})
	playMoves(t, c, clk, 5*time.Second, "e2e4")
	playMoves(t, c, clk, 7*time.Second, "e7e5")
	snap := c.Snapshot()
	if snap.WhiteRemaining != 55*time.Second || snap.BlackRemaining != 53*time.Second {
		t.Fatalf("unexpected clocks %v %v", snap.WhiteRemaining, snap.BlackRemaining)
	}
}

func TestPromotionChoice(t *testing.T) {
	line := []string{"h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6e4", "g6g7", "e4d6"}

	c, clk := newTestController(t, rules.NewOracle(), Config{})
	playMoves(t, c, clk, time.Second, line...)
	playMoves(t, c, clk, time.Second, "g7h8")
	if got := c.history.Moves()[len(line)].String(); got != "g7h8q" {
		t.Fatalf("default promotion = %s, want g7h8q", got)
	}

	c, clk = newTestController(t, rules.NewOracle(), Config{}, WithPromotion(domain.Knight))
	playMoves(t, c, clk, time.Second, line...)
	playMoves(t, c, clk, time.Second, "g7h8")
	if got := c.history.Moves()[len(line)].String(); got != "g7h8n" {
		t.Fatalf("knight promotion = %s, want g7h8n", got)
	}
}

func TestRecordSummarisesSession(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{Timed: true, Initial: time.Minute}, WithPlayers("Ann", "Ben"))
	playMoves(t, c, clk, time.Second, "f2f3", "e7e5", "g2g4", "d8h4")
	if c.IsTerminal() == nil {
		t.Fatalf("expected mate")
	}
	ended := clk.now()
	rec, err := c.Record(ended)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.SessionUUID != c.SessionID() || rec.Mode != "timed" || rec.Result != "0-1" || rec.ResultMethod != "checkmate" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if strings.Join(rec.MovesSAN, " ") != "f3 e5 g4 Qh4#" {
		t.Fatalf("unexpected SAN %v", rec.MovesSAN)
	}
	if len(rec.MovesUCI) != 4 || rec.MoveSeconds[3] != 1 {
		t.Fatalf("unexpected moves %v %v", rec.MovesUCI, rec.MoveSeconds)
	}
	if rec.Duration != 4*time.Second || !strings.Contains(rec.PGN, "[TimeControl \"60\"]") {
		t.Fatalf("unexpected duration/pgn %v\n%s", rec.Duration, rec.PGN)
	}
}

func TestIdleController(t *testing.T) {
	c := New(rules.NewOracle(), WithLogger(zap.NewNop()))
	c.OnSquareClicked(domain.Square{File: 4, Rank: 1})
	if c.Phase() != PhaseIdle || c.IsTerminal() != nil {
		t.Fatalf("idle controller must ignore input")
	}
	if snap := c.Snapshot(); snap.Position != nil {
		t.Fatalf("idle snapshot should be empty")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	c, clk := newTestController(t, rules.NewOracle(), Config{})
	playMoves(t, c, clk, time.Second, "e2e4")
	click(t, c, "e7")
	snap := c.Snapshot()
	snap.History[0].Move = domain.Move{}
	snap.Targets[0] = domain.Square{}
	again := c.Snapshot()
	if again.History[0].Move.String() != "e2e4" || again.Targets[0] == (domain.Square{}) {
		t.Fatalf("snapshot mutation leaked into controller")
	}
}
