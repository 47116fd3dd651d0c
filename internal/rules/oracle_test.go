package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/darkchess/internal/domain"
)

func sq(t *testing.T, s string) domain.Square {
	t.Helper()
	v, err := domain.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func mustMove(t *testing.T, s string) domain.Move {
	t.Helper()
	mv, err := domain.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return mv
}

func play(t *testing.T, o *Oracle, ucis ...string) domain.Position {
	t.Helper()
	pos := o.Initial()
	for _, u := range ucis {
		next, err := o.Apply(pos, mustMove(t, u))
		if err != nil {
			t.Fatalf("Apply(%s): %v", u, err)
		}
		pos = next
	}
	return pos
}

func TestInitialPosition(t *testing.T) {
	o := NewOracle()
	pos := o.Initial()
	if pos.SideToMove() != domain.White {
		t.Fatalf("white must move first")
	}
	pc, ok := pos.PieceAt(sq(t, "e1"))
	if !ok || pc.Kind != domain.King || pc.Side != domain.White {
		t.Fatalf("expected white king on e1, got %+v ok=%v", pc, ok)
	}
	if _, ok := pos.PieceAt(sq(t, "e4")); ok {
		t.Fatalf("e4 should be empty")
	}
	if !strings.HasPrefix(pos.FEN(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("unexpected FEN %q", pos.FEN())
	}
}

func TestLegalMovesFrom(t *testing.T) {
	o := NewOracle()
	pos := o.Initial()
	moves := o.LegalMovesFrom(pos, sq(t, "e2"))
	if len(moves) != 2 {
		t.Fatalf("expected 2 pawn moves from e2, got %v", moves)
	}
	seen := map[string]bool{}
	for _, mv := range moves {
		seen[mv.String()] = true
	}
	if !seen["e2e3"] || !seen["e2e4"] {
		t.Fatalf("unexpected moves %v", moves)
	}
	if got := o.LegalMovesFrom(pos, sq(t, "e4")); len(got) != 0 {
		t.Fatalf("empty square has no moves, got %v", got)
	}
	if got := o.LegalMovesFrom(pos, sq(t, "e7")); len(got) != 0 {
		t.Fatalf("opponent pieces have no moves for the side to move, got %v", got)
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	o := NewOracle()
	pos := o.Initial()
	next, err := o.Apply(pos, mustMove(t, "e2e4"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if pos.SideToMove() != domain.White {
		t.Fatalf("original position mutated")
	}
	if next.SideToMove() != domain.Black {
		t.Fatalf("side to move must flip")
	}
	if _, ok := next.PieceAt(sq(t, "e4")); !ok {
		t.Fatalf("pawn should stand on e4")
	}
}

func TestApplyIllegal(t *testing.T) {
	o := NewOracle()
	_, err := o.Apply(o.Initial(), mustMove(t, "e2e5"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if o.IsLegal(o.Initial(), mustMove(t, "e7e5")) {
		t.Fatalf("black move is not legal with white to move")
	}
}

func TestCheckmateTermination(t *testing.T) {
	o := NewOracle()
	pos := play(t, o, "f2f3", "e7e5", "g2g4", "d8h4")
	if !o.HasNoLegalMoves(pos) {
		t.Fatalf("fool's mate must leave white without moves")
	}
	if term := o.Termination(pos); term != domain.Checkmate {
		t.Fatalf("expected checkmate, got %q", term)
	}
	if d := o.ResultDescription(pos); d != "0-1 by checkmate" {
		t.Fatalf("unexpected description %q", d)
	}
}

func TestRunningGameNotTerminated(t *testing.T) {
	o := NewOracle()
	pos := play(t, o, "e2e4", "e7e5")
	if o.HasNoLegalMoves(pos) {
		t.Fatalf("game should continue")
	}
	if d := o.ResultDescription(pos); d != "*" {
		t.Fatalf("unexpected description %q", d)
	}
}

func TestPromotionMoves(t *testing.T) {
	o := NewOracle()
	pos := play(t, o, "h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6e4", "g6g7", "e4d6")
	moves := o.LegalMovesFrom(pos, sq(t, "g7"))
	promos := map[domain.PieceKind]bool{}
	for _, mv := range moves {
		if mv.Promotion != domain.NoKind {
			promos[mv.Promotion] = true
		}
	}
	for _, k := range []domain.PieceKind{domain.Queen, domain.Rook, domain.Bishop, domain.Knight} {
		if !promos[k] {
			t.Fatalf("missing promotion to %s in %v", k.Letter(), moves)
		}
	}
}
