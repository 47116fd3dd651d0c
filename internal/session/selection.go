package session

import "github.com/park285/darkchess/internal/domain"

// Selection is the currently picked origin square and the legal moves from it.
// The zero value means nothing is selected.
type Selection struct {
	active bool
	from   domain.Square
	moves  []domain.Move
}

func (s Selection) Active() bool { return s.active }

// From returns the selected square; ok is false when nothing is selected.
func (s Selection) From() (domain.Square, bool) { return s.from, s.active }

// Targets lists distinct destination squares in oracle order.
func (s Selection) Targets() []domain.Square {
	if !s.active {
		return nil
	}
	seen := make(map[domain.Square]bool, len(s.moves))
	out := make([]domain.Square, 0, len(s.moves))
	for _, mv := range s.moves {
		if seen[mv.To] {
			continue
		}
		seen[mv.To] = true
		out = append(out, mv.To)
	}
	return out
}

func (s Selection) HasTarget(sq domain.Square) bool {
	for _, mv := range s.moves {
		if mv.To == sq {
			return true
		}
	}
	return false
}

// moveTo picks the move landing on sq. When several moves share the square
// (promotions) the one promoting to promo wins, falling back to the first.
func (s Selection) moveTo(sq domain.Square, promo domain.PieceKind) (domain.Move, bool) {
	var found domain.Move
	ok := false
	for _, mv := range s.moves {
		if mv.To != sq {
			continue
		}
		if mv.Promotion == domain.NoKind || mv.Promotion == promo {
			return mv, true
		}
		if !ok {
			found, ok = mv, true
		}
	}
	return found, ok
}

func (s Selection) clone() Selection {
	s.moves = append([]domain.Move(nil), s.moves...)
	return s
}
