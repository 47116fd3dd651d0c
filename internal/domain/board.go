package domain

import (
	"fmt"
	"strings"
)

// Side identifies a player by move order.
type Side uint8

const (
	White Side = iota // moves first
	Black
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// PieceKind is the type of a chess piece, independent of side.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Letter returns the upper-case English letter used in notation ("" for NoKind).
func (k PieceKind) Letter() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

// Piece is a piece standing on a square.
type Piece struct {
	Side Side
	Kind PieceKind
}

// Symbol returns the FEN-style letter: upper-case for white, lower-case for black.
func (p Piece) Symbol() string {
	l := p.Kind.Letter()
	if p.Side == Black {
		return strings.ToLower(l)
	}
	return l
}

// Square is a board coordinate. File 0-7 maps to a-h, Rank 0-7 maps to 1-8.
type Square struct {
	File int
	Rank int
}

func (sq Square) Valid() bool {
	return sq.File >= 0 && sq.File < 8 && sq.Rank >= 0 && sq.Rank < 8
}

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string(rune('a'+sq.File)) + string(rune('1'+sq.Rank))
}

// ParseSquare parses coordinate notation such as "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	sq := Square{File: int(s[0] - 'a'), Rank: int(s[1] - '1')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

// Move is an origin/destination pair plus the promotion piece when one is required.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// String returns UCI coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += strings.ToLower(m.Promotion.Letter())
	}
	return s
}

// ParseMove parses UCI coordinate notation.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	mv := Move{From: from, To: to}
	if len(s) == 5 {
		kind, ok := ParsePromotion(s[4:])
		if !ok {
			return Move{}, fmt.Errorf("invalid promotion in %q", s)
		}
		mv.Promotion = kind
	}
	return mv, nil
}

// ParsePromotion maps q, r, b or n (any case) to the piece a pawn may become.
func ParsePromotion(s string) (PieceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q":
		return Queen, true
	case "r":
		return Rook, true
	case "b":
		return Bishop, true
	case "n":
		return Knight, true
	}
	return NoKind, false
}

// Position is the full rules state of a game. Implementations are immutable:
// applying a move yields a new Position.
type Position interface {
	PieceAt(sq Square) (Piece, bool)
	SideToMove() Side
	FEN() string
}
