// Package rules adapts the chess rules engine to the session controller.
package rules

import (
	"errors"
	"fmt"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/darkchess/internal/domain"
)

// ErrIllegalMove is returned by Apply when the move is not legal in the position.
var ErrIllegalMove = errors.New("illegal move")

// Position is an immutable chess position together with the moves that led to it.
type Position struct {
	game  *nchess.Game
	moves []domain.Move
}

func (p *Position) PieceAt(sq domain.Square) (domain.Piece, bool) {
	if p == nil || !sq.Valid() {
		return domain.Piece{}, false
	}
	pc := p.game.Position().Board().Piece(toSquare(sq))
	if pc == nchess.NoPiece {
		return domain.Piece{}, false
	}
	return domain.Piece{Side: fromColor(pc.Color()), Kind: fromPieceType(pc.Type())}, true
}

func (p *Position) SideToMove() domain.Side {
	if p == nil {
		return domain.White
	}
	return fromColor(p.game.Position().Turn())
}

func (p *Position) FEN() string {
	if p == nil {
		return ""
	}
	return p.game.FEN()
}

// Moves returns a copy of the move sequence from the initial arrangement.
func (p *Position) Moves() []domain.Move {
	if p == nil {
		return nil
	}
	return append([]domain.Move(nil), p.moves...)
}

// Oracle answers legality questions for standard chess.
type Oracle struct{}

func NewOracle() *Oracle { return &Oracle{} }

// Initial returns the standard starting arrangement.
func (o *Oracle) Initial() domain.Position {
	return &Position{game: nchess.NewGame()}
}

// LegalMovesFrom lists every legal move whose origin is from.
func (o *Oracle) LegalMovesFrom(pos domain.Position, from domain.Square) []domain.Move {
	p, ok := pos.(*Position)
	if !ok || p == nil || !from.Valid() {
		return nil
	}
	var out []domain.Move
	for _, mv := range p.game.ValidMoves() {
		if mv.S1() != toSquare(from) {
			continue
		}
		out = append(out, domain.Move{
			From:      fromSquare(mv.S1()),
			To:        fromSquare(mv.S2()),
			Promotion: fromPieceType(mv.Promo()),
		})
	}
	return out
}

func (o *Oracle) IsLegal(pos domain.Position, mv domain.Move) bool {
	for _, cand := range o.LegalMovesFrom(pos, mv.From) {
		if cand == mv {
			return true
		}
	}
	return false
}

// Apply returns the position reached by playing mv. pos is left untouched.
func (o *Oracle) Apply(pos domain.Position, mv domain.Move) (domain.Position, error) {
	p, ok := pos.(*Position)
	if !ok || p == nil {
		return nil, fmt.Errorf("apply %s: foreign position type %T", mv, pos)
	}
	if !o.IsLegal(p, mv) {
		return nil, fmt.Errorf("apply %s: %w", mv, ErrIllegalMove)
	}
	moves := append(append([]domain.Move(nil), p.moves...), mv)
	game, err := replay(moves)
	if err != nil {
		return nil, err
	}
	return &Position{game: game, moves: moves}, nil
}

func (o *Oracle) SideToMove(pos domain.Position) domain.Side {
	return pos.SideToMove()
}

// HasNoLegalMoves reports whether the side to move cannot continue: no legal
// moves, or the engine declared an automatic draw (insufficient material,
// fivefold repetition, seventy-five move rule).
func (o *Oracle) HasNoLegalMoves(pos domain.Position) bool {
	return o.Termination(pos) != domain.NotTerminated
}

// Termination classifies a finished position.
func (o *Oracle) Termination(pos domain.Position) domain.Termination {
	p, ok := pos.(*Position)
	if !ok || p == nil {
		return domain.NotTerminated
	}
	switch p.game.Method() {
	case nchess.Checkmate:
		return domain.Checkmate
	case nchess.Stalemate:
		return domain.Stalemate
	case nchess.InsufficientMaterial:
		return domain.InsufficientMaterial
	case nchess.FivefoldRepetition:
		return domain.FivefoldRepetition
	case nchess.SeventyFiveMoveRule:
		return domain.SeventyFiveMoveRule
	}
	if len(p.game.ValidMoves()) == 0 {
		if p.game.Position().Status() == nchess.Checkmate {
			return domain.Checkmate
		}
		return domain.Stalemate
	}
	return domain.NotTerminated
}

// ResultDescription renders a human-readable outcome such as "1-0 by checkmate".
func (o *Oracle) ResultDescription(pos domain.Position) string {
	p, ok := pos.(*Position)
	if !ok || p == nil {
		return ""
	}
	term := o.Termination(p)
	if term == domain.NotTerminated {
		return "*"
	}
	return fmt.Sprintf("%s by %s", domain.ResultToken(term, p.SideToMove()), term)
}

func replay(moves []domain.Move) (*nchess.Game, error) {
	game := nchess.NewGame()
	for _, mv := range moves {
		if err := game.PushNotationMove(mv.String(), nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mv, err)
		}
	}
	return game, nil
}

func toSquare(sq domain.Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.File), nchess.Rank(sq.Rank))
}

func fromSquare(sq nchess.Square) domain.Square {
	return domain.Square{File: int(sq.File()), Rank: int(sq.Rank())}
}

func fromColor(c nchess.Color) domain.Side {
	if c == nchess.Black {
		return domain.Black
	}
	return domain.White
}

func fromPieceType(pt nchess.PieceType) domain.PieceKind {
	switch pt {
	case nchess.King:
		return domain.King
	case nchess.Queen:
		return domain.Queen
	case nchess.Rook:
		return domain.Rook
	case nchess.Bishop:
		return domain.Bishop
	case nchess.Knight:
		return domain.Knight
	case nchess.Pawn:
		return domain.Pawn
	}
	return domain.NoKind
}
