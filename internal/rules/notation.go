package rules

import (
	"fmt"
	"io"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/darkchess/internal/domain"
)

// EncodeSAN lets the oracle serve SAN for exports.
func (o *Oracle) EncodeSAN(moves []domain.Move) ([]string, error) { return EncodeSAN(moves) }

// EncodeSAN converts a move sequence played from the initial arrangement into SAN.
func EncodeSAN(moves []domain.Move) ([]string, error) {
	game, err := replay(moves)
	if err != nil {
		return nil, err
	}
	positions := game.Positions()
	played := game.Moves()
	notation := nchess.AlgebraicNotation{}
	out := make([]string, len(played))
	for i, mv := range played {
		if i >= len(positions) {
			return nil, fmt.Errorf("encode san: missing position for ply %d", i+1)
		}
		out[i] = notation.Encode(positions[i], mv)
	}
	return out, nil
}

// DecodePGN reads a single game in PGN and returns its main line as coordinate moves.
func DecodePGN(r io.Reader) ([]domain.Move, error) {
	opt, err := nchess.PGN(r)
	if err != nil {
		return nil, fmt.Errorf("decode pgn: %w", err)
	}
	game := nchess.NewGame(opt)
	played := game.Moves()
	out := make([]domain.Move, 0, len(played))
	for _, mv := range played {
		out = append(out, domain.Move{
			From:      fromSquare(mv.S1()),
			To:        fromSquare(mv.S2()),
			Promotion: fromPieceType(mv.Promo()),
		})
	}
	return out, nil
}
