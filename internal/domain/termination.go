package domain

// Termination names why a game ended. The zero value means the game is still running.
type Termination string

const (
	NotTerminated        Termination = ""
	Checkmate            Termination = "checkmate"
	Stalemate            Termination = "stalemate"
	InsufficientMaterial Termination = "insufficient material"
	FivefoldRepetition   Termination = "fivefold repetition"
	SeventyFiveMoveRule  Termination = "seventy-five move rule"
	TimeForfeit          Termination = "time forfeit"
)

// IsDraw reports whether the termination ends the game without a winner.
func (t Termination) IsDraw() bool {
	switch t {
	case Stalemate, InsufficientMaterial, FivefoldRepetition, SeventyFiveMoveRule:
		return true
	}
	return false
}

// ResultToken maps a termination to the PGN result token. mover is the side
// that was to move, or whose flag fell, when the game ended.
func ResultToken(term Termination, mover Side) string {
	switch {
	case term == NotTerminated:
		return "*"
	case term.IsDraw():
		return "1/2-1/2"
	case mover == White:
		return "0-1"
	default:
		return "1-0"
	}
}
