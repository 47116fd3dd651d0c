package domain

import "time"

// GameRecord is the archived summary of one session.
type GameRecord struct {
	SessionUUID    string        `json:"session_uuid"`
	Mode           string        `json:"mode"`
	WhiteName      string        `json:"white_name"`
	BlackName      string        `json:"black_name"`
	Result         string        `json:"result"`
	ResultMethod   string        `json:"result_method"`
	MovesUCI       []string      `json:"moves_uci"`
	MovesSAN       []string      `json:"moves_san"`
	MoveSeconds    []float64     `json:"move_seconds"`
	PGN            string        `json:"pgn"`
	WhiteRemaining time.Duration `json:"white_remaining"`
	BlackRemaining time.Duration `json:"black_remaining"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        time.Time     `json:"ended_at"`
	Duration       time.Duration `json:"duration"`
}
