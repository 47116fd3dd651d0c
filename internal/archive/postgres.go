package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/darkchess/internal/domain"

	_ "github.com/lib/pq"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS darkchess_games (
    session_id      TEXT PRIMARY KEY,
    mode            TEXT NOT NULL,
    white_name      TEXT NOT NULL,
    black_name      TEXT NOT NULL,
    result          TEXT NOT NULL,
    result_method   TEXT NOT NULL DEFAULT '',
    moves_uci       JSONB NOT NULL,
    moves_san       JSONB NOT NULL,
    move_seconds    JSONB NOT NULL,
    pgn             TEXT NOT NULL,
    white_remaining_ms BIGINT NOT NULL,
    black_remaining_ms BIGINT NOT NULL,
    started_at      TIMESTAMPTZ NOT NULL,
    ended_at        TIMESTAMPTZ NOT NULL,
    duration_ms     BIGINT NOT NULL
)`

const upsertSQL = `INSERT INTO darkchess_games (
    session_id, mode, white_name, black_name,
    result, result_method, moves_uci, moves_san, move_seconds, pgn,
    white_remaining_ms, black_remaining_ms,
    started_at, ended_at, duration_ms
  ) VALUES (
    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
  ) ON CONFLICT (session_id) DO UPDATE SET
    mode=EXCLUDED.mode,
    white_name=EXCLUDED.white_name,
    black_name=EXCLUDED.black_name,
    result=EXCLUDED.result,
    result_method=EXCLUDED.result_method,
    moves_uci=EXCLUDED.moves_uci,
    moves_san=EXCLUDED.moves_san,
    move_seconds=EXCLUDED.move_seconds,
    pgn=EXCLUDED.pgn,
    white_remaining_ms=EXCLUDED.white_remaining_ms,
    black_remaining_ms=EXCLUDED.black_remaining_ms,
    started_at=EXCLUDED.started_at,
    ended_at=EXCLUDED.ended_at,
    duration_ms=EXCLUDED.duration_ms`

// Repository persists records to PostgreSQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{db: db}, nil
}

// EnsureSchema creates the games table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save upserts rec keyed by session id.
func (r *Repository) Save(ctx context.Context, rec *domain.GameRecord) error {
	if r == nil || r.db == nil || rec == nil {
		return nil
	}
	args, err := upsertArgs(rec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertSQL, args...); err != nil {
		return fmt.Errorf("save game %s: %w", rec.SessionUUID, err)
	}
	return nil
}

func upsertArgs(rec *domain.GameRecord) ([]any, error) {
	uci, err := jsonList(rec.MovesUCI)
	if err != nil {
		return nil, err
	}
	san, err := jsonList(rec.MovesSAN)
	if err != nil {
		return nil, err
	}
	secs, err := jsonList(rec.MoveSeconds)
	if err != nil {
		return nil, err
	}
	result := strings.TrimSpace(rec.Result)
	if result == "" {
		result = "*"
	}
	return []any{
		rec.SessionUUID, rec.Mode, rec.WhiteName, rec.BlackName,
		result, strings.TrimSpace(rec.ResultMethod), uci, san, secs, rec.PGN,
		rec.WhiteRemaining.Milliseconds(), rec.BlackRemaining.Milliseconds(),
		rec.StartedAt, rec.EndedAt, max(rec.Duration.Milliseconds(), 0),
	}, nil
}

// jsonList encodes nil slices as [] so the NOT NULL columns hold an array.
func jsonList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}
