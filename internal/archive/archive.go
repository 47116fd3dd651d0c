// Package archive stores finished game records in Redis and PostgreSQL.
package archive

import (
	"context"
	"errors"
	"strings"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/obslog"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("archive: record not found")

// Sink receives finished games.
type Sink interface {
	Save(ctx context.Context, rec *domain.GameRecord) error
	Close() error
}

// Multi fans a record out to every sink. A failing sink does not stop the others.
type Multi struct {
	sinks []Sink
	names []string
}

func NewMulti() *Multi { return &Multi{} }

// Add registers s under name (used in logs). Nil sinks are skipped.
func (m *Multi) Add(name string, s Sink) {
	if s == nil {
		return
	}
	m.sinks = append(m.sinks, s)
	m.names = append(m.names, strings.TrimSpace(name))
}

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Save(ctx context.Context, rec *domain.GameRecord) error {
	if rec == nil {
		return nil
	}
	var err error
	for i, s := range m.sinks {
		if serr := s.Save(ctx, rec); serr != nil {
			obslog.L().Warn("archive_save_failed",
				zap.String("sink", m.names[i]),
				zap.String("session_id", rec.SessionUUID),
				zap.Error(serr),
			)
			err = multierr.Append(err, serr)
			continue
		}
		obslog.L().Info("archive_saved",
			zap.String("sink", m.names[i]),
			zap.String("session_id", rec.SessionUUID),
			zap.String("result", rec.Result),
		)
	}
	return err
}

func (m *Multi) Close() error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
