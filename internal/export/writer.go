package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/park285/darkchess/internal/obslog"
	"go.uber.org/zap"
)

const stampLayout = "20060102_150405"

// Writer places export files under timestamped names.
type Writer struct {
	dir    string
	logDir string
	now    func() time.Time
}

// NewWriter writes PGN and image files into dir and move logs into logDir.
// Empty values fall back to the working directory and "game_logs".
func NewWriter(dir, logDir string) *Writer {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if strings.TrimSpace(logDir) == "" {
		logDir = "game_logs"
	}
	return &Writer{dir: dir, logDir: logDir, now: time.Now}
}

// WithClock replaces the time source used for file names.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	if now != nil {
		w.now = now
	}
	return w
}

// Frozen returns a copy that stamps every file with the time of this call,
// so the files of one export share the same suffix.
func (w *Writer) Frozen() *Writer {
	at := w.now()
	return &Writer{dir: w.dir, logDir: w.logDir, now: func() time.Time { return at }}
}

// WritePGN stores movetext as game_history_<stamp>.pgn and returns the path.
func (w *Writer) WritePGN(pgn string) (string, error) {
	name := fmt.Sprintf("game_history_%s.pgn", w.stamp())
	return w.write(w.dir, name, []byte(pgn), "pgn")
}

// WriteLog stores the plain-text log as move_log_<stamp>.txt under the log directory.
func (w *Writer) WriteLog(log string) (string, error) {
	name := fmt.Sprintf("move_log_%s.txt", w.stamp())
	return w.write(w.logDir, name, []byte(log), "log")
}

// WriteImage stores a PNG of the final board as game_board_<stamp>.png.
func (w *Writer) WriteImage(png []byte) (string, error) {
	name := fmt.Sprintf("game_board_%s.png", w.stamp())
	return w.write(w.dir, name, png, "image")
}

func (w *Writer) stamp() string {
	return w.now().Format(stampLayout)
}

func (w *Writer) write(dir, name string, data []byte, kind string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export %s: create dir %s: %w", kind, dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export %s: write %s: %w", kind, path, err)
	}
	obslog.L().Info("export_written",
		zap.String("kind", kind),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return path, nil
}
