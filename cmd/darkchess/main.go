package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/darkchess/internal/archive"
	appcfg "github.com/park285/darkchess/internal/config"
	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/export"
	"github.com/park285/darkchess/internal/msgcat"
	"github.com/park285/darkchess/internal/obslog"
	"github.com/park285/darkchess/internal/render"
	"github.com/park285/darkchess/internal/rules"
	"github.com/park285/darkchess/internal/session"
	"github.com/park285/darkchess/internal/tui"
)

const archiveTimeout = 5 * time.Second

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	obslog.L().Info("config_loaded", zap.String("source", cfg.Source))

	err = run(cfg)
	obslog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *appcfg.AppConfig) error {
	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	promo, _ := domain.ParsePromotion(cfg.Promotion)
	ctrl := session.New(rules.NewOracle(),
		session.WithPromotion(promo),
		session.WithPlayers(cfg.WhiteName, cfg.BlackName),
		session.WithSite(cfg.Site),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := tui.New(ctrl, msgs, tui.Options{Initial: cfg.InitialClock, FrameInterval: cfg.FrameInterval})
	choice, err := ui.Run(ctx)
	if err != nil {
		return err
	}
	if choice == session.ModeAbort || ctrl.Phase() == session.PhaseIdle {
		return nil
	}

	if t := ctrl.IsTerminal(); t != nil {
		if t.Kind == domain.TimeForfeit {
			fmt.Println(msgs.Text("terminal.time_up", nil))
		}
		fmt.Println(msgs.Text("terminal.game_over", map[string]any{"Result": t.Description}))
	}
	saveGame(cfg, msgs, ctrl)
	return nil
}

// saveGame writes the export files and archives the record. Failures are
// reported and skipped so one broken sink does not lose the others.
func saveGame(cfg *appcfg.AppConfig, msgs *msgcat.Catalog, ctrl *session.Controller) {
	movetext, moveLog, err := ctrl.ExportHistory()
	if errors.Is(err, session.ErrEmptyHistory) {
		obslog.L().Info("export_skipped", zap.String("reason", "no moves"))
		return
	}
	if err != nil {
		report(msgs, "PGN", err)
		return
	}

	w := export.NewWriter(cfg.ExportDir, cfg.MoveLogDir).Frozen()
	if path, err := w.WritePGN(movetext); err != nil {
		report(msgs, "PGN", err)
	} else {
		fmt.Println(msgs.Text("export.pgn_saved", map[string]any{"Path": path}))
	}
	if path, err := w.WriteLog(moveLog); err != nil {
		report(msgs, "move log", err)
	} else {
		fmt.Println(msgs.Text("export.log_saved", map[string]any{"Path": path}))
	}
	if cfg.ExportBoardImage {
		saveImage(msgs, w, ctrl)
	}

	sinks := openArchives(cfg)
	defer func() {
		if err := sinks.Close(); err != nil {
			obslog.L().Warn("archive_close_failed", zap.Error(err))
		}
	}()
	if sinks.Len() == 0 {
		return
	}
	rec, err := ctrl.Record(time.Now())
	if err != nil {
		report(msgs, "archive", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := sinks.Save(ctx, rec); err != nil {
		report(msgs, "archive", err)
	}
}

func saveImage(msgs *msgcat.Catalog, w *export.Writer, ctrl *session.Controller) {
	data, err := render.NewPNGRenderer(msgs).Render(context.Background(), ctrl.Snapshot())
	if err != nil {
		report(msgs, "board image", err)
		return
	}
	path, err := w.WriteImage(data)
	if err != nil {
		report(msgs, "board image", err)
		return
	}
	fmt.Println(msgs.Text("export.image_saved", map[string]any{"Path": path}))
}

// openArchives connects the configured sinks. A sink that cannot connect is skipped.
func openArchives(cfg *appcfg.AppConfig) *archive.Multi {
	m := archive.NewMulti()
	if cfg.RedisURL != "" {
		store, err := archive.NewRedisStore(cfg.RedisURL, cfg.ArchiveTTL)
		if err != nil {
			obslog.L().Warn("archive_redis_unavailable", zap.Error(err))
		} else {
			m.Add("redis", store)
		}
	}
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Warn("archive_postgres_unavailable", zap.Error(err))
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			err = repo.EnsureSchema(ctx)
			cancel()
			if err != nil {
				obslog.L().Warn("archive_schema_failed", zap.Error(err))
				_ = repo.Close()
			} else {
				m.Add("postgres", repo)
			}
		}
	}
	return m
}

func report(msgs *msgcat.Catalog, kind string, err error) {
	obslog.L().Error("export_failed", zap.String("kind", kind), zap.Error(err))
	fmt.Fprintln(os.Stderr, msgs.Text("export.failed", map[string]any{"Kind": kind, "Err": err}))
}
