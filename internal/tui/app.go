package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/park285/darkchess/internal/msgcat"
	"github.com/park285/darkchess/internal/obslog"
	"github.com/park285/darkchess/internal/session"
)

const (
	pageMode = "mode"
	pageGame = "game"

	panelWidth = 30
)

// Options tune the terminal front end.
type Options struct {
	// initial clock for timed games
	Initial time.Duration
	// redraw period of the clocks and terminal checks
	FrameInterval time.Duration
}

// App owns the tview application for one session.
type App struct {
	app   *tview.Application
	pages *tview.Pages
	board *BoardView
	panel *InfoPanel
	ctrl  *session.Controller
	msgs  *msgcat.Catalog
	opts  Options

	choice  session.ModeChoice
	started bool
	ticking chan struct{}
	// set before the application stops draining its update queue
	stopped atomic.Bool
}

// New wires the widgets around ctrl. Nothing is drawn until Run.
func New(ctrl *session.Controller, msgs *msgcat.Catalog, opts Options) *App {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		ctrl:   ctrl,
		msgs:   msgs,
		opts:   opts,
		choice: session.ModeAbort,
	}
	a.board = NewBoardView(ctrl)
	a.board.SetClickFunc(a.refresh)
	a.panel = NewInfoPanel(msgs)

	hint := tview.NewTextView().SetText(msgs.Text("panel.hint", nil))
	hint.SetBorder(true)

	row := tview.NewFlex().SetDirection(tview.FlexColumn)
	row.AddItem(a.board, 0, 1, true)
	row.AddItem(a.panel.Box(), panelWidth, 0, false)
	layout := tview.NewFlex().SetDirection(tview.FlexRow)
	layout.AddItem(row, 0, 1, true)
	layout.AddItem(hint, 3, 0, false)

	a.pages.AddPage(pageGame, layout, true, false)
	a.pages.AddPage(pageMode, NewModeSelect(msgs, a.onMode), true, true)
	a.app.SetInputCapture(a.keys)
	return a
}

// Run blocks until the user quits or ctx is cancelled. It returns the mode
// picked in the selector, ModeAbort when the session never started.
func (a *App) Run(ctx context.Context) (session.ModeChoice, error) {
	a.ticking = make(chan struct{})
	defer close(a.ticking)
	go func() {
		select {
		case <-ctx.Done():
			a.stop()
		case <-a.ticking:
		}
	}()

	a.app.EnableMouse(true)
	if err := a.app.SetRoot(a.pages, true).Run(); err != nil {
		return a.choice, fmt.Errorf("run terminal ui: %w", err)
	}
	return a.choice, nil
}

func (a *App) onMode(choice session.ModeChoice) {
	a.choice = choice
	cfg, ok := session.ConfigFor(choice, a.opts.Initial)
	if !ok {
		obslog.L().Info("mode_aborted")
		a.stop()
		return
	}
	a.ctrl.Start(cfg)
	a.started = true
	obslog.L().Info("mode_selected", zap.String("mode", cfg.Mode()))
	a.refresh()
	a.pages.SwitchToPage(pageGame)
	a.app.SetFocus(a.board)
	go a.tick(a.ticking)
}

// tick drives clock redraws and time-forfeit detection between clicks.
func (a *App) tick(done <-chan struct{}) {
	t := time.NewTicker(a.opts.FrameInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if a.stopped.Load() {
				return
			}
			a.app.QueueUpdateDraw(a.refresh)
		}
	}
}

func (a *App) stop() {
	a.stopped.Store(true)
	a.app.Stop()
}

// refresh runs on the application goroutine.
func (a *App) refresh() {
	if !a.started {
		return
	}
	a.ctrl.IsTerminal()
	a.panel.Update(a.ctrl.Snapshot())
}

func (a *App) keys(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.stop()
		return nil
	}
	if !a.started {
		return event
	}
	if a.ctrl.Phase() == session.PhaseTerminal {
		a.stop()
		return nil
	}
	if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
		a.stop()
		return nil
	}
	return event
}
