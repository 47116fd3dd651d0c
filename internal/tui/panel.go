package tui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/msgcat"
	"github.com/park285/darkchess/internal/session"
)

// maxPanelMoves caps the move list; older entries scroll off the top.
const maxPanelMoves = 20

func sideLabel(s domain.Side) string {
	if s == domain.Black {
		return "Black"
	}
	return "White"
}

// panelText renders the side panel in tview colour-tag markup.
func panelText(msgs *msgcat.Catalog, snap session.Snapshot) string {
	var sb strings.Builder
	if snap.Timed {
		for _, side := range []domain.Side{domain.White, domain.Black} {
			line := msgs.Text("clock."+side.String(), map[string]any{"Time": session.FormatClock(snap.Remaining(side))})
			if snap.Terminal == nil && side == snap.SideToMove {
				fmt.Fprintf(&sb, "[yellow::b]%s[-:-:-]\n", tview.Escape(line))
			} else {
				fmt.Fprintf(&sb, "%s\n", tview.Escape(line))
			}
		}
	} else {
		fmt.Fprintf(&sb, "[gray]%s[-]\n", tview.Escape(msgs.Text("clock.casual", nil)))
	}
	sb.WriteString("\n")

	if t := snap.Terminal; t != nil {
		line := msgs.Text("terminal.game_over", map[string]any{"Result": t.Description})
		if t.Kind == domain.TimeForfeit {
			line = msgs.Text("terminal.time_up", nil)
		}
		fmt.Fprintf(&sb, "[red::b]%s[-:-:-]\n", tview.Escape(line))
		fmt.Fprintf(&sb, "%s\n", tview.Escape(msgs.Text("terminal.leave", nil)))
	} else {
		fmt.Fprintf(&sb, "%s\n", tview.Escape(msgs.Text("panel.turn", map[string]any{"Side": sideLabel(snap.SideToMove)})))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "[::u]%s[::-]\n", tview.Escape(msgs.Text("panel.moves", nil)))
	entries := snap.History
	if len(entries) > maxPanelMoves {
		entries = entries[len(entries)-maxPanelMoves:]
	}
	for _, e := range entries {
		sb.WriteString(tview.Escape(e.Label()))
		sb.WriteString("\n")
	}
	return sb.String()
}

// InfoPanel is the text column to the right of the board.
type InfoPanel struct {
	view *tview.TextView
	msgs *msgcat.Catalog
}

func NewInfoPanel(msgs *msgcat.Catalog) *InfoPanel {
	v := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	v.SetBorder(true).SetTitle(" " + msgs.Text("app.title", nil) + " ")
	return &InfoPanel{view: v, msgs: msgs}
}

func (p *InfoPanel) Box() *tview.TextView { return p.view }

// Update redraws the panel from snap. Must run on the application goroutine.
func (p *InfoPanel) Update(snap session.Snapshot) {
	p.view.SetText(panelText(p.msgs, snap))
}
