package tui

import (
	"github.com/rivo/tview"

	"github.com/park285/darkchess/internal/msgcat"
	"github.com/park285/darkchess/internal/session"
)

func modeLabel(msgs *msgcat.Catalog, m session.ModeChoice) string {
	switch m {
	case session.ModeCasual:
		return msgs.Text("mode.casual", nil)
	case session.ModeTimed:
		return msgs.Text("mode.timed", nil)
	default:
		return msgs.Text("mode.quit", nil)
	}
}

// choiceAt maps a modal button index to a mode. Escape reports -1 and aborts.
func choiceAt(index int) session.ModeChoice {
	choices := session.ModeChoices()
	if index < 0 || index >= len(choices) {
		return session.ModeAbort
	}
	return choices[index]
}

// NewModeSelect builds the pre-session selector. done receives exactly one answer.
func NewModeSelect(msgs *msgcat.Catalog, done func(session.ModeChoice)) *tview.Modal {
	choices := session.ModeChoices()
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = modeLabel(msgs, c)
	}
	answered := false
	return tview.NewModal().
		SetText(msgs.Text("mode.title", nil)).
		AddButtons(labels).
		SetDoneFunc(func(buttonIndex int, _ string) {
			if answered {
				return
			}
			answered = true
			done(choiceAt(buttonIndex))
		})
}
