package tui

import "github.com/charlie0129/absorb/pkg/display"

type command int

const (
	cmdNone command = iota
	cmdAxes
	cmdPoints
	cmdFit
	cmdReset
	cmdUp
	cmdDown
	cmdLeft
	cmdRight
	cmdCursorLeft
	cmdCursorRight
	cmdEdit
	cmdCancel
	cmdQuit
)

// keymap maps termui key IDs to commands in normal mode.
var keymap = map[string]command{
	"1":        cmdAxes,
	"a":        cmdAxes,
	"2":        cmdPoints,
	"p":        cmdPoints,
	"3":        cmdFit,
	"f":        cmdFit,
	"4":        cmdReset,
	"r":        cmdReset,
	"<Up>":     cmdUp,
	"k":        cmdUp,
	"<Down>":   cmdDown,
	"j":        cmdDown,
	"<Left>":   cmdLeft,
	"h":        cmdLeft,
	"<Right>":  cmdRight,
	"l":        cmdRight,
	"[":        cmdCursorLeft,
	"]":        cmdCursorRight,
	"e":        cmdEdit,
	"<Enter>":  cmdEdit,
	"<Escape>": cmdCancel,
	"q":        cmdQuit,
	"<C-c>":    cmdQuit,
}

var actions = map[command]display.Action{
	cmdAxes:   display.ActionDrawAxes,
	cmdPoints: display.ActionPlotPoints,
	cmdFit:    display.ActionFit,
	cmdReset:  display.ActionReset,
}

func commandOf(id string) command {
	return keymap[id]
}

// actionOf reports the display action bound to c, if any.
func actionOf(c command) (display.Action, bool) {
	a, ok := actions[c]
	return a, ok
}

// editable reports whether a key may be typed into a cell.
func editable(id string) bool {
	r := []rune(id)
	if len(r) != 1 {
		return false
	}
	switch {
	case r[0] >= '0' && r[0] <= '9':
		return true
	case r[0] == '.', r[0] == '-', r[0] == '+', r[0] == '%', r[0] == 'e', r[0] == 'E':
		return true
	}
	return false
}

func isBackspace(id string) bool {
	return id == "<Backspace>" || id == "<C-<Backspace>>"
}
