// Package tui is the interactive terminal front end: data table, action
// buttons, plot, dialogs and a log pane, drawn with termui.
package tui

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/absorb/pkg/config"
	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/events"
	"github.com/charlie0129/absorb/pkg/fit"
	"github.com/charlie0129/absorb/pkg/plot"
	"github.com/charlie0129/absorb/pkg/report"
	"github.com/charlie0129/absorb/pkg/session"
)

// pickRows is how far, in terminal rows, a click may land from the fit line
// and still annotate it.
const pickRows = 1.5

const logLines = 200

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeDialog
)

type dialog struct {
	title string
	text  string
	err   bool
}

type App struct {
	cfg     config.Config
	session *session.Session
	hub     *events.EventHub
	sub     chan events.Event
	prec    report.Precision
	logs    *LogBuffer

	title   *widgets.Paragraph
	table   *widgets.Table
	buttons []*widgets.Paragraph
	logPane *widgets.Paragraph
	surface *plot.Surface
	status  *widgets.Paragraph
	popup   *widgets.Paragraph

	layout     layout
	row, col   int
	mode       mode
	input      string
	dialogs    []dialog
	statusText string

	// render is ui.Render outside of tests.
	render      func(items ...ui.Drawable)
	initialized bool
	closeOnce   sync.Once
}

// New builds the UI around a fresh session. Options are passed to the
// session.
func New(cfg config.Config, opts ...session.Option) *App {
	hub := events.NewEventHub()
	a := &App{
		cfg:     cfg,
		session: session.New(append(opts, session.WithEventHub(hub))...),
		hub:     hub,
		prec: report.Precision{
			Coefficients: cfg.CoefficientDigits(),
			Correlation:  cfg.CorrelationDigits(),
		},
		logs:    NewLogBuffer(logLines),
		surface: plot.NewSurface(plot.ViewportFromConfig(cfg), plot.Labels{X: cfg.XLabel(), Y: cfg.YLabel()}),
		render:  ui.Render,
	}
	a.sub = hub.Subscribe()

	a.title = widgets.NewParagraph()
	a.title.Text = cfg.Title()
	a.title.TextStyle = ui.NewStyle(ui.ColorRed, ui.ColorClear, ui.ModifierBold)

	a.table = widgets.NewTable()
	a.table.Title = "Data"
	a.table.RowSeparator = false
	a.table.FillRow = true
	a.table.TextAlignment = ui.AlignCenter

	for _, act := range display.Actions {
		b := widgets.NewParagraph()
		b.Text = buttonLabels[act]
		a.buttons = append(a.buttons, b)
	}

	a.logPane = widgets.NewParagraph()
	a.logPane.Title = "Log"
	a.logPane.WrapText = false

	a.surface.Title = "Plot"

	a.status = widgets.NewParagraph()
	a.popup = widgets.NewParagraph()

	a.statusText = "Press 1 to draw the axes. q quits."
	logrus.WithFields(cfg.LogrusFields()).WithField("session", a.session.ID()).Debug("terminal ui created")

	return a
}

func (a *App) Session() *session.Session { return a.session }

// Run takes over the terminal until the user quits.
func (a *App) Run() error {
	if err := ui.Init(); err != nil {
		a.Close()
		return pkgerrors.Wrap(err, "failed to initialize terminal")
	}
	a.initialized = true

	defer a.shutdown(divertLogs(a.logs))

	a.resize(ui.TerminalDimensions())
	a.draw()

	for e := range ui.PollEvents() {
		if e.Type == ui.ResizeEvent {
			ui.Clear()
		}
		if a.handle(e) {
			return nil
		}
		a.draw()
	}

	return nil
}

// Close releases the terminal and then the plot surface. Only the first call
// does anything; failures are logged and otherwise ignored.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Warn("terminal teardown failed")
			}
		}()

		if a.initialized {
			ui.Close()
		}
		a.hub.Unsubscribe(a.sub)
		if err := a.surface.Close(); err != nil {
			logrus.WithError(err).Warn("failed to release plot surface")
		}
		logrus.WithField("session", a.session.ID()).Debug("terminal ui closed")
	})
}

// shutdown puts the diverted logger back before Close so teardown messages
// reach the real output instead of the log pane.
func (a *App) shutdown(restore func()) {
	restore()
	a.Close()
}

func (a *App) resize(width, height int) {
	a.layout = computeLayout(width, height, len(a.session.Samples()))
	l := a.layout

	a.title.SetRect(l.title.Min.X, l.title.Min.Y, l.title.Max.X, l.title.Max.Y)
	a.table.SetRect(l.table.Min.X, l.table.Min.Y, l.table.Max.X, l.table.Max.Y)
	for i, b := range a.buttons {
		r := l.buttons[i]
		b.SetRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}
	a.logPane.SetRect(l.logs.Min.X, l.logs.Min.Y, l.logs.Max.X, l.logs.Max.Y)
	a.surface.SetRect(l.plot.Min.X, l.plot.Min.Y, l.plot.Max.X, l.plot.Max.Y)
	a.status.SetRect(l.status.Min.X, l.status.Min.Y, l.status.Max.X, l.status.Max.Y)
	logrus.WithField("surface", a.surface.String()).Debug("layout changed")
}

// handle applies one terminal event and reports whether the UI should quit.
func (a *App) handle(e ui.Event) bool {
	switch e.Type {
	case ui.ResizeEvent:
		if r, ok := e.Payload.(ui.Resize); ok {
			a.resize(r.Width, r.Height)
		}
	case ui.MouseEvent:
		if m, ok := e.Payload.(ui.Mouse); ok && e.ID == "<MouseLeft>" && !m.Drag {
			a.click(image.Pt(m.X, m.Y))
		}
	case ui.KeyboardEvent:
		return a.key(e.ID)
	}
	return false
}

func (a *App) key(id string) bool {
	if id == "<C-c>" {
		return true
	}

	switch a.mode {
	case modeDialog:
		if id == "<Enter>" || id == "<Escape>" || id == "<Space>" {
			a.dismiss()
		}
		return false
	case modeEdit:
		a.editKey(id)
		return false
	}

	c := commandOf(id)
	if act, ok := actionOf(c); ok {
		a.dispatch(act)
		return false
	}

	n := len(a.session.Samples())
	switch c {
	case cmdQuit:
		return true
	case cmdUp:
		a.row = max(a.row-1, 0)
	case cmdDown:
		a.row = min(a.row+1, n-1)
	case cmdLeft:
		a.col = 0
	case cmdRight:
		a.col = 1
	case cmdCursorLeft:
		a.moveCursor(-1)
	case cmdCursorRight:
		a.moveCursor(1)
	case cmdEdit:
		a.startEdit()
	case cmdCancel:
		a.session.ClearAnnotation()
		a.surface.SetFrame(a.session.Frame())
	}
	return false
}

func (a *App) click(p image.Point) {
	if a.mode == modeDialog {
		a.dismiss()
		return
	}
	if a.mode == modeEdit {
		return
	}

	if i, ok := a.layout.buttonAt(p); ok {
		a.dispatch(display.Actions[i])
		return
	}
	if row, col, ok := a.layout.cellAt(p, len(a.session.Samples())); ok {
		a.row, a.col = row, col
		return
	}
	a.pick(p)
}

func (a *App) dispatch(act display.Action) {
	out, err := a.session.Dispatch(act)
	a.pump()
	if err != nil {
		a.showError(err)
		return
	}
	if out.Applied {
		a.surface.SetFrame(a.session.Frame())
	}
}

func (a *App) startEdit() {
	if !a.cfg.Editable() {
		a.statusText = `Editing is disabled. Set "editable": true in the config to enable it.`
		return
	}
	a.mode = modeEdit
	a.input = ""
	a.statusText = fmt.Sprintf("Editing row %d %s. Enter saves, Esc cancels.", a.row+1, fieldOf(a.col))
}

func (a *App) editKey(id string) {
	switch {
	case id == "<Escape>":
		a.mode = modeNormal
		a.input = ""
		a.statusText = "Edit cancelled"
	case id == "<Enter>":
		a.commitEdit()
	case isBackspace(id):
		if r := []rune(a.input); len(r) > 0 {
			a.input = string(r[:len(r)-1])
		}
	case editable(id):
		a.input += id
	}
}

func (a *App) commitEdit() {
	err := a.session.Edit(a.row, fieldOf(a.col), a.input)
	a.mode = modeNormal
	a.input = ""
	a.pump()
	if err != nil {
		a.showError(err)
	}
}

// moveCursor walks the annotation along the fit line one percentage step at
// a time.
func (a *App) moveCursor(dir int) {
	f := a.session.Frame()
	if f.State != display.StateFitDrawn {
		a.statusText = "Fit the data first to read values off the line"
		return
	}

	v := a.surface.Viewport
	x0, x1 := v.FitSpan()
	step := v.XStep / 5
	x := math.Round((x0+x1)/2/step) * step
	if f.Annotation != nil {
		x = f.Annotation.X + float64(dir)*step
	}
	a.annotate(math.Min(math.Max(x, x0), x1))
}

// pick annotates the fit line when p lands close enough to it and clears the
// label otherwise.
func (a *App) pick(p image.Point) {
	x, y, ok := a.surface.DataAt(p)
	if !ok {
		return
	}
	f := a.session.Frame()
	if f.State != display.StateFitDrawn || f.Fit == nil {
		return
	}

	x0, x1 := a.surface.Viewport.FitSpan()
	if x < x0 || x > x1 || math.Abs(f.Fit.PredictY(x)-y)*a.surface.RowsPerUnit() > pickRows {
		a.session.ClearAnnotation()
		a.surface.SetFrame(a.session.Frame())
		return
	}
	a.annotate(x)
}

func (a *App) annotate(x float64) {
	p, err := a.session.Annotate(x)
	if err != nil {
		a.statusText = err.Error()
		return
	}
	a.surface.SetFrame(a.session.Frame())
	a.statusText = strings.Join(p.Lines, "  ")
}

// pump turns the events queued by the last session call into dialogs and
// status messages.
func (a *App) pump() {
	for _, ev := range events.Drain(a.sub) {
		logrus.WithFields(logrus.Fields{
			"event": ev.Name,
			"data":  string(ev.Data),
		}).Debug("new event")

		switch ev.Name {
		case events.DisplayState:
			payload, err := events.DecodeAs[events.DisplayStateEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode display.state event")
				continue
			}
			a.statusText = fmt.Sprintf("%s -> %s", payload.From, payload.To)
			// The fit dialog is built from fit.result, which carries the numbers.
			if display.Action(payload.Action) != display.ActionFit {
				a.push(dialog{title: "Info", text: payload.Message})
			}
		case events.FitCompleted:
			payload, err := events.DecodeAs[events.FitEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode fit.result event")
				continue
			}
			r := fit.Result{Slope: payload.Slope, Intercept: payload.Intercept, Correlation: math.NaN(), N: payload.N}
			if payload.Correlation != nil {
				r.Correlation = *payload.Correlation
			}
			a.push(dialog{title: "Fit", text: report.Summary(r, a.prec)})
		case events.DatasetEdit:
			payload, err := events.DecodeAs[events.DatasetEditEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode dataset.edit event")
				continue
			}
			a.statusText = fmt.Sprintf("Row %d %s: %g -> %g. Redraw to update the plot.", payload.Index+1, payload.Field, payload.Old, payload.New)
		case events.DatasetReset:
			payload, err := events.DecodeAs[events.DatasetResetEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode dataset.reset event")
				continue
			}
			a.row = min(a.row, payload.Samples-1)
		case events.ActionIgnored:
			payload, err := events.DecodeAs[events.ActionIgnoredEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode action.ignored event")
				continue
			}
			a.statusText = fmt.Sprintf("%s needs %s first", payload.Action, payload.Requires)
		case events.FitRejected:
			payload, err := events.DecodeAs[events.FitRejectedEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode fit.rejected event")
				continue
			}
			a.statusText = "Fit rejected: " + payload.Reason
		}
	}
}

func (a *App) push(d dialog) {
	a.dialogs = append(a.dialogs, d)
	a.mode = modeDialog
}

func (a *App) dismiss() {
	if len(a.dialogs) > 0 {
		a.dialogs = a.dialogs[1:]
	}
	if len(a.dialogs) == 0 {
		a.mode = modeNormal
	}
}

func (a *App) showError(err error) {
	a.push(errorDialog(err))
}

func errorDialog(err error) dialog {
	title := "Error"
	switch {
	case errors.Is(err, dataset.ErrValidation):
		title = "Invalid value"
	case errors.Is(err, fit.ErrInsufficientData):
		title = "Not enough data"
	case errors.Is(err, fit.ErrDegenerateInput), errors.Is(err, fit.ErrNumericOverflow):
		title = "Cannot fit"
	}
	return dialog{title: title, text: err.Error(), err: true}
}

func (a *App) draw() {
	state := a.session.State()

	a.table.Rows = tableRows(a.session.Samples(), a.row, a.col, a.mode == modeEdit, a.input)
	a.table.RowStyles = map[int]ui.Style{
		0:         ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold),
		a.row + 1: ui.NewStyle(ui.ColorBlack, ui.ColorCyan),
	}

	for i, act := range display.Actions {
		b := a.buttons[i]
		if display.Allowed(state, act) {
			b.BorderStyle = ui.NewStyle(ui.ColorGreen)
			b.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)
		} else {
			b.BorderStyle = ui.NewStyle(plot.GridColor)
			b.TextStyle = ui.NewStyle(plot.GridColor)
		}
	}

	a.logPane.Text = strings.Join(a.logs.Tail(max(a.layout.logs.Dy()-2, 0)), "\n")
	a.status.Text = fmt.Sprintf("[%s](fg:green,mod:bold)  %s", state, a.statusText)

	items := []ui.Drawable{a.title, a.table}
	for _, b := range a.buttons {
		items = append(items, b)
	}
	items = append(items, a.logPane, a.surface, a.status)

	if a.mode == modeDialog && len(a.dialogs) > 0 {
		d := a.dialogs[0]
		r := a.layout.dialogRect(d.text)
		a.popup.SetRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
		a.popup.Title = d.title
		a.popup.Text = d.text + "\n\n[Enter to close](fg:white,mod:bold)"
		a.popup.BorderStyle = ui.NewStyle(ui.ColorGreen)
		if d.err {
			a.popup.BorderStyle = ui.NewStyle(ui.ColorRed)
		}
		items = append(items, a.popup)
	}

	a.render(items...)
}
