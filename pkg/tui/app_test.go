package tui

import (
	"bytes"
	"image"
	"math"
	"strings"
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/absorb/pkg/config"
	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/utils/ptr"
)

func newTestApp(t *testing.T, raw *config.RawFileConfig) *App {
	t.Helper()
	a := New(config.NewFileFromConfig(raw, ""))
	a.render = func(...ui.Drawable) {}
	a.resize(120, 40)
	t.Cleanup(a.Close)
	return a
}

// press feeds key IDs and redraws after each one like the event loop does.
func press(t *testing.T, a *App, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if a.handle(ui.Event{Type: ui.KeyboardEvent, ID: id}) {
			t.Fatalf("key %q quit the app", id)
		}
		a.draw()
	}
}

func click(a *App, p image.Point) {
	a.handle(ui.Event{Type: ui.MouseEvent, ID: "<MouseLeft>", Payload: ui.Mouse{X: p.X, Y: p.Y}})
	a.draw()
}

func topDialog(t *testing.T, a *App) dialog {
	t.Helper()
	if a.mode != modeDialog || len(a.dialogs) == 0 {
		t.Fatalf("expected a dialog, mode=%v dialogs=%d", a.mode, len(a.dialogs))
	}
	return a.dialogs[0]
}

func fitted(t *testing.T, a *App) {
	t.Helper()
	press(t, a, "1", "<Enter>", "2", "<Enter>", "3", "<Enter>")
	if got := a.session.State(); got != display.StateFitDrawn {
		t.Fatalf("expected %s, got %s", display.StateFitDrawn, got)
	}
}

func TestIgnoredActionShowsNoDialog(t *testing.T) {
	a := newTestApp(t, nil)
	press(t, a, "3")

	if a.mode != modeNormal {
		t.Fatalf("expected normal mode, got %v", a.mode)
	}
	if a.session.State() != display.StateBlank {
		t.Fatalf("state changed to %s", a.session.State())
	}
	if !strings.Contains(a.statusText, "needs") {
		t.Fatalf("expected status to explain the ignored action, got %q", a.statusText)
	}
}

func TestProgressionDialogs(t *testing.T) {
	a := newTestApp(t, nil)

	press(t, a, "1")
	if d := topDialog(t, a); d.text != "Axes established" || d.err {
		t.Fatalf("unexpected dialog %+v", d)
	}

	// Keys other than Enter/Esc do nothing while a dialog is open.
	press(t, a, "2")
	if a.session.State() != display.StateAxesDrawn {
		t.Fatalf("action dispatched behind a dialog")
	}

	press(t, a, "<Enter>", "p")
	if d := topDialog(t, a); d.text != "Points plotted" {
		t.Fatalf("unexpected dialog %+v", d)
	}

	press(t, a, "<Escape>", "f")
	d := topDialog(t, a)
	for _, want := range []string{"A = 0.0207x - 0.9098", "r = 0.997"} {
		if !strings.Contains(d.text, want) {
			t.Fatalf("expected %q in fit dialog %q", want, d.text)
		}
	}
	if len(a.dialogs) != 1 {
		t.Fatalf("expected a single fit dialog, got %d", len(a.dialogs))
	}

	press(t, a, "<Enter>", "r")
	if d := topDialog(t, a); d.text != "Reset complete" {
		t.Fatalf("unexpected dialog %+v", d)
	}
	if a.session.State() != display.StateBlank {
		t.Fatalf("expected blank state after reset")
	}
}

func TestButtonClick(t *testing.T) {
	a := newTestApp(t, nil)
	b := a.layout.buttons[0]
	click(a, b.Min.Add(image.Pt(2, 1)))

	if a.session.State() != display.StateAxesDrawn {
		t.Fatalf("expected button to draw axes, state %s", a.session.State())
	}

	// A click anywhere dismisses the dialog.
	click(a, image.Pt(0, 0))
	if a.mode != modeNormal {
		t.Fatalf("expected dialog dismissed")
	}
}

func TestTableClickSelectsCell(t *testing.T) {
	a := newTestApp(t, nil)
	inner := a.layout.table.Inset(1)
	click(a, image.Pt(inner.Max.X-2, inner.Min.Y+1+3))

	if a.row != 3 || a.col != 1 {
		t.Fatalf("expected row 3 col 1, got row %d col %d", a.row, a.col)
	}
}

func TestCursorKeys(t *testing.T) {
	a := newTestApp(t, nil)

	press(t, a, "]")
	if a.session.Frame().Annotation != nil {
		t.Fatalf("cursor moved before fitting")
	}

	fitted(t, a)
	press(t, a, "]")
	p := a.session.Frame().Annotation
	if p == nil || p.X != 65 {
		t.Fatalf("expected cursor to start mid-line at 65, got %+v", p)
	}
	press(t, a, "]", "]", "[")
	if p := a.session.Frame().Annotation; p.X != 66 {
		t.Fatalf("expected 66, got %v", p.X)
	}

	press(t, a, "<Escape>")
	if a.session.Frame().Annotation != nil {
		t.Fatalf("expected Esc to clear the annotation")
	}
}

func TestCursorStopsAtLineEnds(t *testing.T) {
	a := newTestApp(t, nil)
	fitted(t, a)

	for i := 0; i < 40; i++ {
		press(t, a, "]")
	}
	if p := a.session.Frame().Annotation; p.X != 84 {
		t.Fatalf("expected cursor clamped at 84, got %v", p.X)
	}
}

func TestClickOnLine(t *testing.T) {
	a := newTestApp(t, nil)
	fitted(t, a)

	r, err := a.session.Fit()
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	area := a.surface.PlotArea()
	click(a, a.surface.Viewport.ToCell(70, r.PredictY(70), area))

	p := a.session.Frame().Annotation
	if p == nil {
		t.Fatalf("expected click on the line to annotate it")
	}
	if math.Abs(p.X-70) > 0.5 {
		t.Fatalf("expected annotation near 70, got %v", p.X)
	}

	click(a, a.surface.Viewport.ToCell(50, 0.8, area))
	if a.session.Frame().Annotation != nil {
		t.Fatalf("expected click away from the line to clear the annotation")
	}
}

func TestEditCell(t *testing.T) {
	a := newTestApp(t, nil)
	press(t, a, "<Down>", "<Right>", "e", "0", ".", "2", "x", "5", "<Backspace>", "<Enter>")

	if a.mode != modeNormal {
		t.Fatalf("expected normal mode after commit, got %v", a.mode)
	}
	if got := a.session.Samples()[1].Y; got != 0.2 {
		t.Fatalf("expected 0.2, got %v", got)
	}
	if !strings.Contains(a.statusText, "Redraw") {
		t.Fatalf("unexpected status %q", a.statusText)
	}
}

func TestEditRejectsInvalidInput(t *testing.T) {
	a := newTestApp(t, nil)
	before := a.session.Samples()
	press(t, a, "e", "-", "<Enter>")

	d := topDialog(t, a)
	if !d.err || d.title != "Invalid value" {
		t.Fatalf("unexpected dialog %+v", d)
	}
	if !dataset.New(before).Equal(a.session.Samples()) {
		t.Fatalf("table changed after a rejected edit")
	}
}

func TestEditCancel(t *testing.T) {
	a := newTestApp(t, nil)
	press(t, a, "e", "9", "<Escape>")

	if a.mode != modeNormal {
		t.Fatalf("expected normal mode")
	}
	if got := a.session.Samples()[0].X; got != 50 {
		t.Fatalf("cancelled edit changed the table: %v", got)
	}
}

func TestEditDisabled(t *testing.T) {
	a := newTestApp(t, &config.RawFileConfig{Editable: ptr.To(false)})
	press(t, a, "e")

	if a.mode != modeNormal {
		t.Fatalf("expected editing to stay off")
	}
	if !strings.Contains(a.statusText, "disabled") {
		t.Fatalf("unexpected status %q", a.statusText)
	}
}

func TestFitErrorDialog(t *testing.T) {
	a := newTestApp(t, nil)
	for i := range a.session.Samples() {
		if err := a.session.EditValue(i, dataset.FieldX, 60); err != nil {
			t.Fatalf("EditValue returned error: %v", err)
		}
	}
	press(t, a, "1", "<Enter>", "2", "<Enter>", "3")

	d := topDialog(t, a)
	if !d.err || d.title != "Cannot fit" {
		t.Fatalf("unexpected dialog %+v", d)
	}
	if a.session.State() != display.StatePointsDrawn {
		t.Fatalf("state changed after a failed fit: %s", a.session.State())
	}
}

func TestOverflowingFitDialog(t *testing.T) {
	a := newTestApp(t, nil)
	if err := a.session.EditValue(2, dataset.FieldX, 1e200); err != nil {
		t.Fatalf("EditValue returned error: %v", err)
	}
	press(t, a, "1", "<Enter>", "2", "<Enter>", "3")

	d := topDialog(t, a)
	if !d.err || d.title != "Cannot fit" {
		t.Fatalf("unexpected dialog %+v", d)
	}
	if a.session.State() != display.StatePointsDrawn {
		t.Fatalf("state changed after a failed fit: %s", a.session.State())
	}
}

func TestQuit(t *testing.T) {
	a := newTestApp(t, nil)
	if !a.handle(ui.Event{Type: ui.KeyboardEvent, ID: "q"}) {
		t.Fatalf("expected q to quit")
	}

	press(t, a, "1")
	if !a.handle(ui.Event{Type: ui.KeyboardEvent, ID: "<C-c>"}) {
		t.Fatalf("expected C-c to quit with a dialog open")
	}
}

func TestResize(t *testing.T) {
	a := newTestApp(t, nil)
	a.handle(ui.Event{Type: ui.ResizeEvent, ID: "<Resize>", Payload: ui.Resize{Width: 200, Height: 60}})

	if got := a.surface.GetRect(); got != a.layout.plot || got.Max != image.Pt(200, 57) {
		t.Fatalf("surface not resized: %v", got)
	}
}

func TestShutdownLogsToRestoredOutput(t *testing.T) {
	out := &bytes.Buffer{}
	std := logrus.StandardLogger()
	oldOut, oldLevel := std.Out, std.GetLevel()
	std.SetOutput(out)
	std.SetLevel(logrus.DebugLevel)
	defer func() {
		std.SetOutput(oldOut)
		std.SetLevel(oldLevel)
	}()

	a := newTestApp(t, nil)
	a.shutdown(divertLogs(a.logs))

	if !strings.Contains(out.String(), "terminal ui closed") {
		t.Fatalf("expected teardown message on the restored output, got %q", out.String())
	}
	for _, line := range a.logs.Tail(100) {
		if strings.Contains(line, "terminal ui closed") {
			t.Fatalf("teardown message went to the log pane: %q", line)
		}
	}
	if _, ok := <-a.sub; ok {
		t.Fatalf("expected subscription closed")
	}
}

func TestCloseTwice(t *testing.T) {
	a := newTestApp(t, nil)
	a.Close()
	a.Close()

	if _, ok := <-a.sub; ok {
		t.Fatalf("expected subscription closed")
	}
}
