package plot

import (
	"image"
	"math"
	"strings"
	"testing"

	ui "github.com/gizak/termui/v3"

	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/fit"
	"github.com/charlie0129/absorb/pkg/session"
)

func render(t *testing.T, s *Surface) *ui.Buffer {
	t.Helper()
	buf := ui.NewBuffer(s.GetRect())
	s.Draw(buf)
	return buf
}

func countColor(buf *ui.Buffer, area image.Rectangle, c ui.Color) int {
	n := 0
	for p, cell := range buf.CellMap {
		if p.In(area) && cell.Style.Fg == c && cell.Rune != ' ' {
			n++
		}
	}
	return n
}

func text(buf *ui.Buffer) string {
	b := &strings.Builder{}
	r := buf.Rectangle
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.WriteRune(buf.GetCell(image.Pt(x, y)).Rune)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func newTestSurface() *Surface {
	s := NewSurface(DefaultViewport(), Labels{X: "Concentration (%)", Y: "Absorbance (A)"})
	s.SetRect(0, 0, 70, 30)
	return s
}

func drive(t *testing.T, actions ...display.Action) *session.Session {
	t.Helper()
	sess := session.New()
	for _, a := range actions {
		if _, err := sess.Dispatch(a); err != nil {
			t.Fatalf("Dispatch(%s) returned error: %v", a, err)
		}
	}
	return sess
}

func TestDrawBlank(t *testing.T) {
	s := newTestSurface()
	buf := render(t, s)
	area := s.PlotArea()

	if countColor(buf, area, GridColor) == 0 {
		t.Fatalf("expected grid in blank state")
	}
	for _, c := range []ui.Color{AxisColor, PointColor, FitColor} {
		if n := countColor(buf, area, c); n != 0 {
			t.Fatalf("expected no cells of color %d in blank state, got %d", c, n)
		}
	}
	if strings.Contains(text(buf), "Concentration") {
		t.Fatalf("axis title drawn before axes were established")
	}
}

func TestDrawAxes(t *testing.T) {
	s := newTestSurface()
	s.SetFrame(drive(t, display.ActionDrawAxes).Frame())
	buf := render(t, s)

	if countColor(buf, s.PlotArea(), AxisColor) == 0 {
		t.Fatalf("expected axis lines")
	}
	out := text(buf)
	for _, want := range []string{"45", "85", "0.9", "Concentration (%)", "Absorbance (A)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendering:\n%s", want, out)
		}
	}
	if countColor(buf, s.PlotArea(), PointColor) != 0 {
		t.Fatalf("points drawn before they were plotted")
	}
}

func TestDrawPoints(t *testing.T) {
	s := newTestSurface()
	s.SetFrame(drive(t, display.ActionDrawAxes, display.ActionPlotPoints).Frame())
	buf := render(t, s)

	if n := countColor(buf, s.PlotArea(), PointColor); n < 7 {
		t.Fatalf("expected at least 7 marker cells, got %d", n)
	}
	if countColor(buf, s.PlotArea(), FitColor) != 0 {
		t.Fatalf("fit line drawn before fitting")
	}
}

func TestDrawPointsOutsideViewport(t *testing.T) {
	s := newTestSurface()
	s.SetFrame(session.Frame{
		State:   display.StatePointsDrawn,
		Samples: []dataset.Sample{{X: 100, Y: 2}, {X: 10, Y: -1}},
	})
	buf := render(t, s)
	if n := countColor(buf, s.PlotArea(), PointColor); n != 0 {
		t.Fatalf("expected out-of-range points to be skipped, got %d cells", n)
	}
}

func TestDrawFitAndAnnotation(t *testing.T) {
	sess := drive(t, display.ActionDrawAxes, display.ActionPlotPoints, display.ActionFit)
	s := newTestSurface()
	s.SetFrame(sess.Frame())
	buf := render(t, s)
	if countColor(buf, s.PlotArea(), FitColor) == 0 {
		t.Fatalf("expected fit line")
	}

	if _, err := sess.Annotate(80); err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	s.SetFrame(sess.Frame())
	out := text(render(t, s))
	for _, want := range []string{"x=80%", "y=0.744"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendering:\n%s", want, out)
		}
	}
}

func TestDrawNonFiniteFit(t *testing.T) {
	frame := drive(t, display.ActionDrawAxes, display.ActionPlotPoints, display.ActionFit).Frame()
	for _, r := range []fit.Result{
		{Slope: math.NaN(), Intercept: math.NaN(), N: 7},
		{Slope: math.Inf(1), Intercept: 0, N: 7},
		{Slope: 0, Intercept: math.Inf(-1), N: 7},
	} {
		s := newTestSurface()
		frame.Fit = &r
		s.SetFrame(frame)

		buf := render(t, s)
		if n := countColor(buf, s.PlotArea(), FitColor); n != 0 {
			t.Fatalf("slope %v intercept %v: expected no fit line, got %d cells", r.Slope, r.Intercept, n)
		}
		if countColor(buf, s.PlotArea(), PointColor) == 0 {
			t.Fatalf("slope %v intercept %v: expected points to be drawn", r.Slope, r.Intercept)
		}
	}
}

func TestDrawDenseGrid(t *testing.T) {
	v := DefaultViewport()
	v.YStep = 1e-12
	s := NewSurface(v, Labels{})
	s.SetRect(0, 0, 70, 30)
	s.SetFrame(drive(t, display.ActionDrawAxes).Frame())

	if out := text(render(t, s)); !strings.Contains(out, "45") {
		t.Fatalf("expected x tick labels in rendering:\n%s", out)
	}
}

func TestString(t *testing.T) {
	s := newTestSurface()
	s.SetFrame(drive(t, display.ActionDrawAxes, display.ActionPlotPoints).Frame())
	if got := s.String(); !strings.HasPrefix(got, "surface(PointsDrawn, ") {
		t.Fatalf("unexpected String %q", got)
	}
}

func TestDataAt(t *testing.T) {
	s := newTestSurface()
	area := s.PlotArea()

	if _, _, ok := s.DataAt(image.Pt(0, 0)); ok {
		t.Fatalf("border cell should not map to data")
	}
	x, y, ok := s.DataAt(area.Min)
	if !ok {
		t.Fatalf("expected plot area corner to map to data")
	}
	if x < 45 || x > 46 || y > 0.9 || y < 0.8 {
		t.Fatalf("unexpected corner data point (%v, %v)", x, y)
	}
}

func TestClose(t *testing.T) {
	s := newTestSurface()
	s.SetFrame(drive(t, display.ActionDrawAxes, display.ActionPlotPoints).Frame())

	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	buf := render(t, s)
	if n := countColor(buf, s.PlotArea(), PointColor); n != 0 {
		t.Fatalf("closed surface still draws points")
	}
}
