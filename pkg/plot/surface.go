// Package plot draws a session frame onto a termui buffer: grid, axes,
// scatter markers, the fitted line and the value label.
package plot

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"sync"

	ui "github.com/gizak/termui/v3"

	"github.com/charlie0129/absorb/pkg/annotation"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/session"
)

// Palette. termui runs the terminal in 256-color mode.
var (
	GridColor       = ui.Color(240)
	AxisColor       = ui.ColorGreen
	PointColor      = ui.ColorBlue
	FitColor        = ui.ColorRed
	AnnotationColor = ui.Color(88)
)

var colorNames = map[string]ui.Color{
	"darkred": AnnotationColor,
	"red":     ui.ColorRed,
	"white":   ui.ColorWhite,
	"black":   ui.ColorBlack,
	"green":   ui.ColorGreen,
	"blue":    ui.ColorBlue,
}

func colorOf(name string) ui.Color {
	if c, ok := colorNames[name]; ok {
		return c
	}
	return ui.ColorClear
}

// Margins around the plot area, in cells, for tick labels and axis titles.
const (
	marginLeft   = 6
	marginBottom = 2
	marginTop    = 1
	marginRight  = 2
)

type Labels struct {
	X string
	Y string
}

// Surface is a termui widget. Set the frame with SetFrame and render it with
// ui.Render like any other widget.
type Surface struct {
	ui.Block
	Viewport Viewport
	Labels   Labels

	frame  session.Frame
	closed bool
	once   sync.Once
}

func NewSurface(v Viewport, labels Labels) *Surface {
	return &Surface{
		Block:    *ui.NewBlock(),
		Viewport: v,
		Labels:   labels,
		frame:    session.Frame{State: display.StateBlank},
	}
}

func (s *Surface) SetFrame(f session.Frame) {
	s.frame = f
}

// PlotArea is the part of the widget the viewport is mapped onto.
func (s *Surface) PlotArea() image.Rectangle {
	in := s.Inner
	return image.Rect(
		in.Min.X+marginLeft,
		in.Min.Y+marginTop,
		in.Max.X-marginRight,
		in.Max.Y-marginBottom,
	)
}

// DataAt maps a terminal cell to data coordinates. ok is false outside the
// plot area.
func (s *Surface) DataAt(p image.Point) (x, y float64, ok bool) {
	area := s.PlotArea()
	if area.Empty() || !p.In(area) {
		return 0, 0, false
	}
	x, y = s.Viewport.FromCell(p, area)
	return x, y, true
}

// RowsPerUnit is how many terminal rows one data unit of y spans.
func (s *Surface) RowsPerUnit() float64 {
	return float64(s.PlotArea().Dy()) / (s.Viewport.YMax - s.Viewport.YMin)
}

// Close releases the surface. Later calls do nothing and later draws are
// blank.
func (s *Surface) Close() error {
	s.once.Do(func() {
		s.Lock()
		defer s.Unlock()
		s.closed = true
		s.frame = session.Frame{}
	})
	return nil
}

func (s *Surface) Draw(buf *ui.Buffer) {
	s.Block.Draw(buf)
	if s.closed {
		return
	}

	area := s.PlotArea()
	if area.Dx() < 2 || area.Dy() < 2 {
		return
	}

	c := ui.NewCanvas()
	c.SetRect(area.Min.X, area.Min.Y, area.Max.X, area.Max.Y)

	s.drawGrid(c, area)

	f := s.frame
	if f.State.AtLeast(display.StateAxesDrawn) {
		s.drawAxes(c, area)
	}
	if f.State.AtLeast(display.StatePointsDrawn) {
		s.drawPoints(c, area)
	}
	if f.State == display.StateFitDrawn && f.Fit != nil {
		s.drawFit(c, area)
	}
	if f.State == display.StateFitDrawn && f.Annotation != nil {
		s.drawArrow(c, area, *f.Annotation)
	}

	c.Draw(buf)

	if f.State.AtLeast(display.StateAxesDrawn) {
		s.drawTickLabels(buf, area)
	}
	if f.State == display.StateFitDrawn && f.Annotation != nil {
		s.drawLabel(buf, area, *f.Annotation)
	}
}

func (s *Surface) drawGrid(c *ui.Canvas, area image.Rectangle) {
	v := s.Viewport
	top := area.Min.Y * 4
	bottom := area.Max.Y*4 - 1
	left := area.Min.X * 2
	right := area.Max.X*2 - 1

	for _, x := range v.XTicks() {
		px := v.ToCanvas(x, v.YMin, area).X
		for py := top; py <= bottom; py += 2 {
			c.SetPoint(image.Pt(px, py), GridColor)
		}
	}
	for _, y := range v.YTicks() {
		py := v.ToCanvas(v.XMin, y, area).Y
		for px := left; px <= right; px += 2 {
			c.SetPoint(image.Pt(px, py), GridColor)
		}
	}
}

func (s *Surface) drawAxes(c *ui.Canvas, area image.Rectangle) {
	left := area.Min.X * 2
	bottom := area.Max.Y*4 - 1
	segment(c, image.Pt(left, area.Min.Y*4), image.Pt(left, bottom), AxisColor)
	segment(c, image.Pt(left, bottom), image.Pt(area.Max.X*2-1, bottom), AxisColor)
}

// segment draws p0-p1 inclusive. Canvas.SetLine skips vertical lines and the
// last point.
func segment(c *ui.Canvas, p0, p1 image.Point, color ui.Color) {
	if p0.X == p1.X {
		lo, hi := min(p0.Y, p1.Y), max(p0.Y, p1.Y)
		for y := lo; y <= hi; y++ {
			c.SetPoint(image.Pt(p0.X, y), color)
		}
		return
	}
	c.SetLine(p0, p1, color)
	c.SetPoint(p1, color)
}

func (s *Surface) drawPoints(c *ui.Canvas, area image.Rectangle) {
	for _, p := range s.frame.Samples {
		if !s.Viewport.Contains(p.X, p.Y) {
			continue
		}
		s.marker(c, area, p.X, p.Y, PointColor)
	}
}

func (s *Surface) marker(c *ui.Canvas, area image.Rectangle, x, y float64, color ui.Color) {
	center := s.Viewport.ToCanvas(x, y, area)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			c.SetPoint(center.Add(image.Pt(dx, dy)), color)
		}
	}
}

func (s *Surface) drawFit(c *ui.Canvas, area image.Rectangle) {
	r := s.frame.Fit
	x0, x1 := s.Viewport.FitSpan()
	cx0, cy0, cx1, cy1, ok := s.Viewport.ClipSegment(x0, r.PredictY(x0), x1, r.PredictY(x1))
	if !ok {
		return
	}
	segment(c, s.Viewport.ToCanvas(cx0, cy0, area), s.Viewport.ToCanvas(cx1, cy1, area), FitColor)
}

func (s *Surface) drawArrow(c *ui.Canvas, area image.Rectangle, p annotation.Placement) {
	if !s.Viewport.Contains(p.X, p.Y) {
		return
	}
	color := colorOf(p.Style.Border)
	if p.Style.Arrow {
		lx, ly, tx, ty, ok := s.Viewport.ClipSegment(p.LabelX, p.LabelY, p.X, p.Y)
		if ok {
			segment(c, s.Viewport.ToCanvas(lx, ly, area), s.Viewport.ToCanvas(tx, ty, area), color)
		}
	}
	s.marker(c, area, p.X, p.Y, color)
}

func (s *Surface) drawTickLabels(buf *ui.Buffer, area image.Rectangle) {
	v := s.Viewport
	style := ui.NewStyle(AxisColor, ui.ColorClear, ui.ModifierBold)

	for _, x := range v.XTicks() {
		text := formatTick(x, v.XStep, v.XMin)
		cell := v.ToCell(x, v.YMin, area)
		buf.SetString(text, style, image.Pt(cell.X-len(text)/2, area.Max.Y))
	}
	for _, y := range v.YTicks() {
		text := formatTick(y, v.YStep, v.YMin)
		cell := v.ToCell(v.XMin, y, area)
		buf.SetString(text, style, image.Pt(area.Min.X-len(text)-1, cell.Y))
	}

	if s.Labels.X != "" {
		x := area.Min.X + (area.Dx()-len([]rune(s.Labels.X)))/2
		buf.SetString(s.Labels.X, style, image.Pt(x, area.Max.Y+1))
	}
	if s.Labels.Y != "" {
		buf.SetString(s.Labels.Y, style, image.Pt(s.Inner.Min.X, area.Min.Y-1))
	}
}

func (s *Surface) drawLabel(buf *ui.Buffer, area image.Rectangle, p annotation.Placement) {
	mod := ui.ModifierClear
	if p.Style.Bold {
		mod = ui.ModifierBold
	}
	style := ui.NewStyle(colorOf(p.Style.Text), colorOf(p.Style.Fill), mod)

	width := 0
	for _, l := range p.Lines {
		width = max(width, len([]rune(l)))
	}
	width += 2

	anchor := s.Viewport.ToCell(p.LabelX, p.LabelY, area)
	// Keep the box inside the plot area even when the offset points outside.
	x := min(max(anchor.X, area.Min.X), area.Max.X-width)
	y := min(max(anchor.Y, area.Min.Y), area.Max.Y-len(p.Lines))

	for i, l := range p.Lines {
		text := " " + l
		for len([]rune(text)) < width {
			text += " "
		}
		buf.SetString(text, style, image.Pt(x, y+i))
	}
}

func formatTick(v float64, peers ...float64) string {
	decimals := decimalsOf(v)
	for _, o := range peers {
		decimals = max(decimals, decimalsOf(o))
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// decimalsOf is the number of decimals needed to print v exactly, capped at 6.
func decimalsOf(v float64) int {
	scale := 1.0
	for d := 0; d < 6; d++ {
		if math.Abs(v*scale-math.Round(v*scale)) < 1e-6 {
			return d
		}
		scale *= 10
	}
	return 6
}

// String is used in logs.
func (s *Surface) String() string {
	return fmt.Sprintf("surface(%s, %v)", s.frame.State, s.PlotArea())
}
