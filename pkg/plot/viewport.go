package plot

import (
	"image"
	"math"

	"github.com/charlie0129/absorb/pkg/config"
)

// Viewport is the fixed data range shown on the plot. It never follows the
// data: points outside it are not drawn.
type Viewport struct {
	XMin, XMax, XStep float64
	YMin, YMax, YStep float64
}

// DefaultViewport is x in [45, 85] by 5 and y in [0, 0.9] by 0.1.
func DefaultViewport() Viewport {
	return Viewport{
		XMin: 45, XMax: 85, XStep: 5,
		YMin: 0, YMax: 0.9, YStep: 0.1,
	}
}

func ViewportFromConfig(c config.Config) Viewport {
	return Viewport{
		XMin: c.XMin(), XMax: c.XMax(), XStep: c.XStep(),
		YMin: c.YMin(), YMax: c.YMax(), YStep: c.YStep(),
	}
}

func ticks(lo, hi, step float64) []float64 {
	span := math.Floor((hi-lo)/step + 1e-9)
	if !(span >= 0) {
		return nil
	}
	n := int(math.Min(span, config.MaxTicks-1)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		// Multiply rather than accumulate so 0.1 steps do not drift.
		out = append(out, lo+float64(i)*step)
	}
	return out
}

func (v Viewport) XTicks() []float64 { return ticks(v.XMin, v.XMax, v.XStep) }

func (v Viewport) YTicks() []float64 { return ticks(v.YMin, v.YMax, v.YStep) }

func (v Viewport) Contains(x, y float64) bool {
	return x >= v.XMin && x <= v.XMax && y >= v.YMin && y <= v.YMax
}

// FitSpan is the x interval the fitted line is drawn over: the viewport
// inset by a fortieth of its width on each side (46 to 84 by default).
func (v Viewport) FitSpan() (x0, x1 float64) {
	inset := (v.XMax - v.XMin) / 40
	return v.XMin + inset, v.XMax - inset
}

// ToCanvas maps a data point to braille sub-pixel coordinates inside area,
// which is given in terminal cells. Each cell holds 2x4 sub-pixels.
func (v Viewport) ToCanvas(x, y float64, area image.Rectangle) image.Point {
	w := float64(area.Dx()*2 - 1)
	h := float64(area.Dy()*4 - 1)
	px := math.Round((x - v.XMin) / (v.XMax - v.XMin) * w)
	py := math.Round((v.YMax - y) / (v.YMax - v.YMin) * h)
	return image.Pt(area.Min.X*2+int(px), area.Min.Y*4+int(py))
}

// FromCanvas is the inverse of ToCanvas.
func (v Viewport) FromCanvas(p image.Point, area image.Rectangle) (x, y float64) {
	w := float64(area.Dx()*2 - 1)
	h := float64(area.Dy()*4 - 1)
	x = v.XMin + float64(p.X-area.Min.X*2)/w*(v.XMax-v.XMin)
	y = v.YMax - float64(p.Y-area.Min.Y*4)/h*(v.YMax-v.YMin)
	return x, y
}

// ToCell maps a data point to the terminal cell containing it.
func (v Viewport) ToCell(x, y float64, area image.Rectangle) image.Point {
	p := v.ToCanvas(x, y, area)
	return image.Pt(floorDiv(p.X, 2), floorDiv(p.Y, 4))
}

// FromCell maps the center of a terminal cell back to data coordinates.
func (v Viewport) FromCell(p image.Point, area image.Rectangle) (x, y float64) {
	x = v.XMin + (float64(p.X-area.Min.X)+0.5)/float64(area.Dx())*(v.XMax-v.XMin)
	y = v.YMax - (float64(p.Y-area.Min.Y)+0.5)/float64(area.Dy())*(v.YMax-v.YMin)
	return x, y
}

// ClipSegment clips the segment (x0,y0)-(x1,y1) to the viewport
// (Liang-Barsky). ok is false when nothing is left or any coordinate is not
// finite.
func (v Viewport) ClipSegment(x0, y0, x1, y1 float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	if !finite(x0, y0, x1, y1) {
		return 0, 0, 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [][2]float64{
		{-dx, x0 - v.XMin},
		{dx, v.XMax - x0},
		{-dy, y0 - v.YMin},
		{dy, v.YMax - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}
	cx0, cy0, cx1, cy1 = x0+t0*dx, y0+t0*dy, x0+t1*dx, y0+t1*dy
	if !finite(dx, dy, cx0, cy0, cx1, cy1) {
		return 0, 0, 0, 0, false
	}
	return cx0, cy0, cx1, cy1, true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
