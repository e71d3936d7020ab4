package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
)

const (
	titleHeight  = 3
	statusHeight = 3
	buttonHeight = 3
	minLeftWidth = 24
	dialogWidth  = 56
)

var buttonLabels = map[display.Action]string{
	display.ActionDrawAxes:   "1 Draw axes",
	display.ActionPlotPoints: "2 Plot points",
	display.ActionFit:        "3 Fit data",
	display.ActionReset:      "4 Reset",
}

// layout holds the widget rectangles for one terminal size. The table takes
// the left fifth with the buttons and log pane below it; the plot takes the
// rest.
type layout struct {
	title   image.Rectangle
	table   image.Rectangle
	buttons []image.Rectangle
	logs    image.Rectangle
	plot    image.Rectangle
	status  image.Rectangle
}

func computeLayout(width, height, rows int) layout {
	left := max(width/5, minLeftWidth)
	left = min(left, width/2)
	bottom := max(height-statusHeight, titleHeight)

	l := layout{
		title:  image.Rect(0, 0, width, titleHeight),
		plot:   image.Rect(left, titleHeight, width, bottom),
		status: image.Rect(0, bottom, width, height),
	}

	y := titleHeight
	// Border, header, one line per row.
	l.table = image.Rect(0, y, left, y+rows+3)
	y = l.table.Max.Y
	for range display.Actions {
		l.buttons = append(l.buttons, image.Rect(0, y, left, y+buttonHeight))
		y += buttonHeight
	}
	l.logs = image.Rect(0, y, left, max(y, bottom))

	return l
}

// buttonAt returns the index in display.Actions of the button under p.
func (l layout) buttonAt(p image.Point) (int, bool) {
	for i, r := range l.buttons {
		if p.In(r) {
			return i, true
		}
	}
	return 0, false
}

// cellAt returns the table cell under p. The header row is not a cell.
func (l layout) cellAt(p image.Point, rows int) (row, col int, ok bool) {
	inner := l.table.Inset(1)
	if !p.In(inner) {
		return 0, 0, false
	}
	row = p.Y - inner.Min.Y - 1
	if row < 0 || row >= rows {
		return 0, 0, false
	}
	if p.X >= inner.Min.X+inner.Dx()/2 {
		col = 1
	}
	return row, col, true
}

// dialogRect centers a box for text over the plot.
func (l layout) dialogRect(text string) image.Rectangle {
	lines := strings.Split(text, "\n")
	w := min(dialogWidth, l.plot.Dx())
	h := min(len(lines)+4, l.plot.Dy())
	x := l.plot.Min.X + (l.plot.Dx()-w)/2
	y := l.plot.Min.Y + (l.plot.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// tableRows renders the samples with a header. The selected cell is marked;
// while editing it shows the input typed so far. Square brackets would be
// taken for termui style markup.
func tableRows(samples []dataset.Sample, row, col int, editing bool, input string) [][]string {
	rows := [][]string{{"Conc. (%)", "Abs. (A)"}}
	for i, s := range samples {
		cells := []string{fmt.Sprintf("%.0f%%", s.X), fmt.Sprintf("%.3f", s.Y)}
		if i == row {
			if editing {
				cells[col] = input + "_"
			}
			cells[col] = "▸" + cells[col]
		}
		rows = append(rows, cells)
	}
	return rows
}

func fieldOf(col int) dataset.Field {
	if col == 0 {
		return dataset.FieldX
	}
	return dataset.FieldY
}
