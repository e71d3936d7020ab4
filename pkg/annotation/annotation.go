// Package annotation decides where and how the value label for a point on
// the fitted line is drawn. It is pure presentation logic: the position
// depends only on which x bucket the point falls in.
package annotation

import "fmt"

// Bucket groups x values by where the label fits on the default viewport.
type Bucket int

const (
	// BucketLow is the left edge (x < 54); the label goes above.
	BucketLow Bucket = iota
	// BucketMid places the label up and to the left.
	BucketMid
	// BucketHigh is the upper right (x > 75); the label goes below left.
	BucketHigh
)

func (b Bucket) String() string {
	switch b {
	case BucketLow:
		return "low"
	case BucketHigh:
		return "high"
	}
	return "mid"
}

// Bucket boundaries in data units.
const (
	LowBelow  = 54.0
	HighAbove = 75.0
)

// Offset is a displacement in data units.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

var offsets = map[Bucket]Offset{
	BucketLow:  {DX: -3, DY: 0.1},
	BucketMid:  {DX: -8, DY: 0.085},
	BucketHigh: {DX: -6, DY: -0.3},
}

// Style describes the label box. Colors are names the surface maps to its
// own palette.
type Style struct {
	Text   string `json:"text"`
	Border string `json:"border"`
	Fill   string `json:"fill"`
	Bold   bool   `json:"bold"`
	Arrow  bool   `json:"arrow"`
}

// DefaultStyle is the dark-red boxed label with an arrow to the point.
var DefaultStyle = Style{
	Text:   "darkred",
	Border: "darkred",
	Fill:   "white",
	Bold:   true,
	Arrow:  true,
}

// Placement is the full result for one annotated point.
type Placement struct {
	// X, Y is the annotated point on the line.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// LabelX, LabelY is where the label is anchored.
	LabelX float64 `json:"labelX"`
	LabelY float64 `json:"labelY"`

	Offset Offset   `json:"offset"`
	Bucket Bucket   `json:"bucket"`
	Lines  []string `json:"lines"`
	Style  Style    `json:"style"`
}

// BucketOf classifies x.
func BucketOf(x float64) Bucket {
	switch {
	case x > HighAbove:
		return BucketHigh
	case x < LowBelow:
		return BucketLow
	}
	return BucketMid
}

// Label is the text shown for a point, one entry per line.
func Label(x, y float64) []string {
	return []string{
		fmt.Sprintf("x=%.0f%%", x),
		fmt.Sprintf("y=%.3f", y),
	}
}

// Place maps a point to its label placement.
func Place(x, y float64) Placement {
	b := BucketOf(x)
	off := offsets[b]
	return Placement{
		X:      x,
		Y:      y,
		LabelX: x + off.DX,
		LabelY: y + off.DY,
		Offset: off,
		Bucket: b,
		Lines:  Label(x, y),
		Style:  DefaultStyle,
	}
}
