package model

// Rect is a rectangle in PDF user-space points, origin at the bottom-left
// of the page. X0/Y0 is the lower-left corner, X1/Y1 the upper-right.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// IsZero reports whether the rectangle is the zero value.
func (r Rect) IsZero() bool {
	return r.X0 == 0 && r.Y0 == 0 && r.X1 == 0 && r.Y1 == 0
}

// FieldSpec describes where and how one overlay-mode field is drawn:
// the text origin, the font and size, and the rectangle cleared to the
// background color before drawing.
type FieldSpec struct {
	X         float64
	Y         float64
	Font      string
	Size      float64
	ClearRect Rect
}

// OverlayField pairs a FieldSpec with the text to draw at it.
type OverlayField struct {
	Spec FieldSpec
	Text string
}

// TextReplacement is one in-place substitution for replace mode: every
// occurrence of Old inside the page's text runs becomes New.
type TextReplacement struct {
	Old string
	New string
}

// Color is an RGB color with components in [0,1], the PDF convention.
type Color struct {
	R float64
	G float64
	B float64
}

// White is the default clear-rect fill, matching a plain document background.
var White = Color{R: 1, G: 1, B: 1}
