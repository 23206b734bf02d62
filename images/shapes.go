// Package images - Geometry utilities for frame and canvas coordinates.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// RectF is a floating point rectangle in either sensor-frame or canvas space.
type RectF struct {
	// Left,Top is the top-left corner; Right,Bottom the bottom-right corner.
	Left, Top, Right, Bottom float32
}

// NewRectF returns a canonical rectangle from two arbitrary corners.
//
// Arguments:
//   - x1, y1: The first corner.
//   - x2, y2: The opposite corner.
//
// Returns:
//   - RectF: A rectangle with Left <= Right and Top <= Bottom.
//
// @example
// r := NewRectF(200, 300, 100, 100) // {100 100 200 300}
func NewRectF(x1, y1, x2, y2 float32) RectF {
	return RectF{
		Left:   math32.Min(x1, x2),
		Top:    math32.Min(y1, y2),
		Right:  math32.Max(x1, x2),
		Bottom: math32.Max(y1, y2),
	}
}

// Width returns the horizontal extent of the rectangle.
func (r RectF) Width() float32 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the rectangle.
func (r RectF) Height() float32 {
	return r.Bottom - r.Top
}

// Area returns Width*Height.
func (r RectF) Area() float32 {
	return r.Width() * r.Height()
}

// CenterX returns the horizontal center.
func (r RectF) CenterX() float32 {
	return (r.Left + r.Right) / 2
}

// CenterY returns the vertical center.
func (r RectF) CenterY() float32 {
	return (r.Top + r.Bottom) / 2
}

// Empty reports whether the rectangle has no area.
func (r RectF) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// ToRect converts the rectangle to an image.Rectangle.
//
// Fractional pixels are rounded outwards so that the integral rectangle
// always covers the floating point one.
func (r RectF) ToRect() image.Rectangle {
	return image.Rect(
		int(math32.Floor(r.Left)),
		int(math32.Floor(r.Top)),
		int(math32.Ceil(r.Right)),
		int(math32.Ceil(r.Bottom)),
	).Canon()
}

func (r RectF) String() string {
	return fmt.Sprintf("RectF(%.1f, %.1f, %.1f, %.1f)", r.Left, r.Top, r.Right, r.Bottom)
}
