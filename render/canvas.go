// Package render draws detection overlays onto a drawing surface.
package render

import (
	"image/color"

	"github.com/nvr-ai/go-overlay/images"
)

// Style selects whether shapes are outlined or filled.
type Style int

const (
	// StyleStroke outlines shapes.
	StyleStroke Style = iota
	// StyleFill fills shapes.
	StyleFill
)

// Paint carries the drawing attributes for one primitive.
type Paint struct {
	Color       color.RGBA
	Style       Style
	StrokeWidth float32
	// TextSize is the text height in canvas pixels.
	TextSize float32
}

// Canvas is the drawing surface provided by the host.
type Canvas interface {
	Width() int
	Height() int
	DrawRect(r images.RectF, p Paint)
	DrawRoundRect(r images.RectF, rx, ry float32, p Paint)
	DrawText(text string, x, y float32, p Paint)
	// MeasureText returns the width and height text would occupy.
	MeasureText(text string, p Paint) (float32, float32)
}

func rect(left, top, right, bottom float32) images.RectF {
	return images.RectF{Left: left, Top: top, Right: right, Bottom: bottom}
}
