package render

import "image/color"

// Palette is the ordered set of box colors. Tracked object i is drawn with
// Palette[i], so its length caps the number of boxes per frame.
var Palette = []color.RGBA{
	{R: 0x00, G: 0x00, B: 0xFF, A: 0xFF}, // blue
	{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}, // red
	{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}, // green
	{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}, // yellow
	{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}, // cyan
	{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}, // magenta
	{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, // white
	{R: 0x55, G: 0xFF, B: 0x55, A: 0xFF},
	{R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF},
	{R: 0xFF, G: 0x88, B: 0x88, A: 0xFF},
	{R: 0xAA, G: 0xAA, B: 0xFF, A: 0xFF},
	{R: 0xFF, G: 0xFF, B: 0xAA, A: 0xFF},
	{R: 0x55, G: 0xAA, B: 0xAA, A: 0xFF},
	{R: 0xAA, G: 0x33, B: 0xAA, A: 0xFF},
	{R: 0x0D, G: 0x00, B: 0x68, A: 0xFF},
}

// Common colors.
var (
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Black = color.RGBA{A: 0xFF}
	Red   = color.RGBA{R: 0xFF, A: 0xFF}
)
