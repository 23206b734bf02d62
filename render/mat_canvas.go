package render

import (
	"crypto/md5"
	"encoding/hex"
	"image"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-overlay/images"
	"gocv.io/x/gocv"
)

// hersheyPixelHeight is the cap height of FontHersheySimplex at scale 1.
const hersheyPixelHeight = 22

// MatCanvas draws onto an OpenCV matrix. The matrix stays owned by the
// caller.
type MatCanvas struct {
	mat  *gocv.Mat
	font gocv.HersheyFont
}

// NewMatCanvas wraps mat.
func NewMatCanvas(mat *gocv.Mat) *MatCanvas {
	return &MatCanvas{mat: mat, font: gocv.FontHersheySimplex}
}

// Width returns the number of columns.
func (c *MatCanvas) Width() int {
	return c.mat.Cols()
}

// Height returns the number of rows.
func (c *MatCanvas) Height() int {
	return c.mat.Rows()
}

// DrawRect draws an outlined or filled rectangle.
func (c *MatCanvas) DrawRect(r images.RectF, p Paint) {
	gocv.Rectangle(c.mat, r.ToRect(), p.Color, thickness(p))
}

// DrawRoundRect draws a rectangle whose corners are quarter ellipses with
// radii rx, ry.
func (c *MatCanvas) DrawRoundRect(r images.RectF, rx, ry float32, p Paint) {
	rx = math32.Min(rx, r.Width()/2)
	ry = math32.Min(ry, r.Height()/2)
	if rx < 1 || ry < 1 || p.Style == StyleFill {
		c.DrawRect(r, p)
		return
	}

	t := thickness(p)
	l, tp := int(r.Left), int(r.Top)
	rt, b := int(r.Right), int(r.Bottom)
	ix, iy := int(rx), int(ry)
	axes := image.Pt(ix, iy)

	gocv.Line(c.mat, image.Pt(l+ix, tp), image.Pt(rt-ix, tp), p.Color, t)
	gocv.Line(c.mat, image.Pt(l+ix, b), image.Pt(rt-ix, b), p.Color, t)
	gocv.Line(c.mat, image.Pt(l, tp+iy), image.Pt(l, b-iy), p.Color, t)
	gocv.Line(c.mat, image.Pt(rt, tp+iy), image.Pt(rt, b-iy), p.Color, t)

	gocv.Ellipse(c.mat, image.Pt(l+ix, tp+iy), axes, 0, 180, 270, p.Color, t)
	gocv.Ellipse(c.mat, image.Pt(rt-ix, tp+iy), axes, 0, 270, 360, p.Color, t)
	gocv.Ellipse(c.mat, image.Pt(rt-ix, b-iy), axes, 0, 0, 90, p.Color, t)
	gocv.Ellipse(c.mat, image.Pt(l+ix, b-iy), axes, 0, 90, 180, p.Color, t)
}

// DrawText draws text with its baseline-left corner at (x, y). A stroke
// paint thickens the glyphs by its stroke width to form an outline.
func (c *MatCanvas) DrawText(text string, x, y float32, p Paint) {
	t := textThickness(p)
	if p.Style == StyleStroke {
		t += int(math32.Max(1, p.StrokeWidth)) * 2
	}
	gocv.PutText(c.mat, text, image.Pt(int(x), int(y)), c.font, fontScale(p), p.Color, t)
}

// MeasureText returns the size of text rendered with p.
func (c *MatCanvas) MeasureText(text string, p Paint) (float32, float32) {
	size := gocv.GetTextSize(text, c.font, fontScale(p), textThickness(p))
	return float32(size.X), float32(size.Y)
}

func thickness(p Paint) int {
	if p.Style == StyleFill {
		return -1
	}
	return int(math32.Max(1, p.StrokeWidth))
}

func fontScale(p Paint) float64 {
	if p.TextSize <= 0 {
		return 1
	}
	return float64(p.TextSize) / hersheyPixelHeight
}

func textThickness(p Paint) int {
	return int(math32.Max(1, p.TextSize/hersheyPixelHeight))
}

// Checksum returns a hex digest of the canvas pixels, used to compare
// rendered overlays.
func (c *MatCanvas) Checksum() string {
	if c.mat.Empty() {
		return "empty"
	}
	data, err := c.mat.DataPtrUint8()
	if err != nil {
		return "unavailable"
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
