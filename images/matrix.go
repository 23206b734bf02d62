// Package images - Affine transforms between sensor-frame and canvas coordinates.
package images

import (
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/mat"
)

// snapEpsilon is the magnitude below which sin/cos terms are treated as zero,
// so that quarter turns produce exact axis-aligned matrices.
const snapEpsilon = 1e-12

// Matrix is a 3x3 affine transform operating on column vectors (x, y, 1).
//
// Post* operations append a transform that is applied after everything the
// matrix already does, i.e. M' = Op * M.
type Matrix struct {
	d *mat.Dense
}

// NewMatrix returns the identity transform.
func NewMatrix() *Matrix {
	return &Matrix{d: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Copy returns an independent copy of m.
func (m *Matrix) Copy() *Matrix {
	return &Matrix{d: mat.DenseCopyOf(m.d)}
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.d.At(i, j)
}

// IsIdentity reports whether m leaves every point unchanged.
func (m *Matrix) IsIdentity() bool {
	return mat.Equal(m.d, NewMatrix().d)
}

// PostTranslate appends a translation by (dx, dy).
func (m *Matrix) PostTranslate(dx, dy float64) {
	m.post(mat.NewDense(3, 3, []float64{
		1, 0, dx,
		0, 1, dy,
		0, 0, 1,
	}))
}

// PostScale appends a scale by (sx, sy) around the origin.
func (m *Matrix) PostScale(sx, sy float64) {
	m.post(mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	}))
}

// PostRotate appends a rotation around the origin. Positive degrees turn
// clockwise on a y-down canvas.
func (m *Matrix) PostRotate(degrees float64) {
	rad := degrees * math.Pi / 180
	sin, cos := snap(math.Sin(rad)), snap(math.Cos(rad))
	m.post(mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	}))
}

func (m *Matrix) post(op *mat.Dense) {
	var out mat.Dense
	out.Mul(op, m.d)
	m.d = &out
}

// MapPoint transforms a single point.
func (m *Matrix) MapPoint(x, y float32) (float32, float32) {
	fx, fy := float64(x), float64(y)
	ox := m.d.At(0, 0)*fx + m.d.At(0, 1)*fy + m.d.At(0, 2)
	oy := m.d.At(1, 0)*fx + m.d.At(1, 1)*fy + m.d.At(1, 2)
	return float32(ox), float32(oy)
}

// MapRect transforms the four corners of r and returns their bounding box.
//
// Arguments:
//   - r: The rectangle to transform.
//
// Returns:
//   - RectF: The axis-aligned bounds of the transformed corners.
//
// @example
// m := NewMatrix()
// m.PostScale(2, 2)
// out := m.MapRect(RectF{Left: 10, Top: 10, Right: 20, Bottom: 20}) // {20 20 40 40}
func (m *Matrix) MapRect(r RectF) RectF {
	x0, y0 := m.MapPoint(r.Left, r.Top)
	x1, y1 := m.MapPoint(r.Right, r.Top)
	x2, y2 := m.MapPoint(r.Right, r.Bottom)
	x3, y3 := m.MapPoint(r.Left, r.Bottom)

	return RectF{
		Left:   math32.Min(math32.Min(x0, x1), math32.Min(x2, x3)),
		Top:    math32.Min(math32.Min(y0, y1), math32.Min(y2, y3)),
		Right:  math32.Max(math32.Max(x0, x1), math32.Max(x2, x3)),
		Bottom: math32.Max(math32.Max(y0, y1), math32.Max(y2, y3)),
	}
}

// GetTransformationMatrix builds the transform from a source frame of
// srcWidth x srcHeight into a destination of dstWidth x dstHeight, applying
// the given rotation (a multiple of 90 degrees) around the frame center.
//
// When maintainAspectRatio is set both axes use the larger of the two scale
// factors, so the destination is fully covered.
//
// Arguments:
//   - srcWidth, srcHeight: The sensor frame size.
//   - dstWidth, dstHeight: The target size.
//   - rotation: Clockwise rotation in degrees.
//   - maintainAspectRatio: Whether to scale uniformly.
//
// Returns:
//   - *Matrix: The frame-to-destination transform.
//
// @example
// m := GetTransformationMatrix(640, 480, 1080, 1440, 90, false)
// r := m.MapRect(RectF{Left: 0, Top: 0, Right: 640, Bottom: 480}) // {0 0 1080 1440}
func GetTransformationMatrix(
	srcWidth, srcHeight, dstWidth, dstHeight, rotation int,
	maintainAspectRatio bool,
) *Matrix {
	m := NewMatrix()

	if rotation != 0 {
		m.PostTranslate(-float64(srcWidth)/2, -float64(srcHeight)/2)
		m.PostRotate(float64(rotation))
	}

	transpose := (abs(rotation)+90)%180 == 0
	inWidth, inHeight := srcWidth, srcHeight
	if transpose {
		inWidth, inHeight = srcHeight, srcWidth
	}

	if (inWidth != dstWidth || inHeight != dstHeight) && inWidth > 0 && inHeight > 0 {
		sx := float64(dstWidth) / float64(inWidth)
		sy := float64(dstHeight) / float64(inHeight)
		if maintainAspectRatio {
			s := math.Max(sx, sy)
			m.PostScale(s, s)
		} else {
			m.PostScale(sx, sy)
		}
	}

	if rotation != 0 {
		m.PostTranslate(float64(dstWidth)/2, float64(dstHeight)/2)
	}

	return m
}

// FitCanvas returns the destination size that fits a (possibly rotated)
// frame inside a canvas while preserving the frame aspect ratio.
//
// A sensor orientation with orientation%180 == 90 swaps the frame width and
// height before the fit.
//
// Returns:
//   - width, height: The destination size in canvas pixels, truncated.
func FitCanvas(frameWidth, frameHeight, canvasWidth, canvasHeight, orientation int) (int, int) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 0, 0
	}

	rotated := orientation%180 == 90
	fw, fh := float32(frameWidth), float32(frameHeight)
	if rotated {
		fw, fh = fh, fw
	}

	multiplier := math32.Min(float32(canvasHeight)/fh, float32(canvasWidth)/fw)
	return int(multiplier * fw), int(multiplier * fh)
}

func snap(v float64) float64 {
	if math.Abs(v) < snapEpsilon {
		return 0
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
