// Package alert decides when a frame's detections warrant an audio cue.
package alert

import "github.com/chewxy/math32"

// GridSize is the number of bands along each frame axis.
const GridSize = 3

// Bucket names one cell of the 3x3 screen grid: column (Left, Middle,
// Right) followed by row (Top, Middle, Bottom).
type Bucket string

// Grid cells.
const (
	BucketLT Bucket = "LT"
	BucketMT Bucket = "MT"
	BucketRT Bucket = "RT"
	BucketLM Bucket = "LM"
	BucketMM Bucket = "MM"
	BucketRM Bucket = "RM"
	BucketLB Bucket = "LB"
	BucketMB Bucket = "MB"
	BucketRB Bucket = "RB"
)

// grid is indexed [row][column].
var grid = [GridSize][GridSize]Bucket{
	{BucketLT, BucketMT, BucketRT},
	{BucketLM, BucketMM, BucketRM},
	{BucketLB, BucketMB, BucketRB},
}

// BucketOf returns the grid cell containing the point (cx, cy) of a frame
// that is frameWidth x frameHeight.
//
// Each axis is split into three equal bands and the band index is the floor
// of the coordinate over the band size, so the exact frame center is MM for
// every frame size. Points on or beyond the far edges fall into the last
// band.
//
// Arguments:
//   - cx, cy: The point in frame coordinates, usually a detection center.
//   - frameWidth, frameHeight: The frame size.
//
// Returns:
//   - Bucket: The grid cell.
//
// @example
// BucketOf(320, 240, 640, 480) // "MM"
func BucketOf(cx, cy float32, frameWidth, frameHeight int) Bucket {
	return grid[band(cy, frameHeight)][band(cx, frameWidth)]
}

func band(v float32, size int) int {
	if size <= 0 {
		return 0
	}
	step := float32(size) / GridSize
	idx := int(math32.Floor(v / step))
	switch {
	case idx < 0:
		return 0
	case idx >= GridSize:
		return GridSize - 1
	}
	return idx
}

// In reports whether b is one of the given cells.
func (b Bucket) In(cells ...Bucket) bool {
	for _, c := range cells {
		if b == c {
			return true
		}
	}
	return false
}
