// Package rendertest provides a Canvas that records draw calls for tests.
package rendertest

import (
	"sync"

	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/render"
)

// Op names a recorded primitive.
type Op string

// Recorded primitives.
const (
	OpRect      Op = "rect"
	OpRoundRect Op = "round_rect"
	OpText      Op = "text"
)

// Call is one recorded draw call.
type Call struct {
	Op     Op
	Rect   images.RectF
	RX, RY float32
	Text   string
	X, Y   float32
	Paint  render.Paint
}

// Recorder is a render.Canvas of a fixed size that records every call.
// Text is measured as CharWidth per rune by the paint's text size.
type Recorder struct {
	W, H      int
	CharWidth float32

	mu    sync.Mutex
	calls []Call
}

// NewRecorder returns a recorder of the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, CharWidth: 10}
}

// Width implements render.Canvas.
func (r *Recorder) Width() int { return r.W }

// Height implements render.Canvas.
func (r *Recorder) Height() int { return r.H }

// DrawRect implements render.Canvas.
func (r *Recorder) DrawRect(rect images.RectF, p render.Paint) {
	r.add(Call{Op: OpRect, Rect: rect, Paint: p})
}

// DrawRoundRect implements render.Canvas.
func (r *Recorder) DrawRoundRect(rect images.RectF, rx, ry float32, p render.Paint) {
	r.add(Call{Op: OpRoundRect, Rect: rect, RX: rx, RY: ry, Paint: p})
}

// DrawText implements render.Canvas.
func (r *Recorder) DrawText(text string, x, y float32, p render.Paint) {
	r.add(Call{Op: OpText, Text: text, X: x, Y: y, Paint: p})
}

// MeasureText implements render.Canvas.
func (r *Recorder) MeasureText(text string, p render.Paint) (float32, float32) {
	return float32(len([]rune(text))) * r.CharWidth, p.TextSize
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Filter returns the recorded calls of one kind.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset discards the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}
