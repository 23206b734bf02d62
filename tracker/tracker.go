// Package tracker keeps the set of detections shown on the overlay for the
// current frame and draws them.
//
// "Tracked" objects are the latest frame's filtered detections; nothing is
// correlated across frames.
package tracker

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"sync"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-overlay/alert"
	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/logger"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/nvr-ai/go-overlay/render"
)

// Alerter evaluates a frame's whitelisted detections for an audio alert.
type Alerter interface {
	Evaluate(ctx context.Context, detections []models.Detection, frameWidth, frameHeight int) (alert.Decision, error)
}

// Config holds the tracker's drawing and filtering parameters.
type Config struct {
	// MinSize is the smallest frame-space width or height that is tracked.
	MinSize float32 `yaml:"min_size"`
	// TextSize is the label height in canvas pixels.
	TextSize float32 `yaml:"text_size"`
	// StrokeWidth is the box outline width in canvas pixels.
	StrokeWidth float32 `yaml:"stroke_width"`
}

// DefaultConfig returns the standard overlay parameters.
func DefaultConfig() Config {
	return Config{
		MinSize:     16,
		TextSize:    18,
		StrokeWidth: 10,
	}
}

// TrackedObject is one detection selected for display this frame.
type TrackedObject struct {
	// Location is the box in sensor-frame coordinates; it is mapped to the
	// canvas when drawn.
	Location   images.RectF
	Confidence float32
	Label      string
	Color      color.RGBA
	ColorIndex int
}

// ScreenRect is a whitelisted detection mapped to canvas space, kept for the
// debug overlay.
type ScreenRect struct {
	Confidence float32
	Rect       images.RectF
}

// Tracker filters, colors and draws per-frame detections. All methods are
// safe for concurrent use and serialize on one lock.
type Tracker struct {
	cfg     Config
	classes *models.OutputClassSet
	palette []color.RGBA
	alerter Alerter
	log     *logger.Logger

	mu                sync.Mutex
	frameWidth        int
	frameHeight       int
	sensorOrientation int
	frameToCanvas     *images.Matrix
	trackedObjects    []TrackedObject
	screenRects       []ScreenRect
	borderedText      *render.BorderedText
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithAlerter enables the spatial alert step after each frame is tracked.
func WithAlerter(a Alerter) Option {
	return func(t *Tracker) { t.alerter = a }
}

// WithPalette replaces the box palette; its length caps the tracked set.
func WithPalette(p []color.RGBA) Option {
	return func(t *Tracker) { t.palette = p }
}

// WithClasses replaces the class whitelist.
func WithClasses(c *models.OutputClassSet) Option {
	return func(t *Tracker) { t.classes = c }
}

// New creates a Tracker.
//
// Arguments:
//   - cfg: Filtering and drawing parameters.
//   - log: Logger; nil disables logging.
//   - opts: Optional alerter, palette or whitelist.
//
// Returns:
//   - *Tracker: A tracker with an identity frame-to-canvas transform until
//     the first Draw.
func New(cfg Config, log *logger.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	t := &Tracker{
		cfg:           cfg,
		classes:       models.TrafficClasses,
		palette:       render.Palette,
		log:           log,
		frameToCanvas: images.NewMatrix(),
		borderedText:  render.NewBorderedText(cfg.TextSize),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetFrameConfiguration records the sensor frame geometry used by later
// frames.
func (t *Tracker) SetFrameConfiguration(width, height, sensorOrientation int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frameWidth = width
	t.frameHeight = height
	t.sensorOrientation = sensorOrientation
	t.log.Debug("frame configured", "width", width, "height", height, "orientation", sensorOrientation)
}

// TrackResults replaces the tracked set with this frame's detections and,
// when an alerter is configured, runs the spatial alert step.
//
// Tracking itself never fails. The returned error only reports an alert that
// could not start playing.
//
// Arguments:
//   - ctx: Passed to the alerter.
//   - results: The detector output for one frame, in detector order.
//   - timestamp: The frame timestamp; logged only.
//
// Returns:
//   - error: A non-fatal alert playback failure, or nil.
func (t *Tracker) TrackResults(ctx context.Context, results []models.Detection, timestamp int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Debug("processing results", "count", len(results), "timestamp", timestamp)

	whitelisted := t.classes.Filter(results)
	t.processResults(whitelisted)

	if t.alerter == nil {
		return nil
	}
	_, err := t.alerter.Evaluate(ctx, whitelisted, t.frameWidth, t.frameHeight)
	return err
}

// processResults rebuilds the debug and tracked lists. Callers hold mu.
func (t *Tracker) processResults(results []models.Detection) {
	t.screenRects = t.screenRects[:0]
	candidates := make([]models.Detection, 0, len(results))

	for _, result := range results {
		if result.Location == nil {
			continue
		}
		frameRect := *result.Location
		screenRect := t.frameToCanvas.MapRect(frameRect)

		t.log.Debug("result mapped", "frame", frameRect.String(), "screen", screenRect.String())
		t.screenRects = append(t.screenRects, ScreenRect{Confidence: result.Confidence, Rect: screenRect})

		if frameRect.Width() < t.cfg.MinSize || frameRect.Height() < t.cfg.MinSize {
			t.log.Warn("degenerate rectangle", "label", result.Label, "rect", frameRect.String())
			continue
		}
		candidates = append(candidates, result)
	}

	t.trackedObjects = t.trackedObjects[:0]
	if len(candidates) == 0 {
		t.log.Debug("nothing to track")
		return
	}

	for _, c := range candidates {
		if len(t.trackedObjects) >= len(t.palette) {
			break
		}
		idx := len(t.trackedObjects)
		t.trackedObjects = append(t.trackedObjects, TrackedObject{
			Location:   *c.Location,
			Confidence: c.Confidence,
			Label:      c.Label,
			Color:      t.palette[idx],
			ColorIndex: idx,
		})
	}
}

// Draw renders every tracked object onto canvas: a rounded box in the
// object's color and a bordered confidence label at its top-left corner.
//
// The frame-to-canvas transform is recomputed from the canvas size and kept
// for mapping the debug rectangles of later frames.
func (t *Tracker) Draw(canvas render.Canvas) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dstW, dstH := images.FitCanvas(t.frameWidth, t.frameHeight, canvas.Width(), canvas.Height(), t.sensorOrientation)
	t.frameToCanvas = images.GetTransformationMatrix(
		t.frameWidth, t.frameHeight, dstW, dstH, t.sensorOrientation, false)

	for _, obj := range t.trackedObjects {
		pos := t.frameToCanvas.MapRect(obj.Location)
		paint := render.Paint{
			Color:       obj.Color,
			Style:       render.StyleStroke,
			StrokeWidth: t.cfg.StrokeWidth,
		}

		corner := math32.Min(pos.Width(), pos.Height()) / 8
		canvas.DrawRoundRect(pos, corner, corner, paint)

		t.borderedText.DrawTextWithBackground(canvas, pos.Left+corner, pos.Top, Label(obj.Label, obj.Confidence), paint)
	}
}

// DrawDebug renders every mapped detection of the last frame, including the
// ones too small to track, with its raw confidence.
func (t *Tracker) DrawDebug(canvas render.Canvas) {
	t.mu.Lock()
	defer t.mu.Unlock()

	textPaint := render.Paint{Color: render.White, Style: render.StyleFill, TextSize: 60}
	boxPaint := render.Paint{Color: render.Red, Style: render.StyleStroke, StrokeWidth: 1}
	boxPaint.Color.A = 200

	for _, sr := range t.screenRects {
		conf := strconv.FormatFloat(float64(sr.Confidence), 'f', -1, 32)
		canvas.DrawRect(sr.Rect, boxPaint)
		canvas.DrawText(conf, sr.Rect.Left, sr.Rect.Top, textPaint)
		t.borderedText.DrawText(canvas, sr.Rect.CenterX(), sr.Rect.CenterY(), conf)
	}
}

// TrackedObjects returns a copy of the current tracked set.
func (t *Tracker) TrackedObjects() []TrackedObject {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TrackedObject(nil), t.trackedObjects...)
}

// ScreenRects returns a copy of the current debug rectangles.
func (t *Tracker) ScreenRects() []ScreenRect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ScreenRect(nil), t.screenRects...)
}

// FrameToCanvas returns a copy of the transform computed by the last Draw.
func (t *Tracker) FrameToCanvas() *images.Matrix {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frameToCanvas.Copy()
}

// Label formats the caption drawn above a box, e.g. "car 87.50%".
func Label(label string, confidence float32) string {
	if label == "" {
		return fmt.Sprintf("%.2f%%", 100*confidence)
	}
	return fmt.Sprintf("%s %.2f%%", label, 100*confidence)
}
