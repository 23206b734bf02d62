// Package controller - This file contains the controller for routing frames through detection, tracking and drawing.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/nvr-ai/go-overlay/logger"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/nvr-ai/go-overlay/render"
	"github.com/pkg/errors"
)

// Frame is a single frame of video.
type Frame struct {
	ID        int
	Width     int
	Height    int
	Timestamp time.Time
}

// Detector is an interface for a detector.
type Detector interface {
	Detect(ctx context.Context, frame Frame) ([]models.Detection, error)
	Name() string
}

// Overlay is the tracking and drawing stage, implemented by *tracker.Tracker.
type Overlay interface {
	SetFrameConfiguration(width, height, sensorOrientation int)
	TrackResults(ctx context.Context, results []models.Detection, timestamp int64) error
	Draw(canvas render.Canvas)
	DrawDebug(canvas render.Canvas)
}

// Stats counts what the controller has processed.
type Stats struct {
	Frames      int
	Detections  int
	DetectFails int
	AlertFails  int
}

// Controller feeds frames through a detector into the overlay.
type Controller struct {
	Detector Detector
	Overlay  Overlay
	// Orientation is the sensor rotation in degrees passed to the overlay.
	Orientation int
	// Debug also draws every mapped detection with its raw confidence.
	Debug bool

	log *logger.Logger

	mu            sync.Mutex
	width, height int
	stats         Stats
}

// New creates a controller.
//
// Arguments:
//   - detector: The source of per-frame detections.
//   - overlay: The tracking and drawing stage.
//   - orientation: The sensor rotation in degrees.
//   - log: Logger; nil disables logging.
//
// Returns:
//   - *Controller: The controller.
func New(detector Detector, overlay Overlay, orientation int, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Controller{
		Detector:    detector,
		Overlay:     overlay,
		Orientation: orientation,
		log:         log,
	}
}

// Process runs one frame through the pipeline.
//
// The overlay is reconfigured whenever the frame size changes. A failed
// alert is logged and counted but does not fail the frame.
//
// Arguments:
//   - ctx: Passed to the detector and the alert step.
//   - frame: The frame to process.
//   - canvas: The surface to draw on; nil skips drawing.
//
// Returns:
//   - error: An error if detection fails.
func (c *Controller) Process(ctx context.Context, frame Frame, canvas render.Canvas) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if frame.Width != c.width || frame.Height != c.height {
		c.Overlay.SetFrameConfiguration(frame.Width, frame.Height, c.Orientation)
		c.width, c.height = frame.Width, frame.Height
	}

	detections, err := c.Detector.Detect(ctx, frame)
	if err != nil {
		c.stats.DetectFails++
		return errors.Wrapf(err, "%s: detect frame %d", c.Detector.Name(), frame.ID)
	}

	c.stats.Frames++
	c.stats.Detections += len(detections)

	if err := c.Overlay.TrackResults(ctx, detections, frame.Timestamp.UnixMilli()); err != nil {
		c.stats.AlertFails++
		c.log.Warn("alert failed", "frame", frame.ID, "error", err)
	}

	if canvas == nil {
		return nil
	}
	c.Overlay.Draw(canvas)
	if c.Debug {
		c.Overlay.DrawDebug(canvas)
	}
	return nil
}

// Stats returns the counters accumulated so far.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CollectMetrics reports the counters for the runtime profiler.
func (c *Controller) CollectMetrics() map[string]float64 {
	s := c.Stats()
	return map[string]float64{
		"frames":       float64(s.Frames),
		"detections":   float64(s.Detections),
		"detect_fails": float64(s.DetectFails),
		"alert_fails":  float64(s.AlertFails),
	}
}
