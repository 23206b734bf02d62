// Package controller - Testing for frame routing through detection, tracking and drawing
package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/nvr-ai/go-overlay/render"
	"github.com/nvr-ai/go-overlay/render/rendertest"
	"github.com/nvr-ai/go-overlay/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDetector provides controllable detection results for testing
type MockDetector struct {
	detections  []models.Detection
	shouldError bool
	calls       int
}

func (m *MockDetector) Detect(ctx context.Context, frame Frame) ([]models.Detection, error) {
	m.calls++
	if m.shouldError {
		return nil, errors.New("mock detection error")
	}
	return m.detections, nil
}

func (m *MockDetector) Name() string {
	return "mock"
}

// MockOverlay records the calls made by the controller
type MockOverlay struct {
	configs     [][3]int
	tracked     [][]models.Detection
	timestamps  []int64
	draws       int
	debugDraws  int
	shouldError bool
}

func (m *MockOverlay) SetFrameConfiguration(width, height, sensorOrientation int) {
	m.configs = append(m.configs, [3]int{width, height, sensorOrientation})
}

func (m *MockOverlay) TrackResults(ctx context.Context, results []models.Detection, timestamp int64) error {
	m.tracked = append(m.tracked, results)
	m.timestamps = append(m.timestamps, timestamp)
	if m.shouldError {
		return errors.New("mock alert error")
	}
	return nil
}

func (m *MockOverlay) Draw(canvas render.Canvas) {
	m.draws++
}

func (m *MockOverlay) DrawDebug(canvas render.Canvas) {
	m.debugDraws++
}

func detection(label string, l, t, r, b float32) models.Detection {
	rect := images.RectF{Left: l, Top: t, Right: r, Bottom: b}
	return models.Detection{Label: label, Confidence: 0.9, Location: &rect}
}

func frame(id, width, height int) Frame {
	return Frame{ID: id, Width: width, Height: height, Timestamp: time.UnixMilli(int64(1000 * id))}
}

// TestProcess tests the per-frame routing
func TestProcess(t *testing.T) {
	tests := []struct {
		name          string
		frames        []Frame
		debug         bool
		withCanvas    bool
		expectConfigs [][3]int
		expectDraws   int
		expectDebug   int
	}{
		{
			name:          "Configures once for a constant frame size",
			frames:        []Frame{frame(1, 640, 480), frame(2, 640, 480), frame(3, 640, 480)},
			withCanvas:    true,
			expectConfigs: [][3]int{{640, 480, 90}},
			expectDraws:   3,
		},
		{
			name:          "Reconfigures when the frame size changes",
			frames:        []Frame{frame(1, 640, 480), frame(2, 1280, 720), frame(3, 1280, 720)},
			withCanvas:    true,
			expectConfigs: [][3]int{{640, 480, 90}, {1280, 720, 90}},
			expectDraws:   3,
		},
		{
			name:          "Debug overlay",
			frames:        []Frame{frame(1, 640, 480), frame(2, 640, 480)},
			debug:         true,
			withCanvas:    true,
			expectConfigs: [][3]int{{640, 480, 90}},
			expectDraws:   2,
			expectDebug:   2,
		},
		{
			name:          "No canvas skips drawing",
			frames:        []Frame{frame(1, 640, 480)},
			debug:         true,
			expectConfigs: [][3]int{{640, 480, 90}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &MockDetector{detections: []models.Detection{detection("car", 0, 0, 100, 100)}}
			overlay := &MockOverlay{}
			c := New(detector, overlay, 90, nil)
			c.Debug = tt.debug

			for _, f := range tt.frames {
				var canvas render.Canvas
				if tt.withCanvas {
					canvas = rendertest.NewRecorder(1080, 1920)
				}
				require.NoError(t, c.Process(context.Background(), f, canvas))
			}

			assert.Equal(t, tt.expectConfigs, overlay.configs)
			assert.Len(t, overlay.tracked, len(tt.frames))
			assert.Equal(t, tt.expectDraws, overlay.draws)
			assert.Equal(t, tt.expectDebug, overlay.debugDraws)

			stats := c.Stats()
			assert.Equal(t, len(tt.frames), stats.Frames)
			assert.Equal(t, len(tt.frames), stats.Detections)
		})
	}
}

// TestProcessTimestamps tests that frame times reach the tracker in milliseconds
func TestProcessTimestamps(t *testing.T) {
	overlay := &MockOverlay{}
	c := New(&MockDetector{}, overlay, 0, nil)

	require.NoError(t, c.Process(context.Background(), frame(2, 640, 480), nil))
	require.NoError(t, c.Process(context.Background(), frame(5, 640, 480), nil))

	assert.Equal(t, []int64{2000, 5000}, overlay.timestamps)
}

// TestErrorHandling tests detector and alert failures
func TestErrorHandling(t *testing.T) {
	t.Run("Detector error fails the frame", func(t *testing.T) {
		overlay := &MockOverlay{}
		c := New(&MockDetector{shouldError: true}, overlay, 0, nil)

		err := c.Process(context.Background(), frame(7, 640, 480), rendertest.NewRecorder(640, 480))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "detect frame 7")
		assert.Empty(t, overlay.tracked)
		assert.Zero(t, overlay.draws)

		stats := c.Stats()
		assert.Equal(t, 1, stats.DetectFails)
		assert.Zero(t, stats.Frames)
	})

	t.Run("Alert error is not fatal", func(t *testing.T) {
		overlay := &MockOverlay{shouldError: true}
		c := New(&MockDetector{}, overlay, 0, nil)

		require.NoError(t, c.Process(context.Background(), frame(1, 640, 480), rendertest.NewRecorder(640, 480)))
		assert.Equal(t, 1, overlay.draws)
		assert.Equal(t, 1, c.Stats().AlertFails)
	})
}

// TestControllerWithTracker tests the controller against the real tracker
func TestControllerWithTracker(t *testing.T) {
	detector := &MockDetector{detections: []models.Detection{
		detection("car", 0, 0, 64, 48),
		detection("dog", 0, 0, 64, 48),
		detection("bus", 100, 100, 110, 200),
	}}
	tr := tracker.New(tracker.DefaultConfig(), nil)
	c := New(detector, tr, 90, nil)

	canvas := rendertest.NewRecorder(1080, 1920)
	require.NoError(t, c.Process(context.Background(), frame(1, 640, 480), canvas))

	require.Len(t, tr.TrackedObjects(), 1)
	assert.Len(t, tr.ScreenRects(), 2)
	assert.Len(t, canvas.Filter(rendertest.OpRoundRect), 1)
}

// TestControllerConcurrency tests that concurrent frames are serialized
func TestControllerConcurrency(t *testing.T) {
	detector := &MockDetector{detections: []models.Detection{detection("car", 0, 0, 100, 100)}}
	tr := tracker.New(tracker.DefaultConfig(), nil)
	c := New(detector, tr, 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = c.Process(context.Background(), frame(i*10+j, 640, 480), rendertest.NewRecorder(640, 480))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Stats().Frames)
	assert.Equal(t, 100, detector.calls)
}

// TestCollectMetrics tests the profiler counters
func TestCollectMetrics(t *testing.T) {
	detector := &MockDetector{detections: []models.Detection{
		detection("car", 0, 0, 100, 100),
		detection("bus", 0, 0, 100, 100),
	}}
	c := New(detector, &MockOverlay{shouldError: true}, 0, nil)

	require.NoError(t, c.Process(context.Background(), frame(1, 640, 480), nil))
	detector.shouldError = true
	require.Error(t, c.Process(context.Background(), frame(2, 640, 480), nil))

	assert.Equal(t, map[string]float64{
		"frames":       1,
		"detections":   2,
		"detect_fails": 1,
		"alert_fails":  1,
	}, c.CollectMetrics())
}
