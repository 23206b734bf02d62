package util

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-overlay/controller"
	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/pkg/errors"
)

// maxLineSize bounds a single JSON line of the detection log.
const maxLineSize = 4 * 1024 * 1024

// DetectionRecord is one line of a detection log: every detection reported
// for one frame.
type DetectionRecord struct {
	Frame      int              `json:"frame"`
	Timestamp  int64            `json:"timestamp"`
	Detections []DetectionEntry `json:"detections"`
}

// DetectionEntry is a single detection as stored in the log.
type DetectionEntry struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	// Rect is left, top, right, bottom in sensor-frame pixels. A missing
	// rect is kept as a detection without location.
	Rect *[4]float32 `json:"rect,omitempty"`
}

// DetectionLog replays recorded detections by frame number.
type DetectionLog struct {
	path       string
	frames     []int
	detections map[int][]models.Detection
	timestamps map[int]int64
}

// LoadDetectionLog reads a JSON lines detection log.
//
// Blank lines are ignored. A frame that appears more than once keeps the
// detections of its last line.
//
// Arguments:
//   - path: Path to the log file.
//
// Returns:
//   - *DetectionLog: The indexed log.
//   - error: Error if the file cannot be read or a line cannot be parsed.
//
// @example
// log, err := util.LoadDetectionLog("detections.jsonl")
// dets := log.Detections(12)
func LoadDetectionLog(path string) (*DetectionLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open detection log")
	}
	defer f.Close()

	l := &DetectionLog{
		path:       path,
		detections: make(map[int][]models.Detection),
		timestamps: make(map[int]int64),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec DetectionRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, line)
		}
		l.add(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read detection log %s", path)
	}

	sort.Ints(l.frames)
	return l, nil
}

func (l *DetectionLog) add(rec DetectionRecord) {
	if _, seen := l.detections[rec.Frame]; !seen {
		l.frames = append(l.frames, rec.Frame)
	}

	dets := make([]models.Detection, 0, len(rec.Detections))
	for _, e := range rec.Detections {
		d := models.Detection{Label: e.Label, Confidence: e.Confidence}
		if e.Rect != nil {
			r := images.NewRectF(e.Rect[0], e.Rect[1], e.Rect[2], e.Rect[3])
			d.Location = &r
		}
		dets = append(dets, d)
	}
	l.detections[rec.Frame] = dets
	l.timestamps[rec.Frame] = rec.Timestamp
}

// Frames returns the recorded frame numbers in ascending order.
func (l *DetectionLog) Frames() []int {
	return append([]int(nil), l.frames...)
}

// Len returns the number of recorded frames.
func (l *DetectionLog) Len() int {
	return len(l.frames)
}

// Detections returns the detections recorded for frame, or nil.
func (l *DetectionLog) Detections(frame int) []models.Detection {
	return l.detections[frame]
}

// Timestamp returns the recorded timestamp of frame.
func (l *DetectionLog) Timestamp(frame int) (int64, bool) {
	ts, ok := l.timestamps[frame]
	return ts, ok
}

// Detect implements controller.Detector by looking the frame up by ID.
// Frames missing from the log have no detections.
func (l *DetectionLog) Detect(ctx context.Context, frame controller.Frame) ([]models.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.detections[frame.ID], nil
}

// Name implements controller.Detector.
func (l *DetectionLog) Name() string {
	return "log:" + filepath.Base(l.path)
}
