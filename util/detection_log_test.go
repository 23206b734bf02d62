package util

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvr-ai/go-overlay/controller"
	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detections.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDetectionLog(t *testing.T) {
	path := writeLog(t, `{"frame":3,"timestamp":300,"detections":[{"label":"car","confidence":0.9,"rect":[10,20,110,220]}]}

{"frame":1,"timestamp":100,"detections":[{"label":"person","confidence":0.5,"rect":[300,400,200,100]},{"label":"bus","confidence":0.7}]}
{"frame":2,"timestamp":200,"detections":[]}
`)

	log, err := LoadDetectionLog(path)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, log.Frames())
	assert.Equal(t, 3, log.Len())

	car := images.RectF{Left: 10, Top: 20, Right: 110, Bottom: 220}
	person := images.RectF{Left: 200, Top: 100, Right: 300, Bottom: 400}
	want := map[int][]models.Detection{
		1: {
			{Label: "person", Confidence: 0.5, Location: &person},
			{Label: "bus", Confidence: 0.7},
		},
		2: {},
		3: {{Label: "car", Confidence: 0.9, Location: &car}},
	}
	for frame, expected := range want {
		if diff := cmp.Diff(expected, log.Detections(frame)); diff != "" {
			t.Errorf("frame %d detections mismatch (-want +got):\n%s", frame, diff)
		}
	}

	ts, ok := log.Timestamp(3)
	assert.True(t, ok)
	assert.Equal(t, int64(300), ts)

	_, ok = log.Timestamp(4)
	assert.False(t, ok)
	assert.Nil(t, log.Detections(4))
}

func TestLoadDetectionLog_DuplicateFrameKeepsLast(t *testing.T) {
	path := writeLog(t, `{"frame":1,"detections":[{"label":"car","confidence":0.1,"rect":[0,0,1,1]}]}
{"frame":1,"detections":[{"label":"bus","confidence":0.2,"rect":[0,0,1,1]}]}
`)

	log, err := LoadDetectionLog(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, log.Frames())
	require.Len(t, log.Detections(1), 1)
	assert.Equal(t, "bus", log.Detections(1)[0].Label)
}

func TestLoadDetectionLog_Errors(t *testing.T) {
	_, err := LoadDetectionLog(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)

	path := writeLog(t, "{\"frame\":1}\n{\"frame\":\n")
	_, err = LoadDetectionLog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2")
}

func TestDetectionLog_Detect(t *testing.T) {
	path := writeLog(t, `{"frame":5,"detections":[{"label":"truck","confidence":0.8,"rect":[0,0,50,50]}]}`)
	log, err := LoadDetectionLog(path)
	require.NoError(t, err)

	var detector controller.Detector = log
	assert.Equal(t, "log:detections.jsonl", detector.Name())

	dets, err := detector.Detect(context.Background(), controller.Frame{ID: 5})
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "truck", dets[0].Label)

	dets, err = detector.Detect(context.Background(), controller.Frame{ID: 6})
	require.NoError(t, err)
	assert.Empty(t, dets)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = detector.Detect(ctx, controller.Frame{ID: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
