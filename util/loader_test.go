package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"frame-10.jpg": "ten",
		"frame-2.png":  "two",
		"frame-1.jpeg": "one",
		"notes.txt":    "ignored",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame-3.jpg"), 0o755))

	images, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{images[0].Frame, images[1].Frame, images[2].Frame})
	assert.Equal(t, "one", string(images[0].Data))
	assert.Equal(t, filepath.Join(dir, "frame-10.jpg"), images[2].Path)
}

func TestLoadDirectoryImages_BadName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot.jpg"), []byte("x"), 0o644))

	_, err := LoadDirectoryImageFiles(dir)
	assert.Error(t, err)
}

func TestLoadDirectoryImages_MissingDir(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFrameNumber(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"frame-0.jpg", 0, false},
		{"frame-123.png", 123, false},
		{"/tmp/clip/frame-7.bmp", 7, false},
		{"frame-x.jpg", 0, true},
		{"image-1.jpg", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FrameNumber(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
