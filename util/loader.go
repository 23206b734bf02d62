// Package util - Replay inputs: recorded frame sequences and detection logs.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// framePrefix is the file name prefix of a recorded frame, e.g. frame-12.jpg.
const framePrefix = "frame-"

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number of the image file.
	Frame int
}

// LoadDirectoryImageFiles reads all frame images from a directory, ordered by
// frame number.
//
// Arguments:
// - dir: Directory path containing frame-N image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails or an image is not named frame-N.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var frames []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		frame, err := FrameNumber(file.Name())
		if err != nil {
			return nil, err
		}

		imgPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", imgPath)
		}

		frames = append(frames, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frame,
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})

	return frames, nil
}

// FrameNumber parses the frame number out of a frame-N.ext file name.
func FrameNumber(name string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if !strings.HasPrefix(base, framePrefix) {
		return 0, errors.Errorf("%s is not a frame-N file", name)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, framePrefix))
	if err != nil {
		return 0, errors.Wrapf(err, "bad frame number in %s", name)
	}
	return n, nil
}
