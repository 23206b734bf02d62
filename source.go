package main

import (
	"github.com/nvr-ai/go-overlay/util"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// frameSource yields decoded frames with their frame numbers.
type frameSource interface {
	// Next reads the next frame into img. ok is false at the end of input.
	Next(img *gocv.Mat) (id int, ok bool, err error)
	FPS() float64
	Close()
}

func openSource(input *InputConfig) (frameSource, error) {
	switch input.Type {
	case InputVideo:
		capture, err := gocv.OpenVideoCapture(input.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open video %s", input.Path)
		}
		return &videoSource{capture: capture}, nil
	case InputImages:
		files, err := util.LoadDirectoryImageFiles(input.Path)
		if err != nil {
			return nil, err
		}
		return &imageSource{files: files}, nil
	}
	return nil, errors.Errorf("unsupported input type %d", input.Type)
}

// videoSource numbers frames from zero in capture order.
type videoSource struct {
	capture *gocv.VideoCapture
	next    int
}

func (s *videoSource) Next(img *gocv.Mat) (int, bool, error) {
	if ok := s.capture.Read(img); !ok {
		return 0, false, nil
	}
	id := s.next
	s.next++
	return id, true, nil
}

func (s *videoSource) FPS() float64 {
	if fps := s.capture.Get(gocv.VideoCaptureFPS); fps > 0 {
		return fps
	}
	return DefaultFPS
}

func (s *videoSource) Close() {
	s.capture.Close()
}

// imageSource replays a frame-N image directory using the file numbers.
type imageSource struct {
	files []util.ImageFile
	next  int
}

func (s *imageSource) Next(img *gocv.Mat) (int, bool, error) {
	if s.next >= len(s.files) {
		return 0, false, nil
	}
	f := s.files[s.next]
	s.next++

	decoded, err := gocv.IMDecode(f.Data, gocv.IMReadColor)
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to decode %s", f.Path)
	}
	defer decoded.Close()
	decoded.CopyTo(img)
	return f.Frame, true, nil
}

func (s *imageSource) FPS() float64 {
	return DefaultFPS
}

func (s *imageSource) Close() {}
