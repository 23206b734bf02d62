package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nvr-ai/go-overlay/alert"
	"github.com/nvr-ai/go-overlay/audio"
	"github.com/nvr-ai/go-overlay/config"
	"github.com/nvr-ai/go-overlay/controller"
	"github.com/nvr-ai/go-overlay/logger"
	"github.com/nvr-ai/go-overlay/profiler"
	"github.com/nvr-ai/go-overlay/render"
	"github.com/nvr-ai/go-overlay/tracker"
	"github.com/nvr-ai/go-overlay/util"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// DefaultFPS is used for output video and timestamps when the input does
	// not report a frame rate.
	DefaultFPS = 30.0
	// DefaultCodec is the FourCC of the output video.
	DefaultCodec = "MJPG"
	// escKey closes the visualization window.
	escKey = 27
)

// Supported file extensions
var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// InputType represents the type of input being processed
type InputType int

const (
	InputVideo InputType = iota
	InputImages
)

// InputConfig holds the input configuration
type InputConfig struct {
	Type InputType
	Path string
}

// Options are the parsed command line flags.
type Options struct {
	ConfigPath     string
	DetectionsPath string
	OutputPath     string
	ShowWindow     bool
	Debug          bool
	Input          *InputConfig
}

func main() {
	var (
		opts      Options
		videoPath string
		imagesDir string
	)
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&videoPath, "video", "", "Path to video file (.mp4, .avi, .mov, .mkv)")
	flag.StringVar(&imagesDir, "images", "", "Directory of frame-N images")
	flag.StringVar(&opts.DetectionsPath, "detections", "", "Path to JSON lines detection log")
	flag.StringVar(&opts.OutputPath, "output", "", "Write the annotated frames to this video file")
	flag.BoolVar(&opts.ShowWindow, "show-window", false, "Show visualization window")
	flag.BoolVar(&opts.Debug, "debug", false, "Draw every detection with its raw confidence")
	flag.Parse()

	input, err := validateInputFlags(videoPath, imagesDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.DetectionsPath == "" {
		fmt.Fprintln(os.Stderr, "error: --detections is required")
		os.Exit(2)
	}
	opts.Input = input

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Fatal("replay failed", "error", err)
	}
}

// run replays the input through the overlay until it ends or ctx is done.
func run(ctx context.Context, cfg *config.Config, opts Options, log *logger.Logger) error {
	detections, err := util.LoadDetectionLog(opts.DetectionsPath)
	if err != nil {
		return err
	}
	log.Info("detection log loaded", "path", opts.DetectionsPath, "frames", detections.Len())

	player := audio.NewCommandPlayer(cfg.Audio.CommandConfig, log)
	defer player.Stop()

	alerter := alert.NewAlerter(cfg.ToAlertConfig(), player, log)
	alerter.OnEvent = func(e alert.Event) {
		log.Info("alert", "id", e.ID, "outcome", string(e.Outcome), "label", e.Label, "bucket", string(e.Bucket))
	}

	tr := tracker.New(cfg.Tracker, log, tracker.WithAlerter(alerter))
	tr.SetFrameConfiguration(cfg.Frame.Width, cfg.Frame.Height, cfg.Frame.SensorOrientation)

	ctrl := controller.New(detections, tr, cfg.Frame.SensorOrientation, log)
	ctrl.Debug = opts.Debug

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{
		ReportInterval: 5 * time.Second,
		SampleInterval: time.Second,
	}, log)
	prof.AddMetricsCollector(ctrl)
	prof.Start()
	defer prof.Stop()

	source, err := openSource(opts.Input)
	if err != nil {
		return err
	}
	defer source.Close()

	var window *gocv.Window
	if opts.ShowWindow {
		window = gocv.NewWindow("Detection Overlay")
		defer window.Close()
	}

	var writer *gocv.VideoWriter
	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	img := gocv.NewMat()
	defer img.Close()
	display := gocv.NewMat()
	defer display.Close()

	fps := source.FPS()
	for {
		if err := ctx.Err(); err != nil {
			log.Info("interrupted")
			break
		}

		id, ok, err := source.Next(&img)
		if err != nil {
			return err
		}
		if !ok {
			log.Info("end of input", "path", opts.Input.Path)
			break
		}
		if img.Empty() {
			continue
		}

		stopTiming := prof.StartOperation("frame_processing")

		ts, ok := detections.Timestamp(id)
		if !ok {
			ts = int64(float64(id) * 1000 / fps)
		}

		orient(img, &display, cfg.Frame.SensorOrientation)
		canvas := render.NewMatCanvas(&display)

		frame := controller.Frame{
			ID:        id,
			Width:     img.Cols(),
			Height:    img.Rows(),
			Timestamp: time.UnixMilli(ts),
		}
		if err := ctrl.Process(ctx, frame, canvas); err != nil {
			log.Warn("frame skipped", "frame", id, "error", err)
		}
		prof.RecordMetric("tracked_objects", float64(len(tr.TrackedObjects())))
		stopTiming()

		if opts.OutputPath != "" {
			if writer == nil {
				writer, err = gocv.VideoWriterFile(opts.OutputPath, DefaultCodec, fps, display.Cols(), display.Rows(), true)
				if err != nil {
					return errors.Wrapf(err, "failed to open output video %s", opts.OutputPath)
				}
			}
			if err := writer.Write(display); err != nil {
				return errors.Wrap(err, "failed to write output frame")
			}
		}

		if window != nil {
			window.IMShow(display)
			if key := window.WaitKey(1); key == escKey || key == 'q' {
				break
			}
		}
	}

	stats := ctrl.Stats()
	log.Info("replay finished",
		"frames", stats.Frames,
		"detections", stats.Detections,
		"detect_fails", stats.DetectFails,
		"alert_fails", stats.AlertFails)
	return nil
}

// orient rotates img into dst so that it is upright for the given sensor
// orientation.
func orient(img gocv.Mat, dst *gocv.Mat, orientation int) {
	code, ok := rotateFlag(orientation)
	if !ok {
		img.CopyTo(dst)
		return
	}
	gocv.Rotate(img, dst, code)
}

// rotateFlag maps a clockwise orientation in degrees to a gocv rotation.
func rotateFlag(orientation int) (gocv.RotateFlag, bool) {
	switch ((orientation % 360) + 360) % 360 {
	case 90:
		return gocv.Rotate90Clockwise, true
	case 180:
		return gocv.Rotate180Clockwise, true
	case 270:
		return gocv.Rotate90CounterClockwise, true
	}
	return 0, false
}

// validateInputFlags validates the input flags and returns the input configuration
func validateInputFlags(videoPath, imagesDir string) (*InputConfig, error) {
	if videoPath != "" && imagesDir != "" {
		return nil, errors.New("error: cannot specify both --video and --images flags")
	}
	if videoPath == "" && imagesDir == "" {
		return nil, errors.New("error: one of --video or --images is required")
	}

	if videoPath != "" {
		if err := validateFile(videoPath, supportedVideoExtensions); err != nil {
			return nil, errors.Wrap(err, "video validation error")
		}
		return &InputConfig{Type: InputVideo, Path: videoPath}, nil
	}

	info, err := os.Stat(imagesDir)
	if err != nil {
		return nil, errors.Wrap(err, "images validation error")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("images validation error: %s is not a directory", imagesDir)
	}
	return &InputConfig{Type: InputImages, Path: imagesDir}, nil
}

// validateFile checks if the file exists and has a supported extension
func validateFile(filePath string, supportedExtensions []string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supportedExt := range supportedExtensions {
		if ext == supportedExt {
			return nil
		}
	}

	return errors.Errorf("unsupported file extension: %s. Supported extensions: %v", ext, supportedExtensions)
}
