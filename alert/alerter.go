package alert

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-overlay/audio"
	"github.com/nvr-ai/go-overlay/logger"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/pkg/errors"
)

// Policy selects which classifications start playback.
type Policy string

const (
	// PolicyOutcome plays only for audible outcomes.
	PolicyOutcome Policy = "outcome"
	// PolicyAlways plays on every non-empty frame while idle, whatever the
	// outcome.
	PolicyAlways Policy = "always"
)

// Config configures an Alerter.
type Config struct {
	Policy     Policy
	Thresholds Thresholds
	// Asset is the sound played for every alert without an override.
	Asset string
	// Sounds optionally overrides Asset per outcome.
	Sounds map[Outcome]string
}

// DefaultConfig returns the outcome policy with default thresholds.
func DefaultConfig() Config {
	return Config{
		Policy:     PolicyOutcome,
		Thresholds: DefaultThresholds(),
		Asset:      "assets/bollard.wav",
	}
}

// Event describes one alert that started playing.
type Event struct {
	ID      string
	Outcome Outcome
	Label   string
	Count   int
	Bucket  Bucket
	Area    float32
	Asset   string
	Time    time.Time
}

// Decision is the result of one Evaluate call.
type Decision struct {
	// Skipped is set when an alert was already playing and nothing was
	// evaluated.
	Skipped bool
	// Classification is the frame classification; zero when Skipped.
	Classification Classification
	// Event is set when playback started.
	Event *Event
}

// Alerter classifies frames and plays at most one alert at a time.
type Alerter struct {
	cfg    Config
	player audio.Player
	log    *logger.Logger

	// active is set while an alert sound is playing.
	active atomic.Bool

	// OnEvent, when set, is called after each alert starts.
	OnEvent func(Event)

	now func() time.Time
}

// NewAlerter creates an Alerter that plays through player.
func NewAlerter(cfg Config, player audio.Player, log *logger.Logger) *Alerter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Alerter{
		cfg:    cfg,
		player: player,
		log:    log,
		now:    time.Now,
	}
}

// Active reports whether an alert sound is currently playing.
func (a *Alerter) Active() bool {
	return a.active.Load()
}

// Evaluate classifies one frame and starts the alert sound when the policy
// calls for it.
//
// While an alert is playing the call returns immediately with Skipped set:
// nothing is classified and the player is not touched. The playing flag is
// cleared by the player's completion callback.
//
// Arguments:
//   - ctx: Passed to the player.
//   - detections: The whitelist-filtered detections of the frame.
//   - frameWidth, frameHeight: The sensor frame size.
//
// Returns:
//   - Decision: What was decided for this frame.
//   - error: A playback start failure. The alert is abandoned and the
//     playing flag cleared, so the next frame may try again.
func (a *Alerter) Evaluate(
	ctx context.Context,
	detections []models.Detection,
	frameWidth, frameHeight int,
) (Decision, error) {
	if len(detections) == 0 {
		return Decision{}, nil
	}
	if a.active.Load() {
		return Decision{Skipped: true}, nil
	}

	c := Classify(detections, frameWidth, frameHeight, a.cfg.Thresholds)
	d := Decision{Classification: c}

	a.log.Debug("frame classified",
		"outcome", c.Outcome,
		"label", c.Label,
		"count", c.Count,
		"distinct", c.Distinct,
	)

	if !a.shouldPlay(c) {
		return d, nil
	}

	// Another caller may have started an alert since the check above.
	if !a.active.CompareAndSwap(false, true) {
		return Decision{Skipped: true}, nil
	}

	ev := a.newEvent(c)
	err := a.player.Play(ctx, ev.Asset, func(err error) {
		a.active.Store(false)
		if err != nil {
			a.log.Warn("alert playback failed", "id", ev.ID, "err", err)
			return
		}
		a.log.Debug("alert finished", "id", ev.ID)
	})
	if err != nil {
		a.active.Store(false)
		return d, errors.Wrapf(err, "alert %s", ev.Outcome)
	}

	a.log.Info("alert started",
		"id", ev.ID,
		"outcome", ev.Outcome,
		"label", ev.Label,
		"bucket", ev.Bucket,
		"area", ev.Area,
	)
	if a.OnEvent != nil {
		a.OnEvent(ev)
	}

	d.Event = &ev
	return d, nil
}

func (a *Alerter) shouldPlay(c Classification) bool {
	if a.cfg.Policy == PolicyAlways {
		return true
	}
	return c.Outcome.Audible()
}

func (a *Alerter) newEvent(c Classification) Event {
	ev := Event{
		ID:      uuid.NewString(),
		Outcome: c.Outcome,
		Label:   c.Label,
		Count:   c.Count,
		Asset:   a.assetFor(c.Outcome),
		Time:    a.now(),
	}
	if c.Trigger != nil {
		ev.Bucket = c.Trigger.Bucket
		ev.Area = c.Trigger.Area
	}
	return ev
}

func (a *Alerter) assetFor(o Outcome) string {
	if asset, ok := a.cfg.Sounds[o]; ok && asset != "" {
		return asset
	}
	return a.cfg.Asset
}
