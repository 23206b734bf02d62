// Package audio plays the alert sound through an external player binary.
package audio

import (
	"context"
	"os"
	"os/exec"
	"sync"

	"github.com/nvr-ai/go-overlay/logger"
	"github.com/pkg/errors"
)

// ErrAssetMissing is returned when the sound file to play does not exist.
var ErrAssetMissing = errors.New("audio asset missing")

// Player starts playback of a sound asset without blocking.
//
// onComplete is invoked exactly once, from the player's own goroutine, when
// playback ends. It is not invoked when Play itself returns an error.
type Player interface {
	Play(ctx context.Context, asset string, onComplete func(err error)) error
}

// CommandConfig names the player binary and its leading arguments. The asset
// path is appended as the final argument.
type CommandConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// DefaultCommandConfig returns the ALSA player used on Linux hosts.
func DefaultCommandConfig() CommandConfig {
	return CommandConfig{
		Command: "aplay",
		Args:    []string{"-q"},
	}
}

// CommandPlayer plays assets by running one external process per alert.
type CommandPlayer struct {
	cfg CommandConfig
	log *logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd

	// Callbacks
	OnPlaybackStart func(asset string)
	OnPlaybackEnd   func(asset string, err error)
}

// NewCommandPlayer creates a player for the given command.
func NewCommandPlayer(cfg CommandConfig, log *logger.Logger) *CommandPlayer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CommandPlayer{cfg: cfg, log: log}
}

// Play starts the player process for asset and returns once it is running.
//
// Arguments:
//   - ctx: Bounds the lifetime of the player process.
//   - asset: Path to the sound file.
//   - onComplete: Called with the process exit error when playback ends.
//
// Returns:
//   - error: ErrAssetMissing if the asset cannot be found, or the start error.
func (p *CommandPlayer) Play(ctx context.Context, asset string, onComplete func(err error)) error {
	if _, err := os.Stat(asset); err != nil {
		return errors.Wrapf(ErrAssetMissing, "%s: %v", asset, err)
	}

	args := append(append([]string{}, p.cfg.Args...), asset)
	cmd := exec.CommandContext(ctx, p.cfg.Command, args...)

	p.mu.Lock()
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return errors.Wrapf(err, "start %s", p.cfg.Command)
	}
	p.cmd = cmd
	p.mu.Unlock()

	p.log.Debug("playback started", "asset", asset, "pid", cmd.Process.Pid)
	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart(asset)
	}

	go func() {
		err := cmd.Wait()
		if err != nil {
			err = errors.Wrapf(err, "play %s", asset)
		}

		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()

		p.log.Debug("playback finished", "asset", asset, "err", err)
		if p.OnPlaybackEnd != nil {
			p.OnPlaybackEnd(asset, err)
		}
		if onComplete != nil {
			onComplete(err)
		}
	}()

	return nil
}

// IsPlaying returns whether a player process is currently running.
func (p *CommandPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// Stop kills the running player process, if any. The completion callback
// still fires with the resulting exit error.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
