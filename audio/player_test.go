package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAsset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alert.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
		return nil
	}
}

func TestCommandPlayer_PlayCompletes(t *testing.T) {
	asset := writeAsset(t)
	p := NewCommandPlayer(CommandConfig{Command: "true"}, nil)

	var started, ended string
	p.OnPlaybackStart = func(a string) { started = a }
	endCh := make(chan struct{})
	p.OnPlaybackEnd = func(a string, err error) {
		ended = a
		close(endCh)
	}

	done := make(chan error, 1)
	require.NoError(t, p.Play(context.Background(), asset, func(err error) { done <- err }))

	assert.NoError(t, waitDone(t, done))
	<-endCh
	assert.Equal(t, asset, started)
	assert.Equal(t, asset, ended)
	assert.False(t, p.IsPlaying())
}

func TestCommandPlayer_PlayerFailureReachesCallback(t *testing.T) {
	asset := writeAsset(t)
	p := NewCommandPlayer(CommandConfig{Command: "false"}, nil)

	done := make(chan error, 1)
	require.NoError(t, p.Play(context.Background(), asset, func(err error) { done <- err }))

	assert.Error(t, waitDone(t, done))
}

func TestCommandPlayer_MissingAsset(t *testing.T) {
	p := NewCommandPlayer(CommandConfig{Command: "true"}, nil)

	called := false
	err := p.Play(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), func(error) { called = true })

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetMissing))
	assert.False(t, called)
}

func TestCommandPlayer_MissingCommand(t *testing.T) {
	asset := writeAsset(t)
	p := NewCommandPlayer(CommandConfig{Command: "definitely-not-a-player-binary"}, nil)

	err := p.Play(context.Background(), asset, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAssetMissing))
	assert.False(t, p.IsPlaying())
}

func TestCommandPlayer_Stop(t *testing.T) {
	asset := writeAsset(t)
	p := NewCommandPlayer(CommandConfig{Command: "sh", Args: []string{"-c", "sleep 30", "player"}}, nil)

	done := make(chan error, 1)
	require.NoError(t, p.Play(context.Background(), asset, func(err error) { done <- err }))
	assert.True(t, p.IsPlaying())

	p.Stop()
	assert.Error(t, waitDone(t, done))
	assert.False(t, p.IsPlaying())
}

func TestDefaultCommandConfig(t *testing.T) {
	cfg := DefaultCommandConfig()
	assert.Equal(t, "aplay", cfg.Command)
	assert.Equal(t, []string{"-q"}, cfg.Args)
}
