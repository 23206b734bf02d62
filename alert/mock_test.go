package alert

import (
	"context"
	"errors"
	"sync"
)

// MockPlayer records Play calls and lets the test finish playback on demand.
type MockPlayer struct {
	mu          sync.Mutex
	assets      []string
	completions []func(error)
	shouldError bool
}

func (m *MockPlayer) Play(ctx context.Context, asset string, onComplete func(err error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock playback error")
	}
	m.assets = append(m.assets, asset)
	m.completions = append(m.completions, onComplete)
	return nil
}

func (m *MockPlayer) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

func (m *MockPlayer) LastAsset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.assets) == 0 {
		return ""
	}
	return m.assets[len(m.assets)-1]
}

// Finish completes the most recent playback.
func (m *MockPlayer) Finish(err error) {
	m.mu.Lock()
	done := m.completions[len(m.completions)-1]
	m.mu.Unlock()
	done(err)
}
