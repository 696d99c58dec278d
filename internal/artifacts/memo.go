package artifacts

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"CoinPulse/internal/forecast"
)

type loaded struct {
	predictor forecast.Predictor
	scaler    *forecast.Scaler
}

// MemoStore caches successful loads from an inner source for the lifetime of
// the process. Concurrent first loads of the same asset are collapsed into a
// single inner call; failed loads are not cached so a later retrain becomes
// visible on the next request.
type MemoStore struct {
	inner forecast.ArtifactSource

	mu    sync.RWMutex
	cache map[string]loaded
	group singleflight.Group
}

// NewMemoStore wraps inner with memoization.
func NewMemoStore(inner forecast.ArtifactSource) *MemoStore {
	return &MemoStore{inner: inner, cache: make(map[string]loaded)}
}

// Load returns the cached artifact pair for asset, loading it once on first
// use.
func (m *MemoStore) Load(ctx context.Context, asset string) (forecast.Predictor, *forecast.Scaler, error) {
	asset = strings.ToLower(asset)

	m.mu.RLock()
	hit, ok := m.cache[asset]
	m.mu.RUnlock()
	if ok {
		return hit.predictor, hit.scaler, nil
	}

	v, err, _ := m.group.Do(asset, func() (interface{}, error) {
		p, s, err := m.inner.Load(ctx, asset)
		if err != nil {
			return nil, err
		}
		entry := loaded{predictor: p, scaler: s}
		m.mu.Lock()
		m.cache[asset] = entry
		m.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, nil, err
	}
	entry := v.(loaded)
	return entry.predictor, entry.scaler, nil
}

// Invalidate drops the cached pair for asset, forcing a reload on next use.
func (m *MemoStore) Invalidate(asset string) {
	asset = strings.ToLower(asset)
	m.mu.Lock()
	delete(m.cache, asset)
	m.mu.Unlock()
}
