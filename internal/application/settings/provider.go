package settings

import (
	"context"
	"sync"
	"time"

	"github.com/openretail/pos-backend/internal/domain/repository"
)

// Provider hands out the current settings snapshot. Configuration is
// read-mostly and shared by concurrent requests; it changes only through an
// explicit Reload (or Set), never by implicit expiry, so a long-lived process
// cannot silently diverge from what an operator believes is active.
type Provider interface {
	Current(ctx context.Context) (Settings, error)
	Reload(ctx context.Context) (Settings, error)
	Set(ctx context.Context, key, value string) error
}

// Cache is an optional shared cache in front of the settings table, so
// sibling instances pick up writes without hitting the database on every
// request. Implementations: rediscache.SettingsCache, rediscache.Noop.
type Cache interface {
	Get(ctx context.Context) (Settings, bool, error)
	Set(ctx context.Context, s Settings, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// StoreProvider implements Provider over the settings repository with an
// in-process snapshot and the shared cache.
type StoreProvider struct {
	repo  repository.SettingsRepository
	cache Cache
	ttl   time.Duration

	mu      sync.RWMutex
	current Settings
	loaded  bool
}

// NewStoreProvider builds the provider. cacheTTL bounds how long the shared
// cache entry lives; the in-process snapshot has no expiry by design.
func NewStoreProvider(repo repository.SettingsRepository, cache Cache, cacheTTL time.Duration) *StoreProvider {
	return &StoreProvider{repo: repo, cache: cache, ttl: cacheTTL}
}

// Current returns the in-process snapshot, loading it on first use (shared
// cache first, then the database).
func (p *StoreProvider) Current(ctx context.Context) (Settings, error) {
	p.mu.RLock()
	if p.loaded {
		s := p.current
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	if cached, ok, err := p.cache.Get(ctx); err == nil && ok {
		p.mu.Lock()
		p.current = cached
		p.loaded = true
		p.mu.Unlock()
		return cached, nil
	}
	return p.Reload(ctx)
}

// Reload reads the settings table, replaces the in-process snapshot and
// refreshes the shared cache.
func (p *StoreProvider) Reload(ctx context.Context) (Settings, error) {
	raw, err := p.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s := Settings(raw)

	p.mu.Lock()
	p.current = s
	p.loaded = true
	p.mu.Unlock()

	// Best effort: a cache write failure must not fail the reload.
	_ = p.cache.Set(ctx, s, p.ttl)
	return s, nil
}

// Set writes one key, invalidates the shared cache and reloads the snapshot.
func (p *StoreProvider) Set(ctx context.Context, key, value string) error {
	if err := p.repo.Set(ctx, key, value); err != nil {
		return err
	}
	_ = p.cache.Invalidate(ctx)
	_, err := p.Reload(ctx)
	return err
}

// Static is a fixed-snapshot Provider for tests and tooling.
type Static struct {
	S Settings
}

func (s Static) Current(context.Context) (Settings, error) { return s.S, nil }
func (s Static) Reload(context.Context) (Settings, error)  { return s.S, nil }
func (s Static) Set(ctx context.Context, key, value string) error {
	s.S[key] = value
	return nil
}
