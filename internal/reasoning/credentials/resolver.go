// Package credentials resolves per-provider API keys. Keys come from the
// secure store behind the bridge boundary and are held in a short-lived
// in-memory cache; nothing here ever writes a plaintext secret to disk.
package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/settings"
)

// SecureStore fetches a provider key from the external secure store.
// *bridge.Client satisfies it.
type SecureStore interface {
	FetchAPIKey(ctx context.Context, provider models.ProviderID) (string, error)
}

const (
	defaultTTL      = 5 * time.Minute
	cleanupInterval = time.Minute
)

type entry struct {
	secret  string
	expires time.Time
}

// Resolver caches secure-store lookups with expiry. A background janitor
// evicts stale entries until Stop is called.
type Resolver struct {
	store    SecureStore
	settings settings.Store
	ttl      time.Duration

	mu    sync.Mutex
	cache map[models.ProviderID]entry

	done     chan struct{}
	stopOnce sync.Once
}

// NewResolver creates a resolver and starts its cleanup cycle.
func NewResolver(store SecureStore, st settings.Store) *Resolver {
	r := &Resolver{
		store:    store,
		settings: st,
		ttl:      defaultTTL,
		cache:    make(map[models.ProviderID]entry),
		done:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Get returns the secret for a provider. All providers try the secure store
// (through the cache); the custom provider additionally falls back to the
// user-supplied settings key, and its secret is never cached.
func (r *Resolver) Get(ctx context.Context, provider models.ProviderID) (string, error) {
	if provider == models.ProviderCustom {
		if secret, err := r.store.FetchAPIKey(ctx, provider); err == nil && secret != "" {
			return secret, nil
		}
		if key := r.settings.GetString(settings.KeyCustomAPIKey); key != "" {
			return key, nil
		}
		return "", reasoning.NewError(reasoning.KindCredentialMissing,
			"no API key configured for the custom endpoint")
	}

	r.mu.Lock()
	if e, ok := r.cache[provider]; ok && time.Now().Before(e.expires) {
		r.mu.Unlock()
		return e.secret, nil
	}
	r.mu.Unlock()

	secret, err := r.store.FetchAPIKey(ctx, provider)
	if err != nil {
		return "", reasoning.WrapError(reasoning.KindCredentialMissing, err,
			"failed to fetch %s API key", provider)
	}
	if secret == "" {
		return "", reasoning.NewError(reasoning.KindCredentialMissing,
			"no API key available for %s", provider)
	}

	r.mu.Lock()
	r.cache[provider] = entry{secret: secret, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return secret, nil
}

// Clear drops the cached secret for one provider.
func (r *Resolver) Clear(provider models.ProviderID) {
	r.mu.Lock()
	delete(r.cache, provider)
	r.mu.Unlock()
}

// ClearAll drops every cached secret.
func (r *Resolver) ClearAll() {
	r.mu.Lock()
	r.cache = make(map[models.ProviderID]entry)
	r.mu.Unlock()
}

// Stop ends the cleanup cycle and releases its timer.
func (r *Resolver) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *Resolver) janitor() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

func (r *Resolver) evictExpired() {
	now := time.Now()
	r.mu.Lock()
	for provider, e := range r.cache {
		if now.After(e.expires) {
			delete(r.cache, provider)
			log.Debug("evicted expired credential", "provider", provider)
		}
	}
	r.mu.Unlock()
}
