package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/settings"
)

type fakeStore struct {
	keys    map[models.ProviderID]string
	err     error
	fetches int
}

func (f *fakeStore) FetchAPIKey(_ context.Context, provider models.ProviderID) (string, error) {
	f.fetches++
	if f.err != nil {
		return "", f.err
	}
	return f.keys[provider], nil
}

func TestResolverCachesFetches(t *testing.T) {
	store := &fakeStore{keys: map[models.ProviderID]string{models.ProviderOpenAI: "sk-abc"}}
	r := NewResolver(store, settings.NewMemory())
	defer r.Stop()

	for i := 0; i < 3; i++ {
		key, err := r.Get(context.Background(), models.ProviderOpenAI)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if key != "sk-abc" {
			t.Fatalf("get %d: key = %q", i, key)
		}
	}
	if store.fetches != 1 {
		t.Errorf("expected a single store fetch, got %d", store.fetches)
	}
}

func TestResolverExpiryRefetches(t *testing.T) {
	store := &fakeStore{keys: map[models.ProviderID]string{models.ProviderGroq: "gq-1"}}
	r := NewResolver(store, settings.NewMemory())
	defer r.Stop()
	r.ttl = time.Millisecond

	if _, err := r.Get(context.Background(), models.ProviderGroq); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := r.Get(context.Background(), models.ProviderGroq); err != nil {
		t.Fatal(err)
	}
	if store.fetches != 2 {
		t.Errorf("expected a refetch after expiry, got %d fetches", store.fetches)
	}
}

func TestResolverCustomPrefersSecureStore(t *testing.T) {
	store := &fakeStore{keys: map[models.ProviderID]string{models.ProviderCustom: "vault-key"}}
	st := settings.NewMemory()
	st.SetString(settings.KeyCustomAPIKey, "settings-key")
	r := NewResolver(store, st)
	defer r.Stop()

	// A custom key held only by the secure store still resolves, and wins
	// over the settings fallback.
	key, err := r.Get(context.Background(), models.ProviderCustom)
	if err != nil {
		t.Fatal(err)
	}
	if key != "vault-key" {
		t.Errorf("key = %q", key)
	}

	// Never cached: every call goes back to the store.
	r.Get(context.Background(), models.ProviderCustom)
	if store.fetches != 2 {
		t.Errorf("expected a store fetch per call, got %d", store.fetches)
	}
}

func TestResolverCustomFallsBackToSettings(t *testing.T) {
	store := &fakeStore{}
	st := settings.NewMemory()
	st.SetString(settings.KeyCustomAPIKey, "user-key-1")
	r := NewResolver(store, st)
	defer r.Stop()

	key, err := r.Get(context.Background(), models.ProviderCustom)
	if err != nil {
		t.Fatal(err)
	}
	if key != "user-key-1" {
		t.Errorf("key = %q", key)
	}

	// Edits take effect immediately; nothing was cached.
	st.SetString(settings.KeyCustomAPIKey, "user-key-2")
	key, _ = r.Get(context.Background(), models.ProviderCustom)
	if key != "user-key-2" {
		t.Errorf("expected updated key, got %q", key)
	}

	// A store error also falls through to the settings key.
	store.err = errors.New("bridge unreachable")
	key, err = r.Get(context.Background(), models.ProviderCustom)
	if err != nil || key != "user-key-2" {
		t.Errorf("got %q, %v", key, err)
	}

	store.err = nil
	st.SetString(settings.KeyCustomAPIKey, "")
	_, err = r.Get(context.Background(), models.ProviderCustom)
	if reasoning.KindOf(err) != reasoning.KindCredentialMissing {
		t.Errorf("expected credential-missing kind, got %v", err)
	}
}

func TestResolverMissingKey(t *testing.T) {
	t.Run("store error", func(t *testing.T) {
		store := &fakeStore{err: errors.New("bridge unreachable")}
		r := NewResolver(store, settings.NewMemory())
		defer r.Stop()

		_, err := r.Get(context.Background(), models.ProviderOpenAI)
		if reasoning.KindOf(err) != reasoning.KindCredentialMissing {
			t.Errorf("expected credential-missing kind, got %v", err)
		}
	})

	t.Run("blank key", func(t *testing.T) {
		store := &fakeStore{keys: map[models.ProviderID]string{}}
		r := NewResolver(store, settings.NewMemory())
		defer r.Stop()

		_, err := r.Get(context.Background(), models.ProviderGemini)
		if reasoning.KindOf(err) != reasoning.KindCredentialMissing {
			t.Errorf("expected credential-missing kind, got %v", err)
		}
		if store.fetches != 1 {
			t.Errorf("fetches = %d", store.fetches)
		}
	})
}

func TestResolverClear(t *testing.T) {
	store := &fakeStore{keys: map[models.ProviderID]string{
		models.ProviderOpenAI: "sk-1",
		models.ProviderGroq:   "gq-1",
	}}
	r := NewResolver(store, settings.NewMemory())
	defer r.Stop()

	r.Get(context.Background(), models.ProviderOpenAI)
	r.Get(context.Background(), models.ProviderGroq)

	r.Clear(models.ProviderOpenAI)
	r.Get(context.Background(), models.ProviderOpenAI)
	r.Get(context.Background(), models.ProviderGroq)
	if store.fetches != 3 {
		t.Errorf("expected only the cleared provider to refetch, got %d fetches", store.fetches)
	}

	r.ClearAll()
	r.Get(context.Background(), models.ProviderOpenAI)
	r.Get(context.Background(), models.ProviderGroq)
	if store.fetches != 5 {
		t.Errorf("expected both to refetch after ClearAll, got %d fetches", store.fetches)
	}
}

func TestResolverStopIsIdempotent(t *testing.T) {
	r := NewResolver(&fakeStore{}, settings.NewMemory())
	r.Stop()
	r.Stop()
}
