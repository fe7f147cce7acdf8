// Package dispatch wires the reasoning pipeline together: provider
// resolution, credentials, endpoints, the provider handler, and the
// in-flight guards.
package dispatch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/oratio-ai/oratio/internal/bridge"
	"github.com/oratio-ai/oratio/internal/prompt"
	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/reasoning/credentials"
	"github.com/oratio-ai/oratio/internal/reasoning/endpoint"
	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/reasoning/providers"
	"github.com/oratio-ai/oratio/internal/settings"
)

// Dispatcher routes free-form text to a provider and returns the cleaned-up
// result. One dispatcher serves one process; calls within the same provider
// family (local vs cloud) reject overlap instead of queuing.
type Dispatcher struct {
	registry  *models.Registry
	creds     *credentials.Resolver
	endpoints *endpoint.Resolver
	bridge    bridge.Bridge
	settings  settings.Store
	retry     providers.RetryPolicy

	localBusy atomic.Bool
	cloudBusy atomic.Bool
}

// New creates a dispatcher over the given collaborators.
func New(registry *models.Registry, creds *credentials.Resolver, endpoints *endpoint.Resolver, br bridge.Bridge, st settings.Store) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		creds:     creds,
		endpoints: endpoints,
		bridge:    br,
		settings:  st,
		retry:     providers.DefaultRetryPolicy(),
	}
}

// ProcessText runs text through the pipeline and returns the cleaned text.
// Every stage failure comes back as a single descriptive error; none of
// them are fatal to the process.
func (d *Dispatcher) ProcessText(ctx context.Context, text, modelID, agentName string, cfg reasoning.GenerationConfig) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	selected := models.ProviderID(d.settings.GetString(settings.KeyProvider))
	provider := d.registry.ResolveProvider(modelID, selected)
	isCustom := selected == models.ProviderCustom

	guard := &d.cloudBusy
	if provider == models.ProviderLocal {
		guard = &d.localBusy
	}
	if !guard.CompareAndSwap(false, true) {
		return "", reasoning.NewError(reasoning.KindAlreadyProcessing,
			"a reasoning request is already in flight for this provider family")
	}
	defer guard.Store(false)

	id := uuid.NewString()
	start := time.Now()
	log.Debug("dispatching reasoning request", "id", id, "model", modelID, "provider", provider, "custom", isCustom)

	systemPrompt := prompt.Effective(d.settings, agentName)

	handler, err := d.buildHandler(ctx, provider, isCustom, modelID)
	if err != nil {
		log.Error("failed to prepare reasoning handler", "id", id, "provider", provider, "error", err)
		return "", err
	}

	out, err := handler.Complete(ctx, systemPrompt, text, cfg)
	if err != nil {
		log.Error("reasoning request failed", "id", id, "provider", provider,
			"kind", reasoning.KindOf(err), "elapsed", time.Since(start), "error", err)
		return "", err
	}

	log.Debug("reasoning request complete", "id", id, "provider", provider,
		"elapsed", time.Since(start), "chars", len(out))
	return out, nil
}

func (d *Dispatcher) buildHandler(ctx context.Context, provider models.ProviderID, isCustom bool, modelID string) (reasoning.Handler, error) {
	options := providers.Options{
		ModelID: modelID,
		Retry:   d.retry,
	}
	if def, ok := d.registry.Lookup(modelID); ok {
		options.DisableThinking = def.DisableThinking
	}

	switch provider {
	case models.ProviderLocal:
		return providers.NewLocalHandler(options, d.bridge), nil

	case models.ProviderAnthropic:
		return providers.NewAnthropicHandler(options, d.bridge), nil

	case models.ProviderGemini:
		key, err := d.creds.Get(ctx, models.ProviderGemini)
		if err != nil {
			return nil, err
		}
		options.APIKey = key
		return providers.NewGeminiHandler(options), nil

	case models.ProviderGroq:
		key, err := d.creds.Get(ctx, models.ProviderGroq)
		if err != nil {
			return nil, err
		}
		options.APIKey = key
		return providers.NewGroqHandler(options), nil

	case models.ProviderOpenAI:
		credProvider := models.ProviderOpenAI
		baseProvider := models.ProviderOpenAI
		if isCustom {
			credProvider = models.ProviderCustom
			baseProvider = models.ProviderCustom
		}
		key, err := d.creds.Get(ctx, credProvider)
		if err != nil {
			return nil, err
		}
		options.APIKey = key
		options.BaseURL = d.endpoints.ResolveBase(baseProvider)
		return providers.NewOpenAIHandler(options, d.endpoints), nil

	default:
		return nil, reasoning.NewError(reasoning.KindUnsupportedProvider,
			"no handler for provider %q", provider)
	}
}
