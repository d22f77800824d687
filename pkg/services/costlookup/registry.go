package costlookup

import (
	"context"
	"fmt"
	"sync"
)

// Factory creates both lookup ports for a billing provider from a
// credential profile. region may be empty, leaving it to the provider's
// own configuration.
type Factory func(ctx context.Context, profile, region string) (ResourceCostLookup, ServiceCostLookup, error)

// Registry manages billing provider factories
type Registry interface {
	// Register adds a new billing provider factory
	Register(provider string, factory Factory) error
	// Create instantiates the lookup ports for the specified provider
	Create(ctx context.Context, provider, profile, region string) (ResourceCostLookup, ServiceCostLookup, error)
	// ListProviders returns a list of registered providers
	ListProviders() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new provider registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

func (r *registry) Register(provider string, factory Factory) error {
	if provider == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[provider]; exists {
		return fmt.Errorf("provider %q is already registered", provider)
	}

	r.factories[provider] = factory
	return nil
}

func (r *registry) Create(
	ctx context.Context,
	provider, profile, region string,
) (ResourceCostLookup, ServiceCostLookup, error) {
	r.mu.RLock()
	factory, exists := r.factories[provider]
	r.mu.RUnlock()

	if !exists {
		return nil, nil, fmt.Errorf("provider %q is not registered", provider)
	}

	return factory(ctx, profile, region)
}

func (r *registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for provider := range r.factories {
		providers = append(providers, provider)
	}
	return providers
}
