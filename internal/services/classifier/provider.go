package classifier

import (
	"context"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
)

// Provider is the interface for label-clustering providers
type Provider interface {
	// GroupLabels partitions tag labels into groups of related labels
	GroupLabels(ctx context.Context, labels []string) ([]annotation.TagGroup, error)
}

// ProviderFactory creates a provider based on the provider type
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available clustering providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "clustering provider not found: " + e.Name
}
