package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
)

// Registry manages connector registration and instantiation
type Registry struct {
	sources      map[string]SourceFactory
	destinations map[string]DestinationFactory
	catalog      map[string]*ConnectorInfo
	mu           sync.RWMutex
	logger       *zap.Logger
}

// SourceFactory creates a source connector from its configuration.
type SourceFactory func(cfg *config.ConnectorConfig) (core.Source, error)

// DestinationFactory creates a destination connector from its configuration.
type DestinationFactory func(cfg *config.ConnectorConfig) (core.Destination, error)

// ConnectorInfo describes a connector for `strata list`
type ConnectorInfo struct {
	Name        string             `json:"name" yaml:"name"`
	Type        core.ConnectorType `json:"type" yaml:"type"`
	Description string             `json:"description" yaml:"description"`
	// Options lists the recognised option keys; required ones end in "*"
	Options []string `json:"options" yaml:"options"`
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new connector registry
func NewRegistry() *Registry {
	return &Registry{
		sources:      make(map[string]SourceFactory),
		destinations: make(map[string]DestinationFactory),
		catalog:      make(map[string]*ConnectorInfo),
		logger:       logger.Get().With(zap.String("component", "connector_registry")),
	}
}

func infoKey(t core.ConnectorType, name string) string {
	return string(t) + "/" + name
}

// RegisterSource registers a source connector factory
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source connector %s already registered", name))
	}

	r.sources[name] = factory
	r.logger.Debug("source connector registered", zap.String("name", name))
	return nil
}

// RegisterDestination registers a destination connector factory
func (r *Registry) RegisterDestination(name string, factory DestinationFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.destinations[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("destination connector %s already registered", name))
	}

	r.destinations[name] = factory
	r.logger.Debug("destination connector registered", zap.String("name", name))
	return nil
}

// Describe records catalog information for a registered connector.
func (r *Registry) Describe(info *ConnectorInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog[infoKey(info.Type, info.Name)] = info
}

// CreateSource creates a source connector instance
func (r *Registry) CreateSource(cfg *config.ConnectorConfig) (core.Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	factory, exists := r.sources[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source connector %s not found (available: %v)",
			cfg.Type, r.ListSources())
	}

	source, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create source connector %s", cfg.Type))
	}

	return source, nil
}

// CreateDestination creates a destination connector instance
func (r *Registry) CreateDestination(cfg *config.ConnectorConfig) (core.Destination, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	factory, exists := r.destinations[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "destination connector %s not found (available: %v)",
			cfg.Type, r.ListDestinations())
	}

	destination, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create destination connector %s", cfg.Type))
	}

	return destination, nil
}

// ListSources returns the registered source connectors in sorted order
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.sources))
	for name := range r.sources {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// ListDestinations returns the registered destination connectors in sorted order
func (r *Registry) ListDestinations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	destinations := make([]string, 0, len(r.destinations))
	for name := range r.destinations {
		destinations = append(destinations, name)
	}
	sort.Strings(destinations)
	return destinations
}

// HasSource checks if a source connector is registered
func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sources[name]
	return exists
}

// HasDestination checks if a destination connector is registered
func (r *Registry) HasDestination(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.destinations[name]
	return exists
}

// Catalog returns the described connectors, sources first, each group
// sorted by name. Registered connectors without a description are listed
// with their name only.
func (r *Registry) Catalog() []*ConnectorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ConnectorInfo
	add := func(t core.ConnectorType, names []string) {
		sort.Strings(names)
		for _, n := range names {
			if info, ok := r.catalog[infoKey(t, n)]; ok {
				out = append(out, info)
				continue
			}
			out = append(out, &ConnectorInfo{Name: n, Type: t})
		}
	}
	var src, dst []string
	for n := range r.sources {
		src = append(src, n)
	}
	for n := range r.destinations {
		dst = append(dst, n)
	}
	add(core.ConnectorTypeSource, src)
	add(core.ConnectorTypeDestination, dst)
	return out
}

// Global registry functions

// RegisterSource registers a source connector in the global registry
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterDestination registers a destination connector in the global registry
func RegisterDestination(name string, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(name, factory)
}

// Describe records catalog information in the global registry
func Describe(info *ConnectorInfo) {
	globalRegistry.Describe(info)
}

// CreateSource creates a source connector from the global registry
func CreateSource(cfg *config.ConnectorConfig) (core.Source, error) {
	return globalRegistry.CreateSource(cfg)
}

// CreateDestination creates a destination connector from the global registry
func CreateDestination(cfg *config.ConnectorConfig) (core.Destination, error) {
	return globalRegistry.CreateDestination(cfg)
}

// ListSources returns registered sources from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations returns registered destinations from the global registry
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// HasSource checks if a source is registered in the global registry
func HasSource(name string) bool {
	return globalRegistry.HasSource(name)
}

// HasDestination checks if a destination is registered in the global registry
func HasDestination(name string) bool {
	return globalRegistry.HasDestination(name)
}

// GetRegistry returns the global registry instance.
func GetRegistry() *Registry {
	return globalRegistry
}
