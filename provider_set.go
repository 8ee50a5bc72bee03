package persistpager

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ProviderSet maps object classes to the provider selected for them at
// composition time.
type ProviderSet struct {
	mu        sync.RWMutex
	providers map[ObjectClass]PagerProvider
}

func NewProviderSet() *ProviderSet {
	return &ProviderSet{
		providers: make(map[ObjectClass]PagerProvider),
	}
}

// Register binds provider to objectClass. Registering a class twice is an error.
func (s *ProviderSet) Register(objectClass ObjectClass, provider PagerProvider) error {
	if provider == nil {
		return fmt.Errorf("cannot register nil provider for %q", objectClass)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.providers == nil {
		s.providers = make(map[ObjectClass]PagerProvider)
	}
	if _, exists := s.providers[objectClass]; exists {
		return fmt.Errorf("provider for %q already registered", objectClass)
	}
	s.providers[objectClass] = provider

	return nil
}

// Get returns the provider of objectClass.
func (s *ProviderSet) Get(objectClass ObjectClass) (PagerProvider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	provider, ok := s.providers[objectClass]

	return provider, ok
}

// Provide looks the provider of objectClass up and calls it.
func (s *ProviderSet) Provide(ctx context.Context, objectClass ObjectClass, override Config) (*Pager, error) {
	provider, ok := s.Get(objectClass)
	if !ok {
		return nil, fmt.Errorf("no pager provider registered for %q", objectClass)
	}

	return provider.Provide(ctx, override)
}

// Classes returns the registered object classes in lexical order.
func (s *ProviderSet) Classes() []ObjectClass {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ObjectClass, 0, len(s.providers))
	for objectClass := range s.providers {
		result = append(result, objectClass)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})

	return result
}
