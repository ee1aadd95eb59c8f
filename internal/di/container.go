// Package di wires the daemon's long-lived services.
package di

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ErrServiceNotFound is returned for a name with neither an instance nor a
// builder.
var ErrServiceNotFound = errors.New("service not found")

// Container is the dependency injection container.
// It manages service registration and resolution.
type Container struct {
	mu       sync.Mutex
	services map[string]any
	builders map[string]Builder
	building map[string]bool
	order    []string
}

// Builder is a function that creates a service instance. A builder may
// return a nil service for an optional component that is switched off.
type Builder func(c *Container) (any, error)

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]any),
		builders: make(map[string]Builder),
		building: make(map[string]bool),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
	c.order = append(c.order, name)
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use. Builders may
// resolve their own dependencies through c.
func (c *Container) Get(name string) (any, error) {
	c.mu.Lock()
	if service, exists := c.services[name]; exists {
		c.mu.Unlock()
		return service, nil
	}
	builder, hasBuilder := c.builders[name]
	if !hasBuilder {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if c.building[name] {
		c.mu.Unlock()
		return nil, fmt.Errorf("dependency cycle through %s", name)
	}
	c.building[name] = true
	c.mu.Unlock()

	service, err := builder(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.building, name)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	c.services[name] = service
	c.order = append(c.order, name)
	return service, nil
}

// Resolve retrieves a service and asserts its type. A service that was
// built as nil resolves to the zero T.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	service, err := c.Get(name)
	if err != nil || service == nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s is %T, not %T", name, service, zero)
	}
	return typed, nil
}

// MustResolve is Resolve that panics on error.
func MustResolve[T any](c *Container, name string) T {
	service, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[name]; exists {
		return true
	}
	_, exists := c.builders[name]
	return exists
}

// ServiceNames returns all registered service names, sorted.
func (c *Container) ServiceNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make(map[string]bool)
	for name := range c.services {
		names[name] = true
	}
	for name := range c.builders {
		names[name] = true
	}

	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Close closes every built service that implements io.Closer, newest
// first, and forgets all instances. Builders stay registered.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.order) - 1; i >= 0; i-- {
		name := c.order[i]
		if closer, ok := c.services[name].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
			}
		}
	}
	c.services = make(map[string]any)
	c.order = nil
	return errors.Join(errs...)
}

// Service names constants for type-safe access.
const (
	ServiceConfig     = "config"
	ServiceClock      = "clock"
	ServiceStorage    = "storage"
	ServiceStateStore = "statestore"
	ServiceJournal    = "journal"
	ServiceGenesis    = "genesis"
	ServiceEngine     = "ledger.engine"
	ServiceHub        = "rpc.hub"
)
