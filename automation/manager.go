package automation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

/* Manager is the driver registry
 * One instance is built at process start and passed to the pipeline and callers
 * Instances are cached per name and config signature
 */
type Manager struct {
	mu            sync.RWMutex
	factories     map[string]Factory
	configs       map[string]Config
	defaultDriver string
	instances     map[string]cached
	group         singleflight.Group
	kit           Toolkit
	logger        zerolog.Logger
}

type cached struct {
	kind   string
	driver Driver
}

// Descriptor is the introspection view of one configured driver
type Descriptor struct {
	Name     string            `json:"name"`
	Driver   string            `json:"driver"`
	Inbound  bool              `json:"supports_incoming_webhooks"`
	Outbound bool              `json:"supports_outgoing_actions"`
	Actions  map[string]string `json:"available_actions"`
	Events   []string          `json:"supported_events"`
}

// DriverKey is the bag key naming the factory of a configured entry.
// Entries without it use their own name as the factory name.
const DriverKey = "driver"

// NewManager creates a registry over the configured bags
func NewManager(configs map[string]Config, defaultDriver string, kit Toolkit) *Manager {
	m := &Manager{
		factories:     make(map[string]Factory),
		configs:       make(map[string]Config, len(configs)),
		defaultDriver: defaultDriver,
		instances:     make(map[string]cached),
		kit:           kit,
		logger:        kit.Logger.With().Str("component", "manager").Logger(),
	}
	for name, cfg := range configs {
		m.configs[name] = cfg.Clone()
	}
	return m
}

// Register binds a factory under a unique name
func (m *Manager) Register(name string, factory Factory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.factories[name]; exists {
		return fmt.Errorf("registering %s: %w", name, ErrDuplicateDriver)
	}
	m.factories[name] = factory
	return nil
}

// Extend binds or overrides a factory at run time; cached instances built by the old one are dropped
func (m *Manager) Extend(name string, factory Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[name] = factory
	for key, c := range m.instances {
		if c.kind == name {
			delete(m.instances, key)
		}
	}
}

// Configure adds or replaces the bag for a name
func (m *Manager) Configure(name string, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[name] = cfg.Clone()
}

// DefaultDriver returns the configured default name
func (m *Manager) DefaultDriver() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultDriver
}

// Drivers lists configured names, sorted
func (m *Manager) Drivers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.configs))
	for name := range m.configs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasDriver reports membership in the configured name set
func (m *Manager) HasDriver(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.configs[name]
	return ok
}

// Resolve returns the driver configured under name, building it on first use.
// An empty name resolves the default driver.
func (m *Manager) Resolve(ctx context.Context, name string) (Driver, error) {
	return m.ResolveWith(ctx, name, nil)
}

// ResolveWith merges overrides over the configured bag before resolving
func (m *Manager) ResolveWith(ctx context.Context, name string, overrides Config) (Driver, error) {
	if name == "" {
		name = m.DefaultDriver()
	}
	m.mu.RLock()
	base, configured := m.configs[name]
	m.mu.RUnlock()
	if !configured {
		return nil, &DriverNotFoundError{Driver: name}
	}

	cfg := base.Merge(overrides)
	kind := name
	if k := cfg.String(DriverKey); k != "" {
		kind = k
	}
	key := name + "@" + cfg.Signature()

	if d, ok := m.cachedDriver(key); ok {
		return d, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		if d, ok := m.cachedDriver(key); ok {
			return d, nil
		}
		m.mu.RLock()
		factory, found := m.factories[kind]
		m.mu.RUnlock()
		if !found {
			return nil, &DriverNotFoundError{Driver: name}
		}

		d, err := factory(cfg.Clone(), m.kit.ForDriver(kind))
		if err != nil {
			return nil, fmt.Errorf("creating driver %s: %w", name, err)
		}

		m.mu.Lock()
		m.instances[key] = cached{kind: kind, driver: d}
		m.mu.Unlock()
		m.logger.Debug().Str("driver", name).Str("kind", kind).Msg("driver instance created")
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Driver), nil
}

func (m *Manager) cachedDriver(key string) (Driver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.instances[key]
	return c.driver, ok
}

// Describe resolves name and reports its capabilities
func (m *Manager) Describe(ctx context.Context, name string) (Descriptor, error) {
	d, err := m.Resolve(ctx, name)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Name:     name,
		Driver:   d.Name(),
		Inbound:  d.SupportsIncomingWebhooks(),
		Outbound: d.SupportsOutgoingActions(),
		Actions:  d.AvailableActions(),
		Events:   d.SupportedEvents(),
	}, nil
}
