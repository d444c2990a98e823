package capability

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mvasek/switchboard/logging"
)

var (
	// ErrDuplicateName is returned when a capability name is registered twice.
	ErrDuplicateName = errors.New("capability name already registered")

	// ErrUnknownTool is returned when a requested capability is not registered.
	ErrUnknownTool = errors.New("unknown capability")

	// ErrFrozen is returned when registering against a frozen registry.
	ErrFrozen = errors.New("registry is frozen")
)

type entry struct {
	spec     Spec
	binding  Binding
	compiled *jsonschema.Schema
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger receives registration events. Defaults to a no-op logger.
	Logger logging.Logger
}

// Registry holds the capabilities available to the orchestrator. Registration
// happens during composition; Freeze closes the set before routing begins.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
	frozen  bool
	logger  logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		entries: make(map[string]entry),
		logger:  opts.Logger,
	}
}

// Register adds a capability under its spec name. It fails on invalid specs,
// duplicate names, frozen registries, and raw schemas that do not compile.
func (r *Registry) Register(spec Spec, binding Binding) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if binding == nil {
		return fmt.Errorf("capability %q: binding is required", spec.Name)
	}

	var compiled *jsonschema.Schema
	if len(spec.RawSchema) > 0 {
		var err error
		compiled, err = compileSchema(spec.Name, spec.RawSchema)
		if err != nil {
			return fmt.Errorf("capability %q: invalid schema: %w", spec.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("capability %q: %w", spec.Name, ErrFrozen)
	}
	if _, exists := r.entries[spec.Name]; exists {
		return fmt.Errorf("capability %q: %w", spec.Name, ErrDuplicateName)
	}

	r.entries[spec.Name] = entry{spec: spec, binding: binding, compiled: compiled}
	r.order = append(r.order, spec.Name)
	r.logger.Debug("capability registered", "name", spec.Name, "idempotent", spec.Idempotent)
	return nil
}

// Resolve returns the binding and spec registered under name.
func (r *Registry) Resolve(name string) (Binding, Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, Spec{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return e.binding, e.spec, nil
}

// CompiledSchema returns the compiled raw schema for name, or nil when the
// capability declares only Params.
func (r *Registry) CompiledSchema(name string) *jsonschema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.entries[name].compiled
}

// DescribeAll returns the specs of every registered capability in
// registration order.
func (r *Registry) DescribeAll() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.entries[name].spec)
	}
	return specs
}

// Freeze closes the registry to further registration. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("inline://%s.json", name)
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}
