// File: registry.go
// Title: Capability Registry
// Description: Closed set of validation capabilities keyed by CapabilityID.
//              Plans are bound against the registry before any step runs, so
//              an unknown method fails the call without side effects.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Initial implementation

package validation

import (
	"context"
	"sort"
	"sync"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/log"
)

// CapabilityID names a registered capability
type CapabilityID string

// String returns the id as a string
func (id CapabilityID) String() string {
	return string(id)
}

// Call carries the positional arguments of one capability invocation: one
// raw input value per declared input key, the step's field key and the
// step's extra arguments.
type Call struct {
	Values []any
	Field  string
	Args   []any
}

// Value returns the first input value, or nil
func (c Call) Value() any {
	if len(c.Values) == 0 {
		return nil
	}
	return c.Values[0]
}

// Arg returns the extra argument at index i
func (c Call) Arg(i int) (any, bool) {
	if i < 0 || i >= len(c.Args) {
		return nil, false
	}
	return c.Args[i], true
}

// Capability validates the values of one step and records values and
// errors into res. Capabilities must tolerate nil values.
type Capability func(ctx context.Context, res *Result, call Call)

// Registry maps capability ids to capabilities. It is safe for concurrent
// use.
type Registry struct {
	mu     sync.RWMutex
	caps   map[CapabilityID]Capability
	frozen bool
	logger *log.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Discard()
	}
	return &Registry{
		caps:   make(map[CapabilityID]Capability),
		logger: logger.WithField("component", "registry"),
	}
}

// Register adds a capability
func (r *Registry) Register(id CapabilityID, capability Capability) error {
	if id == "" || capability == nil {
		return mdwerror.New("capability id and function are required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("validation.Register").
			WithDetail("capability", string(id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return mdwerror.New("registry is frozen").
			WithCode(mdwerror.CodeRegistryFrozen).
			WithOperation("validation.Register").
			WithDetail("capability", string(id))
	}
	if _, exists := r.caps[id]; exists {
		return mdwerror.Newf("capability %s is already registered", id).
			WithCode(mdwerror.CodeDuplicateCapability).
			WithOperation("validation.Register").
			WithDetail("capability", string(id))
	}

	r.caps[id] = capability
	r.logger.Debug("capability registered", log.Fields{"capability": string(id)})
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(id CapabilityID, capability Capability) {
	if err := r.Register(id, capability); err != nil {
		panic(err)
	}
}

// RegisterAll adds every capability of set in id order. Registration stops
// at the first error.
func (r *Registry) RegisterAll(set map[CapabilityID]Capability) error {
	ids := make([]CapabilityID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := r.Register(id, set[id]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the capability registered under id
func (r *Registry) Lookup(id CapabilityID) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	capability, ok := r.caps[id]
	return capability, ok
}

// Has reports whether id is registered
func (r *Registry) Has(id CapabilityID) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Bind resolves the capability of every step. The first unknown method
// fails the whole plan.
func (r *Registry) Bind(steps []Step) ([]Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bound := make([]Capability, len(steps))
	for i, step := range steps {
		capability, ok := r.caps[step.Method]
		if !ok {
			return nil, mdwerror.Newf("unknown capability %q", step.Method).
				WithCode(mdwerror.CodeUnknownCapability).
				WithOperation("validation.Bind").
				WithDetail("step", i).
				WithDetail("field", step.Field).
				WithDetail("capability", string(step.Method))
		}
		bound[i] = capability
	}
	return bound, nil
}

// IDs returns the registered ids in sorted order
func (r *Registry) IDs() []CapabilityID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]CapabilityID, 0, len(r.caps))
	for id := range r.caps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered capabilities
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caps)
}

// Freeze rejects any further registration
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	r.logger.Debug("registry frozen", log.Fields{"capabilities": r.Len()})
}

// Frozen reports whether Freeze was called
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
