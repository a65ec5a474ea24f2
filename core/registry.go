package core

// Registry collects every module known at build time and hands them back in
// registration order. That order is the deterministic total order for every
// lifecycle phase: modules declare no dependencies on each other, so the only
// reproducible signal is how the process entry point composed them.
//
// A registration failure moves the registry into an error state and every
// later Register is rejected with the original error, so a bad composition
// can never partially boot.
type Registry struct {
	modules []Module
	names   map[string]struct{}
	failed  error
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds m. It must only be called before the first lifecycle phase.
func (r *Registry) Register(m Module) error {
	if r.failed != nil {
		return r.failed
	}
	name := m.Name()
	if name == "" {
		r.failed = &RegistrationError{Module: name, Reason: "module name must not be empty"}
		return r.failed
	}
	if _, dup := r.names[name]; dup {
		r.failed = &RegistrationError{Module: name, Reason: "duplicate module name"}
		return r.failed
	}
	r.names[name] = struct{}{}
	r.modules = append(r.modules, m)
	return nil
}

// All returns the registered modules in registration order. The returned
// slice is a copy; the registry itself is immutable once lifecycle begins.
func (r *Registry) All() []Module {
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Len reports the number of registered modules.
func (r *Registry) Len() int { return len(r.modules) }
