package core

import "fmt"

// RegistrationError reports an invalid build-time composition: a duplicate or
// empty module name. It is always fatal and detected before any phase runs.
type RegistrationError struct {
	Module string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register module %q: %s", e.Module, e.Reason)
}

// LifecycleError reports a failed module hook. During init and start it is
// fatal and names the module so an operator can act without reading kernel
// internals; during stop it is collected into an aggregate and shutdown
// continues.
type LifecycleError struct {
	Module string
	Phase  string
	Err    error
}

func (e *LifecycleError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("lifecycle %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("module %q %s: %v", e.Module, e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }
