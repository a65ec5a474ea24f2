package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Container is a small typed registry for resources shared between modules
// that have no compile-time dependency on each other. Keys are usually the
// TypeKey of the stored value; see Put and Resolve.
type Container interface {
	Set(key any, val any)
	Get(key any) (any, bool)
	MustGet(key any) any
}

type container struct {
	mu  sync.RWMutex
	reg map[any]any
}

func NewContainer() Container {
	return &container{reg: make(map[any]any)}
}

func (c *container) Set(key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg[key] = val
}

func (c *container) Get(key any) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.reg[key]
	return v, ok
}

func (c *container) MustGet(key any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	panic(fmt.Errorf("container: missing shared resource %v (%T)", key, key))
}

// TypeKey keys a shared resource by its Go type.
type TypeKey[T any] struct{}

// Put stores v under its type.
func Put[T any](c Container, v T) { c.Set(TypeKey[T]{}, v) }

// Resolve fetches the value stored under T, panicking if absent or of the
// wrong type. A panic here means a module was registered before the module
// that provides T, which is an assembly-order bug.
func Resolve[T any](c Container) T {
	raw := c.MustGet(TypeKey[T]{})
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Errorf("container: wrong type. have=%T want=%v", raw, reflect.TypeFor[T]()))
	}
	return v
}
