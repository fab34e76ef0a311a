// Package container is a very small DI container using constructor
// injection. It centralizes wiring in main without external deps and keeps
// everything testable through interfaces.
package container

import (
	"fmt"
	"reflect"
	"sync"
)

type Container struct {
	mu        sync.Mutex
	providers map[reflect.Type]provider
	instances map[reflect.Type]reflect.Value
}

type provider struct {
	fn        reflect.Value
	singleton bool
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

func New() *Container {
	return &Container{
		providers: make(map[reflect.Type]provider),
		instances: make(map[reflect.Type]reflect.Value),
	}
}

// Provide registers a constructor for the type of its first return value.
// Constructor parameters are resolved from the container. The constructor
// may return (T) or (T, error).
func (c *Container) Provide(constructor any, singleton bool) error {
	v := reflect.ValueOf(constructor)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: constructor must be a function")
	}
	ft := v.Type()
	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		return fmt.Errorf("container: constructor must return (T) or (T, error)")
	}
	if ft.NumOut() == 2 && ft.Out(1) != errType {
		return fmt.Errorf("container: second return value must be error")
	}
	out := ft.Out(0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[out]; exists {
		return fmt.Errorf("container: provider already exists for %v", out)
	}
	c.providers[out] = provider{fn: v, singleton: singleton}
	return nil
}

// Resolve sets *target to an instance of its type.
func (c *Container) Resolve(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("container: target must be a non-nil pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, err := c.build(v.Elem().Type(), nil)
	if err != nil {
		return err
	}
	v.Elem().Set(inst)
	return nil
}

// Invoke calls fn with every parameter resolved from the container.
func (c *Container) Invoke(fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: Invoke needs a function")
	}
	c.mu.Lock()
	args := make([]reflect.Value, v.Type().NumIn())
	for i := range args {
		inst, err := c.build(v.Type().In(i), nil)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		args[i] = inst
	}
	c.mu.Unlock()

	outs := v.Call(args)
	for _, o := range outs {
		if o.Type() == errType && !o.IsNil() {
			return o.Interface().(error)
		}
	}
	return nil
}

// build resolves t, constructing dependencies recursively. The seen set
// catches provider cycles. Caller holds the lock.
func (c *Container) build(t reflect.Type, seen map[reflect.Type]bool) (reflect.Value, error) {
	if inst, ok := c.instances[t]; ok {
		return inst, nil
	}
	p, ok := c.providers[t]
	if !ok {
		return reflect.Value{}, fmt.Errorf("container: no provider for %v", t)
	}
	if seen == nil {
		seen = make(map[reflect.Type]bool)
	}
	if seen[t] {
		return reflect.Value{}, fmt.Errorf("container: dependency cycle on %v", t)
	}
	seen[t] = true

	ft := p.fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		dep, err := c.build(ft.In(i), seen)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = dep
	}

	outs := p.fn.Call(args)
	if len(outs) == 2 && !outs[1].IsNil() {
		return reflect.Value{}, outs[1].Interface().(error)
	}
	inst := outs[0]
	if p.singleton {
		c.instances[t] = inst
	}
	return inst, nil
}
