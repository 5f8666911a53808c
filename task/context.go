package task

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/wudi/pdftask/model/parameter"
)

// Resolver finds the task able to run params.
type Resolver interface {
	Task(params parameter.Parameters) (Task, error)
}

// Factory builds the task instance for one execution.
type Factory func() Task

type registration struct {
	name    string
	factory Factory
}

// ExecutionContext maps parameter types to tasks. Exactly one task may be
// registered per parameter type. It is safe for concurrent use.
type ExecutionContext struct {
	mu     sync.RWMutex
	byType map[reflect.Type]registration
	byName map[string]reflect.Type
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		byType: make(map[reflect.Type]registration),
		byName: make(map[string]reflect.Type),
	}
}

// Register binds the dynamic type of prototype to the task built by factory.
func (c *ExecutionContext) Register(name string, prototype parameter.Parameters, factory Factory) error {
	if name == "" || prototype == nil || factory == nil {
		return fmt.Errorf("register %q: name, prototype and factory are required", name)
	}
	typ := reflect.TypeOf(prototype)
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.byType[typ]; ok {
		return fmt.Errorf("register %q: %s already handled by %q", name, typ, prev.name)
	}
	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("register %q: name already in use", name)
	}
	c.byType[typ] = registration{name: name, factory: factory}
	c.byName[name] = typ
	return nil
}

// Task returns a fresh task for params, or an *Error of kind ErrTaskNotFound.
func (c *ExecutionContext) Task(params parameter.Parameters) (Task, error) {
	if params == nil {
		return nil, &Error{Kind: ErrTaskNotFound, Err: fmt.Errorf("nil parameters")}
	}
	typ := reflect.TypeOf(params)
	c.mu.RLock()
	reg, ok := c.byType[typ]
	c.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: ErrTaskNotFound, Err: fmt.Errorf("no task for %s", typ)}
	}
	return reg.factory(), nil
}

// Lookup returns the name a parameter type is registered under.
func (c *ExecutionContext) Lookup(params parameter.Parameters) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.byType[reflect.TypeOf(params)]
	return reg.name, ok
}

// Names lists the registered task names in order.
func (c *ExecutionContext) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}
