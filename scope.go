package lumen

import (
	"github.com/dolthub/swiss"
)

// Destroyer is anything the package can tear down: contexts, buffers,
// images, tasks, pools, passes, drains, transactions, timestamps and
// invocations all implement it.
type Destroyer interface {
	Destroy()
}

// Scope owns a set of named resources and releases them in reverse
// registration order, so dependents always go before their dependencies:
// register the context first and everything built from it after.
type Scope struct {
	names     *swiss.Map[string, int]
	resources []Destroyer
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{names: swiss.NewMap[string, int](8)}
}

// Attach registers a resource under a unique name. Registering a name twice
// is a precondition violation; the first registration stays.
func (s *Scope) Attach(name string, resource Destroyer) error {
	if _, ok := s.names.Get(name); ok {
		return preconditionf("scope already owns a resource named '%s'", name)
	}
	s.names.Put(name, len(s.resources))
	s.resources = append(s.resources, resource)
	return nil
}

// Find returns the resource registered under name, or nil.
func (s *Scope) Find(name string) Destroyer {
	idx, ok := s.names.Get(name)
	if !ok {
		return nil
	}
	return s.resources[idx]
}

// Len reports how many resources the scope owns.
func (s *Scope) Len() int {
	return len(s.resources)
}

// Release destroys every owned resource in reverse registration order and
// empties the scope.
func (s *Scope) Release() {
	for i := len(s.resources) - 1; i >= 0; i-- {
		s.resources[i].Destroy()
	}
	s.resources = nil
	s.names = swiss.NewMap[string, int](8)
}
