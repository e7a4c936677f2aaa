package bytecode

import (
	"sync"

	"golang.org/x/text/cases"
)

func fold(name string) string {
	return cases.Fold().String(name)
}

// SymbolTable is a case-insensitive registry of functions and classes.
type SymbolTable struct {
	mu        sync.RWMutex
	functions map[string]*Function
	classes   map[string]*Class
	funcOrder []string
	order     []string
}

// NewSymbolTable creates an empty registry.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		functions: make(map[string]*Function),
		classes:   make(map[string]*Class),
	}
}

// DefineFunction registers f under its folded name, replacing any previous
// entry.
func (s *SymbolTable) DefineFunction(f *Function) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fold(f.Name)
	if _, ok := s.functions[key]; !ok {
		s.funcOrder = append(s.funcOrder, key)
	}
	s.functions[key] = f
}

// DefineClass registers c under its folded name.
func (s *SymbolTable) DefineClass(c *Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fold(c.Name)
	if _, ok := s.classes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.classes[key] = c
}

// LookupFunction finds a function by case-insensitive name.
func (s *SymbolTable) LookupFunction(name string) (*Function, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.functions[fold(name)]
	return f, ok
}

// LookupClass finds a class by case-insensitive name.
func (s *SymbolTable) LookupClass(name string) (*Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[fold(name)]
	return c, ok
}

// Functions returns registered functions in definition order.
func (s *SymbolTable) Functions() []*Function {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Function, 0, len(s.funcOrder))
	for _, key := range s.funcOrder {
		out = append(out, s.functions[key])
	}
	return out
}

// Classes returns registered classes in definition order.
func (s *SymbolTable) Classes() []*Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Class, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.classes[key])
	}
	return out
}
