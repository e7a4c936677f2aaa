package bytecode

import (
	"strings"

	"github.com/chazu/vmdump/value"
)

// Access and function flags.
const (
	AccStatic          = 0x01
	AccAbstract        = 0x02
	AccFinal           = 0x04
	AccPublic          = 0x100
	AccProtected       = 0x200
	AccPrivate         = 0x400
	AccVariadic        = 0x1000000
	AccReturnReference = 0x4000000
	AccHasTypeHints    = 0x10000000
)

// ArgInfo describes one declared parameter.
type ArgInfo struct {
	Name      string
	TypeCode  uint32 // TypeUndefined when no scalar hint
	ClassName string // set for class-typed parameters
	ByRef     bool
	Variadic  bool
}

// Module identifies the extension that provides an internal function.
type Module struct {
	Number  int
	Name    string
	Version string
}

// Function is a user function backed by a Program, or an internal function
// backed by a native handler.
type Function struct {
	Name    string
	Scope   string // owning class, "" for free functions
	Flags   uint32
	Args    []ArgInfo
	NumArgs uint32 // declared parameters excluding a variadic tail

	Program *Program // nil for internal functions
	Handler uint64
	Module  *Module
}

// IsUser reports whether the function is backed by bytecode.
func (f *Function) IsUser() bool { return f.Program != nil }

// IsMagic reports whether the function is a double-underscore method.
func (f *Function) IsMagic() bool { return strings.HasPrefix(f.Name, "__") }

// ArgCount returns the number of parameters shown in the prototype.
func (f *Function) ArgCount() int {
	n := int(f.NumArgs)
	if f.Flags&AccVariadic != 0 {
		n++
	}
	if n > len(f.Args) {
		n = len(f.Args)
	}
	return n
}

// QualifiedName returns Scope::Name, or Name without a scope.
func (f *Function) QualifiedName() string {
	if f.Scope == "" {
		return f.Name
	}
	return f.Scope + "::" + f.Name
}

// Class is a class descriptor.
type Class struct {
	Name              string
	Parent            string
	Flags             uint32
	Addr              uint64
	Constants         *value.OrderedMap
	DefaultProperties *value.OrderedMap
	StaticMembers     *value.OrderedMap
	Methods           []*Function
}

// NewClass creates a class with empty tables and a fresh display address.
func NewClass(name string) *Class {
	return &Class{
		Name:              name,
		Addr:              value.NextAddr(),
		Constants:         value.NewOrderedMap(),
		DefaultProperties: value.NewOrderedMap(),
		StaticMembers:     value.NewOrderedMap(),
	}
}

// AddMethod appends a method and sets its scope to the class.
func (c *Class) AddMethod(f *Function) {
	f.Scope = c.Name
	c.Methods = append(c.Methods, f)
}

// Method finds a method by case-insensitive name.
func (c *Class) Method(name string) (*Function, bool) {
	key := fold(name)
	for _, m := range c.Methods {
		if fold(m.Name) == key {
			return m, true
		}
	}
	return nil, false
}
