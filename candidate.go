package qtcompat

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnavailable marks a binding that is not installed. Candidate Load
// implementations wrap it so the resolver knows the failure is ordinary and
// the next candidate should be tried; any other load error aborts
// resolution.
var ErrUnavailable = errors.New("binding unavailable")

// Namespace is a read-only view of a binding module or class. Attribute
// values may themselves be Namespaces, forming the tree the enum lookup
// traverses.
type Namespace interface {
	// Attr returns the named attribute, reporting whether it exists.
	Attr(name string) (any, bool)
}

// MapNamespace is a map-backed Namespace.
type MapNamespace map[string]any

func (m MapNamespace) Attr(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Attrs returns the attribute names in sorted order. Namespaces that can
// enumerate themselves let tooling walk the attribute tree; Attr-only
// namespaces stay opaque.
func (m MapNamespace) Attrs() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Runtime is what a loaded binding exposes to the resolver. The resolver
// normalizes it into a Context; collaborators never touch a Runtime
// directly.
type Runtime struct {
	// Core, GUI and Widgets are the binding's three module groups.
	Core    Namespace
	GUI     Namespace
	Widgets Namespace

	// Version is the binding distribution version. PySide-family candidates
	// must set it; the PyQt family publishes its version on the core module
	// instead (PYQT_VERSION_STR) and may leave this empty.
	Version string

	// Deleted reports whether a wrapped object's underlying toolkit object
	// has been destroyed. PyQt-family candidates must set it.
	Deleted func(obj any) bool

	// Valid reports whether a wrapped object is still backed by a live
	// toolkit object. PySide-family candidates must set it.
	Valid func(obj any) bool
}

// Candidate is one registrable binding provider.
type Candidate struct {
	// ID names the binding this candidate provides.
	ID Binding

	// Loaded reports whether the binding's core module is already active in
	// the process. It must not trigger a load. Nil means never preloaded.
	Loaded func() bool

	// Load imports the binding and returns its runtime.
	Load func() (*Runtime, error)
}

var (
	registryMu sync.Mutex
	registry   = make(map[Binding]Candidate)
)

// Register makes a binding provider available to the resolver. It is meant
// to be called from a provider's init function; it panics if the candidate
// is malformed or its binding is already registered.
func Register(c Candidate) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if !c.ID.Known() {
		panic(fmt.Sprintf("qtcompat: Register called with unknown binding %q", c.ID))
	}
	if c.Load == nil {
		panic(fmt.Sprintf("qtcompat: Register called for %s with nil Load", c.ID))
	}
	if _, dup := registry[c.ID]; dup {
		panic(fmt.Sprintf("qtcompat: Register called twice for %s", c.ID))
	}
	registry[c.ID] = c
}

// Registered returns the registered candidates in probe order.
func Registered() []Candidate {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]Candidate, 0, len(registry))
	for _, id := range bindingOrder {
		if c, ok := registry[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[Binding]Candidate)
}
