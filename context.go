package qtcompat

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Context is the record of one resolved binding: the bound module groups,
// version strings, and the normalized references collaborators use instead
// of binding-specific names. A Context is immutable after construction and
// safe for concurrent use.
type Context struct {
	binding Binding

	core    Namespace
	gui     Namespace
	widgets Namespace

	version        string
	toolkitVersion string

	signal   any
	slot     any
	property any

	isDeleted    func(any) bool
	saveFileName any

	enumSegments func([]string) []string
	toInt        func(any) (int, error)
	enums        sync.Map // path -> resolved member value
}

// Binding returns the resolved binding identifier.
func (c *Context) Binding() Binding { return c.binding }

// Core returns the binding's core module group.
func (c *Context) Core() Namespace { return c.core }

// GUI returns the binding's GUI-primitives module group.
func (c *Context) GUI() Namespace { return c.gui }

// Widgets returns the binding's widgets module group.
func (c *Context) Widgets() Namespace { return c.widgets }

// Version returns the binding distribution version.
func (c *Context) Version() string { return c.version }

// ToolkitVersion returns the underlying toolkit's runtime version.
func (c *Context) ToolkitVersion() string { return c.toolkitVersion }

// ToolkitMajor returns the major component of the toolkit version, or 0 when
// it cannot be parsed.
func (c *Context) ToolkitMajor() int {
	major, _, _ := strings.Cut(c.toolkitVersion, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// Signal returns the binding's signal declaration function under its stable
// name, regardless of the binding's native naming convention. Slot and
// Property behave the same way.
func (c *Context) Signal() any { return c.signal }

func (c *Context) Slot() any { return c.slot }

func (c *Context) Property() any { return c.property }

// IsDeleted reports whether obj's underlying toolkit object has been
// destroyed, using whichever validity primitive the binding family provides.
func (c *Context) IsDeleted(obj any) bool { return c.isDeleted(obj) }

// SaveFileName returns the file-save dialog function reference.
func (c *Context) SaveFileName() any { return c.saveFileName }

var (
	initMu     sync.Mutex
	defaultCtx atomic.Pointer[Context]
)

// Init resolves once and installs the process-wide Context. The first
// successful call wins; later calls return the installed Context and ignore
// opts, since switching bindings mid-process is unsupported. A failed Init
// installs nothing and may be retried.
func Init(opts Options) (*Context, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if ctx := defaultCtx.Load(); ctx != nil {
		return ctx, nil
	}
	ctx, err := Resolve(opts)
	if err != nil {
		return nil, err
	}
	defaultCtx.Store(ctx)
	return ctx, nil
}

// Default returns the Context installed by Init, or nil before the first
// successful Init.
func Default() *Context {
	return defaultCtx.Load()
}

func resetDefault() {
	initMu.Lock()
	defer initMu.Unlock()
	defaultCtx.Store(nil)
}

// Enum resolves an enum member path via the process-default Context.
func Enum(path string) (any, error) {
	ctx := Default()
	if ctx == nil {
		return nil, ErrNotInitialized
	}
	return ctx.Enum(path)
}

// ToInt coerces an enum value via the process-default Context.
func ToInt(v any) (int, error) {
	ctx := Default()
	if ctx == nil {
		return 0, ErrNotInitialized
	}
	return ctx.ToInt(v)
}
