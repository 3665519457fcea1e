// Package contracts defines the interfaces for qtcompat.
// This file serves as documentation and is not compiled into the binary.
// Actual implementations live in the root package and internal/ packages.
package contracts

import (
	"io"
	"time"
)

// =============================================================================
// Runtime Types
// =============================================================================

// Namespace exposes the attributes of one Qt module group.
// Attribute values are enum member objects, plain integers, nested
// namespaces, or callable symbols depending on the binding generation.
type Namespace interface {
	// Attr looks up a single attribute by name.
	Attr(name string) (any, bool)
}

// Lister is optionally implemented by namespaces that can enumerate
// their attributes. Opaque runtimes simply do not implement it.
type Lister interface {
	// Attrs returns the attribute names in sorted order.
	Attrs() []string
}

// Runtime is what a loaded binding hands back: the three module groups
// plus the binding-specific metadata the facade normalizes over.
type Runtime struct {
	Core    Namespace
	GUI     Namespace
	Widgets Namespace

	// Version is the binding package version string.
	Version string

	// Exactly one of these is set, depending on the family.
	// Deleted reports whether the C++ peer is gone (PyQt style);
	// Valid reports whether it is still alive (PySide style).
	Deleted func(obj any) bool
	Valid   func(obj any) bool
}

// Candidate describes one binding the resolver may select.
type Candidate struct {
	// ID is the canonical binding name.
	ID string

	// Loaded reports whether the binding's core module is already
	// resident. A loaded candidate wins before any other rule runs.
	Loaded func() bool

	// Load imports the binding. Errors wrapping ErrUnavailable mean
	// "not installed" and let probing continue; anything else aborts.
	Load func() (*Runtime, error)
}

// =============================================================================
// Resolution
// =============================================================================

// Resolver selects and binds exactly one Qt binding.
type Resolver interface {
	// Resolve applies the selection rules in order: an already-loaded
	// binding, then the QT_API override when a legacy backend permits
	// it, then probing in preference order. The returned context is
	// immutable once bound.
	Resolve(opts Options) (*Context, error)
}

// Options configures a resolution run.
type Options struct {
	// Candidates in probe preference order. Empty means the
	// registered defaults.
	Candidates []Candidate

	// Backend is the rendering backend requesting Qt, if any.
	// Only exact legacy backends unlock legacy QT_API values.
	Backend string

	// Getenv and Setenv override process environment access.
	Getenv func(key string) (string, bool)
	Setenv func(key, value string) error
}

// Context is the bound facade. All accessors are safe for concurrent
// use after Resolve returns.
type Context interface {
	// Binding returns the canonical name of the bound binding.
	Binding() string

	// Enum resolves a fully qualified modern enum path such as
	// "QtCore.Qt.AlignmentFlag.AlignLeft" against the bound
	// generation, memoizing successful lookups.
	Enum(path string) (any, error)

	// ToInt coerces an enum member to its integer value.
	ToInt(member any) (int, error)

	// IsDeleted reports whether a Qt object's C++ peer is gone,
	// regardless of family.
	IsDeleted(obj any) bool
}

// =============================================================================
// Diagnostics
// =============================================================================

// ReportStore manages the diagnostic report history file.
type ReportStore interface {
	// Load reads all reports from storage.
	// Returns an empty slice if the file doesn't exist.
	Load() ([]Report, error)

	// Append adds a single report to storage.
	Append(r Report) error

	// Prune removes reports past the retention policy.
	// Returns the count of removed reports.
	Prune(maxAge time.Duration, maxReports int) (int, error)

	// Clear removes all stored reports (with backup).
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// Report is one recorded resolution outcome. See internal/diag for
// the full field set.
type Report struct {
	ID          string    `json:"id"` // ULID string
	GeneratedAt time.Time `json:"generated_at"`
}

// Watcher signals history file changes, debounced.
type Watcher interface {
	// Start begins watching. The callback runs after each settled
	// batch of writes.
	Start() error

	// Stop ends watching and releases resources.
	Stop() error
}

// =============================================================================
// Output Formatter Interface
// =============================================================================

// Formatter renders reports for output.
type Formatter interface {
	// Format writes one report to the writer.
	Format(w io.Writer, r *Report) error

	// FormatList writes a report collection to the writer.
	FormatList(w io.Writer, rs []Report) error
}

// =============================================================================
// Clipboard Interface (TUI mode only)
// =============================================================================

// Clipboard handles copying text to the system clipboard.
// Only used in TUI mode - shell pipelines cover the CLI commands.
type Clipboard interface {
	// Copy copies text to the system clipboard.
	// Returns an error if no clipboard tool is available.
	Copy(text string) error
}

// =============================================================================
// TUI Interface
// =============================================================================

// TUI represents the interactive enum inspector.
type TUI interface {
	// Run starts the interactive session against a bound context.
	// Blocks until the user quits.
	Run(ctx Context) error
}
