package qtcompat

import "strings"

// Binding identifies one of the four supported Qt binding providers.
type Binding string

const (
	BindingPyQt6   Binding = "PyQt6"
	BindingPySide6 Binding = "PySide6"
	BindingPyQt5   Binding = "PyQt5"
	BindingPySide2 Binding = "PySide2"
)

// bindingOrder is the fixed priority used both for the already-loaded probe
// and for fallback loading.
var bindingOrder = []Binding{BindingPyQt6, BindingPySide6, BindingPyQt5, BindingPySide2}

// Bindings returns the supported bindings in probe order.
func Bindings() []Binding {
	out := make([]Binding, len(bindingOrder))
	copy(out, bindingOrder)
	return out
}

func (b Binding) String() string { return string(b) }

// Known reports whether b is one of the four supported bindings.
func (b Binding) Known() bool {
	switch b {
	case BindingPyQt6, BindingPySide6, BindingPyQt5, BindingPySide2:
		return true
	}
	return false
}

// Generation distinguishes the two binding API shapes.
type Generation int

const (
	// GenerationModern nests enum members one level under their enum type.
	GenerationModern Generation = iota
	// GenerationLegacy hoists enum members onto the owning class.
	GenerationLegacy
)

func (g Generation) String() string {
	if g == GenerationModern {
		return "modern"
	}
	return "legacy"
}

// Family distinguishes the two binding vendors, which differ in
// signal/slot/property naming and in how object validity is reported.
type Family int

const (
	FamilyPyQt Family = iota
	FamilyPySide
)

func (f Family) String() string {
	if f == FamilyPyQt {
		return "PyQt"
	}
	return "PySide"
}

// Generation returns the API generation of the binding.
func (b Binding) Generation() Generation {
	switch b {
	case BindingPyQt6, BindingPySide6:
		return GenerationModern
	default:
		return GenerationLegacy
	}
}

// Family returns the vendor family of the binding.
func (b Binding) Family() Family {
	switch b {
	case BindingPyQt6, BindingPyQt5:
		return FamilyPyQt
	default:
		return FamilyPySide
	}
}

// overrides maps recognized QT_API values (lowercased) to bindings.
var overrides = map[string]Binding{
	"pyqt6":   BindingPyQt6,
	"pyside6": BindingPySide6,
	"pyqt5":   BindingPyQt5,
	"pyside2": BindingPySide2,
}

// legacyOverrides are the override values that can actually select a
// binding. The QT_API naming scheme predates the modern generation.
var legacyOverrides = map[string]bool{
	"pyqt5":   true,
	"pyside2": true,
}

// legacyBackends are the configured backend names that imply the legacy
// binding generation.
var legacyBackends = map[string]bool{
	"Qt5Agg":   true,
	"Qt5Cairo": true,
}

// ParseOverride maps a QT_API value to a binding. Matching is
// case-insensitive; ok is false for unrecognized values.
func ParseOverride(value string) (Binding, bool) {
	b, ok := overrides[strings.ToLower(value)]
	return b, ok
}

// RecognizedOverrides returns the QT_API values the resolver accepts, in
// probe order.
func RecognizedOverrides() []string {
	out := make([]string, 0, len(bindingOrder))
	for _, b := range bindingOrder {
		out = append(out, strings.ToLower(string(b)))
	}
	return out
}

// LegacyCompatibleBackend reports whether a configured backend name is
// compatible with the legacy binding generation. Matching is exact.
func LegacyCompatibleBackend(name string) bool {
	return legacyBackends[name]
}

// LegacyOverride is one entry of the override table kept for compatibility
// with older tooling that only knows the legacy names.
type LegacyOverride struct {
	Name         string
	Binding      Binding
	ToolkitMajor int
}

// LegacyOverrides returns the QT_API values that can select a binding,
// together with the toolkit major version they imply.
func LegacyOverrides() []LegacyOverride {
	return []LegacyOverride{
		{Name: "pyqt5", Binding: BindingPyQt5, ToolkitMajor: 5},
		{Name: "pyside2", Binding: BindingPySide2, ToolkitMajor: 5},
	}
}
