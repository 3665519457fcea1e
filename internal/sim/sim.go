// Package sim provides synthetic binding candidates so resolution can be
// exercised and demonstrated on machines with no Qt binding installed.
package sim

import (
	"fmt"

	"github.com/plotkit/qtcompat"
)

// Toolkit versions reported by synthetic runtimes.
const (
	ModernToolkitVersion = "6.8.1"
	LegacyToolkitVersion = "5.15.2"
)

// EnumValue is a modern-generation enum member: a rich object carrying its
// integer value.
type EnumValue struct {
	Name string
	Val  int
}

func (v EnumValue) Value() int     { return v.Val }
func (v EnumValue) String() string { return v.Name }

// Symbol is an opaque attribute reference, standing in for callables the
// synthetic runtime has no use for.
type Symbol string

// enum tables, one per module group: owner class -> enum type -> member.
// A small but real slice of the Qt API, enough for the facade and the
// inspector to have something to traverse.

var coreEnums = map[string]map[string]map[string]int{
	"Qt": {
		"AlignmentFlag": {
			"AlignLeft":    0x0001,
			"AlignRight":   0x0002,
			"AlignHCenter": 0x0004,
			"AlignTop":     0x0020,
			"AlignBottom":  0x0040,
			"AlignVCenter": 0x0080,
			"AlignCenter":  0x0084,
		},
		"Orientation": {
			"Horizontal": 0x1,
			"Vertical":   0x2,
		},
		"ItemDataRole": {
			"DisplayRole":    0,
			"DecorationRole": 1,
			"EditRole":       2,
			"ToolTipRole":    3,
			"UserRole":       0x0100,
		},
		"KeyboardModifier": {
			"NoModifier":      0x00000000,
			"ShiftModifier":   0x02000000,
			"ControlModifier": 0x04000000,
			"AltModifier":     0x08000000,
		},
		"CursorShape": {
			"ArrowCursor":        0,
			"WaitCursor":         3,
			"PointingHandCursor": 13,
		},
	},
}

var guiEnums = map[string]map[string]map[string]int{
	"QPalette": {
		"ColorRole": {
			"WindowText": 0,
			"Text":       6,
			"Base":       9,
			"Window":     10,
		},
	},
	"QImage": {
		"Format": {
			"Format_RGB32":  4,
			"Format_ARGB32": 5,
		},
	},
}

var widgetEnums = map[string]map[string]map[string]int{
	"QSizePolicy": {
		"Policy": {
			"Fixed":     0,
			"Minimum":   1,
			"Expanding": 7,
		},
	},
}

// materialize lays the enum table out in the generation's shape: modern
// nests rich members under the enum type, legacy hoists plain integers onto
// the owner class.
func materialize(table map[string]map[string]map[string]int, gen qtcompat.Generation) qtcompat.MapNamespace {
	ns := qtcompat.MapNamespace{}
	for owner, types := range table {
		class := qtcompat.MapNamespace{}
		for typeName, members := range types {
			if gen == qtcompat.GenerationModern {
				typeNS := qtcompat.MapNamespace{}
				for member, value := range members {
					typeNS[member] = EnumValue{Name: member, Val: value}
				}
				class[typeName] = typeNS
			} else {
				for member, value := range members {
					class[member] = value
				}
			}
		}
		ns[owner] = class
	}
	return ns
}

// BindingVersion returns the distribution version a synthetic runtime
// reports for the binding.
func BindingVersion(id qtcompat.Binding) string {
	switch id {
	case qtcompat.BindingPyQt6:
		return "6.8.0"
	case qtcompat.BindingPySide6:
		return "6.8.1"
	case qtcompat.BindingPyQt5:
		return "5.15.11"
	case qtcompat.BindingPySide2:
		return "5.15.2.1"
	}
	return ""
}

// ToolkitVersion returns the Qt version a synthetic runtime reports for the
// binding.
func ToolkitVersion(id qtcompat.Binding) string {
	if id.Generation() == qtcompat.GenerationModern {
		return ModernToolkitVersion
	}
	return LegacyToolkitVersion
}

// Runtime builds a fully-formed synthetic runtime for the binding.
func Runtime(id qtcompat.Binding) *qtcompat.Runtime {
	gen := id.Generation()
	core := materialize(coreEnums, gen)
	toolkit := ToolkitVersion(id)
	core["qVersion"] = func() string { return toolkit }

	rt := &qtcompat.Runtime{
		Core: core,
		GUI:  materialize(guiEnums, gen),
	}

	widgets := materialize(widgetEnums, gen)
	widgets["QFileDialog"] = qtcompat.MapNamespace{
		"getSaveFileName": Symbol(string(id) + ".QtWidgets.QFileDialog.getSaveFileName"),
	}
	rt.Widgets = widgets

	switch id.Family() {
	case qtcompat.FamilyPyQt:
		core["PYQT_VERSION_STR"] = BindingVersion(id)
		core["pyqtSignal"] = Symbol(string(id) + ".QtCore.pyqtSignal")
		core["pyqtSlot"] = Symbol(string(id) + ".QtCore.pyqtSlot")
		core["pyqtProperty"] = Symbol(string(id) + ".QtCore.pyqtProperty")
		// Synthetic objects are never torn down.
		rt.Deleted = func(any) bool { return false }
	case qtcompat.FamilyPySide:
		rt.Version = BindingVersion(id)
		core["Signal"] = Symbol(string(id) + ".QtCore.Signal")
		core["Slot"] = Symbol(string(id) + ".QtCore.Slot")
		core["Property"] = Symbol(string(id) + ".QtCore.Property")
		rt.Valid = func(any) bool { return true }
	}

	return rt
}

// New returns a synthetic candidate that loads successfully.
func New(id qtcompat.Binding) qtcompat.Candidate {
	return qtcompat.Candidate{
		ID:   id,
		Load: func() (*qtcompat.Runtime, error) { return Runtime(id), nil },
	}
}

// NewPreloaded returns a synthetic candidate whose core module reports as
// already loaded.
func NewPreloaded(id qtcompat.Binding) qtcompat.Candidate {
	c := New(id)
	c.Loaded = func() bool { return true }
	return c
}

// Candidates builds a candidate set from binding names, in probe order.
// Names in preloaded need not be repeated in with. Unrecognized names
// error out.
func Candidates(with, preloaded []string) ([]qtcompat.Candidate, error) {
	installed := map[qtcompat.Binding]bool{}
	active := map[qtcompat.Binding]bool{}

	for _, name := range with {
		id, ok := qtcompat.ParseOverride(name)
		if !ok {
			return nil, fmt.Errorf("unknown binding %q", name)
		}
		installed[id] = true
	}
	for _, name := range preloaded {
		id, ok := qtcompat.ParseOverride(name)
		if !ok {
			return nil, fmt.Errorf("unknown binding %q", name)
		}
		installed[id] = true
		active[id] = true
	}

	out := make([]qtcompat.Candidate, 0, len(installed))
	for _, id := range qtcompat.Bindings() {
		if !installed[id] {
			continue
		}
		if active[id] {
			out = append(out, NewPreloaded(id))
		} else {
			out = append(out, New(id))
		}
	}
	return out, nil
}
