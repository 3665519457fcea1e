package tui

import (
	"sort"

	"github.com/plotkit/qtcompat"
)

// EnumEntry is one enum member discovered on the resolved binding, in the
// shape that binding exposes it.
type EnumEntry struct {
	Path  string `json:"path" yaml:"path"`
	Group string `json:"group" yaml:"group"`
	Value int    `json:"value" yaml:"value"`
}

// lister is the optional enumeration side of a namespace. Synthetic and
// test runtimes support it; opaque runtimes simply yield no entries.
type lister interface {
	Attrs() []string
}

// CollectEntries walks the binding's module groups and returns every enum
// member found, sorted by path.
func CollectEntries(ctx *qtcompat.Context) []EnumEntry {
	var out []EnumEntry
	walkNamespace("QtCore", "QtCore", ctx.Core(), &out)
	walkNamespace("QtGui", "QtGui", ctx.GUI(), &out)
	walkNamespace("QtWidgets", "QtWidgets", ctx.Widgets(), &out)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func walkNamespace(group, prefix string, ns qtcompat.Namespace, out *[]EnumEntry) {
	if ns == nil {
		return
	}
	l, ok := ns.(lister)
	if !ok {
		return
	}
	for _, name := range l.Attrs() {
		v, ok := ns.Attr(name)
		if !ok {
			continue
		}
		path := prefix + "." + name
		if child, ok := v.(qtcompat.Namespace); ok {
			walkNamespace(group, path, child, out)
			continue
		}
		if n, ok := enumInt(v); ok {
			*out = append(*out, EnumEntry{Path: path, Group: group, Value: n})
		}
	}
}

// enumInt extracts the integer behind an enum member of either generation.
func enumInt(v any) (int, bool) {
	if ev, ok := v.(interface{ Value() int }); ok {
		return ev.Value(), true
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}
