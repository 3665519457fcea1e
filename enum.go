package qtcompat

import (
	"fmt"
	"strings"
)

// Enum paths name members under the modern convention, e.g.
// "QtCore.Qt.AlignmentFlag.AlignLeft". The first segment selects the module
// group; the rest are attribute lookups shaped by the active generation.
// Legacy bindings hoist members onto the owning class, so the legacy shape
// reaches the same member at "QtCore.Qt.AlignLeft".

// modernEnumSegments keeps the path as written.
func modernEnumSegments(parts []string) []string { return parts }

// legacyEnumSegments elides the enum type, the second-to-last segment.
func legacyEnumSegments(parts []string) []string {
	if len(parts) < 2 {
		return parts
	}
	out := make([]string, 0, len(parts)-1)
	out = append(out, parts[:len(parts)-2]...)
	out = append(out, parts[len(parts)-1])
	return out
}

// Enum resolves a dotted enum member path against the active binding,
// bridging the generation difference in enum nesting. Results are memoized
// for the life of the Context; failures are not cached.
func (c *Context) Enum(path string) (any, error) {
	if v, ok := c.enums.Load(path); ok {
		return v, nil
	}

	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("enum path %q: need a module group and a member", path)
	}

	root, err := c.moduleGroup(parts[0])
	if err != nil {
		return nil, fmt.Errorf("enum path %q: %w", path, err)
	}

	var v any = root
	for _, segment := range c.enumSegments(parts[1:]) {
		ns, ok := v.(Namespace)
		if !ok {
			return nil, fmt.Errorf("enum path %q: cannot look up %q on a leaf value", path, segment)
		}
		v, ok = ns.Attr(segment)
		if !ok {
			return nil, fmt.Errorf("enum path %q: no attribute %q", path, segment)
		}
	}

	c.enums.Store(path, v)
	return v, nil
}

// moduleGroup maps the leading path segment to a bound namespace.
func (c *Context) moduleGroup(name string) (Namespace, error) {
	switch name {
	case "QtCore":
		return c.core, nil
	case "QtGui":
		return c.gui, nil
	case "QtWidgets":
		return c.widgets, nil
	}
	return nil, fmt.Errorf("unknown module group %q", name)
}

// ToInt returns the integer form of an enum value. Modern-generation values
// are rich objects carrying their integer; legacy-generation values already
// behave as integers.
func (c *Context) ToInt(v any) (int, error) {
	return c.toInt(v)
}

func modernToInt(v any) (int, error) {
	ev, ok := v.(interface{ Value() int })
	if !ok {
		return 0, fmt.Errorf("cannot coerce %T to int: no Value method", v)
	}
	return ev.Value(), nil
}

func legacyToInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	}
	return 0, fmt.Errorf("cannot coerce %T to int", v)
}
