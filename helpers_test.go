package qtcompat

import (
	"fmt"
	"strings"
)

// The fakes below model the two binding generations: modern runtimes nest
// rich enum values under their enum type, legacy runtimes hoist plain
// integers onto the owning class.

// fakeEnum is a modern-generation rich enum value.
type fakeEnum struct {
	value int
}

func (e fakeEnum) Value() int { return e.value }

// marker is an opaque attribute value tests assert identity on.
type marker string

// testEnv is an in-memory environment.
type testEnv map[string]string

func (e testEnv) getenv(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

func (e testEnv) setenv(key, value string) error {
	e[key] = value
	return nil
}

func defaultToolkitVersion(id Binding) string {
	if id.Generation() == GenerationModern {
		return "6.7.2"
	}
	return "5.15.8"
}

func fakeBindingVersion(id Binding) string {
	if id.Generation() == GenerationModern {
		return "6.7.1"
	}
	return "5.15.10"
}

// newFakeRuntime returns a well-formed runtime for the binding, reporting
// the given toolkit version.
func newFakeRuntime(id Binding, toolkitVersion string) *Runtime {
	rt := &Runtime{
		GUI: MapNamespace{
			"QGuiApplication": MapNamespace{},
		},
		Widgets: MapNamespace{
			"QFileDialog": MapNamespace{
				"getSaveFileName": marker(string(id) + ".getSaveFileName"),
			},
		},
	}

	core := MapNamespace{
		"qVersion": func() string { return toolkitVersion },
	}

	if id.Generation() == GenerationModern {
		core["Qt"] = MapNamespace{
			"AlignmentFlag": MapNamespace{
				"AlignLeft":  fakeEnum{value: 1},
				"AlignRight": fakeEnum{value: 2},
			},
			"KeyboardModifier": MapNamespace{
				"ControlModifier": fakeEnum{value: 0x04000000},
			},
		}
	} else {
		core["Qt"] = MapNamespace{
			"AlignLeft":       1,
			"AlignRight":      2,
			"ControlModifier": 0x04000000,
		}
	}

	switch id.Family() {
	case FamilyPyQt:
		core[attrPyQtVersion] = fakeBindingVersion(id)
		core["pyqtSignal"] = marker(string(id) + ".pyqtSignal")
		core["pyqtSlot"] = marker(string(id) + ".pyqtSlot")
		core["pyqtProperty"] = marker(string(id) + ".pyqtProperty")
		rt.Deleted = func(obj any) bool { return obj == "deleted" }
	case FamilyPySide:
		rt.Version = fakeBindingVersion(id)
		core["Signal"] = marker(string(id) + ".Signal")
		core["Slot"] = marker(string(id) + ".Slot")
		core["Property"] = marker(string(id) + ".Property")
		rt.Valid = func(obj any) bool { return obj != "deleted" }
	}

	rt.Core = core
	return rt
}

// availableCandidate loads successfully and is never preloaded.
func availableCandidate(id Binding) Candidate {
	return Candidate{
		ID: id,
		Load: func() (*Runtime, error) {
			return newFakeRuntime(id, defaultToolkitVersion(id)), nil
		},
	}
}

// preloadedCandidate reports its core module as already active.
func preloadedCandidate(id Binding) Candidate {
	c := availableCandidate(id)
	c.Loaded = func() bool { return true }
	return c
}

// missingCandidate fails to load the way an uninstalled binding does.
func missingCandidate(id Binding) Candidate {
	return Candidate{
		ID: id,
		Load: func() (*Runtime, error) {
			return nil, fmt.Errorf("no module named %s: %w", strings.ToLower(string(id)), ErrUnavailable)
		},
	}
}

func allAvailable() []Candidate {
	out := make([]Candidate, 0, len(bindingOrder))
	for _, id := range bindingOrder {
		out = append(out, availableCandidate(id))
	}
	return out
}

func allMissing() []Candidate {
	out := make([]Candidate, 0, len(bindingOrder))
	for _, id := range bindingOrder {
		out = append(out, missingCandidate(id))
	}
	return out
}

// resolveFake is the common path for tests: fake candidates, an in-memory
// environment, no backend unless set.
func resolveFake(cands []Candidate, env testEnv, backend string) (*Context, error) {
	return Resolve(Options{
		Candidates: cands,
		Backend:    backend,
		Getenv:     env.getenv,
		Setenv:     env.setenv,
	})
}
