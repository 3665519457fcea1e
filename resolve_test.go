package qtcompat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePreloadedWins(t *testing.T) {
	for _, id := range Bindings() {
		t.Run(string(id), func(t *testing.T) {
			cands := allAvailable()
			for i := range cands {
				if cands[i].ID == id {
					cands[i] = preloadedCandidate(id)
				}
			}

			// A conflicting override must lose to the active module.
			env := testEnv{EnvOverride: "pyqt5"}
			if id == BindingPyQt5 {
				env[EnvOverride] = "pyside2"
			}

			ctx, err := resolveFake(cands, env, "Qt5Agg")
			require.NoError(t, err)
			assert.Equal(t, id, ctx.Binding())
		})
	}
}

func TestResolvePreloadedFollowsProbeOrder(t *testing.T) {
	cands := allAvailable()
	// PySide6 and PyQt5 both active: the earlier probe position wins.
	cands[1] = preloadedCandidate(BindingPySide6)
	cands[2] = preloadedCandidate(BindingPyQt5)

	ctx, err := resolveFake(cands, testEnv{}, "")
	require.NoError(t, err)
	assert.Equal(t, BindingPySide6, ctx.Binding())
}

func TestResolveOverrideSelectsLegacyBinding(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		value   string
		want    Binding
	}{
		{name: "pyqt5 under Qt5Agg", backend: "Qt5Agg", value: "pyqt5", want: BindingPyQt5},
		{name: "pyside2 under Qt5Agg", backend: "Qt5Agg", value: "pyside2", want: BindingPySide2},
		{name: "pyqt5 under Qt5Cairo", backend: "Qt5Cairo", value: "pyqt5", want: BindingPyQt5},
		{name: "mixed case", backend: "Qt5Agg", value: "PySide2", want: BindingPySide2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := resolveFake(allAvailable(), testEnv{EnvOverride: tt.value}, tt.backend)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ctx.Binding())
		})
	}
}

func TestResolveOverrideIgnoredUnderLegacyBackend(t *testing.T) {
	// Under a Qt5 backend only the legacy names select. A modern name is
	// dropped: were it honored, the missing PyQt6 below would be a hard
	// failure instead of a fallthrough to PySide6.
	cands := []Candidate{
		missingCandidate(BindingPyQt6),
		availableCandidate(BindingPySide6),
		availableCandidate(BindingPyQt5),
		availableCandidate(BindingPySide2),
	}

	ctx, err := resolveFake(cands, testEnv{EnvOverride: "pyqt6"}, "Qt5Agg")
	require.NoError(t, err)
	assert.Equal(t, BindingPySide6, ctx.Binding())

	// An unrecognized value is dropped the same way, not reported.
	ctx, err = resolveFake(allAvailable(), testEnv{EnvOverride: "pyqt4"}, "Qt5Cairo")
	require.NoError(t, err)
	assert.Equal(t, BindingPyQt6, ctx.Binding())
}

func TestResolveRecognizedOverrideIgnoredWithoutLegacyBackend(t *testing.T) {
	for _, value := range []string{"pyqt6", "pyside6", "pyqt5", "pyside2"} {
		t.Run(value, func(t *testing.T) {
			ctx, err := resolveFake(allAvailable(), testEnv{EnvOverride: value}, "")
			require.NoError(t, err)
			assert.Equal(t, BindingPyQt6, ctx.Binding(), "override must not steer probing")
		})
	}
}

func TestResolveInvalidOverride(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		value   string
	}{
		{name: "no backend", backend: "", value: "pyqt4"},
		{name: "non-qt backend", backend: "GTK4Agg", value: "qt"},
		{name: "near miss", backend: "QtAgg", value: "pyside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFake(allAvailable(), testEnv{EnvOverride: tt.value}, tt.backend)
			require.Error(t, err)

			var invalid *InvalidOverrideError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.value, invalid.Value)
			assert.Contains(t, err.Error(), fmt.Sprintf("%q", tt.value))
			for _, name := range RecognizedOverrides() {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

func TestResolveEmptyOverrideMeansUnset(t *testing.T) {
	ctx, err := resolveFake(allAvailable(), testEnv{EnvOverride: ""}, "")
	require.NoError(t, err)
	assert.Equal(t, BindingPyQt6, ctx.Binding())
}

func TestResolveProbeOrder(t *testing.T) {
	tests := []struct {
		name      string
		available []Binding
		want      Binding
	}{
		{name: "all available", available: []Binding{BindingPyQt6, BindingPySide6, BindingPyQt5, BindingPySide2}, want: BindingPyQt6},
		{name: "first missing", available: []Binding{BindingPySide6, BindingPyQt5, BindingPySide2}, want: BindingPySide6},
		{name: "only legacy", available: []Binding{BindingPyQt5, BindingPySide2}, want: BindingPyQt5},
		{name: "last resort", available: []Binding{BindingPySide2}, want: BindingPySide2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avail := make(map[Binding]bool, len(tt.available))
			for _, id := range tt.available {
				avail[id] = true
			}
			cands := make([]Candidate, 0, len(bindingOrder))
			for _, id := range bindingOrder {
				if avail[id] {
					cands = append(cands, availableCandidate(id))
				} else {
					cands = append(cands, missingCandidate(id))
				}
			}

			ctx, err := resolveFake(cands, testEnv{}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ctx.Binding())
		})
	}
}

func TestResolveExhausted(t *testing.T) {
	_, err := resolveFake(allMissing(), testEnv{}, "")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Len(t, resErr.Attempts, 4)
	for i, id := range bindingOrder {
		assert.Equal(t, id, resErr.Attempts[i].Binding)
		assert.ErrorIs(t, resErr.Attempts[i].Err, ErrUnavailable)
	}
	assert.Contains(t, err.Error(), "no usable qt binding")
}

func TestResolveNoCandidates(t *testing.T) {
	_, err := resolveFake([]Candidate{}, testEnv{}, "")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, resErr.Attempts)
	assert.Contains(t, err.Error(), "no candidates registered")
}

func TestResolveSelectedLoadFailureDoesNotFallBack(t *testing.T) {
	loadErr := errors.New("libGL.so.1: cannot open shared object file")
	cands := []Candidate{
		availableCandidate(BindingPyQt6),
		availableCandidate(BindingPySide6),
		{ID: BindingPyQt5, Load: func() (*Runtime, error) { return nil, loadErr }},
		availableCandidate(BindingPySide2),
	}

	_, err := resolveFake(cands, testEnv{EnvOverride: "pyqt5"}, "Qt5Agg")
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)

	var resErr *ResolutionError
	assert.False(t, errors.As(err, &resErr), "a selected binding must not fall back")
}

func TestResolveSelectedButMissingCandidate(t *testing.T) {
	// pyside2 is selected but nobody registered it.
	cands := []Candidate{
		availableCandidate(BindingPyQt6),
		availableCandidate(BindingPyQt5),
	}

	_, err := resolveFake(cands, testEnv{EnvOverride: "pyside2"}, "Qt5Agg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "PySide2")
}

func TestResolveProbeAbortsOnUnexpectedError(t *testing.T) {
	bootErr := errors.New("qt platform plugin could not be initialized")
	var triedPySide6 bool
	cands := []Candidate{
		{ID: BindingPyQt6, Load: func() (*Runtime, error) { return nil, bootErr }},
		{ID: BindingPySide6, Load: func() (*Runtime, error) {
			triedPySide6 = true
			return newFakeRuntime(BindingPySide6, "6.7.2"), nil
		}},
	}

	_, err := resolveFake(cands, testEnv{}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, bootErr)
	assert.False(t, triedPySide6, "probing must stop at the first unexpected failure")
}

func TestResolveTrace(t *testing.T) {
	var events []TraceEvent
	cands := []Candidate{
		missingCandidate(BindingPyQt6),
		availableCandidate(BindingPySide6),
	}
	env := testEnv{}

	ctx, err := Resolve(Options{
		Candidates: cands,
		Getenv:     env.getenv,
		Setenv:     env.setenv,
		Trace:      func(ev TraceEvent) { events = append(events, ev) },
	})
	require.NoError(t, err)
	require.Equal(t, BindingPySide6, ctx.Binding())

	var stages []TraceStage
	for _, ev := range events {
		stages = append(stages, ev.Stage)
	}
	assert.Contains(t, stages, StageOverride)
	assert.Contains(t, stages, StageFallback)
	assert.Contains(t, stages, StageBound)

	var failed, bound bool
	for _, ev := range events {
		if ev.Stage == StageFallback && ev.Candidate == BindingPyQt6 && ev.Err != nil {
			failed = true
		}
		if ev.Stage == StageBound && ev.Candidate == BindingPySide6 {
			bound = true
		}
	}
	assert.True(t, failed, "missing PyQt6 attempt should be traced")
	assert.True(t, bound, "binding event should name PySide6")
}

func TestResolveRejectsMalformedRuntime(t *testing.T) {
	corrupt := func(id Binding, mutate func(rt *Runtime)) Candidate {
		return Candidate{
			ID: id,
			Load: func() (*Runtime, error) {
				rt := newFakeRuntime(id, defaultToolkitVersion(id))
				mutate(rt)
				return rt, nil
			},
		}
	}

	tests := []struct {
		name   string
		cand   Candidate
		detail string
	}{
		{
			name:   "nil widgets namespace",
			cand:   corrupt(BindingPyQt6, func(rt *Runtime) { rt.Widgets = nil }),
			detail: "module groups",
		},
		{
			name: "pyqt without version attribute",
			cand: corrupt(BindingPyQt6, func(rt *Runtime) {
				delete(rt.Core.(MapNamespace), attrPyQtVersion)
			}),
			detail: attrPyQtVersion,
		},
		{
			name:   "pyside without version",
			cand:   corrupt(BindingPySide6, func(rt *Runtime) { rt.Version = "" }),
			detail: "version",
		},
		{
			name: "missing qVersion",
			cand: corrupt(BindingPyQt6, func(rt *Runtime) {
				delete(rt.Core.(MapNamespace), "qVersion")
			}),
			detail: attrQVersion,
		},
		{
			name: "missing signal alias",
			cand: corrupt(BindingPySide6, func(rt *Runtime) {
				delete(rt.Core.(MapNamespace), "Signal")
			}),
			detail: "Signal",
		},
		{
			name:   "pyqt without deleted probe",
			cand:   corrupt(BindingPyQt5, func(rt *Runtime) { rt.Deleted = nil }),
			detail: "Deleted",
		},
		{
			name:   "pyside without validity probe",
			cand:   corrupt(BindingPySide2, func(rt *Runtime) { rt.Valid = nil }),
			detail: "Valid",
		},
		{
			name: "missing file dialog",
			cand: corrupt(BindingPyQt6, func(rt *Runtime) {
				delete(rt.Widgets.(MapNamespace), attrFileDialog)
			}),
			detail: attrFileDialog,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFake([]Candidate{tt.cand}, testEnv{}, "")
			require.Error(t, err)

			var stateErr *UnexpectedStateError
			require.ErrorAs(t, err, &stateErr)
			assert.Contains(t, stateErr.Reason, tt.detail)
		})
	}
}

func TestResolveUsesRegistry(t *testing.T) {
	t.Cleanup(resetRegistry)
	resetRegistry()
	Register(availableCandidate(BindingPySide2))

	env := testEnv{}
	ctx, err := Resolve(Options{Getenv: env.getenv, Setenv: env.setenv})
	require.NoError(t, err)
	assert.Equal(t, BindingPySide2, ctx.Binding())
}

func TestRegisterPanics(t *testing.T) {
	t.Cleanup(resetRegistry)
	resetRegistry()

	assert.Panics(t, func() { Register(Candidate{ID: "PyQt4", Load: availableCandidate(BindingPyQt5).Load}) })
	assert.Panics(t, func() { Register(Candidate{ID: BindingPyQt5}) })

	Register(availableCandidate(BindingPyQt5))
	assert.Panics(t, func() { Register(availableCandidate(BindingPyQt5)) })
}

func TestRegisteredReturnsProbeOrder(t *testing.T) {
	t.Cleanup(resetRegistry)
	resetRegistry()
	Register(availableCandidate(BindingPySide2))
	Register(availableCandidate(BindingPyQt6))

	got := Registered()
	require.Len(t, got, 2)
	assert.Equal(t, BindingPyQt6, got[0].ID)
	assert.Equal(t, BindingPySide2, got[1].ID)
}
