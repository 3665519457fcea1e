package qtcompat

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// EnvOverride is the environment variable consulted during resolution. The
// naming scheme is shared with older Enthought tooling and predates the
// modern binding generation, so it can only ever select a legacy binding.
const EnvOverride = "QT_API"

// TraceStage identifies one step of the resolution procedure.
type TraceStage string

const (
	StagePreloaded  TraceStage = "preloaded"
	StageOverride   TraceStage = "override"
	StageFallback   TraceStage = "fallback"
	StageBound      TraceStage = "bound"
	StageWorkaround TraceStage = "workaround"
)

// TraceEvent describes one resolver decision. Events are emitted in order
// through Options.Trace and exist for diagnostics only.
type TraceEvent struct {
	Stage     TraceStage
	Candidate Binding // empty when the event is not tied to one candidate
	Detail    string
	Err       error
}

// Options configures Resolve. The zero value resolves the registered
// candidates against the process environment with no backend configured.
type Options struct {
	// Candidates overrides the registered candidate set. Candidates are
	// consulted in the fixed probe order regardless of slice order.
	Candidates []Candidate

	// Backend is the configured rendering backend name, obtained by a
	// direct read that must not trigger backend resolution on the caller's
	// side. Only its Qt5 compatibility is consulted here.
	Backend string

	// Getenv and Setenv default to the process environment.
	Getenv func(key string) (string, bool)
	Setenv func(key, value string) error

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Trace, when set, observes each resolution step.
	Trace func(TraceEvent)
}

// resolver carries the normalized options through one resolution.
type resolver struct {
	byID    map[Binding]Candidate
	backend string
	getenv  func(string) (string, bool)
	setenv  func(string, string) error
	log     *slog.Logger
	trace   func(TraceEvent)
}

func newResolver(opts Options) *resolver {
	cands := opts.Candidates
	if cands == nil {
		cands = Registered()
	}
	byID := make(map[Binding]Candidate, len(cands))
	for _, c := range cands {
		byID[c.ID] = c
	}

	r := &resolver{
		byID:    byID,
		backend: opts.Backend,
		getenv:  opts.Getenv,
		setenv:  opts.Setenv,
		log:     opts.Logger,
		trace:   opts.Trace,
	}
	if r.getenv == nil {
		r.getenv = os.LookupEnv
	}
	if r.setenv == nil {
		r.setenv = os.Setenv
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.trace == nil {
		r.trace = func(TraceEvent) {}
	}
	return r
}

// Resolve selects and loads exactly one binding according to the precedence
// policy and returns the bound Context. It performs no process-wide
// publication; see Init for the process-wide entry point.
func Resolve(opts Options) (*Context, error) {
	r := newResolver(opts)

	// An already-active binding always wins; switching away from it inside
	// the same process is unsafe.
	for _, id := range bindingOrder {
		c, ok := r.byID[id]
		if !ok || c.Loaded == nil || !c.Loaded() {
			continue
		}
		r.trace(TraceEvent{Stage: StagePreloaded, Candidate: id, Detail: "core module already loaded"})
		r.log.Debug("qt binding already active", "binding", id)
		return r.load(c)
	}

	selected, err := r.fromEnvironment()
	if err != nil {
		return nil, err
	}
	if selected != "" {
		c, ok := r.byID[selected]
		if !ok {
			// An explicitly requested binding that is not installed does
			// not fall back.
			return nil, fmt.Errorf("load %s: %w", selected, ErrUnavailable)
		}
		return r.load(c)
	}

	return r.probe()
}

// fromEnvironment applies the QT_API rules against the configured backend.
// An empty result means nothing was selected and probing should run.
func (r *resolver) fromEnvironment() (Binding, error) {
	raw, ok := r.getenv(EnvOverride)
	if !ok || raw == "" {
		r.trace(TraceEvent{Stage: StageOverride, Detail: "QT_API unset"})
		return "", nil
	}
	value := strings.ToLower(raw)

	if LegacyCompatibleBackend(r.backend) {
		// The override may only pick between the two legacy bindings here;
		// any other value, recognized or not, is treated as unset.
		if legacyOverrides[value] {
			b := overrides[value]
			r.trace(TraceEvent{Stage: StageOverride, Candidate: b,
				Detail: fmt.Sprintf("QT_API=%s selected with backend %s", value, r.backend)})
			r.log.Debug("qt binding selected by QT_API", "binding", b, "backend", r.backend)
			return b, nil
		}
		r.trace(TraceEvent{Stage: StageOverride,
			Detail: fmt.Sprintf("QT_API=%q not usable with backend %s; ignored", raw, r.backend)})
		return "", nil
	}

	// A non-Qt5 backend (or none at all, e.g. when manually embedding): the
	// backend carries no signal, and the override can never select a modern
	// binding, so recognized values fall through to probing.
	if _, recognized := overrides[value]; recognized {
		r.trace(TraceEvent{Stage: StageOverride,
			Detail: fmt.Sprintf("QT_API=%q ignored with backend %q", raw, r.backend)})
		return "", nil
	}
	err := &InvalidOverrideError{Value: raw}
	r.trace(TraceEvent{Stage: StageOverride, Err: err})
	return "", err
}

// probe tries each candidate in the fixed order, skipping bindings that are
// merely unavailable. Any other load failure aborts immediately.
func (r *resolver) probe() (*Context, error) {
	attempts := make([]Attempt, 0, len(bindingOrder))
	for _, id := range bindingOrder {
		c, ok := r.byID[id]
		if !ok {
			err := fmt.Errorf("%s not registered: %w", id, ErrUnavailable)
			attempts = append(attempts, Attempt{Binding: id, Err: err})
			r.trace(TraceEvent{Stage: StageFallback, Candidate: id, Err: err})
			continue
		}
		ctx, err := r.load(c)
		if err == nil {
			return ctx, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		attempts = append(attempts, Attempt{Binding: id, Err: err})
		r.trace(TraceEvent{Stage: StageFallback, Candidate: id, Err: err})
	}

	err := &ResolutionError{Attempts: attempts}
	r.trace(TraceEvent{Stage: StageFallback, Err: err})
	return nil, err
}

// load imports the candidate, normalizes its runtime into a Context, and
// applies the platform workaround.
func (r *resolver) load(c Candidate) (*Context, error) {
	rt, err := c.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.ID, err)
	}

	ctx, err := bind(c.ID, rt)
	if err != nil {
		return nil, err
	}

	r.trace(TraceEvent{Stage: StageBound, Candidate: c.ID,
		Detail: fmt.Sprintf("version %s, toolkit %s", ctx.version, ctx.toolkitVersion)})
	r.log.Info("qt binding resolved",
		"binding", c.ID, "version", ctx.version, "toolkit", ctx.toolkitVersion)

	r.applyMacWantsLayer(ctx)
	return ctx, nil
}

// Conventional attribute names on binding runtimes.
const (
	attrPyQtVersion  = "PYQT_VERSION_STR"
	attrQVersion     = "qVersion"
	attrFileDialog   = "QFileDialog"
	attrSaveFileName = "getSaveFileName"
)

// bind normalizes a loaded runtime into an immutable Context: it resolves
// version strings, publishes signal/slot/property under their stable names,
// wires the family's object-validity primitive, records the save-dialog
// reference, and selects the generation strategies for the facade.
func bind(id Binding, rt *Runtime) (*Context, error) {
	if !id.Known() {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("unknown binding %q", id)}
	}
	if rt == nil || rt.Core == nil || rt.GUI == nil || rt.Widgets == nil {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s runtime is missing module groups", id)}
	}

	ctx := &Context{
		binding: id,
		core:    rt.Core,
		gui:     rt.GUI,
		widgets: rt.Widgets,
	}

	switch id.Family() {
	case FamilyPyQt:
		v, ok := rt.Core.Attr(attrPyQtVersion)
		s, isString := v.(string)
		if !ok || !isString || s == "" {
			return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s core lacks %s", id, attrPyQtVersion)}
		}
		ctx.version = s
	case FamilyPySide:
		if rt.Version == "" {
			return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s runtime lacks a distribution version", id)}
		}
		ctx.version = rt.Version
	}

	qv, ok := rt.Core.Attr(attrQVersion)
	if !ok {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s core lacks %s", id, attrQVersion)}
	}
	qVersion, ok := qv.(func() string)
	if !ok {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s %s is not callable", id, attrQVersion)}
	}
	ctx.toolkitVersion = qVersion()

	var signalAttr, slotAttr, propertyAttr string
	switch id.Family() {
	case FamilyPyQt:
		signalAttr, slotAttr, propertyAttr = "pyqtSignal", "pyqtSlot", "pyqtProperty"
	case FamilyPySide:
		signalAttr, slotAttr, propertyAttr = "Signal", "Slot", "Property"
	}
	for _, bindAttr := range []struct {
		name string
		dst  *any
	}{
		{signalAttr, &ctx.signal},
		{slotAttr, &ctx.slot},
		{propertyAttr, &ctx.property},
	} {
		v, ok := rt.Core.Attr(bindAttr.name)
		if !ok {
			return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s core lacks %s", id, bindAttr.name)}
		}
		*bindAttr.dst = v
	}

	switch id.Family() {
	case FamilyPyQt:
		if rt.Deleted == nil {
			return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s runtime lacks a Deleted primitive", id)}
		}
		ctx.isDeleted = rt.Deleted
	case FamilyPySide:
		if rt.Valid == nil {
			return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s runtime lacks a Valid primitive", id)}
		}
		valid := rt.Valid
		ctx.isDeleted = func(obj any) bool { return !valid(obj) }
	}

	dialog, ok := rt.Widgets.Attr(attrFileDialog)
	if !ok {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s widgets lack %s", id, attrFileDialog)}
	}
	dialogNS, ok := dialog.(Namespace)
	if !ok {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s %s has no attributes", id, attrFileDialog)}
	}
	save, ok := dialogNS.Attr(attrSaveFileName)
	if !ok {
		return nil, &UnexpectedStateError{Reason: fmt.Sprintf("%s %s lacks %s", id, attrFileDialog, attrSaveFileName)}
	}
	ctx.saveFileName = save

	if id.Generation() == GenerationModern {
		ctx.enumSegments = modernEnumSegments
		ctx.toInt = modernToInt
	} else {
		ctx.enumSegments = legacyEnumSegments
		ctx.toInt = legacyToInt
	}

	return ctx, nil
}
