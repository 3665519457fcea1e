// Package diag builds, stores and watches binding resolution reports.
package diag

import (
	"crypto/rand"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/plotkit/qtcompat"
)

// SchemaVersion is the current report schema version.
const SchemaVersion = 1

// CandidateStatus describes one binding in the probe order.
type CandidateStatus struct {
	Binding    string `json:"binding" yaml:"binding"`
	Registered bool   `json:"registered" yaml:"registered"`
	Preloaded  bool   `json:"preloaded" yaml:"preloaded"`
	Selected   bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Step is one recorded resolver decision.
type Step struct {
	Stage     string `json:"stage" yaml:"stage"`
	Candidate string `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Outcome is the end state of one resolution.
type Outcome struct {
	Resolved   bool   `json:"resolved" yaml:"resolved"`
	Binding    string `json:"binding,omitempty" yaml:"binding,omitempty"`
	Generation string `json:"generation,omitempty" yaml:"generation,omitempty"`
	Family     string `json:"family,omitempty" yaml:"family,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Toolkit    string `json:"toolkit,omitempty" yaml:"toolkit,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is one complete resolution diagnosis.
type Report struct {
	ID          string    `json:"id" yaml:"id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Hostname    string    `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	OS          string    `json:"os" yaml:"os"`
	Arch        string    `json:"arch" yaml:"arch"`

	Override      string `json:"override,omitempty" yaml:"override,omitempty"`
	OverrideSet   bool   `json:"override_set" yaml:"override_set"`
	MacWantsLayer string `json:"mac_wants_layer,omitempty" yaml:"mac_wants_layer,omitempty"`
	Backend       string `json:"backend,omitempty" yaml:"backend,omitempty"`

	ConfigPath     string    `json:"config_path,omitempty" yaml:"config_path,omitempty"`
	ConfigModified time.Time `json:"config_modified,omitempty" yaml:"config_modified,omitempty"`

	Candidates []CandidateStatus `json:"candidates" yaml:"candidates"`
	Steps      []Step            `json:"steps" yaml:"steps"`
	Outcome    Outcome           `json:"outcome" yaml:"outcome"`
}

// NewID returns a fresh report identifier.
func NewID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		// rand.Reader does not fail in practice
		return time.Now().UTC().Format("20060102T150405.000000000Z")
	}
	return id.String()
}

// CollectOptions configures Collect. The zero value diagnoses the registered
// candidates against the process environment.
type CollectOptions struct {
	Candidates []qtcompat.Candidate
	Backend    string
	Getenv     func(key string) (string, bool)
	Setenv     func(key, value string) error
	ConfigPath string
	Logger     *slog.Logger
}

// Collect runs one resolution and assembles the full diagnosis. Resolution
// failure is part of the report, not an error; the returned context is nil
// in that case.
func Collect(opts CollectOptions) (*Report, *qtcompat.Context) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}

	r := &Report{
		ID:          NewID(),
		GeneratedAt: time.Now().UTC(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Backend:     opts.Backend,
		ConfigPath:  opts.ConfigPath,
	}
	if host, err := os.Hostname(); err == nil {
		r.Hostname = host
	}
	r.Override, r.OverrideSet = getenv(qtcompat.EnvOverride)
	r.MacWantsLayer, _ = getenv(qtcompat.EnvMacWantsLayer)
	if opts.ConfigPath != "" {
		if info, err := os.Stat(opts.ConfigPath); err == nil {
			r.ConfigModified = info.ModTime()
		}
	}

	cands := opts.Candidates
	if cands == nil {
		cands = qtcompat.Registered()
	}
	order := qtcompat.Bindings()
	r.Candidates = make([]CandidateStatus, len(order))
	status := make(map[qtcompat.Binding]*CandidateStatus, len(order))
	for i, id := range order {
		r.Candidates[i] = CandidateStatus{Binding: string(id)}
		status[id] = &r.Candidates[i]
	}
	for _, c := range cands {
		s, ok := status[c.ID]
		if !ok {
			continue
		}
		s.Registered = true
		s.Preloaded = c.Loaded != nil && c.Loaded()
	}

	ctx, err := qtcompat.Resolve(qtcompat.Options{
		Candidates: cands,
		Backend:    opts.Backend,
		Getenv:     opts.Getenv,
		Setenv:     opts.Setenv,
		Logger:     opts.Logger,
		Trace: func(ev qtcompat.TraceEvent) {
			step := Step{
				Stage:     string(ev.Stage),
				Candidate: string(ev.Candidate),
				Detail:    ev.Detail,
			}
			if ev.Err != nil {
				step.Error = ev.Err.Error()
			}
			r.Steps = append(r.Steps, step)
			if ev.Stage == qtcompat.StageFallback && ev.Candidate != "" && ev.Err != nil {
				if s, ok := status[ev.Candidate]; ok {
					s.Error = ev.Err.Error()
				}
			}
		},
	})
	if err != nil {
		r.Outcome = Outcome{Error: err.Error()}
		return r, nil
	}

	r.Outcome = Outcome{
		Resolved:   true,
		Binding:    string(ctx.Binding()),
		Generation: ctx.Binding().Generation().String(),
		Family:     ctx.Binding().Family().String(),
		Version:    ctx.Version(),
		Toolkit:    ctx.ToolkitVersion(),
	}
	if s, ok := status[ctx.Binding()]; ok {
		s.Selected = true
	}
	return r, ctx
}
