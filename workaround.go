package qtcompat

import (
	"context"
	"runtime"
	"time"

	version "github.com/hashicorp/go-version"

	"github.com/plotkit/qtcompat/internal/platform"
)

// EnvMacWantsLayer is the environment flag set by the Big Sur workaround.
const EnvMacWantsLayer = "QT_MAC_WANTS_LAYER"

// Big Sur reports 10.16 under backward-compatible numbering; the layering
// bug (QTBUG-87014) is fixed in toolkit 5.15.2.
var (
	bigSurVersion     = version.Must(version.NewVersion("10.16"))
	layerFixedVersion = version.Must(version.NewVersion("5.15.2"))
)

// applyMacWantsLayer sets QT_MAC_WANTS_LAYER=1 on macOS Big Sur and later
// when the resolved toolkit is older than 5.15.2 and the flag is not already
// set. It runs after binding resolution, before any GUI object can be
// constructed. Failures to read or parse versions skip the workaround; they
// never fail resolution.
func (r *resolver) applyMacWantsLayer(c *Context) {
	if runtime.GOOS != "darwin" {
		return
	}
	if _, set := r.getenv(EnvMacWantsLayer); set {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	osVersion, err := platform.MacProductVersion(ctx)
	if err != nil {
		r.log.Debug("skipping mac layer workaround", "error", err)
		return
	}
	if !needsMacWantsLayer(osVersion, c.toolkitVersion) {
		return
	}

	if err := r.setenv(EnvMacWantsLayer, "1"); err != nil {
		r.log.Warn("failed to set mac layer workaround flag", "error", err)
		return
	}
	r.trace(TraceEvent{Stage: StageWorkaround, Candidate: c.binding,
		Detail: "set " + EnvMacWantsLayer + "=1"})
	r.log.Debug("applied mac layer workaround",
		"os", osVersion, "toolkit", c.toolkitVersion)
}

// needsMacWantsLayer reports whether the OS/toolkit combination hits the
// layering bug. Unparsable versions report false.
func needsMacWantsLayer(osVersion, toolkitVersion string) bool {
	osv, err := version.NewVersion(osVersion)
	if err != nil {
		return false
	}
	tkv, err := version.NewVersion(toolkitVersion)
	if err != nil {
		return false
	}
	return osv.GreaterThanOrEqual(bigSurVersion) && tkv.LessThan(layerFixedVersion)
}
