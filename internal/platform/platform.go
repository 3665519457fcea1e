// Package platform provides the host OS facts the binding resolver needs.
package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by probes that do not apply to the current
// platform.
var ErrUnsupported = errors.New("platform probe unsupported")

// MacProductVersion returns the macOS product version string, e.g.
// "10.15.7". On other systems it returns ErrUnsupported.
func MacProductVersion(ctx context.Context) (string, error) {
	return macProductVersion(ctx)
}
