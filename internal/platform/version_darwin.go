//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// macProductVersion shells out to sw_vers. Binaries built against an older
// SDK see the backward-compatible numbering (10.16 on Big Sur), which is
// exactly what the layering workaround keys on.
func macProductVersion(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "sw_vers", "-productVersion").Output()
	if err != nil {
		return "", fmt.Errorf("sw_vers: %w", err)
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "", fmt.Errorf("sw_vers reported an empty product version")
	}
	return v, nil
}
