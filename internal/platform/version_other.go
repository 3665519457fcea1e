//go:build !darwin

package platform

import "context"

func macProductVersion(ctx context.Context) (string, error) {
	return "", ErrUnsupported
}
