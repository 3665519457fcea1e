package qtcompat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInitialized is returned by the package-level facade functions before
// Init has succeeded.
var ErrNotInitialized = errors.New("qt binding not resolved; call Init first")

// InvalidOverrideError reports a QT_API value outside the recognized set.
// It is fatal: resolution never falls through to loading after seeing one.
type InvalidOverrideError struct {
	Value string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf(
		"the environment variable QT_API has the unrecognized value %q; valid values are %s",
		e.Value, strings.Join(RecognizedOverrides(), ", "))
}

// Attempt records the outcome of one fallback load attempt.
type Attempt struct {
	Binding Binding
	Err     error
}

// ResolutionError reports that no candidate binding could be loaded during
// fallback probing.
type ResolutionError struct {
	Attempts []Attempt
}

func (e *ResolutionError) Error() string {
	if len(e.Attempts) == 0 {
		return "no usable qt binding: no candidates registered"
	}
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, string(a.Binding))
	}
	return "no usable qt binding: tried " + strings.Join(names, ", ")
}

// UnexpectedStateError reports an internal-consistency violation, such as a
// provider runtime missing a required attribute. It indicates a defect in a
// provider or the resolver, not a user error.
type UnexpectedStateError struct {
	Reason string
}

func (e *UnexpectedStateError) Error() string {
	return "unexpected resolver state: " + e.Reason
}
