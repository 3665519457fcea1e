package qtcompat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingNamespace records how many attribute lookups pass through it.
type countingNamespace struct {
	inner Namespace
	calls *int
}

func (n countingNamespace) Attr(name string) (any, bool) {
	*n.calls++
	return n.inner.Attr(name)
}

func TestEnumCrossGeneration(t *testing.T) {
	// The same modern member path must yield the same integer under every
	// binding, whichever way the binding nests its enums.
	paths := map[string]int{
		"QtCore.Qt.AlignmentFlag.AlignLeft":          1,
		"QtCore.Qt.AlignmentFlag.AlignRight":         2,
		"QtCore.Qt.KeyboardModifier.ControlModifier": 0x04000000,
	}
	for _, id := range Bindings() {
		t.Run(string(id), func(t *testing.T) {
			ctx, err := resolveFake([]Candidate{availableCandidate(id)}, testEnv{}, "")
			require.NoError(t, err)

			for path, want := range paths {
				v, err := ctx.Enum(path)
				require.NoError(t, err, path)
				n, err := ctx.ToInt(v)
				require.NoError(t, err, path)
				assert.Equal(t, want, n, path)
			}
		})
	}
}

func TestEnumShapePerGeneration(t *testing.T) {
	modern, err := resolveFake([]Candidate{availableCandidate(BindingPyQt6)}, testEnv{}, "")
	require.NoError(t, err)
	v, err := modern.Enum("QtCore.Qt.AlignmentFlag.AlignLeft")
	require.NoError(t, err)
	assert.IsType(t, fakeEnum{}, v)

	legacy, err := resolveFake([]Candidate{availableCandidate(BindingPyQt5)}, testEnv{}, "")
	require.NoError(t, err)
	v, err = legacy.Enum("QtCore.Qt.AlignmentFlag.AlignLeft")
	require.NoError(t, err)
	assert.IsType(t, int(0), v)
}

func TestEnumMemoized(t *testing.T) {
	var calls int
	cand := Candidate{
		ID: BindingPyQt6,
		Load: func() (*Runtime, error) {
			rt := newFakeRuntime(BindingPyQt6, "6.7.2")
			rt.Core = countingNamespace{inner: rt.Core, calls: &calls}
			return rt, nil
		},
	}
	ctx, err := resolveFake([]Candidate{cand}, testEnv{}, "")
	require.NoError(t, err)

	calls = 0
	_, err = ctx.Enum("QtCore.Qt.AlignmentFlag.AlignLeft")
	require.NoError(t, err)
	first := calls

	_, err = ctx.Enum("QtCore.Qt.AlignmentFlag.AlignLeft")
	require.NoError(t, err)
	assert.Equal(t, first, calls, "second lookup must come from the cache")
}

func TestEnumFailureNotCached(t *testing.T) {
	var calls int
	cand := Candidate{
		ID: BindingPyQt6,
		Load: func() (*Runtime, error) {
			rt := newFakeRuntime(BindingPyQt6, "6.7.2")
			rt.Core = countingNamespace{inner: rt.Core, calls: &calls}
			return rt, nil
		},
	}
	ctx, err := resolveFake([]Candidate{cand}, testEnv{}, "")
	require.NoError(t, err)

	calls = 0
	_, err = ctx.Enum("QtCore.Qt.AlignmentFlag.NoSuchMember")
	require.Error(t, err)
	first := calls

	_, err = ctx.Enum("QtCore.Qt.AlignmentFlag.NoSuchMember")
	require.Error(t, err)
	assert.Equal(t, first*2, calls, "failed lookups run the traversal again")
}

func TestEnumErrors(t *testing.T) {
	ctx, err := resolveFake([]Candidate{availableCandidate(BindingPyQt6)}, testEnv{}, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "unknown module group", path: "QtNetwork.QSsl.SslProtocol.TlsV1_2", want: "unknown module group"},
		{name: "missing attribute", path: "QtCore.Qt.AlignmentFlag.AlignCentre", want: "no attribute"},
		{name: "traversal past a leaf", path: "QtCore.Qt.AlignmentFlag.AlignLeft.Deeper", want: "leaf value"},
		{name: "too short", path: "QtCore", want: "module group and a member"},
		{name: "empty", path: "", want: "module group and a member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctx.Enum(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestToIntRejectsWrongShape(t *testing.T) {
	modern, err := resolveFake([]Candidate{availableCandidate(BindingPySide6)}, testEnv{}, "")
	require.NoError(t, err)
	_, err = modern.ToInt(7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Value method")

	legacy, err := resolveFake([]Candidate{availableCandidate(BindingPySide2)}, testEnv{}, "")
	require.NoError(t, err)
	_, err = legacy.ToInt(fakeEnum{value: 7})
	require.Error(t, err)

	n, err := legacy.ToInt(int64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = legacy.ToInt(uint16(9))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}
