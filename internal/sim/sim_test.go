package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotkit/qtcompat"
)

func TestRuntimeResolves(t *testing.T) {
	for _, id := range qtcompat.Bindings() {
		t.Run(string(id), func(t *testing.T) {
			ctx, err := qtcompat.Resolve(qtcompat.Options{
				Candidates: []qtcompat.Candidate{New(id)},
				Getenv:     func(string) (string, bool) { return "", false },
				Setenv:     func(string, string) error { return nil },
			})
			require.NoError(t, err)

			assert.Equal(t, id, ctx.Binding())
			assert.Equal(t, BindingVersion(id), ctx.Version())
			assert.Equal(t, ToolkitVersion(id), ctx.ToolkitVersion())
			assert.False(t, ctx.IsDeleted(struct{}{}))

			v, err := ctx.Enum("QtCore.Qt.AlignmentFlag.AlignCenter")
			require.NoError(t, err)
			n, err := ctx.ToInt(v)
			require.NoError(t, err)
			assert.Equal(t, 0x0084, n)

			v, err = ctx.Enum("QtGui.QPalette.ColorRole.Window")
			require.NoError(t, err)
			n, err = ctx.ToInt(v)
			require.NoError(t, err)
			assert.Equal(t, 10, n)

			v, err = ctx.Enum("QtWidgets.QSizePolicy.Policy.Expanding")
			require.NoError(t, err)
			n, err = ctx.ToInt(v)
			require.NoError(t, err)
			assert.Equal(t, 7, n)
		})
	}
}

func TestCandidates(t *testing.T) {
	cands, err := Candidates([]string{"pyqt5", "PySide2"}, []string{"pyside2"})
	require.NoError(t, err)
	require.Len(t, cands, 2)

	// Probe order, with the preloaded flag where asked.
	assert.Equal(t, qtcompat.BindingPyQt5, cands[0].ID)
	assert.Nil(t, cands[0].Loaded)
	assert.Equal(t, qtcompat.BindingPySide2, cands[1].ID)
	require.NotNil(t, cands[1].Loaded)
	assert.True(t, cands[1].Loaded())
}

func TestCandidatesPreloadedImpliesInstalled(t *testing.T) {
	cands, err := Candidates(nil, []string{"pyqt6"})
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, qtcompat.BindingPyQt6, cands[0].ID)
}

func TestCandidatesRejectsUnknownNames(t *testing.T) {
	_, err := Candidates([]string{"pyqt4"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pyqt4")

	_, err = Candidates(nil, []string{"tkinter"})
	require.Error(t, err)
}

func TestEnumValue(t *testing.T) {
	v := EnumValue{Name: "AlignLeft", Val: 1}
	assert.Equal(t, 1, v.Value())
	assert.Equal(t, "AlignLeft", v.String())
}
