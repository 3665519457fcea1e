package qtcompat

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsMacWantsLayer(t *testing.T) {
	tests := []struct {
		name      string
		osVersion string
		toolkit   string
		want      bool
	}{
		{name: "big sur with buggy toolkit", osVersion: "10.16", toolkit: "5.15.0", want: true},
		{name: "monterey numbering", osVersion: "11.2.3", toolkit: "5.15.1", want: true},
		{name: "catalina", osVersion: "10.15.7", toolkit: "5.15.0", want: false},
		{name: "fixed toolkit", osVersion: "10.16", toolkit: "5.15.2", want: false},
		{name: "modern toolkit", osVersion: "12.6", toolkit: "6.2.0", want: false},
		{name: "unparsable os", osVersion: "who knows", toolkit: "5.15.0", want: false},
		{name: "unparsable toolkit", osVersion: "10.16", toolkit: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsMacWantsLayer(tt.osVersion, tt.toolkit))
		})
	}
}

func TestResolveLeavesEnvAloneOutsideDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("exercises the non-darwin path")
	}

	env := testEnv{}
	_, err := resolveFake(allAvailable(), env, "")
	require.NoError(t, err)

	_, set := env[EnvMacWantsLayer]
	assert.False(t, set)
}
