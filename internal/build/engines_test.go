package build

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargets(t *testing.T) {
	target, engines, err := ParseTargets([]string{"es2019", "edge88", "firefox78", "chrome87", "safari13.1"})
	require.NoError(t, err)

	assert.Equal(t, api.ES2019, target)
	assert.Equal(t, []api.Engine{
		{Name: api.EngineEdge, Version: "88"},
		{Name: api.EngineFirefox, Version: "78"},
		{Name: api.EngineChrome, Version: "87"},
		{Name: api.EngineSafari, Version: "13.1"},
	}, engines)
}

func TestParseTargetsNode(t *testing.T) {
	target, engines, err := ParseTargets([]string{" Node16.14.2 "})
	require.NoError(t, err)

	assert.Equal(t, api.DefaultTarget, target)
	assert.Equal(t, []api.Engine{{Name: api.EngineNode, Version: "16.14.2"}}, engines)
}

func TestParseTargetsInvalid(t *testing.T) {
	for _, value := range []string{"netscape4", "chrome", "es5x", "", "safari13.1.2.3"} {
		t.Run(value, func(t *testing.T) {
			_, _, err := ParseTargets([]string{value})
			assert.Error(t, err)
		})
	}
}
