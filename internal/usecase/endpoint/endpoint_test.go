package endpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"feedgate/internal/config"
	"feedgate/internal/infra/scriptengine"
)

func fromScratchSourceConfig(t *testing.T, title string) *config.SourceConfig {
	t.Helper()
	var node yaml.Node
	raw := "title: " + title + "\nlink: https://example.com\n"
	require.NoError(t, yaml.Unmarshal([]byte(raw), &node))
	return &config.SourceConfig{Kind: "from_scratch", Raw: *node.Content[0]}
}

func TestBuildAndCallFromScratchEndpoint(t *testing.T) {
	cfg := config.EndpointConfig{
		Path:    "/feed",
		Source:  fromScratchSourceConfig(t, "Hello"),
		Filters: nil,
	}
	shared := Shared{ScriptEngine: scriptengine.NullEngine{}}

	ep, err := Build(cfg, shared)
	require.NoError(t, err)

	out, err := ep.Call(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "Hello", out.Title())
}

func TestCallWithoutSourceFails(t *testing.T) {
	cfg := config.EndpointConfig{Path: "/dynamic"}
	ep, err := Build(cfg, Shared{ScriptEngine: scriptengine.NullEngine{}})
	require.NoError(t, err)

	_, err = ep.Call(context.Background(), Request{})
	require.Error(t, err, "expected an error when neither configured nor request source is present")
}
