package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "feedgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppConfigParsesEndpointsAndFilters(t *testing.T) {
	path := writeTempConfig(t, `
auth:
  username: admin
  password: secret
endpoints:
  - path: /feed
    note: example
    source:
      absolute_url: https://example.com/feed.xml
    filters:
      - convert_to: atom
      - limit:
          count: 10
`)
	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Endpoints, 1)

	ep := cfg.Endpoints[0]
	assert.Equal(t, "/feed", ep.Path)
	require.NotNil(t, ep.Source)
	assert.Equal(t, "absolute_url", ep.Source.Kind)
	require.Len(t, ep.Filters, 2)
	assert.Equal(t, "convert_to", ep.Filters[0].Kind)
	assert.Equal(t, "limit", ep.Filters[1].Kind)
}

func TestLoadAppConfigRejectsDuplicatePaths(t *testing.T) {
	path := writeTempConfig(t, `
endpoints:
  - path: /feed
    filters: []
  - path: /feed
    filters: []
`)
	_, err := LoadAppConfig(path)
	require.Error(t, err)
}

func TestLoadAppConfigRejectsMissingLeadingSlash(t *testing.T) {
	path := writeTempConfig(t, `
endpoints:
  - path: feed
    filters: []
`)
	_, err := LoadAppConfig(path)
	require.Error(t, err)
}

func TestBareScalarFilterConfig(t *testing.T) {
	path := writeTempConfig(t, `
endpoints:
  - path: /feed
    filters:
      - note
`)
	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "note", cfg.Endpoints[0].Filters[0].Kind)
}
