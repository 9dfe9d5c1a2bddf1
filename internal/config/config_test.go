package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingOrgURL(t *testing.T) {
	t.Setenv("AZBOARDS_ORG_URL", "")
	t.Setenv("AZBOARDS_PAT", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZBOARDS_ORG_URL")
}

func TestLoad_MissingPAT(t *testing.T) {
	t.Setenv("AZBOARDS_ORG_URL", "https://dev.azure.com/org")
	t.Setenv("AZBOARDS_PAT", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZBOARDS_PAT")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AZBOARDS_ORG_URL", "https://dev.azure.com/org/")
	t.Setenv("AZBOARDS_PAT", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dev.azure.com/org", cfg.OrgURL, "trailing slash trimmed")
	assert.Equal(t, "7.1", cfg.APIVersion)
	assert.Empty(t, cfg.Project)
	assert.False(t, cfg.Verbose)
}

func TestLoad_AllSet(t *testing.T) {
	t.Setenv("AZBOARDS_ORG_URL", "https://tfs.corp.local/tfs/Collection")
	t.Setenv("AZBOARDS_PAT", "secret")
	t.Setenv("AZBOARDS_PROJECT", "Fabrikam")
	t.Setenv("AZBOARDS_API_VERSION", "6.0")
	t.Setenv("AZBOARDS_VERBOSE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Fabrikam", cfg.Project)
	assert.Equal(t, "6.0", cfg.APIVersion)
	assert.True(t, cfg.Verbose)
}

func TestRedacted(t *testing.T) {
	cfg := Config{OrgURL: "https://dev.azure.com/org", PAT: "secret"}
	assert.Equal(t, "***", cfg.Redacted().PAT)
	assert.Equal(t, "secret", cfg.PAT, "original unchanged")

	empty := Config{}
	assert.Equal(t, "", empty.Redacted().PAT)
}
