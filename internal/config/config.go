// Package config loads process configuration from the environment.
//
// The server is configured entirely through AZBOARDS_* environment
// variables. Organization URL and PAT are mandatory: without them no
// tool can issue a request, so startup fails instead of degrading.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

const (
	defaultAPIVersion = "7.1"

	// Chunked uploads: single-shot below the threshold, chunked above it.
	DefaultChunkSize      = 4 * 1024 * 1024
	DefaultChunkThreshold = 100 * 1024 * 1024
	DefaultSearchLimit    = 50
	MaxSearchLimit        = 200
	MaxBatchGetIDs        = 200
)

type Config struct {
	// OrgURL is the organization base URL, e.g.
	// https://dev.azure.com/myorg or https://tfs.corp.local/tfs/Collection.
	OrgURL string

	// PAT is the personal access token used for every request.
	PAT string

	// Project optionally pins the default project. When empty, the
	// session resolves the first project of the organization instead.
	Project string

	// APIVersion is sent as the api-version query parameter.
	APIVersion string

	// Verbose enables request/response wire logging on stderr.
	Verbose bool
}

// Load reads configuration from AZBOARDS_* environment variables.
// A missing organization URL or PAT is a fatal configuration error.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("azboards")
	v.AutomaticEnv()
	v.SetDefault("api_version", defaultAPIVersion)

	cfg := Config{
		OrgURL:     strings.TrimRight(strings.TrimSpace(v.GetString("org_url")), "/"),
		PAT:        strings.TrimSpace(v.GetString("pat")),
		Project:    strings.TrimSpace(v.GetString("project")),
		APIVersion: v.GetString("api_version"),
		Verbose:    v.GetBool("verbose"),
	}

	if cfg.OrgURL == "" {
		return Config{}, errs.New(errs.CodeConfigMissing, "AZBOARDS_ORG_URL is required", nil)
	}
	if cfg.PAT == "" {
		return Config{}, errs.New(errs.CodeConfigMissing, "AZBOARDS_PAT is required", nil)
	}
	return cfg, nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.PAT == "" {
		return c
	}
	out := c
	out.PAT = "***"
	return out
}
