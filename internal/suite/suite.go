// Package suite loads the optional suite file and runs checks in order,
// collecting results and tearing down the containers each check launched.
//
// The suite file is JSONC (JSON with comments), matching the config
// dialect used by the Dev Container ecosystem tooling this repository's
// users already write. It selects which checks run and overrides the
// credential parameters the checks provision the image with.
package suite

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/mongocheck/internal/checks"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// Suite is the parsed form of a suite file.
type Suite struct {
	// Checks names the checks to run, in registry order. Empty means all.
	Checks []string `json:"checks"`

	// Params overrides the default credential/config parameters. Zero
	// fields keep their defaults.
	Params paramsOverride `json:"params"`
}

// paramsOverride mirrors checks.Params with pointer fields so "absent"
// and "explicitly zero" can be told apart when merging over defaults.
type paramsOverride struct {
	Username      *string `json:"username"`
	Password      *string `json:"password"`
	Database      *string `json:"database"`
	AdminPassword *string `json:"adminPassword"`
	OplogSizeMB   *int    `json:"oplogSizeMb"`
}

// Load reads and parses a suite file. The file may contain // and /* */
// comments plus trailing commas; jsonc.ToJSON strips them before regular
// JSON decoding.
func Load(path string) (*Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitBadSuiteFile,
			fmt.Sprintf("failed to read suite file %q", path), err)
	}

	var s Suite
	if err := json.Unmarshal(jsonc.ToJSON(raw), &s); err != nil {
		return nil, model.WrapCLIError(model.ExitBadSuiteFile,
			fmt.Sprintf("failed to parse suite file %q", path), err)
	}

	// Fail fast on unknown check names so a typo in the suite file is
	// reported before any container is launched.
	if _, err := checks.Select(s.Checks); err != nil {
		return nil, err
	}

	return &s, nil
}

// MergeParams applies the suite file's overrides on top of the defaults.
func (s *Suite) MergeParams(base checks.Params) checks.Params {
	if s == nil {
		return base
	}
	if s.Params.Username != nil {
		base.Username = *s.Params.Username
	}
	if s.Params.Password != nil {
		base.Password = *s.Params.Password
	}
	if s.Params.Database != nil {
		base.Database = *s.Params.Database
	}
	if s.Params.AdminPassword != nil {
		base.AdminPassword = *s.Params.AdminPassword
	}
	if s.Params.OplogSizeMB != nil {
		base.OplogSizeMB = *s.Params.OplogSizeMB
	}
	return base
}
