package checks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmr-tortoise/mongocheck/internal/image"
)

// docsCheck asserts the documentation bundle: the README must mention
// every environment variable of the image contract, both mount points,
// and the mongod port. The image's users only ever see the README, so a
// knob missing from it is as broken as a knob that doesn't work.
//
// This is the one check that touches neither Docker nor the database.
type docsCheck struct{}

func (c *docsCheck) Name() string { return "docs" }

func (c *docsCheck) Description() string {
	return "the README documents every contract env var, mount point, and port"
}

func (c *docsCheck) Run(ctx context.Context, env *Env) error {
	raw, err := os.ReadFile(env.Settings.DocsPath)
	if err != nil {
		return fmt.Errorf("could not read documentation file: %w", err)
	}

	missing := MissingMarkers(string(raw), RequiredMarkers())
	if len(missing) > 0 {
		return fmt.Errorf("%s is missing required content: %s",
			env.Settings.DocsPath, strings.Join(missing, ", "))
	}
	return nil
}

// RequiredMarkers lists every literal substring the documentation must
// contain. The set is derived from the image contract so the docs check
// can never drift from the constants the other checks exercise.
func RequiredMarkers() []string {
	markers := image.EnvVars()
	markers = append(markers,
		image.DataDir,
		image.ConfigFile,
		fmt.Sprintf("%d", image.Port),
	)
	return markers
}

// MissingMarkers returns the markers not present in content, preserving
// marker order. An empty result means the documentation is complete.
func MissingMarkers(content string, markers []string) []string {
	var missing []string
	for _, m := range markers {
		if !strings.Contains(content, m) {
			missing = append(missing, m)
		}
	}
	return missing
}
