// Package checks defines the verification checks run against the MongoDB
// container image, and the registry that names them.
//
// Each check is a black-box assertion: it launches one or more instances
// of the image with a particular environment-variable combination, waits
// for them to come up, observes behavior through database connections or
// exec sessions, and reports a mismatch as an error. No check inspects or
// depends on the image's internals.
package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// Check is one named verification against the image under test.
type Check interface {
	// Name is the stable identifier used by --only and the suite file.
	Name() string

	// Description is the one-line summary shown by `mongocheck checks`.
	Description() string

	// Run executes the check. A nil return means every assertion held.
	// Containers launched through env are torn down by the suite runner,
	// not by the check itself.
	Run(ctx context.Context, env *Env) error
}

// All returns every registered check in execution order. Cheap, pure
// checks (docs) run first so a missing Docker daemon still yields some
// signal; the expensive multi-container check runs last.
func All() []Check {
	return []Check{
		&docsCheck{},
		&serverReadyCheck{},
		&adminAuthCheck{},
		&userAuthCheck{},
		&userAuthWithAdminCheck{},
		&userPrivilegesCheck{},
		&configFileCheck{},
		&replicaSetCheck{},
	}
}

// Names returns the names of all registered checks, in execution order.
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name())
	}
	return names
}

// Select filters the registry down to the named checks, preserving
// execution order. An empty name list selects everything. Unknown names
// produce an ExitUnknownCheck error listing the valid choices.
func Select(names []string) ([]Check, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Check, len(all))
	for _, c := range all {
		byName[c.Name()] = c
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			valid := Names()
			sort.Strings(valid)
			return nil, model.NewCLIError(
				model.ExitUnknownCheck,
				fmt.Sprintf("unknown check %q (valid: %s)", name, strings.Join(valid, ", ")),
			)
		}
		requested[name] = true
	}

	selected := make([]Check, 0, len(requested))
	for _, c := range all {
		if requested[c.Name()] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
