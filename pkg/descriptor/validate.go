package descriptor

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
)

var knownEditions = []string{"2015", "2018", "2021", "2024"} //nolint:gochecknoglobals // lookup table

// Warning is a non-fatal problem found in a normalized manifest. Cargo will
// usually reject the manifest, but the decision is left to it.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("manifest warning: %s: %s", w.Field, w.Message)
}

// Validate checks the [package] table of a normalized manifest.
func Validate(doc Document) []Warning {
	var warnings []Warning

	pkg, ok := doc[PackageKey].(map[string]any)
	if !ok {
		return []Warning{{Field: PackageKey, Message: "missing [package] table"}}
	}

	switch version := pkg[VersionKey].(type) {
	case string:
		if _, err := semver.StrictNewVersion(version); err != nil {
			warnings = append(warnings, Warning{
				Field:   "package.version",
				Message: fmt.Sprintf("%q is not a semantic version: %v", version, err),
			})
		}
	case map[string]any:
		// version.workspace = true
	default:
		warnings = append(warnings, Warning{Field: "package.version", Message: "not a string"})
	}

	if edition, ok := pkg[EditionKey].(string); ok && !lo.Contains(knownEditions, edition) {
		warnings = append(warnings, Warning{
			Field:   "package.edition",
			Message: fmt.Sprintf("unknown edition %q", edition),
		})
	}

	return warnings
}
