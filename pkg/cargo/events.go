package cargo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// ReasonCompilerArtifact tags events describing produced files.
const ReasonCompilerArtifact = "compiler-artifact"

const maxEventSize = 16 * 1024 * 1024

type event struct {
	Reason    *string   `json:"reason"`
	PackageID *string   `json:"package_id"`
	Filenames *[]string `json:"filenames"`
}

// ParseBuildOutput reads cargo's JSON event stream and returns the files of
// every compiler-artifact event belonging to the package name. Malformed
// events are errors: they mean cargo's output format changed.
func ParseBuildOutput(r io.Reader, name string) ([]string, error) {
	var artifacts []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize) //nolint:mnd // initial buffer
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, contractError(lineNo, "%w", err)
		}
		if ev.Reason == nil {
			return nil, contractError(lineNo, "missing reason")
		}
		if *ev.Reason != ReasonCompilerArtifact {
			continue
		}
		if ev.PackageID == nil {
			return nil, contractError(lineNo, "missing package_id")
		}
		if ev.Filenames == nil {
			return nil, contractError(lineNo, "missing filenames")
		}
		if !MatchesPackage(*ev.PackageID, name) {
			continue
		}
		artifacts = append(artifacts, *ev.Filenames...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: can't read cargo output: %w", errs.ErrProcess, err)
	}
	return artifacts, nil
}

// MatchesPackage reports whether a cargo package id names the package.
// Both the legacy "name version (source)" form and the package id spec
// form "source#name@version" are recognized. The name must be followed by
// its separator, so "demo" does not match "demo-utils".
func MatchesPackage(packageID, name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(packageID, name+" ") {
		return true
	}
	_, fragment, ok := strings.Cut(packageID, "#")
	return ok && strings.HasPrefix(fragment, name+"@")
}

func contractError(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%w: cargo output contract changed: event %d: %w", errs.ErrProcess, lineNo, fmt.Errorf(format, args...))
}
