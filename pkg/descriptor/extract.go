package descriptor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yaklabco/cargo-wop/pkg/errs"
)

// Markers delimiting the manifest inside the leading doc comment.
const (
	CommentPrefix     = "//!"
	ManifestStartLine = "//! ```cargo"
	ManifestEndLine   = "//! ```"
)

var (
	// ErrIncompleteDescriptor is returned when the input ends inside the
	// manifest block.
	ErrIncompleteDescriptor = fmt.Errorf("%w: incomplete manifest", errs.ErrDescriptor)

	// ErrInvalidDescriptor is returned for a second opening marker or a
	// non-comment line inside the manifest block.
	ErrInvalidDescriptor = fmt.Errorf("%w: invalid manifest", errs.ErrDescriptor)
)

type parseState int

const (
	stateStart parseState = iota
	stateDocComment
	stateManifest
	numParseStates
)

type lineKind int

const (
	lineDocComment lineKind = iota
	lineManifestStart
	lineManifestEnd
	lineOther
	numLineKinds
)

func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, ManifestStartLine):
		return lineManifestStart
	case strings.HasPrefix(line, ManifestEndLine):
		return lineManifestEnd
	case strings.HasPrefix(line, CommentPrefix):
		return lineDocComment
	default:
		return lineOther
	}
}

type lineAction int

const (
	actSkip    lineAction = iota // consume the line
	actAppend                    // consume the line into the manifest text
	actFinish                    // the manifest text is complete
	actAbandon                   // code started before any manifest: no manifest
	actReject                    // malformed manifest block
)

type transition struct {
	next   parseState
	action lineAction
}

//nolint:gochecknoglobals // transition table, never mutated
var transitions = [numParseStates][numLineKinds]transition{
	stateStart: {
		lineDocComment:    {stateDocComment, actSkip},
		lineManifestStart: {stateManifest, actSkip},
		lineManifestEnd:   {stateStart, actSkip},
		lineOther:         {stateStart, actAbandon},
	},
	stateDocComment: {
		lineDocComment:    {stateDocComment, actSkip},
		lineManifestStart: {stateManifest, actSkip},
		lineManifestEnd:   {stateDocComment, actSkip},
		lineOther:         {stateDocComment, actAbandon},
	},
	stateManifest: {
		lineDocComment:    {stateManifest, actAppend},
		lineManifestStart: {stateManifest, actReject},
		lineManifestEnd:   {stateManifest, actFinish},
		lineOther:         {stateManifest, actReject},
	},
}

// Extract returns the manifest text embedded in the leading doc comment of
// the source read from r. The result is empty if the leading comment holds
// no manifest block.
func Extract(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1<<20)

	state := stateStart
	var text strings.Builder
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		step := transitions[state][classifyLine(line)]

		switch step.action {
		case actSkip:
		case actAppend:
			text.WriteString(stripCommentPrefix(line))
			text.WriteByte('\n')
		case actFinish:
			return text.String(), nil
		case actAbandon:
			return "", nil
		case actReject:
			return "", fmt.Errorf("%w: unexpected %q on line %d", ErrInvalidDescriptor, line, lineNo)
		}
		state = step.next
	}
	if err := scanner.Err(); err != nil {
		return "", errs.IOf("can't read source: %w", err)
	}

	if state == stateManifest {
		return "", ErrIncompleteDescriptor
	}
	return "", nil
}

// ExtractFile extracts and parses the manifest embedded in the file at path.
// A file without a manifest block yields an empty document.
func ExtractFile(path string) (Document, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errs.IOf("can't open %s: %w", path, err)
	}
	defer func() { _ = fd.Close() }()

	text, err := Extract(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Embed is the inverse of Extract: it wraps manifest text in the opening and
// closing markers and prefixes every line with the comment prefix.
func Embed(text string) string {
	var out strings.Builder
	out.WriteString(ManifestStartLine)
	out.WriteByte('\n')
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			out.WriteString(CommentPrefix)
		} else {
			out.WriteString(CommentPrefix + " " + line)
		}
		out.WriteByte('\n')
	}
	out.WriteString(ManifestEndLine)
	out.WriteByte('\n')
	return out.String()
}

// stripCommentPrefix removes the comment prefix and at most one following
// space, preserving any further indentation.
func stripCommentPrefix(line string) string {
	line = strings.TrimPrefix(line, CommentPrefix)
	return strings.TrimPrefix(line, " ")
}
