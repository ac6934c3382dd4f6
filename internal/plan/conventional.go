package plan

import (
	"regexp"
	"strings"
)

// conventionalHeaderRegex matches a conventional-commit header line:
// type(scope)!: subject. Grounded on the same shape the teacher's
// domain/changes package parses commit headers with.
var conventionalHeaderRegex = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?(!)?\s*:\s*(.+)$`)

// conventionalKind extracts the commit type ("feat", "fix", ...) from a
// commit message's subject line. ok is false when the header doesn't
// match conventional-commit form at all, which is this planner's
// Size.Failure trigger.
func conventionalKind(message string) (kind string, ok bool) {
	subject := message
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		subject = message[:i]
	}
	m := conventionalHeaderRegex.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}
