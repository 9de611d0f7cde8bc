// Package mathtex canonicalizes LaTeX-ish strings emitted by the solver
// service and gates them behind a strict renderability check. The service is
// not guaranteed to emit valid LaTeX (double slashes from naive escaping,
// mixed delimiter styles), so every string is cleaned and validated before a
// presenter may render it.
package mathtex

import (
	"regexp"
	"strings"

	"github.com/go-latex/latex"
)

var (
	sizingRe   = regexp.MustCompile(`\\left|\\right`)
	slashRunRe = regexp.MustCompile(`/{2,}`)
	fracRe     = regexp.MustCompile(`\\frac\{([^}]*)\}\{([^}]*)\}`)
	delimRepl  = strings.NewReplacer(`\(`, "(", `\)`, ")")
)

// Normalize canonicalizes s into renderable LaTeX:
//   - strips \left and \right sizing directives
//   - collapses runs of two or more slashes into one
//   - re-emits well-formed \frac{a}{b} groups unchanged
//   - converts the inline delimiters \( and \) into plain parentheses
//   - trims surrounding whitespace
//
// Normalize is idempotent.
func Normalize(s string) string {
	s = sizingRe.ReplaceAllString(s, "")
	s = slashRunRe.ReplaceAllString(s, "/")
	s = fracRe.ReplaceAllString(s, `\frac{$1}{$2}`)
	s = delimRepl.Replace(s)
	return strings.TrimSpace(s)
}

// IsRenderable reports whether s parses as math notation under a strict
// LaTeX grammar. Presenters must render s only when this returns true and
// otherwise show a visible invalid-content marker with the raw text.
// It never panics, whatever the remote service emits.
func IsRenderable(s string) (ok bool) {
	if !balancedGroups(s) {
		return false
	}
	// The parser panics on constructs it does not support; treat that as
	// not renderable.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := latex.ParseExpr(s)
	return err == nil
}

// balancedGroups checks that every unescaped { has a matching } and no }
// closes an unopened group. The parser does not reject unterminated groups
// on its own.
func balancedGroups(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
