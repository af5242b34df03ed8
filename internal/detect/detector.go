// Package detect decides whether a remote signature actually needs rewriting.
// Both sides of the comparison are normalized first, so trivial formatting
// differences introduced by the remote write path do not cause perpetual
// false-positive updates. This is what keeps repeated runs idempotent: an
// already-synchronized identity classifies as skipped, not processed.
package detect

import (
	"html"
	"regexp"
	"strings"

	"github.com/mailsig/sigsync/internal/template"
)

var (
	interTagWhitespace = regexp.MustCompile(`>\s+<`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// NeedsUpdate reports whether the desired signature differs from the current
// one after both pass the same normalization pipeline.
func NeedsUpdate(current, desired string) bool {
	return normalize(current) != normalize(desired)
}

// normalize applies, in order: HTML entity decoding to a canonical form,
// font-quote normalization, removal of whitespace between tags, and collapsing
// of remaining whitespace runs. Entities decode first so that quote entities
// are visible to the font-quote rewrite.
func normalize(s string) string {
	s = html.UnescapeString(s)
	s = template.NormalizeFontQuotes(s)
	s = interTagWhitespace.ReplaceAllString(s, "><")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
