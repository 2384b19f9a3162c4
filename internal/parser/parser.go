// Package parser extracts note references from note content.
package parser

import (
	"regexp"
	"unicode/utf8"
)

// Context window around a reference, in characters, measured from the
// start of the match.
const (
	ContextBefore = 40
	ContextAfter  = 66
)

// noteRefRe matches [[ID]] where ID is a 26-character ULID in Crockford
// base32 (no I, L, O, U).
var noteRefRe = regexp.MustCompile(`\[\[([0-9A-HJKMNP-TV-Z]{26})\]\]`)

// Ref is one reference found in content.
type Ref struct {
	Target  string
	Context string
}

// ScanRefs returns every non-overlapping reference in content, in order of
// appearance, skipping references to selfID. Duplicates are kept; callers
// that key by target get last-match-wins semantics.
func ScanRefs(content, selfID string) []Ref {
	matches := noteRefRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Ref, 0, len(matches))
	for _, m := range matches {
		target := content[m[2]:m[3]]
		if target == selfID {
			continue
		}
		out = append(out, Ref{
			Target:  target,
			Context: contextWindow(content, m[0]),
		})
	}
	return out
}

// contextWindow returns up to ContextBefore runes before pos and up to
// ContextAfter runes from pos onwards. pos is a byte offset on a rune
// boundary; the window never splits a UTF-8 sequence.
func contextWindow(content string, pos int) string {
	start := pos
	for i := 0; i < ContextBefore && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(content[:start])
		start -= size
	}
	end := pos
	for i := 0; i < ContextAfter && end < len(content); i++ {
		_, size := utf8.DecodeRuneInString(content[end:])
		end += size
	}
	return content[start:end]
}
