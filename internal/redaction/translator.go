package redaction

import (
	"regexp"
	"strings"
)

var predicateFilter = regexp.MustCompile(`\[\?\(.*?\)\]`)

// ToXMLPath translates a flat-document path expression into the equivalent
// tree-document path. The rewrite applies six rules, in order:
//
//  1. strip the leading root marker ($)
//  2. replace segment separators (.) with /
//  3. drop predicate filters of the form [?( ... )] entirely
//  4. collapse the attribute marker @/ back to @
//  5. normalize === and == to =
//  6. strip a trailing /value segment
//
// The rewrite is verified only for the single-predicate attribute-by-id
// shape used by existing rules; array indices, nested predicates and quoted
// separators are lossy. A rule's explicit xpath always takes precedence over
// this derivation.
func ToXMLPath(flatPath string) string {
	p := strings.TrimPrefix(flatPath, "$")
	p = strings.ReplaceAll(p, ".", "/")
	p = predicateFilter.ReplaceAllString(p, "")
	p = strings.ReplaceAll(p, "@/", "@")
	p = strings.ReplaceAll(p, "===", "=")
	p = strings.ReplaceAll(p, "==", "=")
	p = strings.TrimSuffix(p, "/value")
	return p
}
