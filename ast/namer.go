package ast

import (
	"strconv"
	"strings"
	"unicode"
)

// Namer allocates unique exported identifiers for standalone
// declarations. The used-name set grows monotonically over one build;
// given the same allocation sequence it reproduces the same names.
type Namer struct {
	used map[string]bool
}

func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Allocate turns candidate into an exported identifier, disambiguates
// it against every name handed out before, and records it.
func (nm *Namer) Allocate(candidate string) string {
	name := SafeIdent(candidate)
	if !nm.used[name] {
		nm.used[name] = true
		return name
	}
	for i := 1; ; i++ {
		alt := name + strconv.Itoa(i)
		if !nm.used[alt] {
			nm.used[alt] = true
			return alt
		}
	}
}

// SafeIdent converts free text into an exported identifier: fragments
// split on non-alphanumerics, each capitalized, digits kept. A leading
// digit is prefixed and an empty result falls back to "Untitled".
func SafeIdent(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteRune(r)
			upper = true
		default:
			upper = true
		}
	}
	out := b.String()
	if out == "" {
		return "Untitled"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out
}

// idName derives a name candidate from a $id value: the last path
// segment with any fragment and ".json" suffix removed.
func idName(id string) string {
	if id == "" {
		return ""
	}
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimRight(id, "/")
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	id = strings.TrimSuffix(id, ".json")
	return id
}
