package iconclass

import "regexp"

// notationPattern matches the Iconclass notation syntax: a leading digit,
// alphanumeric subdivision segments, and optional parenthetical qualifiers
// such as (LION), (...) or (+13), each of which may be followed by further
// subdivision digits.
var notationPattern = regexp.MustCompile(`^[0-9][0-9A-Z]*(\([^()]*\)[0-9A-Z]*)*$`)

// leadingDigits matches the main-division prefix of a notation.
var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// ValidNotation reports whether s is a syntactically well-formed
// Iconclass notation (e.g. "25F", "31A", "52D1", "11H(JEROME)", "71A42(+0)").
func ValidNotation(s string) bool {
	return notationPattern.MatchString(s)
}

// MainDivision returns the grouping key used by the diversity filter:
// the leading run of digits of the notation ("25F" and "25F1" map to "25",
// "62" maps to "62"). Sibling top-level areas like 25 and 26 therefore
// count as distinct divisions. For a malformed notation the first
// character is returned.
func MainDivision(notation string) string {
	if notation == "" {
		return ""
	}
	if m := leadingDigits.FindString(notation); m != "" {
		return m
	}
	return notation[:1]
}
