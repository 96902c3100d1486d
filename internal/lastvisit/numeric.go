package lastvisit

import (
	"regexp"
	"strings"
	"unicode"
)

// numericLiteral matches the string numeric literal grammar browsers use when
// converting a string to a number: signed decimals with an optional exponent,
// signed Infinity, and unsigned binary, octal or hex integers.
var numericLiteral = regexp.MustCompile(
	`^(?:[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)|0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+)$`,
)

// IsNumericString reports whether s is a usable petition id: not blank, and
// numeric as a whole once surrounding whitespace is dropped. It accepts more
// than real ids ("12.5", "-3", "1e3") on purpose.
func IsNumericString(s string) bool {
	trimmed := strings.TrimFunc(s, isJSSpace)
	if trimmed == "" {
		return false
	}
	return numericLiteral.MatchString(trimmed)
}

// isJSSpace matches the whitespace and line terminators a browser trims
// before converting a string to a number. Unlike unicode.IsSpace it excludes
// U+0085 and includes U+FEFF.
func isJSSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// RedirectURL returns the petition page address for id, tagged with the marker
// so the target page clears the stored id.
func RedirectURL(id string) string {
	return "https://" + SiteHost + "/petition/" + id + "?" + QueryParamKey + "=true"
}

// PetitionID returns the third "/"-separated segment of pathname and whether
// it is numeric. For "/petition/777" that is "777".
func PetitionID(pathname string) (string, bool) {
	segments := strings.Split(pathname, "/")
	if len(segments) < 3 {
		return "", false
	}
	id := segments[2]
	return id, IsNumericString(id)
}
