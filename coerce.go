package nestenv

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// [trueWords] and [falseWords] are matched case-insensitively during scalar coercion.
var (
	trueWords  = map[string]bool{"true": true, "yes": true, "y": true}
	falseWords = map[string]bool{"false": true, "no": true, "n": true}
)

// coerceValue converts a raw environment value into its typed form.
// A value without commas is coerced as a single scalar. A value with
// commas is split, each piece trimmed, empty pieces dropped, and the
// remaining pieces scalar-coerced into an ordered slice. A single
// surviving piece collapses back to a scalar; no surviving pieces
// collapse to the empty string.
//
// coerceValue is total: it never fails, every input string maps to
// some value.
func coerceValue(raw string) any {
	if !strings.Contains(raw, ",") {
		return coerceScalar(raw)
	}

	pieces := make([]string, 0, strings.Count(raw, ",")+1)
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}

	switch len(pieces) {
	case 0:
		return ""
	case 1:
		// Single-element collapse: "only," is the scalar "only", not a list.
		return coerceScalar(pieces[0])
	}

	values := make([]any, len(pieces))
	for i, piece := range pieces {
		values[i] = coerceScalar(piece)
	}

	return values
}

// coerceScalar converts one comma-free string: boolean words first,
// then integers, then floats, otherwise the string is kept as-is.
func coerceScalar(raw string) any {
	lower := strings.ToLower(raw)
	if trueWords[lower] {
		return true
	}

	if falseWords[lower] {
		return false
	}

	if intPattern.MatchString(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
		// Out of int range; keep the original string rather than lose digits.
		return raw
	}

	if floatPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}

	return raw
}
