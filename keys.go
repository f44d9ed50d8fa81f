package nestenv

import (
	"strings"
	"unicode/utf8"
)

// stripPrefix removes the configured prefix (plus its trailing delimiter)
// from key. The second return value is false when the key does not carry
// the prefix, in which case the entry is excluded from processing.
// An empty prefix matches every key unchanged.
func stripPrefix(key, prefix, delimiter string) (string, bool) {
	if prefix == "" {
		return key, true
	}

	full := prefix
	if !strings.HasSuffix(full, delimiter) {
		full += delimiter
	}

	if !strings.HasPrefix(key, full) {
		return "", false
	}

	return key[len(full):], true
}

// shouldIncludeField applies the include and exclude filters to a
// normalized key. Matching is case-insensitive substring containment.
// Both filters apply independently: with an include list the key must
// contain at least one pattern, and with an exclude list it must
// contain none.
func shouldIncludeField(key string, include, exclude []string) bool {
	lower := strings.ToLower(key)

	if len(include) > 0 {
		matched := false
		for _, pattern := range include {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range exclude {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return false
		}
	}

	return true
}

// splitKey cuts a normalized key into segments. With the default "_"
// delimiter every underscore splits (maximal granularity). With a custom
// multi-character delimiter only that literal string splits, so
// underscores survive inside a segment and are camel-cased later.
// Empty segments are dropped either way.
func splitKey(key, delimiter string) []string {
	parts := strings.Split(key, delimiter)

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}

	return segments
}

// segmentWords splits a single segment on its internal underscores,
// dropping empty words.
func segmentWords(segment string) []string {
	return splitKey(segment, "_")
}

// camelCaseWords joins an ordered word list into one camelCase
// identifier: first word lowercased, every following word capitalized.
// Capitalization splits on rune boundaries so multi-byte first letters
// survive intact.
func camelCaseWords(words []string) string {
	var b strings.Builder
	for i, word := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(word))
			continue
		}
		_, size := utf8.DecodeRuneInString(word)
		b.WriteString(strings.ToUpper(word[:size]))
		b.WriteString(strings.ToLower(word[size:]))
	}

	return b.String()
}

// segmentToCamelCase camel-cases one segment on its internal
// underscores, e.g. "DB_HOST" -> "dbHost".
func segmentToCamelCase(segment string) string {
	return camelCaseWords(segmentWords(segment))
}

// groupToCamelCase composes a contiguous group of segments into one
// camelCase label, flattening each segment's internal underscores first.
func groupToCamelCase(segments []string) string {
	words := make([]string, 0, len(segments))
	for _, segment := range segments {
		words = append(words, segmentWords(segment)...)
	}

	return camelCaseWords(words)
}
