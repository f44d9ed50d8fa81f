package nestenv

import (
	"sort"
	"strings"
)

// EnvSource is the flat string-keyed input of the forward transform.
// Absent entries are modeled by key omission; an EnvSource never holds
// placeholder values for unset variables.
type EnvSource map[string]string

// ConfigObject is the nested output of the forward transform. Values
// are strings, ints, float64s, bools, []any slices, or nested
// ConfigObjects. It is always freshly constructed and never aliases
// the EnvSource it was built from.
type ConfigObject = map[string]any

// defaultNonNestingPrefixes lists first segments exempt from the
// nest-on-repetition heuristic, so MAX_CONNECTIONS and MAX_TIMEOUT
// stay flat instead of collecting under a spurious "max" object.
var defaultNonNestingPrefixes = []string{"max", "min", "is", "enable", "disable"}

type options struct {
	prefix             string
	delimiter          string
	coerce             bool
	include            []string
	exclude            []string
	nonNestingPrefixes []string
	schema             any
	source             EnvSource
}

// Option configures the forward transform.
type Option func(*options)

// WithPrefix restricts processing to keys carrying the given prefix
// and strips it before segmentation.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithDelimiter replaces the default "_" segment delimiter. A
// multi-character delimiter preserves underscores inside segments for
// camelCase composition.
func WithDelimiter(delimiter string) Option {
	return func(o *options) { o.delimiter = delimiter }
}

// WithoutCoercion keeps every value as its raw string instead of
// applying scalar and array coercion.
func WithoutCoercion() Option {
	return func(o *options) { o.coerce = false }
}

// WithInclude keeps only keys containing at least one of the given
// patterns (case-insensitive substring match).
func WithInclude(patterns ...string) Option {
	return func(o *options) { o.include = patterns }
}

// WithExclude drops keys containing any of the given patterns
// (case-insensitive substring match).
func WithExclude(patterns ...string) Option {
	return func(o *options) { o.exclude = patterns }
}

// WithNonNestingPrefixes replaces the default non-nesting first
// segments (max, min, is, enable, disable).
func WithNonNestingPrefixes(prefixes ...string) Option {
	return func(o *options) { o.nonNestingPrefixes = prefixes }
}

// WithSchema supplies a declared shape that guides nesting. The shape
// is either a validating Schema built from Object/Field or a plain
// nested map[string]any used only as a structural hint.
func WithSchema(shape any) Option {
	return func(o *options) { o.schema = shape }
}

// WithSource sets the environment source a Loader resolves when no
// per-call source is given. Objectify ignores it; its source is always
// the explicit argument.
func WithSource(source EnvSource) Option {
	return func(o *options) { o.source = source }
}

func resolveOptions(opts []Option) options {
	resolved := options{
		delimiter:          "_",
		coerce:             true,
		nonNestingPrefixes: defaultNonNestingPrefixes,
	}
	for _, opt := range opts {
		opt(&resolved)
	}

	return resolved
}

// parsedEntry is one EnvSource entry after prefix stripping, filtering,
// and delimiter splitting. Recomputed on every call, never cached.
type parsedEntry struct {
	normalizedKey string
	segments      []string
	rawValue      string
}

// parseEntries normalizes and filters the source into the entry set
// both builders operate on. Entries are sorted by normalized key so the
// output is deterministic regardless of map iteration order.
func parseEntries(source EnvSource, o options) []parsedEntry {
	entries := make([]parsedEntry, 0, len(source))
	for key, value := range source {
		normalized, ok := stripPrefix(key, o.prefix, o.delimiter)
		if !ok {
			continue
		}

		if !shouldIncludeField(normalized, o.include, o.exclude) {
			continue
		}

		segments := splitKey(normalized, o.delimiter)
		if len(segments) == 0 {
			continue
		}

		entries = append(entries, parsedEntry{
			normalizedKey: normalized,
			segments:      segments,
			rawValue:      value,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].normalizedKey < entries[j].normalizedKey
	})

	return entries
}

// Objectify transforms a flat environment source into a nested
// configuration object.
//
// Without a schema, nesting is decided per key by sibling frequency:
// keys sharing a repeated first segment nest under it, lone keys and
// keys whose first segment is a non-nesting prefix flatten into one
// camelCase key. With a schema, each key's segmentation is
// disambiguated against the schema's declared leaf paths, and a
// validating schema additionally validates the built object; its
// validation error is returned unmodified and is the only failure
// mode. Everything else is best-effort and total.
func Objectify(source EnvSource, opts ...Option) (ConfigObject, error) {
	o := resolveOptions(opts)
	entries := parseEntries(source, o)

	if o.schema != nil {
		return buildWithSchema(entries, o)
	}

	return buildHeuristic(entries, o), nil
}

// buildHeuristic is the two-pass nest-vs-flatten builder. Pass one
// counts first segments across the whole entry set; pass two nests an
// entry only when its first segment repeats and is not a non-nesting
// prefix. Both passes see the same entry set, so sibling decisions are
// consistent within a single call.
func buildHeuristic(entries []parsedEntry, o options) ConfigObject {
	frequency := make(map[string]int, len(entries))
	for _, entry := range entries {
		frequency[strings.ToLower(entry.segments[0])]++
	}

	nonNesting := make(map[string]bool, len(o.nonNestingPrefixes))
	for _, prefix := range o.nonNestingPrefixes {
		nonNesting[strings.ToLower(prefix)] = true
	}

	config := make(ConfigObject, len(entries))
	for _, entry := range entries {
		value := entryValue(entry, o)
		first := strings.ToLower(entry.segments[0])

		if frequency[first] > 1 && !nonNesting[first] {
			path := make([]string, len(entry.segments))
			for i, segment := range entry.segments {
				path[i] = segmentToCamelCase(segment)
			}
			deepSet(config, path, value)
			continue
		}

		config[groupToCamelCase(entry.segments)] = value
	}

	return config
}

func entryValue(entry parsedEntry, o options) any {
	if !o.coerce {
		return entry.rawValue
	}

	return coerceValue(entry.rawValue)
}

// deepSet stores value under path, creating intermediate objects as
// needed. A non-object already sitting on an intermediate key is
// displaced by a fresh object; a leaf collision is last-write-wins.
func deepSet(config ConfigObject, path []string, value any) {
	current := config
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(ConfigObject)
		if !ok {
			next = make(ConfigObject)
			current[key] = next
		}
		current = next
	}

	current[path[len(path)-1]] = value
}
