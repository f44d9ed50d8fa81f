package nestenv

import (
	"reflect"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Schema is a declared configuration shape that both guides nesting and
// validates the built object. Build one from Object, Field, and the
// Optional/Nullable/Default wrappers; leaf rules are ozzo-validation
// rules and their failures reach the caller unmodified.
type Schema interface {
	collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath)
}

// Fields maps field names to their sub-schemas inside an Object.
type Fields map[string]Schema

// schemaPath is one leaf of a declared shape: the field-name chain from
// root to leaf plus the validation behavior attached along the way.
type schemaPath struct {
	path         []string
	pathKey      string
	rules        []validation.Rule
	optional     bool
	nullable     bool
	hasDefault   bool
	defaultValue any
}

// leafModifiers carries wrapper effects (optional, nullable, default)
// down to the leaves they apply to.
type leafModifiers struct {
	optional     bool
	nullable     bool
	hasDefault   bool
	defaultValue any
}

type objectSchema struct {
	fields Fields
}

// Object declares a nested object with the given fields.
func Object(fields Fields) Schema {
	return objectSchema{fields: fields}
}

func (s objectSchema) collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath) {
	for name, field := range s.fields {
		field.collectPaths(append(prefix, name), mods, out)
	}
}

type fieldSchema struct {
	rules []validation.Rule
}

// Field declares a leaf value validated by the given rules. A leaf with
// no rules only declares the path.
func Field(rules ...validation.Rule) Schema {
	return fieldSchema{rules: rules}
}

func (s fieldSchema) collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath) {
	path := make([]string, len(prefix))
	copy(path, prefix)

	*out = append(*out, schemaPath{
		path:         path,
		pathKey:      strings.Join(path, "."),
		rules:        s.rules,
		optional:     mods.optional,
		nullable:     mods.nullable,
		hasDefault:   mods.hasDefault,
		defaultValue: mods.defaultValue,
	})
}

type optionalSchema struct {
	inner Schema
}

// Optional marks a sub-schema as allowed to be absent.
func Optional(inner Schema) Schema {
	return optionalSchema{inner: inner}
}

func (s optionalSchema) collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath) {
	mods.optional = true
	s.inner.collectPaths(prefix, mods, out)
}

type nullableSchema struct {
	inner Schema
}

// Nullable marks a sub-schema as allowed to hold a nil value.
func Nullable(inner Schema) Schema {
	return nullableSchema{inner: inner}
}

func (s nullableSchema) collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath) {
	mods.nullable = true
	s.inner.collectPaths(prefix, mods, out)
}

type defaultSchema struct {
	inner Schema
	value any
}

// Default supplies a value filled in when the sub-schema's leaves are
// absent from the source.
func Default(inner Schema, value any) Schema {
	return defaultSchema{inner: inner, value: value}
}

func (s defaultSchema) collectPaths(prefix []string, mods leafModifiers, out *[]schemaPath) {
	mods.hasDefault = true
	mods.defaultValue = s.value
	s.inner.collectPaths(prefix, mods, out)
}

// extractSchemaPaths walks a declared shape and returns its leaf paths.
// The shape is either a validating Schema or a plain nested
// map[string]any used as a structural hint; anything else yields no
// paths. The second return reports whether the shape validates.
func extractSchemaPaths(shape any) ([]schemaPath, bool) {
	var paths []schemaPath

	switch s := shape.(type) {
	case Schema:
		s.collectPaths(nil, leafModifiers{}, &paths)
		sortPaths(paths)
		return paths, true
	case map[string]any:
		collectHintPaths(s, nil, &paths)
		sortPaths(paths)
		return paths, false
	}

	return nil, false
}

// collectHintPaths walks a plain hint object. Keys starting with "_" or
// "~" and function-valued entries are metadata, not fields, and are
// skipped. Any non-map value is a leaf.
func collectHintPaths(hint map[string]any, prefix []string, out *[]schemaPath) {
	for name, value := range hint {
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "~") {
			continue
		}

		if value != nil && reflect.ValueOf(value).Kind() == reflect.Func {
			continue
		}

		if nested, ok := value.(map[string]any); ok {
			collectHintPaths(nested, append(prefix, name), out)
			continue
		}

		path := make([]string, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = name

		*out = append(*out, schemaPath{path: path, pathKey: strings.Join(path, ".")})
	}
}

func sortPaths(paths []schemaPath) {
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].pathKey < paths[j].pathKey
	})
}

// pathInterpretations enumerates every way to partition a segment list
// into contiguous groups, one camelCase label per group. Each of the
// n-1 gaps either splits or continues, so there are exactly 2^(n-1)
// candidates, emitted in increasing binary-mask order (mask bit i set
// means a split after segment i). Cost is exponential in segment
// count; realistic keys stay well under ten segments.
func pathInterpretations(segments []string) [][]string {
	n := len(segments)
	if n == 0 {
		return nil
	}

	interpretations := make([][]string, 0, 1<<(n-1))
	for mask := 0; mask < 1<<(n-1); mask++ {
		var groups []string
		start := 0
		for gap := 0; gap < n-1; gap++ {
			if mask>>gap&1 == 1 {
				groups = append(groups, groupToCamelCase(segments[start:gap+1]))
				start = gap + 1
			}
		}
		groups = append(groups, groupToCamelCase(segments[start:]))
		interpretations = append(interpretations, groups)
	}

	return interpretations
}

// findMatchingSchemaPath returns the first interpretation of segments
// whose dot-joined path is a declared leaf path.
func findMatchingSchemaPath(segments []string, known map[string]schemaPath) ([]string, bool) {
	for _, candidate := range pathInterpretations(segments) {
		if _, ok := known[strings.Join(candidate, ".")]; ok {
			return candidate, true
		}
	}

	return nil, false
}

// buildWithSchema constructs the object under a declared shape: each
// entry's segmentation is disambiguated against the shape's leaf
// paths, and entries matching no path flatten the way the heuristic
// builder would. A validating shape then validates the built object.
func buildWithSchema(entries []parsedEntry, o options) (ConfigObject, error) {
	paths, validating := extractSchemaPaths(o.schema)

	known := make(map[string]schemaPath, len(paths))
	for _, p := range paths {
		known[p.pathKey] = p
	}

	config := make(ConfigObject, len(entries))
	for _, entry := range entries {
		value := entryValue(entry, o)

		if match, ok := findMatchingSchemaPath(entry.segments, known); ok {
			deepSet(config, match, value)
			continue
		}

		config[groupToCamelCase(entry.segments)] = value
	}

	if validating {
		if err := validateConfig(config, paths); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// validateConfig applies each leaf's wrapper semantics and rules to the
// built object. Defaults fill absent leaves before rules run; optional
// and nullable leaves skip validation when absent or nil. Failures are
// returned as validation.Errors keyed by leaf path.
func validateConfig(config ConfigObject, paths []schemaPath) error {
	errs := validation.Errors{}

	for _, leaf := range paths {
		value, present := lookupPath(config, leaf.path)

		if !present {
			if leaf.hasDefault {
				deepSet(config, leaf.path, leaf.defaultValue)
				value = leaf.defaultValue
			} else if leaf.optional || leaf.nullable {
				continue
			}
		}

		if leaf.nullable && value == nil {
			continue
		}

		if err := validation.Validate(value, leaf.rules...); err != nil {
			errs[leaf.pathKey] = err
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// lookupPath walks config along path, reporting whether a value is
// present at the full depth.
func lookupPath(config ConfigObject, path []string) (any, bool) {
	current := config
	for i, key := range path {
		value, ok := current[key]
		if !ok {
			return nil, false
		}

		if i == len(path)-1 {
			return value, true
		}

		next, ok := value.(ConfigObject)
		if !ok {
			return nil, false
		}
		current = next
	}

	return nil, false
}
