package nestenv

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// Loader memoizes forward transforms. A Loader is built with fixed
// default options; each Load merges per-call overrides onto them and
// caches the result per (source identity, option fingerprint), so
// repeated identical calls return the same object by reference.
//
// The cache keys on source identity, not content: two structurally
// equal but distinct source maps occupy independent entries. It lives
// exactly as long as the Loader and is released by Reset. Safe for
// concurrent use.
type Loader struct {
	mu       sync.Mutex
	defaults []Option
	ambient  EnvSource
	cache    map[uintptr]*loaderEntry
}

// loaderEntry is one registration-table slot. It retains the source
// map so the map's address stays pinned while the entry lives;
// otherwise a collected source could free its address for a new map
// and hand that map a false cache hit.
type loaderEntry struct {
	source  EnvSource
	results map[string]ConfigObject
}

// NewLoader returns a Loader with the given default options.
func NewLoader(defaults ...Option) *Loader {
	return &Loader{
		defaults: defaults,
		cache:    make(map[uintptr]*loaderEntry),
	}
}

// Load runs the forward transform against the effective source: the
// WithSource override if any, otherwise the process environment
// captured once per Loader so its cache identity stays stable.
func (l *Loader) Load(overrides ...Option) (ConfigObject, error) {
	combined := make([]Option, 0, len(l.defaults)+len(overrides))
	combined = append(combined, l.defaults...)
	combined = append(combined, overrides...)

	o := resolveOptions(combined)

	l.mu.Lock()
	defer l.mu.Unlock()

	source := o.source
	if source == nil {
		if l.ambient == nil {
			l.ambient = ambientSource()
		}
		source = l.ambient
	}

	identity := sourceIdentity(source)
	fingerprint := optionsFingerprint(o)

	entry := l.cache[identity]
	if entry != nil {
		if cached, ok := entry.results[fingerprint]; ok {
			return cached, nil
		}
	}

	config, err := Objectify(source, combined...)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		entry = &loaderEntry{
			source:  source,
			results: make(map[string]ConfigObject),
		}
		l.cache[identity] = entry
	}
	entry.results[fingerprint] = config

	return config, nil
}

// Reset releases every cached result, including the captured process
// environment, so the next Load recomputes from scratch.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ambient = nil
	l.cache = make(map[uintptr]*loaderEntry)
}

// sourceIdentity is the cache handle for a source map. Go maps are
// reference types, so the map's pointer distinguishes distinct sources
// even when their contents are equal.
func sourceIdentity(source EnvSource) uintptr {
	return reflect.ValueOf(source).Pointer()
}

// optionsFingerprint serializes the option set that affects the
// transform's output: prefix, delimiter, coercion flag, schema, and
// the three pattern lists. Every part is length-prefixed and lists
// carry their element count, so no crafted option value can collide
// with another option set's fingerprint.
func optionsFingerprint(o options) string {
	var b strings.Builder

	part := func(s string) {
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	list := func(items []string) {
		part(strconv.Itoa(len(items)))
		for _, item := range items {
			part(item)
		}
	}

	part(o.prefix)
	part(o.delimiter)
	part(cast.ToString(o.coerce))
	part(schemaFingerprint(o.schema))
	list(o.include)
	list(o.exclude)
	list(o.nonNestingPrefixes)

	return b.String()
}

// schemaFingerprint serializes a declared shape's full identity: not
// just its sorted leaf paths but each leaf's wrapper flags, default
// value, and validation rules, so two same-shaped schemas with
// different rules or defaults never share a cache entry.
func schemaFingerprint(shape any) string {
	if shape == nil {
		return "-"
	}

	paths, validating := extractSchemaPaths(shape)
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = fmt.Sprintf("%s;%t;%t;%t;%T=%v;%+v",
			p.pathKey, p.optional, p.nullable, p.hasDefault, p.defaultValue, p.defaultValue, p.rules)
	}

	kind := "hint"
	if validating {
		kind = "schema"
	}

	return kind + ":" + strings.Join(parts, "|")
}
