package nestenv

import (
	"encoding/json"
	"fmt"
)

// ArrayMergeStrategy selects how two arrays combine during a deep merge.
type ArrayMergeStrategy string

const (
	// ArrayReplace keeps the winning side's array outright.
	ArrayReplace ArrayMergeStrategy = "replace"
	// ArrayConcat appends the winning side's elements after the losing
	// side's, duplicates allowed.
	ArrayConcat ArrayMergeStrategy = "concat"
	// ArrayConcatUnique concatenates but drops elements already
	// present, preserving first-occurrence order. Scalars compare by
	// value, objects by serialized structure.
	ArrayConcatUnique ArrayMergeStrategy = "concat-unique"
)

// MergeOptions configures Merge and Override. The zero value uses the
// replace strategy.
type MergeOptions struct {
	ArrayMergeStrategy ArrayMergeStrategy
}

func (o MergeOptions) strategy() ArrayMergeStrategy {
	if o.ArrayMergeStrategy == "" {
		return ArrayReplace
	}

	return o.ArrayMergeStrategy
}

// Merge deep-merges b onto a and returns a fresh object; neither input
// is mutated. Scalar and object-vs-scalar collisions resolve in b's
// favor, object collisions recurse, and array collisions follow the
// configured strategy with a's elements first.
func Merge(a, b ConfigObject, opts MergeOptions) ConfigObject {
	merged := make(ConfigObject, len(a)+len(b))
	for key, value := range a {
		merged[key] = deepCopyValue(value)
	}

	for key, value := range b {
		existing, ok := merged[key]
		if !ok {
			merged[key] = deepCopyValue(value)
			continue
		}

		existingObj, okA := existing.(ConfigObject)
		incomingObj, okB := value.(ConfigObject)
		if okA && okB {
			merged[key] = Merge(existingObj, incomingObj, opts)
			continue
		}

		existingArr, okA := existing.([]any)
		incomingArr, okB := value.([]any)
		if okA && okB {
			merged[key] = mergeArrays(existingArr, incomingArr, opts.strategy())
			continue
		}

		merged[key] = deepCopyValue(value)
	}

	return merged
}

// Override applies defaults under an existing config: config's values
// win, defaults fill the gaps, and matching nested objects recurse.
// Array collisions swap roles relative to Merge (config's elements
// conceptually come first), and under replace a default's array only
// survives when config's is empty. Pure; returns a fresh object.
func Override(defaults, config ConfigObject, opts MergeOptions) ConfigObject {
	result := make(ConfigObject, len(defaults)+len(config))
	for key, value := range config {
		result[key] = deepCopyValue(value)
	}

	for key, defaultValue := range defaults {
		existing, ok := result[key]
		if !ok {
			result[key] = deepCopyValue(defaultValue)
			continue
		}

		existingObj, okC := existing.(ConfigObject)
		defaultObj, okD := defaultValue.(ConfigObject)
		if okC && okD {
			result[key] = Override(defaultObj, existingObj, opts)
			continue
		}

		existingArr, okC := existing.([]any)
		defaultArr, okD := defaultValue.([]any)
		if okC && okD {
			result[key] = overrideArrays(defaultArr, existingArr, opts.strategy())
		}
	}

	return result
}

func mergeArrays(a, b []any, strategy ArrayMergeStrategy) []any {
	switch strategy {
	case ArrayConcat:
		return concatArrays(a, b)
	case ArrayConcatUnique:
		return concatUniqueArrays(a, b)
	default:
		return deepCopyArray(b)
	}
}

func overrideArrays(defaults, config []any, strategy ArrayMergeStrategy) []any {
	switch strategy {
	case ArrayConcat:
		return concatArrays(config, defaults)
	case ArrayConcatUnique:
		return concatUniqueArrays(config, defaults)
	default:
		if len(config) > 0 {
			return deepCopyArray(config)
		}
		return deepCopyArray(defaults)
	}
}

func concatArrays(first, second []any) []any {
	combined := make([]any, 0, len(first)+len(second))
	for _, value := range first {
		combined = append(combined, deepCopyValue(value))
	}
	for _, value := range second {
		combined = append(combined, deepCopyValue(value))
	}

	return combined
}

func concatUniqueArrays(first, second []any) []any {
	combined := make([]any, 0, len(first)+len(second))
	seen := make(map[string]bool, len(first)+len(second))

	for _, value := range first {
		seen[elementKey(value)] = true
		combined = append(combined, deepCopyValue(value))
	}

	for _, value := range second {
		key := elementKey(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, deepCopyValue(value))
	}

	return combined
}

// elementKey derives an equality key for concat-unique: primitives by
// type and value, objects and arrays by their serialized structure.
func elementKey(value any) string {
	switch value.(type) {
	case ConfigObject, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("!%T:%v", value, value)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%T:%v", value, value)
	}
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case ConfigObject:
		copied := make(ConfigObject, len(v))
		for key, field := range v {
			copied[key] = deepCopyValue(field)
		}
		return copied
	case []any:
		return deepCopyArray(v)
	default:
		return v
	}
}

func deepCopyArray(values []any) []any {
	copied := make([]any, len(values))
	for i, value := range values {
		copied[i] = deepCopyValue(value)
	}

	return copied
}
