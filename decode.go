package nestenv

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

var (
	errTargetMustBePointer         = errors.New("target must be a pointer")
	errTargetMustBePointerToStruct = errors.New("target must be a pointer to struct")
	errMissingRequiredField        = errors.New("missing required field")
	errExpectedNestedObject        = errors.New("expected nested object")
)

// Decode maps a ConfigObject onto a struct. Fields match config keys
// by the `nestenv` tag when present, otherwise by the field name with
// its first letter lowercased. Nested structs recurse into nested
// objects. Supported field types mirror the coerced value space:
// string, signed and unsigned integers, floats, bool, time.Duration,
// slices of those, and string-keyed maps.
//
// Struct tags:
//
//	nestenv  - config key for the field          `nestenv:"portNumber"`
//	default  - raw value coerced when the key is absent  `default:"8080"`
//	required - fail when absent and no default   `required:"true"`
func Decode(config ConfigObject, target any) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr {
		return errTargetMustBePointer
	}

	if value.Elem().Kind() != reflect.Struct {
		return errTargetMustBePointerToStruct
	}

	return decodeStruct(config, value.Elem())
}

func decodeStruct(config ConfigObject, structVal reflect.Value) error {
	typ := structVal.Type()

	for i := 0; i < structVal.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		key := field.Tag.Get("nestenv")
		if key == "" {
			key = fieldKey(field.Name)
		}

		value, ok := config[key]
		if !ok {
			if def, hasDefault := field.Tag.Lookup("default"); hasDefault {
				value, ok = coerceValue(def), true
			}
		}

		if !ok {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("%w: field=%s key=%s", errMissingRequiredField, field.Name, key)
			}
			continue
		}

		if err := setField(field, fieldVal, value); err != nil {
			return err
		}
	}

	return nil
}

// fieldKey derives the config key for an untagged field: the field
// name with its first letter lowercased, matching the camelCase keys
// the forward transform produces.
func fieldKey(name string) string {
	return strings.ToLower(name[:1]) + name[1:]
}

// setField converts value into fieldVal based on the field's kind.
// Unsupported kinds are skipped silently.
//
//nolint:exhaustive // only the kinds the value space can produce are handled.
func setField(field reflect.StructField, fieldVal reflect.Value, value any) error {
	switch fieldVal.Kind() {
	case reflect.Struct:
		nested, ok := value.(ConfigObject)
		if !ok {
			return fmt.Errorf("%w for field '%s', got %T", errExpectedNestedObject, field.Name, value)
		}
		return decodeStruct(nested, fieldVal)

	case reflect.String:
		str, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("invalid string for field '%s': %w", field.Name, err)
		}
		fieldVal.SetString(str)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntField(field, fieldVal, value)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUintField(field, fieldVal, value)

	case reflect.Float32, reflect.Float64:
		floatVal, err := cast.ToFloat64E(value)
		if err != nil {
			return fmt.Errorf("invalid float for field '%s': %w", field.Name, err)
		}
		fieldVal.SetFloat(floatVal)
		return nil

	case reflect.Bool:
		boolVal, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("invalid bool for field '%s': %w", field.Name, err)
		}
		fieldVal.SetBool(boolVal)
		return nil

	case reflect.Slice:
		return setSliceField(field, fieldVal, value)

	case reflect.Map:
		return setMapField(field, fieldVal, value)
	}

	return nil
}

// setIntField sets a signed integer, treating time.Duration fields
// specially so "30s"-style values decode.
func setIntField(field reflect.StructField, fieldVal reflect.Value, value any) error {
	if fieldVal.Type().PkgPath() == "time" && fieldVal.Type().Name() == "Duration" {
		dur, err := cast.ToDurationE(value)
		if err != nil {
			return fmt.Errorf("invalid duration for field '%s': %w", field.Name, err)
		}
		fieldVal.SetInt(int64(dur))
		return nil
	}

	intVal, err := cast.ToInt64E(value)
	if err != nil {
		return fmt.Errorf("invalid int for field '%s': %w", field.Name, err)
	}

	if fieldVal.OverflowInt(intVal) {
		return fmt.Errorf("invalid int for field '%s': value %d overflows %s", field.Name, intVal, fieldVal.Type())
	}

	fieldVal.SetInt(intVal)
	return nil
}

func setUintField(field reflect.StructField, fieldVal reflect.Value, value any) error {
	uintVal, err := cast.ToUint64E(value)
	if err != nil {
		return fmt.Errorf("invalid uint for field '%s': %w", field.Name, err)
	}

	if fieldVal.OverflowUint(uintVal) {
		return fmt.Errorf("invalid uint for field '%s': value %d overflows %s", field.Name, uintVal, fieldVal.Type())
	}

	fieldVal.SetUint(uintVal)
	return nil
}

// setSliceField sets a slice field from an array value. A scalar value
// becomes a one-element slice, mirroring the forward transform's
// single-element collapse.
func setSliceField(field reflect.StructField, fieldVal reflect.Value, value any) error {
	elements, ok := value.([]any)
	if !ok {
		elements = []any{value}
	}

	slice := reflect.MakeSlice(fieldVal.Type(), len(elements), len(elements))
	for i, element := range elements {
		if err := setField(field, slice.Index(i), element); err != nil {
			return fmt.Errorf("at index %d: %w", i, err)
		}
	}

	fieldVal.Set(slice)
	return nil
}

// setMapField sets a string-keyed map field from a nested object.
func setMapField(field reflect.StructField, fieldVal reflect.Value, value any) error {
	if fieldVal.Type().Key().Kind() != reflect.String {
		return nil // Unsupported map key type.
	}

	nested, ok := value.(ConfigObject)
	if !ok {
		return fmt.Errorf("%w for field '%s', got %T", errExpectedNestedObject, field.Name, value)
	}

	result := reflect.MakeMapWithSize(fieldVal.Type(), len(nested))
	for key, element := range nested {
		converted := reflect.New(fieldVal.Type().Elem()).Elem()
		if err := setField(field, converted, element); err != nil {
			return fmt.Errorf("at key '%s': %w", key, err)
		}
		result.SetMapIndex(reflect.ValueOf(key), converted)
	}

	fieldVal.Set(result)
	return nil
}
