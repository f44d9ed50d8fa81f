/*
Package nestenv converts between flat environment variables and nested,
typed configuration objects, in both directions.

# Overview

nestenv turns a flat map of SCREAMING_SNAKE_CASE environment variables
into a nested camelCase configuration object, coercing values to
booleans, integers, floats, and comma-separated arrays along the way.
The reverse transform flattens a configuration object back into a flat
map ready for .env serialization. Deep merge and override utilities
combine configuration objects with a configurable array strategy.

# Quick Start

Given the environment:

	LOG_LEVEL=debug
	LOG_PATH=/var/log/app.log
	PORT_NUMBER=8080
	MAX_CONNECTIONS=100

objectify it:

	config, err := nestenv.Load()
	// config = map[string]any{
	//     "log":            map[string]any{"level": "debug", "path": "/var/log/app.log"},
	//     "portNumber":     8080,
	//     "maxConnections": 100,
	// }

Keys sharing a repeated first segment (LOG_LEVEL, LOG_PATH) nest under
one object; lone keys (PORT_NUMBER) flatten into a single camelCase
key. First segments like "max", "min", "is", "enable", and "disable"
never nest, so MAX_CONNECTIONS stays maxConnections instead of
becoming a spurious "max" object.

# Schemas

A declared shape overrides the frequency heuristic and resolves
ambiguous keys. Leaves carry ozzo-validation rules, and validation
failures from the built object propagate to the caller unmodified:

	schema := nestenv.Object(nestenv.Fields{
		"log": nestenv.Object(nestenv.Fields{
			"level": nestenv.Field(validation.Required),
		}),
		"port": nestenv.Field(validation.Required, validation.Min(1000)),
	})

	config, err := nestenv.Objectify(source, nestenv.WithSchema(schema))

A plain map[string]any works as a structure-only hint with no
validation.

# Reverse Transform

Envy flattens a configuration object back to SCREAMING_SNAKE_CASE:

	flat := nestenv.Envy(config)
	// flat = map[string]string{"LOG_LEVEL": "debug", "PORT_NUMBER": "8080", ...}

Envy(Objectify(source)) round-trips the source whenever no lossy
coercion occurred (no leading zeros, no float reformatting).

# Merging

Merge and Override combine two configuration objects recursively.
Arrays combine per strategy: replace, concat, or concat-unique.

	combined := nestenv.Merge(base, extra, nestenv.MergeOptions{
		ArrayMergeStrategy: nestenv.ArrayConcatUnique,
	})

# Struct Decoding

Decode maps a configuration object onto a struct for typed access:

	type Config struct {
		Log struct {
			Level string `required:"true"`
			Path  string
		}
		PortNumber int `default:"8080"`
	}

	var cfg Config
	err := nestenv.Decode(config, &cfg)

# Caching

NewLoader returns a memoizing loader: repeated Load calls with the
same source and options return the same object by reference.

	loader := nestenv.NewLoader(nestenv.WithPrefix("APP"))
	config, err := loader.Load()

# Files

LoadFile and WriteFile bridge to .env files through joho/godotenv. A
missing file logs a warning and degrades to an empty source rather
than failing startup.
*/
package nestenv
