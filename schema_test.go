package nestenv

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_extractSchemaPaths(t *testing.T) {
	t.Run("validating schema", func(t *testing.T) {
		schema := Object(Fields{
			"port": Field(validation.Required),
			"log": Object(Fields{
				"level": Field(),
				"path":  Field(),
			}),
		})

		paths, validating := extractSchemaPaths(schema)
		require.True(t, validating)

		keys := pathKeys(paths)
		assert.Equal(t, []string{"log.level", "log.path", "port"}, keys)
	})

	t.Run("wrappers unwrap to inner leaves", func(t *testing.T) {
		schema := Object(Fields{
			"port":  Optional(Field(validation.Min(1000))),
			"token": Nullable(Field()),
			"level": Default(Field(), "info"),
		})

		paths, validating := extractSchemaPaths(schema)
		require.True(t, validating)
		require.Len(t, paths, 3)

		byKey := make(map[string]schemaPath, len(paths))
		for _, p := range paths {
			byKey[p.pathKey] = p
		}

		assert.True(t, byKey["port"].optional)
		assert.True(t, byKey["token"].nullable)
		assert.True(t, byKey["level"].hasDefault)
		assert.Equal(t, "info", byKey["level"].defaultValue)
	})

	t.Run("plain hint object", func(t *testing.T) {
		hint := map[string]any{
			"log": map[string]any{
				"level": "info",
			},
			"port":    0,
			"_hidden": "skipped",
			"~meta":   "skipped",
			"helper":  func() {},
		}

		paths, validating := extractSchemaPaths(hint)
		require.False(t, validating)
		assert.Equal(t, []string{"log.level", "port"}, pathKeys(paths))
	})

	t.Run("unrecognized shape yields no paths", func(t *testing.T) {
		paths, validating := extractSchemaPaths("not a shape")
		assert.False(t, validating)
		assert.Empty(t, paths)
	})
}

func Test_pathInterpretations(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		assert.Equal(t, [][]string{{"port"}}, pathInterpretations([]string{"PORT"}))
	})

	t.Run("two segments yield two candidates in mask order", func(t *testing.T) {
		got := pathInterpretations([]string{"LOG", "LEVEL"})
		assert.Equal(t, [][]string{
			{"logLevel"},
			{"log", "level"},
		}, got)
	})

	t.Run("three segments yield four candidates", func(t *testing.T) {
		got := pathInterpretations([]string{"DB", "POOL", "SIZE"})
		assert.Equal(t, [][]string{
			{"dbPoolSize"},
			{"db", "poolSize"},
			{"dbPool", "size"},
			{"db", "pool", "size"},
		}, got)
	})

	t.Run("count is exponential in segment count", func(t *testing.T) {
		segments := strings.Split("A_B_C_D_E_F", "_")
		assert.Len(t, pathInterpretations(segments), 1<<(len(segments)-1))
	})
}

func Test_Objectify_SchemaGuided(t *testing.T) {
	t.Run("schema overrides the frequency heuristic", func(t *testing.T) {
		// A lone LOG_LEVEL would flatten under the heuristic; the
		// declared leaf path log.level forces nesting.
		schema := Object(Fields{
			"log": Object(Fields{"level": Field()}),
		})

		config, err := Objectify(EnvSource{"LOG_LEVEL": "debug"}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"log": ConfigObject{"level": "debug"}}, config)
	})

	t.Run("ambiguous segmentation resolved against leaf paths", func(t *testing.T) {
		schema := Object(Fields{
			"db": Object(Fields{"poolSize": Field()}),
		})

		config, err := Objectify(EnvSource{"DB_POOL_SIZE": "10"}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"db": ConfigObject{"poolSize": 10}}, config)
	})

	t.Run("first matching interpretation wins", func(t *testing.T) {
		// Both logLevel and log.level are declared; the flat grouping
		// has the lower mask and wins.
		schema := Object(Fields{
			"logLevel": Field(),
			"log":      Object(Fields{"level": Field()}),
		})

		config, err := Objectify(EnvSource{"LOG_LEVEL": "debug"}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"logLevel": "debug"}, config)
	})

	t.Run("unmatched key falls back to flattening", func(t *testing.T) {
		schema := Object(Fields{
			"log": Object(Fields{"level": Field()}),
		})

		config, err := Objectify(EnvSource{
			"LOG_LEVEL":   "debug",
			"PORT_NUMBER": "8080",
		}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{
			"log":        ConfigObject{"level": "debug"},
			"portNumber": 8080,
		}, config)
	})

	t.Run("plain hint guides nesting without validation", func(t *testing.T) {
		hint := map[string]any{
			"log": map[string]any{"level": ""},
		}

		config, err := Objectify(EnvSource{"LOG_LEVEL": "debug"}, WithSchema(hint))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"log": ConfigObject{"level": "debug"}}, config)
	})
}

func Test_Objectify_SchemaValidation(t *testing.T) {
	t.Run("failure propagates to the caller", func(t *testing.T) {
		schema := Object(Fields{
			"port": Field(validation.Required, validation.Min(1000)),
		})

		config, err := Objectify(EnvSource{"PORT": "80"}, WithSchema(schema))
		require.Error(t, err)
		assert.Nil(t, config)

		var errs validation.Errors
		require.ErrorAs(t, err, &errs)
		assert.Contains(t, errs, "port")
	})

	t.Run("missing required leaf fails", func(t *testing.T) {
		schema := Object(Fields{
			"port": Field(validation.Required),
		})

		_, err := Objectify(EnvSource{}, WithSchema(schema))
		require.Error(t, err)
	})

	t.Run("optional leaf may be absent", func(t *testing.T) {
		schema := Object(Fields{
			"port": Optional(Field(validation.Min(1000))),
		})

		config, err := Objectify(EnvSource{}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{}, config)
	})

	t.Run("default fills an absent leaf", func(t *testing.T) {
		schema := Object(Fields{
			"log": Object(Fields{
				"level": Default(Field(), "info"),
			}),
		})

		config, err := Objectify(EnvSource{}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"log": ConfigObject{"level": "info"}}, config)
	})

	t.Run("passing validation returns the built object", func(t *testing.T) {
		schema := Object(Fields{
			"port": Field(validation.Required, validation.Min(1000)),
		})

		config, err := Objectify(EnvSource{"PORT": "8080"}, WithSchema(schema))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{"port": 8080}, config)
	})

	t.Run("hint shapes skip validation entirely", func(t *testing.T) {
		hint := map[string]any{"port": 0}

		config, err := Objectify(EnvSource{}, WithSchema(hint))
		require.NoError(t, err)
		assert.Equal(t, ConfigObject{}, config)
	})
}

func pathKeys(paths []schemaPath) []string {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = p.pathKey
	}

	return keys
}
