package nestenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_stripPrefix(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		prefix    string
		delimiter string
		expected  string
		ok        bool
	}{
		{"no prefix configured", "LOG_LEVEL", "", "_", "LOG_LEVEL", true},
		{"prefix without delimiter appended", "APP_LOG_LEVEL", "APP", "_", "LOG_LEVEL", true},
		{"prefix already carrying delimiter", "APP_LOG_LEVEL", "APP_", "_", "LOG_LEVEL", true},
		{"key without prefix excluded", "OTHER_LOG_LEVEL", "APP", "_", "", false},
		{"custom delimiter", "APP__DB__HOST", "APP", "__", "DB__HOST", true},
		{"prefix equal to key excluded", "APP", "APP", "_", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := stripPrefix(tc.key, tc.prefix, tc.delimiter)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_shouldIncludeField(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		include  []string
		exclude  []string
		expected bool
	}{
		{"no filters", "LOG_LEVEL", nil, nil, true},
		{"include matches", "LOG_LEVEL", []string{"log"}, nil, true},
		{"include is case-insensitive", "LOG_LEVEL", []string{"LoG"}, nil, true},
		{"include misses", "PORT", []string{"log"}, nil, false},
		{"any include pattern suffices", "PORT", []string{"log", "port"}, nil, true},
		{"exclude matches", "SECRET_KEY", nil, []string{"secret"}, false},
		{"exclude misses", "PORT", nil, []string{"secret"}, true},
		{"both filters must pass", "LOG_SECRET", []string{"log"}, []string{"secret"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldIncludeField(tc.key, tc.include, tc.exclude))
		})
	}
}

func Test_splitKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		delimiter string
		expected  []string
	}{
		{"underscore splits maximally", "LOG_FILE_PATH", "_", []string{"LOG", "FILE", "PATH"}},
		{"consecutive underscores dropped", "LOG__PATH", "_", []string{"LOG", "PATH"}},
		{"custom delimiter preserves inner underscores", "DB_HOST__PORT", "__", []string{"DB_HOST", "PORT"}},
		{"no delimiter present", "PORT", "_", []string{"PORT"}},
		{"leading and trailing delimiters", "_PORT_", "_", []string{"PORT"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitKey(tc.key, tc.delimiter))
		})
	}
}

func Test_camelCaseComposition(t *testing.T) {
	t.Run("camelCaseWords", func(t *testing.T) {
		assert.Equal(t, "logFilePath", camelCaseWords([]string{"LOG", "FILE", "PATH"}))
		assert.Equal(t, "port", camelCaseWords([]string{"PORT"}))
		assert.Equal(t, "", camelCaseWords(nil))
	})

	t.Run("segmentToCamelCase", func(t *testing.T) {
		assert.Equal(t, "dbHost", segmentToCamelCase("DB_HOST"))
		assert.Equal(t, "port", segmentToCamelCase("PORT"))
	})

	t.Run("multi-byte first letters survive capitalization", func(t *testing.T) {
		assert.Equal(t, "logÉtat", camelCaseWords([]string{"LOG", "ÉTAT"}))
		assert.Equal(t, "überMode", segmentToCamelCase("ÜBER_MODE"))
	})

	t.Run("groupToCamelCase flattens inner underscores", func(t *testing.T) {
		assert.Equal(t, "dbHostPort", groupToCamelCase([]string{"DB_HOST", "PORT"}))
	})
}
