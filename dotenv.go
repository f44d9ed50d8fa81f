package nestenv

import (
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// FromEnviron builds an EnvSource from os.Environ-format entries
// ("KEY=value"). Entries without an "=" are ignored.
func FromEnviron(environ []string) EnvSource {
	source := make(EnvSource, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		source[key] = value
	}

	return source
}

// ambientSource snapshots the process environment. Kept at the outer
// call boundary so the core transforms stay pure and testable.
func ambientSource() EnvSource {
	return FromEnviron(os.Environ())
}

// Load objectifies the current process environment.
func Load(opts ...Option) (ConfigObject, error) {
	return Objectify(ambientSource(), opts...)
}

// LoadFile reads a .env file and objectifies its entries. A missing or
// unreadable file logs a warning and proceeds with an empty source, so
// callers degrade gracefully instead of failing startup.
func LoadFile(path string, opts ...Option) (ConfigObject, error) {
	source, err := godotenv.Read(path)
	if err != nil {
		log.Printf("\033[33m[Warning]:\033[0m Could not read env file [%s: %v]. Using empty source.", path, err)

		source = make(map[string]string)
	}

	return Objectify(source, opts...)
}

// WriteFile flattens config through the reverse transform and writes
// it as a .env file, one KEY=value line per entry.
func WriteFile(path string, config ConfigObject) error {
	return godotenv.Write(Envy(config), path)
}

// Environ flattens config into sorted os.Environ-format entries,
// suitable for exec.Cmd.Env.
func Environ(config ConfigObject) []string {
	flat := Envy(config)

	entries := make([]string, 0, len(flat))
	for key, value := range flat {
		entries = append(entries, key+"="+value)
	}
	sort.Strings(entries)

	return entries
}
