package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TABULAR_"

// Load reads the catalog file at path, layering defaults, the file and
// TABULAR_ environment variables, in rising priority.
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"default_backend": "memory",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading catalog file %s: %w", path, err)
		}
	}

	// TABULAR_DEFAULT_BACKEND -> default_backend
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var catalog Catalog
	if err := k.Unmarshal("", &catalog); err != nil {
		return nil, fmt.Errorf("unable to decode catalog: %w", err)
	}
	if catalog.Sources == nil {
		catalog.Sources = make(map[string]Source)
	}
	return &catalog, nil
}

// LoadFromDir finds and loads the catalog file in dir.
// Priority: tabular.yaml > tabular.yml.
func LoadFromDir(dir string) (*Catalog, error) {
	path := findConfigFile(dir)
	if path == "" {
		return nil, fmt.Errorf("no tabular.yaml or tabular.yml in %s", dir)
	}
	return Load(path)
}

// findConfigFile returns the catalog file to use under dir, or "".
func findConfigFile(dir string) string {
	for _, name := range []string{"tabular.yaml", "tabular.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} references with environment variable
// values, so catalog files can carry credentials without spelling them
// out. Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
