// config/environment.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileName is the name of the environment file looked up in the base
// directory and in its parent.
const EnvFileName = ".env"

// Environment is the merged view of the process environment and the
// environment files. It is never written back to the process.
type Environment struct {
	values map[string]string
}

// LookupFunc resolves a single configuration key.
type LookupFunc func(key string) (string, bool, error)

// EnvFiles returns the primary and secondary environment file paths for baseDir.
func EnvFiles(baseDir string) (primary, secondary string) {
	primary = filepath.Join(baseDir, EnvFileName)
	secondary = filepath.Join(filepath.Dir(filepath.Clean(baseDir)), EnvFileName)
	return primary, secondary
}

// LoadEnvironment merges environ (KEY=VALUE pairs) with the primary and
// secondary environment files of baseDir. File values only fill keys that are
// still unset, so the process environment wins over both files and the
// primary file wins over the secondary one. Missing files are skipped.
func LoadEnvironment(baseDir string, environ []string) (Environment, error) {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}

	primary, secondary := EnvFiles(baseDir)
	for _, path := range []string{primary, secondary} {
		fileValues, err := readEnvFile(path)
		if err != nil {
			return Environment{}, err
		}
		for key, value := range fileValues {
			if _, exists := values[key]; !exists {
				values[key] = value
			}
		}
	}

	return NewEnvironment(values), nil
}

func readEnvFile(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: cannot stat env file %s: %v", ErrImproperlyConfigured, path, err)
	}
	if info.IsDir() {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse env file %s: %v", ErrImproperlyConfigured, path, err)
	}
	customLog.Debugf("Config: loaded %d values from %s", len(values), path)
	return values, nil
}

// NewEnvironment builds an Environment from an explicit map. The map is copied.
func NewEnvironment(values map[string]string) Environment {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Environment{values: copied}
}

// Lookup implements LookupFunc.
func (e Environment) Lookup(key string) (string, bool, error) {
	value, ok := e.values[key]
	return value, ok, nil
}

// IsSet reports whether key was supplied by any source.
func (e Environment) IsSet(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Map returns a copy of the merged values.
func (e Environment) Map() map[string]string {
	copied := make(map[string]string, len(e.values))
	for k, v := range e.values {
		copied[k] = v
	}
	return copied
}
