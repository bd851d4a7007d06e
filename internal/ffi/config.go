package ffi

import (
	"fmt"
	"os"
	"strings"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

const (
	envConfig = "LIBGOBIND_CONFIG"
	envDebug  = "LIBGOBIND_DEBUG"

	envPathPrefix = "LIBGOBIND_"
	envPathSuffix = "_PATH"
)

// Config redirects recognized libraries to specific files and toggles
// debug logging. It cannot add library names.
type Config struct {
	Debug bool `yaml:"debug"`
	// Libraries maps a recognized library name to the file to open.
	Libraries map[LibraryName]string `yaml:"libraries"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorc.With(gerrors.ErrConfig,
			errorc.String(gerrors.FieldPath, path),
			errorc.String(gerrors.FieldCause, err.Error()),
		)
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes and validates YAML config data. source names the
// data in errors.
func ParseConfig(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errorc.With(gerrors.ErrConfig,
			errorc.String(gerrors.FieldPath, source),
			errorc.String(gerrors.FieldCause, err.Error()),
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &cfg, nil
}

// Validate rejects overrides for unrecognized libraries and empty paths.
func (c *Config) Validate() error {
	for name, path := range c.Libraries {
		if !name.Known() {
			return errorc.With(gerrors.ErrConfig,
				errorc.String(gerrors.FieldLibrary, string(name)),
				errorc.String(gerrors.FieldCause, "unknown library name"),
			)
		}
		if strings.TrimSpace(path) == "" {
			return errorc.With(gerrors.ErrConfig,
				errorc.String(gerrors.FieldLibrary, string(name)),
				errorc.String(gerrors.FieldCause, "empty path"),
			)
		}
	}
	return nil
}

// LibraryPath returns the override for name, if any.
func (c *Config) LibraryPath(name LibraryName) (string, bool) {
	if c == nil {
		return "", false
	}
	path, ok := c.Libraries[name]
	return path, ok && path != ""
}

// ConfigFromEnv builds a Config from the environment:
//   - LIBGOBIND_CONFIG names a YAML file loaded first
//   - LIBGOBIND_DEBUG enables debug logging when set to a true value
//   - LIBGOBIND_<NAME>_PATH overrides the file for one library, e.g.
//     LIBGOBIND_GOBJECT_2_0_PATH
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv(envConfig)); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if isTruthy(os.Getenv(envDebug)) {
		cfg.Debug = true
	}

	for _, name := range Libraries() {
		if path := strings.TrimSpace(os.Getenv(envPathVar(name))); path != "" {
			if cfg.Libraries == nil {
				cfg.Libraries = make(map[LibraryName]string)
			}
			cfg.Libraries[name] = path
		}
	}
	return cfg, nil
}

// envPathVar returns the override variable for name.
func envPathVar(name LibraryName) string {
	var b strings.Builder
	b.WriteString(envPathPrefix)
	for _, r := range strings.ToUpper(string(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString(envPathSuffix)
	return b.String()
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
