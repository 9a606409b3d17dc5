package snapdump

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/snapdump/introspect"
	"github.com/shibukawa/snapdump/render"
	"github.com/shibukawa/snapdump/state"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultConfigFile is the configuration file looked up by the CLI.
const DefaultConfigFile = "snapdump.yaml"

// Config represents the snapdump configuration
type Config struct {
	// Colorize decorates null and boolean tokens with ANSI colors. Pointer to distinguish
	// between unset and false. When unset, colors follow terminal detection.
	Colorize *bool `yaml:"colorize"`

	// MaxLineLength is the longest output still collapsed onto a single line
	MaxLineLength int `yaml:"max_line_length"`

	// NullToken is printed for nil values
	NullToken string `yaml:"null_token"`

	// BoundaryPackages end base type walking
	BoundaryPackages []string `yaml:"boundary_packages"`

	// DefaultScope lists scope flags (instance, static, public, nonpublic, declared) used
	// when a state dump is requested without explicit scope
	DefaultScope []string `yaml:"default_scope"`

	// IncludePrivate and IncludeStatic extend the default scope when DefaultScope is empty
	IncludePrivate bool `yaml:"include_private"`
	IncludeStatic  bool `yaml:"include_static"`

	// MutatorMethods extends introspect.DefaultMutators with method names that must never
	// be read as properties
	MutatorMethods []string `yaml:"mutator_methods"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML document. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand environment variables before validation so that scope names can come from the environment
	expandConfigEnvVars(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.MaxLineLength < 0 {
		return fmt.Errorf("%w: max_line_length must be non-negative, got %d", ErrConfigValidation, config.MaxLineLength)
	}

	if strings.ContainsAny(config.NullToken, "\r\n") {
		return fmt.Errorf("%w: null_token must be a single line", ErrConfigValidation)
	}

	for i, pkg := range config.BoundaryPackages {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("%w: boundary_packages[%d] is empty", ErrConfigValidation, i)
		}
	}

	for i, name := range config.MutatorMethods {
		if !token.IsIdentifier(name) || !token.IsExported(name) {
			return fmt.Errorf("%w: mutator_methods[%d] %q is not an exported method name", ErrConfigValidation, i, name)
		}
	}

	if len(config.DefaultScope) > 0 {
		scope, err := introspect.ParseScope(config.DefaultScope)
		if err != nil {
			return fmt.Errorf("%w: default_scope: %w", ErrConfigValidation, err)
		}

		if !scope.Has(introspect.ScopeInstance) && !scope.Has(introspect.ScopeStatic) {
			return fmt.Errorf("%w: default_scope must select instance or static members", ErrConfigValidation)
		}

		if !scope.Has(introspect.ScopePublic) && !scope.Has(introspect.ScopeNonPublic) {
			return fmt.Errorf("%w: default_scope must select public or nonpublic members", ErrConfigValidation)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Colorize:         nil, // Follow terminal detection
		MaxLineLength:    state.DefaultMaxLineLength,
		NullToken:        render.DefaultNullToken,
		BoundaryPackages: slices.Clone(state.DefaultBoundaries),
		DefaultScope:     nil,
		IncludePrivate:   false,
		IncludeStatic:    false,
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.MaxLineLength == 0 {
		config.MaxLineLength = state.DefaultMaxLineLength
	}

	if config.NullToken == "" {
		config.NullToken = render.DefaultNullToken
	}

	// An explicit empty list disables boundaries, only a missing key picks the defaults
	if config.BoundaryPackages == nil {
		config.BoundaryPackages = slices.Clone(state.DefaultBoundaries)
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in every string setting
func expandConfigEnvVars(config *Config) {
	config.NullToken = expandEnvVars(config.NullToken)

	for i, pkg := range config.BoundaryPackages {
		config.BoundaryPackages[i] = expandEnvVars(pkg)
	}

	for i, name := range config.DefaultScope {
		config.DefaultScope[i] = expandEnvVars(name)
	}

	for i, name := range config.MutatorMethods {
		config.MutatorMethods[i] = expandEnvVars(name)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ColorEnabled resolves the colorize setting, falling back to terminal detection
func (c *Config) ColorEnabled() bool {
	if c.Colorize == nil {
		return !color.NoColor
	}

	return *c.Colorize
}

// InstanceScope returns the scope used by state dumps of values without explicit scope.
// An invalid DefaultScope is ignored here; New and ParseConfig reject it.
func (c *Config) InstanceScope() introspect.Scope {
	if len(c.DefaultScope) > 0 {
		if scope, err := introspect.ParseScope(c.DefaultScope); err == nil {
			return scope
		}
	}

	return introspect.ScopeFor(c.IncludePrivate, c.IncludeStatic)
}

// StaticScope returns the scope used by state dumps of types without explicit scope
func (c *Config) StaticScope() introspect.Scope {
	scope := introspect.DefaultStaticScope
	if c.IncludePrivate {
		scope |= introspect.ScopeNonPublic
	}

	return scope
}

// Style returns the renderer style described by the configuration
func (c *Config) Style() render.Style {
	return render.Style{Colorize: c.ColorEnabled(), NullToken: c.NullToken}
}

// Layout returns the state layout described by the configuration
func (c *Config) Layout() state.Layout {
	return state.Layout{MaxLineLength: c.MaxLineLength, Boundaries: c.BoundaryPackages}
}
