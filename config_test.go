package snapdump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/snapdump/introspect"
	"github.com/shibukawa/snapdump/render"
	"github.com/shibukawa/snapdump/state"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
	err := os.WriteFile(configPath, []byte(content), 0o644)
	assert.NoError(t, err)

	return configPath
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	// Test loading config with non-existent file (should return defaults)
	config, err := LoadConfig("non-existent-file.yaml")
	assert.NoError(t, err)
	assert.True(t, config != nil)

	assert.Zero(t, config.Colorize)
	assert.Equal(t, state.DefaultMaxLineLength, config.MaxLineLength)
	assert.Equal(t, render.DefaultNullToken, config.NullToken)
	assert.Equal(t, state.DefaultBoundaries, config.BoundaryPackages)
	assert.Equal(t, introspect.DefaultInstanceScope, config.InstanceScope())
	assert.Equal(t, introspect.DefaultStaticScope, config.StaticScope())
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
colorize: false
max_line_length: 80
null_token: "nil"
boundary_packages:
  - "github.com/example/framework"
default_scope: [instance, public, nonpublic, declared]
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)

	assert.False(t, config.ColorEnabled())
	assert.Equal(t, 80, config.MaxLineLength)
	assert.Equal(t, "nil", config.NullToken)
	assert.Equal(t, []string{"github.com/example/framework"}, config.BoundaryPackages)
	assert.Equal(t, introspect.ScopeFor(true, false), config.InstanceScope())
	assert.Equal(t, render.Style{NullToken: "nil"}, config.Style())
	assert.Equal(t, state.Layout{MaxLineLength: 80, Boundaries: []string{"github.com/example/framework"}}, config.Layout())
}

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
max_line_length: 80
unknown_key: "should cause error"
`)

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SNAPDUMP_NULL", "<none>")
	t.Setenv("SNAPDUMP_SCOPE", "nonpublic")

	configPath := writeConfig(t, `
null_token: "${SNAPDUMP_NULL}"
default_scope: [instance, public, $SNAPDUMP_SCOPE]
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "<none>", config.NullToken)
	assert.Equal(t, introspect.ScopeInstance|introspect.ScopePublic|introspect.ScopeNonPublic, config.InstanceScope())
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative line length", "max_line_length: -1"},
		{"multi-line null token", `null_token: "a\nb"`},
		{"empty boundary", `boundary_packages: ["sync", " "]`},
		{"unknown scope flag", "default_scope: [instance, protected]"},
		{"scope without member kind", "default_scope: [public]"},
		{"scope without visibility", "default_scope: [instance]"},
		{"unexported mutator", "mutator_methods: [advance]"},
		{"mutator with punctuation", `mutator_methods: ["Advance()"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.IsError(t, err, ErrConfigValidation)
		})
	}
}

func TestLoadConfig_MutatorMethods(t *testing.T) {
	config, err := ParseConfig([]byte("mutator_methods: [Advance, Drain]\n"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"Advance", "Drain"}, config.MutatorMethods)
}

func TestConfig_IncludeSwitches(t *testing.T) {
	config, err := ParseConfig([]byte("include_private: true\ninclude_static: true\n"))
	assert.NoError(t, err)

	assert.Equal(t, introspect.ScopeFor(true, true), config.InstanceScope())
	assert.Equal(t, introspect.DefaultStaticScope|introspect.ScopeNonPublic, config.StaticScope())
}

func TestConfig_ColorEnabled(t *testing.T) {
	on, off := true, false

	assert.True(t, (&Config{Colorize: &on}).ColorEnabled())
	assert.False(t, (&Config{Colorize: &off}).ColorEnabled())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SNAPDUMP_TEST_VAR", "value")

	assert.Equal(t, "a-value-b", expandEnvVars("a-${SNAPDUMP_TEST_VAR}-b"))
	assert.Equal(t, "value/x", expandEnvVars("$SNAPDUMP_TEST_VAR/x"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}
