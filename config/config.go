package config

// Config represents the generator configuration
type Config struct {
	// Requires is an optional semver constraint on the wsgen version
	// (e.g. ">= 0.3.0, < 1.0.0"). Development builds skip the check.
	Requires  string                  `mapstructure:"requires" toml:"requires,omitempty"`
	Registry  RegistryConfig          `mapstructure:"registry" toml:"registry"`
	Source    SourceConfig            `mapstructure:"source" toml:"source"`
	Targets   map[string]TargetConfig `mapstructure:"targets" toml:"targets"`
	Hierarchy HierarchyConfig         `mapstructure:"hierarchy" toml:"hierarchy"`
	Fanout    FanoutConfig            `mapstructure:"fanout" toml:"fanout"`
	Log       LogConfig               `mapstructure:"log" toml:"log"`
}

// RegistryConfig locates the list of units eligible for generation
type RegistryConfig struct {
	Path string `mapstructure:"path" toml:"path"` // JSON or YAML document
	Key  string `mapstructure:"key" toml:"key"`   // gjson path / top-level YAML key holding the id list
}

// SourceConfig locates the canonical TypeScript tree
type SourceConfig struct {
	Classes     string `mapstructure:"classes" toml:"classes"`           // <id>.ts class files
	Tests       string `mapstructure:"tests" toml:"tests"`               // contains Exchange/ and base/
	TypeSurface string `mapstructure:"type_surface" toml:"type_surface"` // ambient .d.ts with the pro namespace block
}

// TargetConfig holds output folders for one target language
type TargetConfig struct {
	Folder string `mapstructure:"folder" toml:"folder"`
	Tests  string `mapstructure:"tests" toml:"tests"`
}

// HierarchyConfig controls base-class resolution
type HierarchyConfig struct {
	RestMarker string `mapstructure:"rest_marker" toml:"rest_marker"`
	// Strict rejects parent names that are not plain identifiers instead of
	// treating them as direct streaming bases
	Strict bool `mapstructure:"strict" toml:"strict"`
}

// FanoutConfig configures multiprocess mode
type FanoutConfig struct {
	Workers int `mapstructure:"workers" toml:"workers"` // 0 = number of logical CPUs
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// Target returns the folders configured for a target language.
func (c *Config) Target(name string) (TargetConfig, bool) {
	tc, ok := c.Targets[name]
	return tc, ok
}
