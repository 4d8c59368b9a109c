package config

import (
	"github.com/spf13/viper"
)

// Default permissions for generated directories and files
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// SetDefaults configures default values for all configuration options.
// The layout mirrors the ccxt repository: TypeScript sources under ts/,
// generated Python, PHP and JavaScript alongside.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("registry.path", "exchanges.json")
	v.SetDefault("registry.key", "ws")

	v.SetDefault("source.classes", "./ts/src/pro/")
	v.SetDefault("source.tests", "./ts/src/pro/test/")
	v.SetDefault("source.type_surface", "./ts/ccxt.d.ts")

	v.SetDefault("targets.python.folder", "./python/ccxt/pro/")
	v.SetDefault("targets.python.tests", "./python/ccxt/pro/test/")
	v.SetDefault("targets.php.folder", "./php/pro/")
	v.SetDefault("targets.php.tests", "./php/pro/test/")
	v.SetDefault("targets.js.folder", "./js/src/pro/")
	v.SetDefault("targets.js.tests", "./js/src/pro/test/")

	v.SetDefault("hierarchy.rest_marker", "Rest")
	v.SetDefault("hierarchy.strict", false)

	v.SetDefault("fanout.workers", 0)
	v.SetDefault("log.json", false)
}
