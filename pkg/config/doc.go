// Package config loads deskgrid's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/deskgrid/config.toml and is optional:
// every key has a default (see [Default]). Unknown keys are rejected so a
// typo does not silently fall back to a default.
//
//	[grid]
//	preset = "5x4"
//	pages = 1
//
//	[grid.presets]
//	"4x4" = { rows = 4, columns = 4 }
//
//	[store]
//	driver = "sqlite"
//
//	[cache]
//	ttl = "168h"
package config
