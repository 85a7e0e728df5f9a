// Package config loads rangebrush settings.
//
// Settings come from three layers, applied in order:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. RANGEBRUSH_* environment variables, optionally seeded from a .env file
//
// The result is validated before it is returned. A Watcher re-runs the
// same pipeline whenever the config file changes on disk.
//
// Example file:
//
//	[brush]
//	range = [0, 100]
//	value = [20, 80]
//	step = 5
//
//	[ui.colors]
//	selection = "#1FBAD6"
//
//	[link]
//	listen = "127.0.0.1:7070"
package config
