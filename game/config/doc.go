// Package config loads game configurations from a directory of JSON and
// YAML files. The file name without its extension is the config ID used
// when creating sessions; a file named "default" overrides the built-in
// classic ruleset. Parsed configs are cached and validated on load.
package config
