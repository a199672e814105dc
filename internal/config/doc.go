// Package config loads, validates and watches the toolmux configuration.
//
// The configuration is a single YAML file listing the source servers to
// aggregate plus engine tunables. ${VAR} references are expanded from the
// environment before parsing. The loaded Config is immutable: the engine
// receives it by value and never mutates it; a file change produces a whole
// new Config through the Watcher.
package config
