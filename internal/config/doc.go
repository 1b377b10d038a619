// Package config defines the packaging inputs and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the crate name, version tag, target triple and build
// package selector, plus optional knobs (resources, output and target
// directories, toolchain binary, timeout) with sane defaults.
package config
