// Package packager builds one release archive per invocation.
//
// It drives the external cargo toolchain to cross-compile a single package
// for a target triple, stages the binary and the configured auxiliary
// resources into a transient directory, compresses the staged tree into
// <crate-name>-<version-tag>-<target-triple>.tar.gz and writes a checksum
// sidecar next to it. The staging directory is removed on every exit path.
package packager
