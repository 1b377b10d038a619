// Package toolchain wraps the external cargo build tool.
//
// It exposes the two operations the packager needs: generating the dependency
// lock file when absent, and cross-compiling a package for a target triple in
// release mode. The toolchain is consumed as a black box; its exit code and
// its own diagnostic output are the error surface.
package toolchain
