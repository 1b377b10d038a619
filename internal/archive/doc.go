// Package archive produces the compressed release archive from a staged
// directory tree. Entries are written relative to the staging root, so
// extraction reproduces the staged layout without an intermediate prefix.
package archive
