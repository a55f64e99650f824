// Package version exposes the framework build identity recorded with every
// run, so cached results can be traced back to the binary that produced them.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/dyne/version.Version=1.0.0"
package version
