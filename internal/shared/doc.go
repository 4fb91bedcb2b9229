// Package shared holds helpers used by tests across the dashboard packages.
//
// The testutil subpackage provides a recording slog handler for asserting on
// log output and a helper that writes fixture export files into a temporary
// directory.
package shared
