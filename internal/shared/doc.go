// Package shared holds helpers used by more than one package that belong to
// no single layer.
//
// The testutil subpackage provides the sample indicator dataset used by the
// end-to-end tests and a capturing slog handler for asserting on log output.
package shared
