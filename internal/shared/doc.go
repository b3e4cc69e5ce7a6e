// Package shared holds helpers used across lobstat packages that belong to
// no single domain package.
//
// The testutil subpackage provides a capturing slog handler so tests can
// assert on warnings emitted by the normalizer, loaders and batch runner.
package shared
