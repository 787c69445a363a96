// Package shared holds cross-cutting helpers that belong to no single
// layer of the service.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on what the code under test logged. It must stay free of
// business logic and of dependencies on other internal packages.
package shared
