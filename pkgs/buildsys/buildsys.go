package buildsys

import "context"

// BuildSystem captures shared capabilities of build helpers (CMake for now).
// It keeps the common configure/build lifecycle; implementations add their
// own extras.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	BuildDir(dir string)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}
