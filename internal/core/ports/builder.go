package ports

import "context"

// BuildContextProvider prepares a directory the engine can build from.
type BuildContextProvider interface {
	// Prepare resolves source (a local directory or a git URL) to a
	// directory and grants execute permission to the listed helper files,
	// which are relative to that directory. cleanup is never nil.
	Prepare(ctx context.Context, source string, executables []string) (dir string, cleanup func(), err error)
}
