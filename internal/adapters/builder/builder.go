package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// Adapter implements ports.BuildContextProvider. Local directories are used
// in place; git URLs are cloned into a temporary directory first.
type Adapter struct {
	log      logrus.FieldLogger
	progress io.Writer
}

func NewBuilderAdapter(log logrus.FieldLogger, progress io.Writer) *Adapter {
	if progress == nil {
		progress = io.Discard
	}
	return &Adapter{log: log, progress: progress}
}

// Prepare resolves source to a build directory and makes the helper files
// executable.
func (a *Adapter) Prepare(ctx context.Context, source string, executables []string) (string, func(), error) {
	noop := func() {}

	dir, cleanup := source, noop
	if IsGitURL(source) {
		tmpDir, err := a.clone(ctx, source)
		if err != nil {
			return "", noop, err
		}
		dir = tmpDir
		cleanup = func() { os.RemoveAll(tmpDir) }
	} else {
		info, err := os.Stat(source)
		if err != nil {
			return "", noop, fmt.Errorf("failed to read build context: %w", err)
		}
		if !info.IsDir() {
			return "", noop, fmt.Errorf("build context %s is not a directory", source)
		}
	}

	files := make([]string, 0, len(executables))
	for _, f := range executables {
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		files = append(files, f)
	}
	if err := MakeExecutable(files...); err != nil {
		cleanup()
		return "", noop, err
	}
	return dir, cleanup, nil
}

// clone makes a shallow clone of repoURL in a fresh temporary directory.
func (a *Adapter) clone(ctx context.Context, repoURL string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "dockship-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	a.log.WithField("repo", repoURL).Info("Cloning build context")
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:      repoURL,
		Progress: a.progress,
		Depth:    1, // Shallow clone for speed
	})
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("failed to clone repo: %w", err)
	}
	return tmpDir, nil
}

// IsGitURL reports whether source names a remote git repository.
func IsGitURL(source string) bool {
	for _, prefix := range []string{"https://", "http://", "git://", "ssh://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasSuffix(source, ".git")
}

// MakeExecutable adds an execute bit for every class that can already read
// the file.
func MakeExecutable(files ...string) error {
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", f, err)
		}
		mode := info.Mode()
		mode |= (mode & 0o444) >> 2
		if err := os.Chmod(f, mode); err != nil {
			return fmt.Errorf("failed to chmod %s: %w", f, err)
		}
	}
	return nil
}
