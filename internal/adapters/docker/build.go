package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/archive"
)

// BuildImage builds tag from the directory contextDir.
func (a *Adapter) BuildImage(ctx context.Context, contextDir, tag, dockerfile string) error {
	// Create Build Context (Tar)
	tar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:        []string{tag},
		Dockerfile:  dockerfile,
		Remove:      true, // Remove intermediate containers
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The build only finishes once the body is drained; failures arrive as
	// error messages inside the stream.
	blog := a.log.WithField("image", tag)
	if err := streamMessages(resp.Body, func(line string) { blog.Debug(line) }); err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	return nil
}
