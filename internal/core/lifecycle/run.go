package lifecycle

import (
	"context"
	"fmt"
	"io"

	"github.com/melih/dockship/internal/core/domain"
)

// CreateLocalContainer runs spec after making sure neither the image nor the
// requested ports are already served by a running container.
func (g *Guard) CreateLocalContainer(ctx context.Context, spec domain.RunSpec) (string, error) {
	if spec.Image == "" {
		spec.Image = g.lastTag
	}
	if spec.Image == "" {
		return "", fmt.Errorf("run needs an image or a previous build")
	}
	if len(spec.Ports) == 0 {
		spec.Ports = g.defaultPorts
	}

	if err := g.EnsurePortFreeAndContainerAbsent(ctx, spec.Image, spec.Ports); err != nil {
		return "", err
	}

	log := g.log.WithField("image", spec.Image)
	log.Info("Creating local container...")
	id, err := g.engine.RunContainer(ctx, spec)
	if err != nil {
		return "", err
	}
	log.WithField("container", shortID(id)).Info("Local container is created")
	return id, nil
}

// Images lists every local image.
func (g *Guard) Images(ctx context.Context) ([]domain.Image, error) {
	return g.engine.ListImages(ctx, "")
}

// Containers lists running containers, or all of them.
func (g *Guard) Containers(ctx context.Context, all bool) ([]domain.Container, error) {
	return g.engine.ListContainers(ctx, domain.ContainerFilter{All: all})
}

// ContainerLogs streams a container's logs.
func (g *Guard) ContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	return g.engine.ContainerLogs(ctx, id)
}
