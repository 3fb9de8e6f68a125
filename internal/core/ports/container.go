package ports

import (
	"context"
	"io"

	"github.com/melih/dockship/internal/core/domain"
)

// ContainerEngine defines the engine operations the lifecycle guard relies on.
// This interface allows us to switch between Docker, Podman, or a test double
// without changing the decision logic.
type ContainerEngine interface {
	// ListImages returns local images whose reference matches name.
	// An empty name lists every image.
	ListImages(ctx context.Context, name string) ([]domain.Image, error)
	// InspectImage returns domain.ErrImageNotFound when ref is absent.
	InspectImage(ctx context.Context, ref string) (domain.Image, error)
	ListContainers(ctx context.Context, filter domain.ContainerFilter) ([]domain.Container, error)
	BuildImage(ctx context.Context, contextDir, tag, dockerfile string) error
	RunContainer(ctx context.Context, spec domain.RunSpec) (string, error)
	StopContainer(ctx context.Context, id string) error
	// PruneContainers removes all stopped containers and returns how many went.
	PruneContainers(ctx context.Context) (int, error)
	RemoveImage(ctx context.Context, id string, force bool) error
	TagImage(ctx context.Context, source, target string) error
	Login(ctx context.Context, creds domain.Credentials) error
	// PushImage blocks until the push stream ends.
	PushImage(ctx context.Context, ref string) ([]domain.PushEvent, error)
	ContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
}
