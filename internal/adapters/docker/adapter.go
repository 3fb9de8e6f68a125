package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"

	"github.com/melih/dockship/internal/core/domain"
)

// Adapter implements ports.ContainerEngine using Docker SDK
type Adapter struct {
	cli *client.Client
	log logrus.FieldLogger

	mu   sync.Mutex
	auth map[string]string // registry host -> encoded auth from Login
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter(log logrus.FieldLogger) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, log: log, auth: map[string]string{}}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// ListImages lists images whose reference matches name, all of them when
// name is empty.
func (a *Adapter) ListImages(ctx context.Context, name string) ([]domain.Image, error) {
	opts := image.ListOptions{}
	if name != "" {
		opts.Filters = filters.NewArgs(filters.Arg("reference", name))
	}
	images, err := a.cli.ImageList(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	result := make([]domain.Image, 0, len(images))
	for _, img := range images {
		result = append(result, domain.Image{ID: img.ID, RepoTags: img.RepoTags})
	}
	return result, nil
}

// InspectImage looks up a single local image.
func (a *Adapter) InspectImage(ctx context.Context, ref string) (domain.Image, error) {
	info, _, err := a.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return domain.Image{}, fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
		}
		return domain.Image{}, fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}
	return domain.Image{ID: info.ID, RepoTags: info.RepoTags}, nil
}

// ListContainers returns containers with their published ports
func (a *Adapter) ListContainers(ctx context.Context, filter domain.ContainerFilter) ([]domain.Container, error) {
	opts := container.ListOptions{All: filter.All}
	if filter.Ancestor != "" {
		opts.Filters = filters.NewArgs(filters.Arg("ancestor", filter.Ancestor))
	}
	containers, err := a.cli.ContainerList(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}

		published := domain.PortMap{}
		for _, p := range c.Ports {
			if p.PublicPort == 0 {
				continue
			}
			published[strconv.Itoa(int(p.PublicPort))] = fmt.Sprintf("%d/%s", p.PrivatePort, p.Type)
		}

		result = append(result, domain.Container{
			ID:     c.ID,
			Name:   name,
			Image:  c.Image,
			Status: c.Status,
			State:  c.State,
			Ports:  published,
		})
	}
	return result, nil
}

// RunContainer creates and starts a container. Unless spec.Detach is set it
// waits for the container to stop.
func (a *Adapter) RunContainer(ctx context.Context, spec domain.RunSpec) (string, error) {
	cfg, hostCfg, err := runConfig(spec)
	if err != nil {
		return "", err
	}

	resp, err := a.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	clog := a.log.WithField("container", shortID(resp.ID))
	for _, w := range resp.Warnings {
		clog.Warn(w)
	}

	// Wait before starting so a container that exits immediately is not missed.
	var (
		statusCh <-chan container.WaitResponse
		errCh    <-chan error
	)
	if !spec.Detach {
		condition := container.WaitConditionNextExit
		if spec.AutoRemove {
			condition = container.WaitConditionRemoved
		}
		statusCh, errCh = a.cli.ContainerWait(ctx, resp.ID, condition)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	if spec.Detach {
		return resp.ID, nil
	}

	clog.Debug("Waiting for container to exit")
	select {
	case err := <-errCh:
		if err != nil {
			return resp.ID, fmt.Errorf("failed to wait for container: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return resp.ID, fmt.Errorf("container %s exited with status %d", shortID(resp.ID), status.StatusCode)
		}
	}
	return resp.ID, nil
}

// StopContainer stops a running container
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	seconds := int(timeout.Seconds())
	if err := a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &seconds}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// PruneContainers removes every stopped container.
func (a *Adapter) PruneContainers(ctx context.Context) (int, error) {
	report, err := a.cli.ContainersPrune(ctx, filters.NewArgs())
	if err != nil {
		return 0, fmt.Errorf("failed to prune containers: %w", err)
	}
	return len(report.ContainersDeleted), nil
}

// RemoveImage removes an image by id or reference.
func (a *Adapter) RemoveImage(ctx context.Context, id string, force bool) error {
	if _, err := a.cli.ImageRemove(ctx, id, image.RemoveOptions{Force: force, PruneChildren: true}); err != nil {
		return fmt.Errorf("failed to remove image %s: %w", id, err)
	}
	return nil
}

// TagImage adds target as a reference to the source image.
func (a *Adapter) TagImage(ctx context.Context, source, target string) error {
	if err := a.cli.ImageTag(ctx, source, target); err != nil {
		if cerrdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %s", domain.ErrImageNotFound, source)
		}
		return fmt.Errorf("failed to tag image: %w", err)
	}
	return nil
}

// Login validates creds against the registry and keeps them for later
// pushes to that registry.
func (a *Adapter) Login(ctx context.Context, creds domain.Credentials) error {
	cfg := registry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: creds.Endpoint,
	}
	if _, err := a.cli.RegistryLogin(ctx, cfg); err != nil {
		return fmt.Errorf("failed to log in to %s: %w", creds.Registry(), err)
	}

	encoded, err := registry.EncodeAuthConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode registry auth: %w", err)
	}

	a.mu.Lock()
	a.auth[creds.Registry()] = encoded
	a.mu.Unlock()
	return nil
}

// PushImage pushes ref with the auth stored by Login for its registry and
// returns the progress events once the stream ends.
func (a *Adapter) PushImage(ctx context.Context, ref string) ([]domain.PushEvent, error) {
	a.mu.Lock()
	auth := a.auth[registryOf(ref)]
	a.mu.Unlock()

	body, err := a.cli.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return nil, fmt.Errorf("failed to push image: %w", err)
	}
	defer body.Close()

	return decodePushEvents(body)
}

// ContainerLogs returns a stream of container logs
func (a *Adapter) ContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	rc, err := a.cli.ContainerLogs(ctx, id, options)
	if err != nil {
		return nil, fmt.Errorf("failed to get container logs: %w", err)
	}
	return demux(rc), nil
}
