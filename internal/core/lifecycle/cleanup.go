package lifecycle

import (
	"context"
	"fmt"

	"github.com/melih/dockship/internal/core/domain"
)

// CleanUp removes containers, images, or both.
//
// Declining the container question under ScopeImages removes the images
// only, which can leave containers referring to removed images.
func (g *Guard) CleanUp(ctx context.Context, scope domain.CleanupScope) error {
	switch scope {
	case domain.ScopeImages:
		ok, err := g.confirm(ctx, domain.Question{Kind: domain.AskClearContainers})
		if err != nil {
			return err
		}
		if ok {
			return g.CleanUp(ctx, domain.ScopeAll)
		}
		return g.RemoveAllImages(ctx)

	case domain.ScopeContainers:
		if err := g.StopAllContainers(ctx); err != nil {
			return err
		}
		return g.RemoveAllContainers(ctx)

	case domain.ScopeAll:
		if err := g.StopAllContainers(ctx); err != nil {
			return err
		}
		if err := g.RemoveAllContainers(ctx); err != nil {
			return err
		}
		return g.RemoveAllImages(ctx)

	default:
		return fmt.Errorf("unknown cleanup scope %q", scope)
	}
}

// StopAllContainers stops every running container.
func (g *Guard) StopAllContainers(ctx context.Context) error {
	running, err := g.engine.ListContainers(ctx, domain.ContainerFilter{})
	if err != nil {
		return err
	}
	for _, c := range running {
		if err := g.engine.StopContainer(ctx, c.ID); err != nil {
			return err
		}
	}
	g.log.Info("All containers are stopped")
	return nil
}

// RemoveAllContainers prunes stopped containers.
func (g *Guard) RemoveAllContainers(ctx context.Context) error {
	n, err := g.engine.PruneContainers(ctx)
	if err != nil {
		return err
	}
	g.log.WithField("count", n).Info("All containers are removed")
	return nil
}

// RemoveAllImages force-removes every image. A failed removal is logged and
// the remaining images are still attempted.
func (g *Guard) RemoveAllImages(ctx context.Context) error {
	images, err := g.engine.ListImages(ctx, "")
	if err != nil {
		return err
	}

	for _, img := range images {
		if err := g.engine.RemoveImage(ctx, img.ID, true); err != nil {
			err = fmt.Errorf("%w: %w", domain.ErrRemovalFailure, err)
			g.log.WithError(err).WithField("image", img.ShortID()).Error("Can not remove image")
		}
	}
	g.log.Info("All images are removed")
	return nil
}

// RemoveImage removes name if the engine lists it.
func (g *Guard) RemoveImage(ctx context.Context, name string) error {
	images, err := g.engine.ListImages(ctx, name)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	if err := g.engine.RemoveImage(ctx, name, false); err != nil {
		return err
	}
	g.log.WithField("image", name).Info("Image removed")
	return nil
}
