package lifecycle

import (
	"context"
	"fmt"

	"github.com/melih/dockship/internal/core/domain"
)

// BuildRequest describes an image build.
type BuildRequest struct {
	Tag         string   `json:"tag"`
	Context     string   `json:"context"`    // directory or git URL, defaults to "."
	Dockerfile  string   `json:"dockerfile"` // relative to the context, defaults to "Dockerfile"
	Executables []string `json:"executables"`
}

// Build builds req.Tag after offering to stop containers running from it.
func (g *Guard) Build(ctx context.Context, req BuildRequest) error {
	if req.Tag == "" {
		return fmt.Errorf("build needs a tag")
	}
	if req.Context == "" {
		req.Context = "."
	}
	if req.Dockerfile == "" {
		req.Dockerfile = "Dockerfile"
	}

	if err := g.EnsureNoConflictingContainer(ctx, req.Tag); err != nil {
		return err
	}
	g.lastTag = req.Tag

	log := g.log.WithField("image", req.Tag)
	log.Info("Building...")

	dir, cleanup, err := g.builder.Prepare(ctx, req.Context, req.Executables)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := g.engine.BuildImage(ctx, dir, req.Tag, req.Dockerfile); err != nil {
		return err
	}
	log.Info("Built")

	// Other tags of the same repository may exist; only the built one counts.
	built := domain.ParseImageRef(req.Tag).String()
	images, err := g.engine.ListImages(ctx, built)
	if err != nil {
		return err
	}
	if len(images) != 1 {
		return fmt.Errorf("expected one image tagged %s after build, found %d", built, len(images))
	}
	return nil
}
