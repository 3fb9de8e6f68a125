package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/melih/dockship/internal/core/domain"
)

// PushRequest describes a push to the region's registry.
type PushRequest struct {
	Region  string `json:"region"`
	Image   string `json:"image"`      // repo[:tag], defaults to the session's last build
	Tag     string `json:"tag"`        // overrides the image's tag; latest when neither is set
	Account string `json:"account_id"` // resolved from the identity service when empty
}

// PushResult is the outcome of a push.
type PushResult struct {
	URI    string             `json:"uri"`
	Layers []domain.PushEvent `json:"layers"`
}

// TagAndQualify tags the local repository:tag image with its registry
// reference and returns that reference. The identity service is only
// consulted when account is empty.
func (g *Guard) TagAndQualify(ctx context.Context, account, region, repository, tag string) (string, error) {
	ref := domain.ImageRef{Repository: repository, Tag: tag}

	if _, err := g.engine.InspectImage(ctx, ref.String()); err != nil {
		return "", err
	}

	if account == "" {
		id, err := g.registry.AccountID(ctx, region)
		if err != nil {
			return "", err
		}
		account = id
	}

	uri := domain.QualifiedRef(account, region, ref)
	if err := g.engine.TagImage(ctx, ref.String(), uri); err != nil {
		return "", err
	}
	g.log.WithField("uri", uri).Info("Image tagged")
	return uri, nil
}

// Authenticate logs the engine in to the region's registry with fresh
// credentials. On managed hosts the cached credential file is reset first.
func (g *Guard) Authenticate(ctx context.Context, region string) error {
	creds, err := g.registry.Credentials(ctx, region)
	if err != nil {
		return err
	}

	if g.probe != nil && g.probe.Restricted() {
		g.log.Debug("Managed host detected, resetting cached credentials")
		if err := g.store.Reset(); err != nil {
			return err
		}
	}

	if err := g.engine.Login(ctx, creds); err != nil {
		return err
	}
	g.log.WithField("registry", creds.Registry()).Info("Authenticated!")
	return nil
}

// Push makes sure the image exists, tags it, authenticates and pushes.
// Missing cloud credentials abort the push and are never retried.
func (g *Guard) Push(ctx context.Context, req PushRequest) (PushResult, error) {
	res, err := g.push(ctx, req)
	if err != nil && errors.Is(err, domain.ErrCredentialsUnavailable) && !domain.IsFatal(err) {
		g.log.WithError(err).Error("AWS credentials not found, exiting")
		return res, domain.Fatal(domain.ErrCredentialsUnavailable, "aws credentials not found", err)
	}
	return res, err
}

func (g *Guard) push(ctx context.Context, req PushRequest) (PushResult, error) {
	if req.Image == "" {
		req.Image = g.lastTag
	}
	if req.Image == "" {
		return PushResult{}, fmt.Errorf("push needs an image or a previous build")
	}
	if req.Region == "" {
		return PushResult{}, fmt.Errorf("push needs a region")
	}

	// An explicit tag wins over the one carried by the image name.
	ref := domain.ParseImageRef(req.Image)
	if req.Tag != "" {
		ref.Tag = req.Tag
	}

	if err := g.EnsureImageExists(ctx, ref.String()); err != nil {
		return PushResult{}, err
	}

	g.log.WithField("image", ref.String()).Info("Pushing to ECR...")
	uri, err := g.TagAndQualify(ctx, req.Account, req.Region, ref.Repository, ref.Tag)
	if err != nil {
		return PushResult{}, err
	}

	if err := g.Authenticate(ctx, req.Region); err != nil {
		return PushResult{}, err
	}

	events, err := g.engine.PushImage(ctx, uri)
	if err != nil {
		return PushResult{}, err
	}
	layers := domain.LayerEvents(events)

	g.log.WithField("uri", uri).Info("Pushed")
	for _, e := range layers {
		g.log.WithField("layer", e.ID).Debug(e.Status)
	}
	return PushResult{URI: uri, Layers: layers}, nil
}
