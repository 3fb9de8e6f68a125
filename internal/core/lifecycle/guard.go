package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/melih/dockship/internal/core/domain"
	"github.com/melih/dockship/internal/core/ports"
)

// Guard gates every state-changing action on the observed engine state and
// the operator's answers. A Guard is one session: it remembers the last tag
// it built so later push/run calls can default to it.
//
// Checks and the actions that follow them are not atomic; another client of
// the same engine can change its state in between.
type Guard struct {
	engine   ports.ContainerEngine
	registry ports.RegistryService
	builder  ports.BuildContextProvider
	decider  ports.Decider
	store    ports.CredentialStore
	probe    ports.HostProbe
	log      logrus.FieldLogger

	defaultPorts domain.PortMap
	lastTag      string
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Guard) {
		g.log = log
	}
}

// WithDefaultPorts sets the mapping used when a run names no ports.
func WithDefaultPorts(pm domain.PortMap) Option {
	return func(g *Guard) {
		g.defaultPorts = pm
	}
}

// Deps are the collaborators a Guard delegates to.
type Deps struct {
	Engine   ports.ContainerEngine
	Registry ports.RegistryService
	Builder  ports.BuildContextProvider
	Decider  ports.Decider
	Store    ports.CredentialStore
	Probe    ports.HostProbe
}

// New creates a Guard session.
func New(deps Deps, opts ...Option) *Guard {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)

	g := &Guard{
		engine:       deps.Engine,
		registry:     deps.Registry,
		builder:      deps.Builder,
		decider:      deps.Decider,
		store:        deps.Store,
		probe:        deps.Probe,
		log:          discard,
		defaultPorts: domain.DefaultPorts(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LastTag returns the tag of the most recent build in this session.
func (g *Guard) LastTag() string {
	return g.lastTag
}

func (g *Guard) confirm(ctx context.Context, q domain.Question) (bool, error) {
	ok, err := g.decider.Confirm(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return ok, nil
}

// EnsureImageExists offers to build name when the engine has no image for
// it. Declining is fatal.
func (g *Guard) EnsureImageExists(ctx context.Context, name string) error {
	images, err := g.engine.ListImages(ctx, name)
	if err != nil {
		return err
	}
	if len(images) > 0 {
		return nil
	}

	ok, err := g.confirm(ctx, domain.Question{Kind: domain.AskBuildImage, Name: name})
	if err != nil {
		return err
	}
	if !ok {
		g.log.WithField("image", name).Warn("Can not push non-existing image")
		return domain.Fatal(domain.ErrMissingImage, fmt.Sprintf("image %s was not built", name), nil)
	}
	return g.Build(ctx, BuildRequest{Tag: name})
}

// EnsureNoConflictingContainer asks to stop containers running from image.
// Declining only warns: the container is expected to be replaced by the
// create step that follows.
func (g *Guard) EnsureNoConflictingContainer(ctx context.Context, image string) error {
	running, err := g.runningFrom(ctx, image)
	if err != nil {
		return err
	}
	if len(running) == 0 {
		return nil
	}
	return g.resolveRunning(ctx, "image", image, "", true)
}

// EnsurePortFreeAndContainerAbsent runs before a local container is created.
// Either a container already serving image or one holding a requested port
// must be stopped; declining is fatal.
func (g *Guard) EnsurePortFreeAndContainerAbsent(ctx context.Context, image string, pm domain.PortMap) error {
	fromImage, err := g.runningFrom(ctx, image)
	if err != nil {
		return err
	}
	if len(fromImage) == 1 {
		return g.resolveRunning(ctx, "image", image, "", false)
	}

	holder, err := g.portHolder(ctx, pm)
	if err != nil {
		return err
	}
	if holder == nil {
		return nil
	}
	return g.resolveRunning(ctx, "port", strings.Join(pm.HostPorts(), ","), holder.ID, false)
}

// resolveRunning asks to stop a container. With an id the exact container is
// stopped, otherwise the first one running from name.
func (g *Guard) resolveRunning(ctx context.Context, reason, name, id string, forImage bool) error {
	ok, err := g.confirm(ctx, domain.Question{Kind: domain.AskStopContainer, Reason: reason, Name: name})
	if err != nil {
		return err
	}

	switch {
	case ok && id != "":
		return g.StopContainer(ctx, id, "")
	case ok:
		return g.StopContainer(ctx, "", name)
	case forImage:
		g.log.WithField("image", name).Debug("Container is not stopped, it will be deleted before creating container")
		return nil
	default:
		g.log.WithField(reason, name).Error("You refused to stop the container, it is still running")
		return domain.Fatal(domain.ErrConflictingContainer, fmt.Sprintf("container with %s %s is still running", reason, name), nil)
	}
}

func (g *Guard) runningFrom(ctx context.Context, image string) ([]domain.Container, error) {
	return g.engine.ListContainers(ctx, domain.ContainerFilter{Ancestor: image})
}

// portHolder returns the running container publishing any port in pm.
func (g *Guard) portHolder(ctx context.Context, pm domain.PortMap) (*domain.Container, error) {
	running, err := g.engine.ListContainers(ctx, domain.ContainerFilter{})
	if err != nil {
		return nil, err
	}
	for i := range running {
		if running[i].Ports.Conflicts(pm) {
			return &running[i], nil
		}
	}
	return nil, nil
}

// StopContainer stops the container with id, or else the first container
// running from image. Finding nothing is not an error.
func (g *Guard) StopContainer(ctx context.Context, id, image string) error {
	if id == "" && image != "" {
		running, err := g.runningFrom(ctx, image)
		if err != nil {
			return err
		}
		if len(running) > 0 {
			id = running[0].ID
		}
	}
	if id == "" {
		g.log.Info("No such running container")
		return nil
	}

	if err := g.engine.StopContainer(ctx, id); err != nil {
		return err
	}
	g.log.WithField("container", shortID(id)).Info("Running container is stopped")
	return nil
}

func shortID(id string) string {
	return domain.Container{ID: id}.ShortID()
}
