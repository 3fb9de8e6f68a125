package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/melih/dockship/internal/adapters/builder"
	"github.com/melih/dockship/internal/adapters/credfile"
	"github.com/melih/dockship/internal/adapters/docker"
	"github.com/melih/dockship/internal/adapters/ecr"
	"github.com/melih/dockship/internal/adapters/hostenv"
	"github.com/melih/dockship/internal/adapters/prompt"
	"github.com/melih/dockship/internal/config"
	"github.com/melih/dockship/internal/core/domain"
	"github.com/melih/dockship/internal/core/lifecycle"
	"github.com/melih/dockship/internal/core/ports"
	"github.com/melih/dockship/internal/logging"
)

type globalFlags struct {
	configPath string
	region     string
	verbose    bool
	debug      bool
	yes        bool
}

// App carries configuration and collaborators shared by all commands.
type App struct {
	in           io.Reader
	out          io.Writer
	errOut       io.Writer
	flags        globalFlags
	cfg          config.Config
	log          *logrus.Logger
	defaultPorts domain.PortMap
	engine       ports.ContainerEngine
	closeEng     func() error

	// newEngine is swapped in tests.
	newEngine func(log logrus.FieldLogger) (ports.ContainerEngine, func() error, error)
	registry  ports.RegistryService
	guard     *lifecycle.Guard
}

func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{
		in:     in,
		out:    out,
		errOut: errOut,
		newEngine: func(log logrus.FieldLogger) (ports.ContainerEngine, func() error, error) {
			a, err := docker.NewAdapter(log)
			if err != nil {
				return nil, nil, err
			}
			return a, a.Close, nil
		},
		registry: ecr.NewService(),
	}
}

// Init loads configuration and sets up logging. Flags that were set
// explicitly win over the config file.
func (a *App) Init(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path := a.flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.Changed("region") {
		cfg.Region = a.flags.region
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.flags.verbose
	}
	if flags.Changed("debug") {
		cfg.Debug = a.flags.debug
	}
	a.cfg = cfg

	if a.defaultPorts, err = cfg.Ports(); err != nil {
		return err
	}
	a.log = logging.New(logging.Options{Verbose: cfg.Verbose, Debug: cfg.Debug, Output: a.errOut})
	return nil
}

func (a *App) decider() ports.Decider {
	if a.flags.yes {
		return prompt.Fixed(true)
	}
	return prompt.NewTerminal(a.in, a.out)
}

// Engine connects to the engine on first use.
func (a *App) Engine() (ports.ContainerEngine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	eng, closeFn, err := a.newEngine(a.log.WithField("component", "docker"))
	if err != nil {
		return nil, err
	}
	a.engine, a.closeEng = eng, closeFn
	return eng, nil
}

// NewGuard creates a guard session answering questions with decider.
func (a *App) NewGuard(decider ports.Decider) (*lifecycle.Guard, error) {
	factory, err := a.guardFactory()
	if err != nil {
		return nil, err
	}
	return factory(decider), nil
}

// guardFactory resolves the engine and credential store once and returns
// a constructor for independent sessions sharing them.
func (a *App) guardFactory() (func(ports.Decider) *lifecycle.Guard, error) {
	eng, err := a.Engine()
	if err != nil {
		return nil, err
	}
	store, err := a.credentialStore()
	if err != nil {
		return nil, err
	}
	progress := io.Discard
	if a.cfg.Debug {
		progress = a.errOut
	}
	build := builder.NewBuilderAdapter(a.log.WithField("component", "builder"), progress)

	return func(decider ports.Decider) *lifecycle.Guard {
		return lifecycle.New(lifecycle.Deps{
			Engine:   eng,
			Registry: a.registry,
			Builder:  build,
			Decider:  decider,
			Store:    store,
			Probe:    hostenv.SageMaker{},
		},
			lifecycle.WithLogger(a.log.WithField("component", "guard")),
			lifecycle.WithDefaultPorts(a.defaultPorts),
		)
	}, nil
}

// Guard returns the CLI's session, shared by every step of one invocation.
func (a *App) Guard() (*lifecycle.Guard, error) {
	if a.guard != nil {
		return a.guard, nil
	}
	g, err := a.NewGuard(a.decider())
	if err != nil {
		return nil, err
	}
	a.guard = g
	return g, nil
}

func (a *App) credentialStore() (*credfile.Store, error) {
	if a.cfg.DockerConfig != "" {
		return credfile.New(a.cfg.DockerConfig), nil
	}
	return credfile.Default()
}

func (a *App) region() (string, error) {
	if a.cfg.Region == "" {
		return "", fmt.Errorf("no region: pass --region or set region in %s", config.DefaultPath())
	}
	return a.cfg.Region, nil
}

// Close releases the engine connection.
func (a *App) Close() {
	if a.closeEng != nil {
		a.closeEng()
	}
}
