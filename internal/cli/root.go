package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/melih/dockship/internal/core/domain"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAborted indicates the operator declined a required step.
	ExitCodeAborted = 2
	// ExitCodeNoCredentials indicates AWS credentials could not be found.
	ExitCodeNoCredentials = 3
)

var version = "dev"

// SetVersion is called from main to inject the build version.
func SetVersion(v string) {
	version = v
}

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "dockship",
		Short: "Build, run and ship Docker images to Amazon ECR",
		Long: `dockship builds local Docker images, runs and stops local containers,
and tags, authenticates and pushes images to Amazon ECR. It asks before
stopping containers, building missing images or removing things.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.Close()
		},
	}
	root.SetVersionTemplate(`{{printf "dockship version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dockship/config.yaml)")
	flags.StringVar(&app.flags.region, "region", "", "AWS region of the registry")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "log progress")
	flags.BoolVarP(&app.flags.debug, "debug", "d", false, "log debug output")
	flags.BoolVarP(&app.flags.yes, "yes", "y", false, "answer yes to every question")

	root.AddCommand(
		newBuildCmd(app),
		newPushCmd(app),
		newReleaseCmd(app),
		newRunCmd(app),
		newStopCmd(app),
		newRmiCmd(app),
		newCleanCmd(app),
		newImagesCmd(app),
		newPsCmd(app),
		newLogsCmd(app),
		newServeCmd(app),
	)
	return root
}

// Execute runs the CLI and exits the process with a semantic exit code.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	err := NewRootCmd(app).ExecuteContext(ctx)
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, domain.ErrCredentialsUnavailable):
		return ExitCodeNoCredentials
	case domain.IsFatal(err):
		return ExitCodeAborted
	default:
		return ExitCodeError
	}
}
