package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/melih/dockship/internal/core/domain"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		portSpecs []string
		env       []string
		command   string
		detach    bool
		rm        bool
	)

	cmd := &cobra.Command{
		Use:   "run [IMAGE]",
		Short: "Run a local container, stopping whatever holds its image or ports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := domain.RunSpec{Detach: detach, AutoRemove: rm}
			if len(args) == 1 {
				spec.Image = args[0]
			}
			if len(portSpecs) > 0 {
				pm, err := domain.ParsePortMap(portSpecs)
				if err != nil {
					return err
				}
				spec.Ports = pm
			}
			if command != "" {
				spec.Command = strings.Fields(command)
			}
			vars, err := parseEnv(env)
			if err != nil {
				return err
			}
			spec.Env = vars

			g, err := app.Guard()
			if err != nil {
				return err
			}
			id, err := g.CreateLocalContainer(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, id)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&portSpecs, "publish", "p", nil, "host:container[/proto] port mapping (default from config)")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "KEY=VALUE environment variable")
	cmd.Flags().StringVar(&command, "cmd", "", "command to run instead of the image default")
	cmd.Flags().BoolVar(&detach, "detach", true, "return once the container has started")
	cmd.Flags().BoolVar(&rm, "rm", true, "remove the container when it exits")
	return cmd
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment variable %q, want KEY=VALUE", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func newStopCmd(app *App) *cobra.Command {
	var image string

	cmd := &cobra.Command{
		Use:   "stop [CONTAINER]",
		Short: "Stop a container by ID, or the one running from --image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" && image == "" {
				return fmt.Errorf("give a container ID or --image")
			}
			g, err := app.Guard()
			if err != nil {
				return err
			}
			return g.StopContainer(cmd.Context(), id, image)
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "stop the container running from this image")
	return cmd
}

func newCleanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "clean images|containers|all",
		Short:     "Remove images, containers, or both",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ScopeImages), string(domain.ScopeContainers), string(domain.ScopeAll)},
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := domain.ParseCleanupScope(args[0])
			if err != nil {
				return err
			}
			g, err := app.Guard()
			if err != nil {
				return err
			}
			return g.CleanUp(cmd.Context(), scope)
		},
	}
}

func newPsCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := app.Guard()
			if err != nil {
				return err
			}
			containers, err := g.Containers(cmd.Context(), all)
			if err != nil {
				return err
			}
			renderContainers(app.out, containers)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include stopped containers")
	return cmd
}

func newLogsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logs CONTAINER",
		Short: "Print a container's logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Guard()
			if err != nil {
				return err
			}
			logs, err := g.ContainerLogs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer logs.Close()
			_, err = io.Copy(app.out, logs)
			return err
		},
	}
}
