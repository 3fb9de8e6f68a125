package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/melih/dockship/internal/core/lifecycle"
)

func newBuildCmd(app *App) *cobra.Command {
	var req lifecycle.BuildRequest

	cmd := &cobra.Command{
		Use:   "build TAG",
		Short: "Build an image from a directory or git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Guard()
			if err != nil {
				return err
			}
			req.Tag = args[0]
			if err := g.Build(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Built %s\n", req.Tag)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Context, "context", "c", ".", "build context directory or git URL")
	cmd.Flags().StringVarP(&req.Dockerfile, "file", "f", "Dockerfile", "Dockerfile path inside the context")
	cmd.Flags().StringSliceVarP(&req.Executables, "exec", "x", nil, "helper files in the context to mark executable")
	return cmd
}

type pushFlags struct {
	tag     string
	account string
}

func (f *pushFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tag, "tag", "t", "", "tag to push (default the image's own tag, or latest)")
	cmd.Flags().StringVar(&f.account, "account", "", "AWS account ID (looked up when empty)")
}

func (f *pushFlags) request(app *App, image string) (lifecycle.PushRequest, error) {
	region, err := app.region()
	if err != nil {
		return lifecycle.PushRequest{}, err
	}
	account := f.account
	if account == "" {
		account = app.cfg.AccountID
	}
	return lifecycle.PushRequest{Region: region, Image: image, Tag: f.tag, Account: account}, nil
}

func (a *App) push(cmd *cobra.Command, g *lifecycle.Guard, req lifecycle.PushRequest) error {
	res, err := g.Push(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.URI)
	return nil
}

func newPushCmd(app *App) *cobra.Command {
	var flags pushFlags

	cmd := &cobra.Command{
		Use:   "push IMAGE",
		Short: "Tag an image for ECR, log in and push it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(app, args[0])
			if err != nil {
				return err
			}
			g, err := app.Guard()
			if err != nil {
				return err
			}
			return app.push(cmd, g, req)
		},
	}
	flags.register(cmd)
	return cmd
}

func newReleaseCmd(app *App) *cobra.Command {
	var (
		flags pushFlags
		build lifecycle.BuildRequest
	)

	cmd := &cobra.Command{
		Use:   "release IMAGE",
		Short: "Build an image and push it to ECR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(app, "")
			if err != nil {
				return err
			}
			g, err := app.Guard()
			if err != nil {
				return err
			}
			build.Tag = args[0]
			if err := g.Build(cmd.Context(), build); err != nil {
				return err
			}
			// The push picks up the image this session just built.
			return app.push(cmd, g, req)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&build.Context, "context", "c", ".", "build context directory or git URL")
	cmd.Flags().StringVarP(&build.Dockerfile, "file", "f", "Dockerfile", "Dockerfile path inside the context")
	cmd.Flags().StringSliceVarP(&build.Executables, "exec", "x", nil, "helper files in the context to mark executable")
	return cmd
}

func newRmiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rmi IMAGE",
		Short: "Remove an image if it exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Guard()
			if err != nil {
				return err
			}
			return g.RemoveImage(cmd.Context(), args[0])
		},
	}
}

func newImagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List local images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := app.Guard()
			if err != nil {
				return err
			}
			images, err := g.Images(cmd.Context())
			if err != nil {
				return err
			}
			renderImages(app.out, images)
			return nil
		},
	}
}
