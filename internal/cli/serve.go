package cli

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	apihttp "github.com/melih/dockship/internal/adapters/http"
	"github.com/melih/dockship/internal/adapters/prompt"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		listen  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lifecycle operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			factory, err := app.guardFactory()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("listen") {
				listen = app.cfg.Listen
			}

			server := fiber.New(fiber.Config{
				AppName:               "dockship",
				DisableStartupMessage: true,
			})
			if preview {
				// Listing never prompts, so a declining session is enough.
				server.Use(apihttp.NewPreviewProxy(factory(prompt.Fixed(false)), "").ProxyRequest)
			}
			apihttp.NewHandler(factory, app.cfg.Region, app.cfg.AccountID).Register(server)

			go func() {
				<-cmd.Context().Done()
				app.log.Info("Shutting down")
				_ = server.Shutdown()
			}()

			app.log.WithField("addr", listen).Info("Server starting")
			return server.Listen(listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":3000", "address to listen on")
	cmd.Flags().BoolVar(&preview, "preview", true, "proxy <container>.<host> requests to the container's published port")
	return cmd
}
