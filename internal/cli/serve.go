package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plategen/internal/server"
)

// serveCommand creates the serve command for the web front end.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload form and layout API",
		Long: `Serve the upload form and layout API.

Open the address in a browser to upload an experiments file and get the plate
layout back as a page. Programs can POST experiments JSON to /api/layout or
/api/render?format=svg instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			defaults, err := c.baseOptions()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Options{
				Addr:          addr,
				MaxUploadSize: cfg.Server.MaxUploadSize,
				Defaults:      defaults,
			})
			out := newPrinter(cmd.OutOrStdout())
			out.info("Serving on %s", StyleLink.Render("http://"+srv.Addr()))
			out.detail("Press Ctrl+C to stop")
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
