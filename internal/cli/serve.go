package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenbuild/internal/server"
	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// serveCommand creates the serve command, which runs the HTTP adapter.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction pipeline over HTTP",
		Long: `Serve exposes extract and scan as JSON endpoints:

  POST /v1/extractions  run the pipeline, respond with the run report
  POST /v1/plans        resolve only
  GET  /healthz
  GET  /version

Request fields left unset fall back to the configuration, so a configured
destination only needs a root per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().String("listen", "", "address to listen on (default 127.0.0.1:8080)")
	cmd.Flags().StringP("destination", "d", "", "default content directory")
	addRunFlags(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	cfg := c.effective()

	defaults := c.pipelineOptions(logger)
	var err error
	if defaults.Destination, err = absPath(cfg.Destination); err != nil {
		return err
	}

	srv := server.New(pipeline.NewRunner(logger), defaults, logger)
	printInfo("Listening on http://%s", cfg.Listen)

	err = srv.ListenAndServe(ctx, cfg.Listen)
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
