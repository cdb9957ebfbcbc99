package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/internal/server"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags graphFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [repo]",
		Short: "Serve layouts of a repository over HTTP",
		Long: `Serve layouts of a repository over HTTP.

Set ` + envRedisURL + ` or ` + envMongoURI + ` to share the layout cache between
instances; otherwise the local file cache is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(repoArg(args), nil)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), opts, addr, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, addr string, noCache bool) error {
	// Reject a bad configuration at startup rather than on every request.
	if _, err := opts.Settings.Compile(); err != nil {
		return err
	}
	if _, err := pipeline.Open(opts); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, opts, c.Logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
