package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shapegrid/internal/server"
	"github.com/matzehuels/shapegrid/pkg/cache"
	"github.com/matzehuels/shapegrid/pkg/pipeline"
)

// apiKeyPrefix separates API cache entries from CLI ones in a shared backend.
const apiKeyPrefix = "api:"

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  GET  /healthz
  POST /v1/synthesize?format=svg|png|pdf|json|xlsx
  POST /v1/tree?format=svg|dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config.Server.Addr
			}
			if addr == "" {
				addr = server.DefaultAddr
			}

			backend, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), apiKeyPrefix)
			runner := pipeline.NewRunner(backend, keyer, c.Logger)
			defer runner.Close()

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithMaxBodyBytes(maxBody),
			)
			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			printKeyValue("cache", c.config.Cache.Backend)
			printKeyValue("max body", fmt.Sprintf("%d bytes", maxBody))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or "+server.DefaultAddr+")")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
