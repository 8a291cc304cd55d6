package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tenon/internal/api"
	"github.com/matzehuels/tenon/pkg/cache"
	"github.com/matzehuels/tenon/pkg/pipeline"
	"github.com/matzehuels/tenon/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redisURL string // Redis cache backend (file cache if empty)
	mongoURI string // MongoDB diagram store (in-memory store if empty)
	mongoDB  string // MongoDB database name
	noCache  bool   // disable caching entirely
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", mongoDB: "tenon"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram HTTP API",
		Long: `Serve starts an HTTP server exposing the solve pipeline and a diagram
store. Without --redis-url results are cached on disk; without --mongo-uri
diagrams are stored in memory and lost on restart.

Examples:
  tenon serve
  tenon serve --addr :9000 --redis-url redis://localhost:6379/0
  tenon serve --mongo-uri mongodb://localhost:27017 --mongo-db diagrams`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the result cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI for the diagram store")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	backend, cacheName, err := newServeCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	defer runner.Close()

	st, storeName, err := newServeStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, st, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.Logger.Infof("Listening on %s (cache: %s, store: %s)", opts.addr, cacheName, storeName)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// newServeCache selects the cache backend for the server.
func newServeCache(ctx context.Context, opts *serveOpts) (cache.Cache, string, error) {
	if opts.noCache {
		return cache.NewNullCache(), "disabled", nil
	}
	if opts.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, "", err
		}
		return rc, "redis", nil
	}
	fc, err := newCache(false)
	if err != nil {
		return nil, "", err
	}
	return fc, "file", nil
}

// newServeStore selects the diagram store for the server.
func newServeStore(ctx context.Context, opts *serveOpts) (store.Store, string, error) {
	if opts.mongoURI != "" {
		ms, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, "", err
		}
		return ms, "mongodb", nil
	}
	return store.NewMemoryStore(), "memory", nil
}
