package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

var (
	serveConfig string
	serveSeed   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := folio.LoadConfig(serveConfig)
		if err != nil {
			return err
		}

		var opts []folio.Option
		if serveSeed != "" {
			seed, err := loadSeedFile(serveSeed)
			if err != nil {
				return err
			}
			opts = append(opts, folio.WithSeed(seed))
		}

		app := folio.New(cfg, views.Default(cfg.Site()), opts...)
		app.Echo.Logger.SetLevel(logLevel())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start(ctx) }()

		select {
		case err := <-errc:
			app.Close()
			return err
		case <-ctx.Done():
		}

		app.Echo.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

func loadSeedFile(path string) (content.Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return content.Seed{}, err
	}
	defer f.Close()
	return content.LoadSeed(f)
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "folio.yaml", "Path to the site config file")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "YAML file with fallback content (default: built-in)")
	rootCmd.AddCommand(serveCmd)
}
