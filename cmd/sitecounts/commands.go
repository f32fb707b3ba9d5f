package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tendant/site-counts/internal/logging"
	"github.com/tendant/site-counts/pkg/sitecounts"
	"github.com/tendant/site-counts/pkg/sitecounts/api"
	"github.com/tendant/site-counts/pkg/sitecounts/config"
)

// commonFlags are shared by every command that talks to a repository
type commonFlags struct {
	seedURL     string
	databaseURL string
	locale      string
	debug       bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.seedURL, "seed", "", "seed dataset (file:// or s3://) loaded before running")
	cmd.Flags().StringVar(&f.databaseURL, "database-url", "", "memory, postgres://... or sqlite://path")
	cmd.Flags().StringVar(&f.locale, "locale", "", "language of the block text")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")
}

// load reads the environment, then applies flags on top of it
func (f *commonFlags) load() (*config.ServerConfig, error) {
	flagsOption := func(c *config.ServerConfig) error {
		if f.seedURL != "" {
			c.SeedURL = f.seedURL
		}
		if f.databaseURL != "" {
			c.DatabaseURL = f.databaseURL
			c.DatabaseType = ""
		}
		if f.locale != "" {
			c.Locale = f.locale
		}
		return nil
	}

	cfg, err := config.Load(config.WithEnv(), flagsOption, config.WithDatabaseURL())
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Environment, f.debug)
	return cfg, nil
}

func renderCmd() *cobra.Command {
	var (
		flags     commonFlags
		currentID int64
		attrs     sitecounts.Attributes
		style     sitecounts.StyleContext
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the block markup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if currentID < 0 {
				return fmt.Errorf("invalid current item id %d", currentID)
			}

			ctx := cmd.Context()
			block, closer, err := cfg.BuildBlock(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			result, err := block.Render(ctx, attrs, "", sitecounts.RenderContext{
				CurrentItemID: sitecounts.ItemID(currentID),
				Style:         style,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Markup)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&currentID, "current-item-id", 0, "id of the item being viewed (0 for none)")
	cmd.Flags().StringVar(&attrs.ClassName, "class-name", "", "extra wrapper classes")
	cmd.Flags().StringVar(&attrs.Anchor, "anchor", "", "wrapper element id")
	cmd.Flags().StringVar(&style.TextColor, "text-color", "", "palette slug of the text color")
	cmd.Flags().StringVar(&style.CustomTextColor, "custom-text-color", "", "CSS text color")
	cmd.Flags().StringVar(&style.BackgroundColor, "background-color", "", "palette slug of the background color")
	cmd.Flags().StringVar(&style.CustomBackgroundColor, "custom-background-color", "", "CSS background color")
	cmd.Flags().StringVar(&style.FontSize, "font-size", "", "font size slug")
	cmd.Flags().StringVar(&style.CustomFontSize, "custom-font-size", "", "CSS font size")

	return cmd
}

func typesCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List public content types with their published counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			block, closer, err := cfg.BuildBlock(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			counts, err := block.Counts(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(counts) == 0 {
				fmt.Fprintln(out, color.New(color.FgYellow).Sprint("No public content types"))
				return nil
			}
			for _, c := range counts {
				countText := color.New(color.FgGreen).Sprint(c.Count)
				if c.Count == 0 {
					countText = color.New(color.FgYellow).Sprint(c.Count)
				}
				fmt.Fprintf(out, "%-16s %-24s %s\n", c.TypeSlug, c.TypeName, countText)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the repository tables and apply the seed, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.DatabaseType == "memory" {
				return errors.New("migrate needs a postgres or sqlite database")
			}
			cfg.AutoMigrate = true

			repo, err := cfg.BuildRepository(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s repository is up to date\n",
				color.New(color.FgGreen).Sprint("OK"), cfg.DatabaseType)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func serveCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the block over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			block, closer, err := cfg.BuildBlock(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()

			registry := prometheus.NewRegistry()
			handler := api.NewBlockHandler(block, api.NewMetrics(registry))

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(middleware.RealIP)
			r.Use(middleware.Recoverer)
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			api.Mount(r, handler, registry)

			httpServer := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: r,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Site counts server starting", "port", cfg.Port, "environment", cfg.Environment)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			// Wait for interrupt signal to gracefully shut down the server
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}
			slog.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}

	flags.register(cmd)
	return cmd
}

func envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Describe the environment variables",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.Usage())
		},
	}
}
