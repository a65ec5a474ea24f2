package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mosaicfw/mosaic/actuator"
	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/config/source"
	"github.com/mosaicfw/mosaic/core"
	"github.com/mosaicfw/mosaic/logging"
	"github.com/mosaicfw/mosaic/migrate"
	"github.com/mosaicfw/mosaic/modules/audit"
	"github.com/mosaicfw/mosaic/modules/books"
	"github.com/mosaicfw/mosaic/web"
)

// Exit statuses distinguish "fix your composition/config" from "something
// broke at runtime" so deployment tooling can react differently.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode classifies an error into a process exit status. Composition and
// configuration mistakes are never retried by an orchestration layer, so
// they get their own status.
func exitCode(err error) int {
	var regErr *core.RegistrationError
	var bindErr *config.BindError
	var dupErr *migrate.DuplicateKeyError
	var sumErr *migrate.ChecksumError
	switch {
	case errors.As(err, &regErr),
		errors.As(err, &bindErr),
		errors.As(err, &dupErr),
		errors.As(err, &sumErr),
		errors.Is(err, os.ErrNotExist):
		return exitConfig
	default:
		return exitRuntime
	}
}

var (
	flagConfigDir string
	flagProfile   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mosaic",
		Short:         "Mosaic modular service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfigDir, "config", "configs", "directory holding mosaic.yaml")
	root.PersistentFlags().StringVar(&flagProfile, "profile", "", "configuration profile overlay")
	// Dotted override flags (--server.addr=...) belong to the config layer,
	// not to cobra.
	root.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (config.Root, error) {
	return config.Load(cmd.Context(),
		&source.FileSource{
			BasePath: flagConfigDir,
			Profile:  flagProfile,
			Optional: !cmd.Flags().Changed("config"),
		},
		&source.EnvSource{},
		&source.CLISource{Args: os.Args[1:]},
	)
}

// buildApp is the composition root: the one place that decides which modules
// exist and in what order they initialize and start.
func buildApp(cfg config.Root, log *slog.Logger) (*core.App, error) {
	return core.NewApp(cfg, log,
		books.New(),
		audit.New(),
	)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Initialize modules, apply migrations, and serve until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Logging).With(
				slog.String("app", cfg.App.Name),
				slog.String("version", cfg.App.Version),
			)
			app, err := buildApp(cfg, log)
			if err != nil {
				return err
			}
			app.UseServer(func(cfg config.Root, log *slog.Logger, mc *core.Context, contribs []core.ModuleContribution) (core.HTTPServer, error) {
				names := make([]string, 0, len(contribs))
				for _, c := range contribs {
					names = append(names, c.Module)
				}
				return web.New(cfg, log, contribs,
					web.WithRootRoutes(actuator.Routes(mc, app.Phase, names)))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}
	cmd.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and apply schema migrations without starting modules",
	}
	cmd.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Show every declared migration and whether it has been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := headlessApp(cmd)
			if err != nil {
				return err
			}
			p, err := app.MigratePlan(cmd.Context())
			if err != nil {
				return err
			}
			renderPlan(p)
			return nil
		},
	}
	plan.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Apply pending migrations in canonical order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := headlessApp(cmd)
			if err != nil {
				return err
			}
			plan, applied, err := app.MigrateApply(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d of %d pending migrations\n", applied, len(plan.Pending))
			return nil
		},
	}
	apply.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	cmd.AddCommand(plan, apply)
	return cmd
}

func headlessApp(cmd *cobra.Command) (*core.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Logging)
	return buildApp(cfg, log)
}

func renderPlan(p *migrate.Plan) {
	applied := make(map[string]bool, len(p.Applied))
	for _, m := range p.Applied {
		applied[m.Key()] = true
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Module", "Migration", "Status"})
	for _, m := range p.All {
		status := "pending"
		if applied[m.Key()] {
			status = "applied"
		}
		t.AppendRow(table.Row{m.Module, m.ID, status})
	}
	t.Render()
}
