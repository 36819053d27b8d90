// Command build-plugins compiles every plugin listed in config.json with
// CMake and collects the per-format outputs in ./Build.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	pluginbuild "github.com/plugdata/plugin-builder"
)

type options struct {
	compilerLauncher string
	dryRun           bool
	verbose          bool
}

func newRootCmd(logger *zerolog.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "build-plugins",
		Short: "Build plugdata plugins with CMake",
		Long: `This command reads config.json, configures and builds every listed plugin
inside ./plugdata and copies the resulting formats into ./Build.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			cmdLogger := logger.Level(level)

			wd, err := os.Getwd()
			if err != nil {
				return eris.Wrap(err, "failed to retrieve the current working directory")
			}

			ctx := pluginbuild.WithLogger(cmd.Context(), &cmdLogger)
			return run(ctx, pluginbuild.DefaultLayout(wd), opts)
		},
	}

	cmd.Flags().StringVar(&opts.compilerLauncher, "compiler-launcher", "", "optional compiler launcher (e.g., ccache, sccache)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "dry run; only print the commands, don't execute anything")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print debug messages")

	return cmd
}

func run(ctx context.Context, layout pluginbuild.Layout, opts *options) error {
	plugins, err := pluginbuild.LoadDescriptors(layout.ConfigFile)
	if err != nil {
		return err
	}

	config := pluginbuild.NewBuildConfig(layout)
	config.CompilerLauncher = opts.compilerLauncher
	config.DryRun = opts.dryRun

	orchestrator := pluginbuild.NewOrchestrator(config)
	if err := orchestrator.Prepare(); err != nil {
		return err
	}

	if !config.DryRun {
		if err := orchestrator.CheckTools(); err != nil {
			return err
		}
		warnMissingLauncher(ctx, config.CompilerLauncher)
	}

	results, err := orchestrator.BuildAll(ctx, plugins)
	reportResults(ctx, results)
	return err
}

func warnMissingLauncher(ctx context.Context, launcher string) {
	if launcher == "" {
		return
	}

	missing := pluginbuild.MissingTools([]pluginbuild.ToolRequirement{
		{Name: launcher, Optional: true, Purpose: "compiler launcher"},
	})
	if len(missing) > 0 {
		zerolog.Ctx(ctx).Warn().Msgf("Compiler launcher %s not found in PATH", launcher)
	}
}

func reportResults(ctx context.Context, results []*pluginbuild.PluginResult) {
	logger := zerolog.Ctx(ctx)

	for _, result := range results {
		switch {
		case result.Skipped:
			logger.Warn().
				Str("plugin", result.Name).
				Msgf("skipped at stage %s", result.Stage)
		case result.Failed() > 0:
			logger.Warn().
				Str("plugin", result.Name).
				Msgf("%d of %d formats failed", result.Failed(), len(result.Formats))
		default:
			logger.Info().
				Str("plugin", result.Name).
				Msgf("%d formats built", len(result.Formats))
		}
	}
}

func main() {
	logger := zerolog.New(NewConsoleWriter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(&logger).ExecuteContext(ctx)
	if err != nil {
		stop()
		if eris.Is(err, context.Canceled) {
			logger.Fatal().Msg("Interrupted")
		}
		logger.Fatal().Err(err).Msg("Build failed")
	}
}
