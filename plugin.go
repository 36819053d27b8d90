package pluginbuild

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// buildPlugin runs every step for a single descriptor.
//
// # Process Flow
//
//  1. Resolve the archive path; skip the descriptor if it is not a file
//  2. Run the configure step; skip the descriptor if it fails
//  3. For each format: build its target, then relocate its output
//
// Per-descriptor and per-format failures are recorded in the returned
// PluginResult. The error return is reserved for conditions that end the
// whole run: a child that could not be started, a canceled context or a
// failed relocation.
func buildPlugin(ctx context.Context, config *BuildConfig, builder Builder, plugin *PluginDescriptor) (*PluginResult, error) {
	result := &PluginResult{
		Name:    plugin.Name,
		Stage:   StagePending,
		Formats: []*FormatResult{},
	}
	logger := log(ctx).With().Str("plugin", plugin.Name).Logger()

	archive, err := config.ResolvePath(plugin.Path)
	if err != nil {
		return result, eris.Wrapf(err, "failed to resolve path of %s", plugin.Name)
	}
	if resolved, err := filepath.EvalSymlinks(archive); err == nil {
		archive = resolved
	}

	if !isRegularFile(archive) {
		logger.Warn().
			Str("path", archive).
			Msgf("Missing zip file for %s: %s", plugin.Name, archive)
		result.Skipped = true
		result.Error = eris.Errorf("missing zip file %s", archive)
		return result, nil
	}

	result.Stage = StageValidated
	result.BuildDir = BuildDirFor(config.SourceRoot, plugin.Name)
	logger.Info().Str("path", result.BuildDir).Msgf("Processing: %s", plugin.Name)

	err = builder.Configure(ctx, config, plugin, archive, result.BuildDir)
	if err != nil {
		if !isExitError(err) {
			return result, err
		}

		result.Skipped = true
		result.Error = BuildError(builder.Name(), "configure", plugin.Name, err)
		logger.Error().Err(err).Msgf("Failed %s configure for %s", builder.Name(), plugin.Name)
		return result, nil
	}

	result.Stage = StageConfigured

	for _, format := range plugin.Formats {
		formatResult, err := buildFormat(ctx, config, builder, plugin, result.BuildDir, format)
		if formatResult != nil {
			result.Formats = append(result.Formats, formatResult)
		}
		if err != nil {
			return result, err
		}
	}

	result.Stage = StageDone
	return result, nil
}

// buildFormat builds the target of one format and relocates its output. A
// failed build doesn't prevent the relocation: the output may still exist
// from an earlier run. A format that isn't a plain directory name is
// recorded as failed without building or relocating anything.
func buildFormat(ctx context.Context, config *BuildConfig, builder Builder, plugin *PluginDescriptor, buildDir, format string) (*FormatResult, error) {
	result := &FormatResult{
		Format: format,
		Target: TargetName(plugin.Type, format),
	}
	logger := log(ctx).With().
		Str("plugin", plugin.Name).
		Str("target", result.Target).
		Logger()

	if err := validateFormat(format); err != nil {
		result.Error = err
		logger.Error().Err(err).Msgf("Skipping format %q of %s", format, plugin.Name)
		return result, nil
	}

	logger.Info().Msgf("Building target: %s", result.Target)

	err := builder.BuildTarget(ctx, config, buildDir, result.Target)
	switch {
	case err == nil:
		result.Success = true
		logger.Info().Msgf("Successfully built: %s", result.Target)
	case isExitError(err):
		result.Error = BuildError(builder.Name(), "build", result.Target, err)
		logger.Error().Err(err).Msgf("Failed to build target: %s", result.Target)
	default:
		return result, err
	}

	relocated, err := RelocateFormat(WithLogger(ctx, &logger), config, format)
	result.Relocated = relocated
	return result, err
}

func isExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
