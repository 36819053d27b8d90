package pluginbuild

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Orchestrator builds a list of plugin descriptors one after another.
//
// # Usage
//
//	layout := pluginbuild.DefaultLayout(wd)
//	config := pluginbuild.NewBuildConfig(layout)
//	orchestrator := pluginbuild.NewOrchestrator(config)
//
//	if err := orchestrator.Prepare(); err != nil {
//	    return err
//	}
//	results, err := orchestrator.BuildAll(ctx, descriptors)
//
// # Thread Safety
//
// Not safe for concurrent use. Two orchestrators sharing a source root race
// on the same build directories and output tree.
type Orchestrator struct {
	Config  *BuildConfig
	Builder Builder
}

// NewOrchestrator creates an orchestrator using CMake. Commands are run
// with os/exec, or only logged when config.DryRun is set.
func NewOrchestrator(config *BuildConfig) *Orchestrator {
	var runner CommandRunner = NewExecRunner(config)
	if config.DryRun {
		runner = DryRunner{}
	}

	return &Orchestrator{
		Config:  config,
		Builder: NewCmakeBuilder(runner),
	}
}

// Prepare creates the output root and makes sure the source root exists.
//
// The source root is replaced by its symlink-free path, so build
// directories are created next to the real source tree.
func (o *Orchestrator) Prepare() error {
	if err := os.MkdirAll(o.Config.OutputRoot, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create %s", o.Config.OutputRoot)
	}

	if !isDir(o.Config.SourceRoot) {
		return eris.Errorf("plugdata directory not found: %s", o.Config.SourceRoot)
	}

	resolved, err := filepath.EvalSymlinks(o.Config.SourceRoot)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %s", o.Config.SourceRoot)
	}
	o.Config.SourceRoot = resolved

	return nil
}

// CheckTools verifies the builder's tools when it declares any.
func (o *Orchestrator) CheckTools() error {
	if checker, ok := o.Builder.(ToolChecker); ok {
		return checker.CheckTools()
	}
	return nil
}

// BuildAll processes every descriptor in order.
//
// # Return Values
//
// Returns one PluginResult per processed descriptor. Skipped descriptors and
// failed format builds are reported through the results only; the error is
// non-nil only if the run was aborted, in which case the results cover the
// descriptors handled so far including the one that was interrupted.
//
// # Context Cancellation
//
// The context is checked before each descriptor and passed to every child
// process, which is killed when the context is canceled.
func (o *Orchestrator) BuildAll(ctx context.Context, plugins []*PluginDescriptor) ([]*PluginResult, error) {
	results := make([]*PluginResult, 0, len(plugins))

	for _, plugin := range plugins {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := buildPlugin(ctx, o.Config, o.Builder, plugin)
		results = append(results, result)
		if err != nil {
			return results, eris.Wrapf(err, "aborted while building %s", plugin.Name)
		}
	}

	return results, nil
}
