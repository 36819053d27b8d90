package pluginbuild

import "context"

// Builder drives the external build tool for plugin descriptors.
//
// The orchestrator calls the methods in this order for every descriptor:
//
//  1. Configure() - prepare buildDir for the descriptor
//  2. BuildTarget() - once per requested format
//
// Both calls block until the child process exits. A child that ran but
// failed is reported as *ExitError, which the orchestrator treats as a
// per-descriptor (Configure) or per-format (BuildTarget) failure. Any other
// error aborts the whole run.
//
// # Example Implementation
//
//	type MesonBuilder struct{ Runner CommandRunner }
//
//	func (b *MesonBuilder) Name() string { return "Meson" }
//
//	func (b *MesonBuilder) Configure(ctx context.Context, config *BuildConfig, plugin *PluginDescriptor, archive, buildDir string) error {
//	    return b.Runner.Run(ctx, config.SourceRoot, "meson", "setup", buildDir)
//	}
//
//	func (b *MesonBuilder) BuildTarget(ctx context.Context, config *BuildConfig, buildDir, target string) error {
//	    return b.Runner.Run(ctx, config.SourceRoot, "meson", "compile", "-C", buildDir, target)
//	}
type Builder interface {
	// Name returns the human-readable name of the build tool.
	//
	// This name is used in error messages and logs.
	Name() string

	// Configure generates buildDir for plugin.
	//
	// archive is the absolute path of the plugin's source archive.
	Configure(ctx context.Context, config *BuildConfig, plugin *PluginDescriptor, archive, buildDir string) error

	// BuildTarget compiles one target inside an already configured buildDir.
	BuildTarget(ctx context.Context, config *BuildConfig, buildDir, target string) error
}
