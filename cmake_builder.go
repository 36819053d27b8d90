package pluginbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Generator is a CMake generator name as passed to -G.
type Generator string

// Generators used for the supported host platforms.
const (
	GeneratorXcode        Generator = "Xcode"
	GeneratorVisualStudio Generator = "Visual Studio 17 2022"
	GeneratorNinja        Generator = "Ninja"
)

const (
	cmakeProgram     = "cmake"
	releaseBuildType = "Release"
	platformWindows  = "windows"
	platformDarwin   = "darwin"
)

// GeneratorFor returns the CMake generator for a GOOS value.
//
// macOS builds use Xcode, Windows builds use Visual Studio and everything
// else is treated like Linux and uses Ninja.
func GeneratorFor(goos string) Generator {
	switch goos {
	case platformDarwin:
		return GeneratorXcode
	case platformWindows:
		return GeneratorVisualStudio
	default:
		return GeneratorNinja
	}
}

// HostGenerator returns the generator for the running platform.
func HostGenerator() Generator {
	return GeneratorFor(runtime.GOOS)
}

// TargetName returns the CMake target building format for a plugin of the
// given type, e.g. plugdata_fx_vst3 for an effect.
func TargetName(pluginType, format string) string {
	if strings.ToLower(pluginType) == "fx" {
		return targetPrefix + effectInfix + format
	}
	return targetPrefix + format
}

// BuildDirFor returns the build directory of a plugin. It sits next to the
// source root so that every plugin keeps its own incremental build.
func BuildDirFor(sourceRoot, name string) string {
	return filepath.Join(filepath.Dir(sourceRoot), buildDirPrefix+name)
}

// CmakeBuilder handles the cmake configure → cmake --build workflow
type CmakeBuilder struct {
	Runner CommandRunner
}

// NewCmakeBuilder creates a builder running cmake through runner.
func NewCmakeBuilder(runner CommandRunner) *CmakeBuilder {
	return &CmakeBuilder{Runner: runner}
}

// Name returns the builder name
func (b *CmakeBuilder) Name() string {
	return "CMake"
}

// RequiredTools returns the tools this builder needs.
func (b *CmakeBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: cmakeProgram, Purpose: "CMake build system"},
	}
}

// CheckTools verifies that cmake is on the PATH.
func (b *CmakeBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Configure runs the cmake configure step in the source root.
func (b *CmakeBuilder) Configure(ctx context.Context, config *BuildConfig, plugin *PluginDescriptor, archive, buildDir string) error {
	return b.Runner.Run(ctx, config.SourceRoot, cmakeProgram, ConfigureArgs(config, plugin, archive, buildDir)...)
}

// BuildTarget runs cmake --build for a single target in the source root.
func (b *CmakeBuilder) BuildTarget(ctx context.Context, config *BuildConfig, buildDir, target string) error {
	return b.Runner.Run(ctx, config.SourceRoot, cmakeProgram, BuildArgs(buildDir, target)...)
}

// ConfigureArgs returns the arguments of the configure invocation.
//
// # Parameters
//
//   - config: Supplies the generator and the optional compiler launcher
//   - plugin: Supplies the name, author and feature toggles
//   - archive: Absolute path of the plugin's zip file
//   - buildDir: Build directory passed as -B<buildDir>
//
// # Returns
//
// Returns the arguments in a fixed order:
//
//	-G <generator> -B<buildDir>
//	-DCUSTOM_PLUGIN_NAME=<name> -DCUSTOM_PLUGIN_PATH=<archive>
//	-DCUSTOM_PLUGIN_COMPANY=<author or False> -DCMAKE_BUILD_TYPE=Release
//	-DENABLE_GEM=0|1 -DENABLE_SFIZZ=0|1 -DENABLE_FFMPEG=0|1
//
// followed by -DCMAKE_C_COMPILER_LAUNCHER and -DCMAKE_CXX_COMPILER_LAUNCHER
// when a launcher is configured. Values are passed verbatim, without shell
// quoting.
func ConfigureArgs(config *BuildConfig, plugin *PluginDescriptor, archive, buildDir string) []string {
	author := authorSentinel
	if plugin.Author != nil {
		author = *plugin.Author
	}

	args := []string{
		"-G", string(config.Generator),
		"-B" + buildDir,
		define("CUSTOM_PLUGIN_NAME", plugin.Name),
		define("CUSTOM_PLUGIN_PATH", archive),
		define("CUSTOM_PLUGIN_COMPANY", author),
		define("CMAKE_BUILD_TYPE", releaseBuildType),
		define("ENABLE_GEM", boolDefine(bool(plugin.EnableGem))),
		define("ENABLE_SFIZZ", boolDefine(bool(plugin.EnableSfizz))),
		define("ENABLE_FFMPEG", boolDefine(bool(plugin.EnableFFmpeg))),
	}

	if config.CompilerLauncher != "" {
		args = append(args,
			define("CMAKE_C_COMPILER_LAUNCHER", config.CompilerLauncher),
			define("CMAKE_CXX_COMPILER_LAUNCHER", config.CompilerLauncher))
	}

	return args
}

// BuildArgs returns the arguments of the build invocation for one target.
func BuildArgs(buildDir, target string) []string {
	return []string{"--build", buildDir, "--target", target}
}

func define(name, value string) string {
	return fmt.Sprintf("-D%s=%s", name, value)
}

func boolDefine(enabled bool) string {
	if enabled {
		return "1"
	}
	return "0"
}
