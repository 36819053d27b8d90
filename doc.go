// Package pluginbuild compiles plugdata plugin variants with CMake.
//
// A run reads config.json, configures one CMake build directory per plugin
// and builds one target per requested format. After each build the format's
// output under plugdata/Plugins is copied into the Build directory,
// replacing what an earlier run left there.
//
// # Basic Usage
//
//	layout := pluginbuild.DefaultLayout(wd)
//	plugins, err := pluginbuild.LoadDescriptors(layout.ConfigFile)
//	if err != nil {
//	    return err
//	}
//
//	config := pluginbuild.NewBuildConfig(layout)
//	config.CompilerLauncher = "ccache"
//
//	orchestrator := pluginbuild.NewOrchestrator(config)
//	if err := orchestrator.Prepare(); err != nil {
//	    return err
//	}
//	results, err := orchestrator.BuildAll(ctx, plugins)
//
// # Directory Layout
//
//	.
//	├── config.json
//	├── plugdata/            CMake source root
//	│   └── Plugins/<format> per-format output written by CMake
//	├── Build/<format>       copies made by this package
//	└── Build-<name>/        CMake build directory of each plugin
//
// # Failure Handling
//
// A plugin whose archive is missing or whose configure step fails is
// skipped. A failed target build is reported and the remaining formats are
// still built. Only errors that make further progress impossible are
// returned from BuildAll.
//
// Logging goes through the zerolog.Logger attached with WithLogger.
package pluginbuild
