package pluginbuild

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Fixed names of the directories and files the build works with.
const (
	ConfigFileName = "config.json"
	SourceRootName = "plugdata"
	OutputRootName = "Build"

	pluginsDirName = "Plugins"
	buildDirPrefix = "Build-"
	authorSentinel = "False"
	targetPrefix   = "plugdata_"
	effectInfix    = "fx_"
)

// Layout holds the absolute locations of the fixed inputs and outputs.
type Layout struct {
	WorkDir    string // Directory the tool was started in
	ConfigFile string // <WorkDir>/config.json
	SourceRoot string // <WorkDir>/plugdata
	OutputRoot string // <WorkDir>/Build
}

// DefaultLayout returns the layout rooted at workDir.
func DefaultLayout(workDir string) Layout {
	return Layout{
		WorkDir:    workDir,
		ConfigFile: filepath.Join(workDir, ConfigFileName),
		SourceRoot: filepath.Join(workDir, SourceRootName),
		OutputRoot: filepath.Join(workDir, OutputRootName),
	}
}

// LoadDescriptors reads the plugin list from a JSON file.
func LoadDescriptors(path string) ([]*PluginDescriptor, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open %s", path)
	}
	defer handle.Close()

	descriptors, err := ParseDescriptors(handle)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to load %s", path)
	}

	return descriptors, nil
}

// ParseDescriptors decodes a JSON array of plugin descriptors.
//
// Unknown keys are ignored. An entry without name or path is rejected since
// nothing can be built for it.
func ParseDescriptors(r io.Reader) ([]*PluginDescriptor, error) {
	var descriptors []*PluginDescriptor
	if err := json.NewDecoder(r).Decode(&descriptors); err != nil {
		return nil, eris.Wrap(err, "invalid plugin configuration")
	}

	for idx, d := range descriptors {
		if d == nil {
			return nil, eris.Errorf("plugin entry %d is null", idx)
		}
		if d.Name == "" {
			return nil, eris.Errorf("plugin entry %d has no name", idx)
		}
		if d.Path == "" {
			return nil, eris.Errorf("plugin %s (entry %d) has no path", d.Name, idx)
		}
	}

	return descriptors, nil
}
