package pluginbuild

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// PluginDescriptor is one entry of config.json.
//
// Only Name and Path are required. Every other field has a zero value that
// matches what the build expects when the key is absent:
//   - Formats: no build step runs
//   - Type: the instrument target naming is used
//   - Author: CUSTOM_PLUGIN_COMPANY is set to the "False" sentinel
//   - Enable*: the feature is switched off
//
// A null or absent Author is rendered as the "False" sentinel, never as a
// string like "None".
type PluginDescriptor struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Formats      []string `json:"formats"`
	Type         string   `json:"type"`
	Author       *string  `json:"author"`
	EnableGem    Toggle   `json:"enable_gem"`
	EnableSfizz  Toggle   `json:"enable_sfizz"`
	EnableFFmpeg Toggle   `json:"enable_ffmpeg"`
}

// Toggle is a feature switch in config.json. Besides true and false it
// accepts numbers (non-zero is on) and strings (non-empty is on); null is off.
type Toggle bool

// UnmarshalJSON implements json.Unmarshaler.
func (t *Toggle) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		*t = false
	case bool:
		*t = Toggle(v)
	case float64:
		*t = v != 0
	case string:
		*t = v != ""
	default:
		return eris.Errorf("invalid toggle value %s", data)
	}
	return nil
}

// IsEffect reports whether the descriptor selects the effect target naming.
func (d *PluginDescriptor) IsEffect() bool {
	return strings.ToLower(d.Type) == "fx"
}

// Stage is the furthest point a descriptor reached during a run.
type Stage int

const (
	StagePending Stage = iota
	StageValidated
	StageConfigured
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageValidated:
		return "validated"
	case StageConfigured:
		return "configured"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// PluginResult contains the outcome of processing one descriptor.
//
// A skipped descriptor (missing archive or failed configure step) has
// Skipped=true and Error set; its Formats slice is empty.
type PluginResult struct {
	Name     string          // Descriptor name
	BuildDir string          // CMake build directory used for this plugin
	Stage    Stage           // Last stage reached
	Skipped  bool            // True if the descriptor was abandoned
	Error    error           // Reason the descriptor was abandoned, nil otherwise
	Formats  []*FormatResult // One entry per requested format, in order
}

// Failed returns the number of formats whose build step failed.
func (r *PluginResult) Failed() int {
	n := 0
	for _, f := range r.Formats {
		if !f.Success {
			n++
		}
	}
	return n
}

// FormatResult contains the outcome of building and relocating one format.
type FormatResult struct {
	Format    string // Format name as written in config.json
	Target    string // CMake target that was built
	Success   bool   // True if the build step exited with status 0
	Relocated bool   // True if the format's output was copied into the output root
	Error     error  // Build step error, nil on success
}

// BuildConfig contains the options shared by every descriptor in a run.
//
// Paths:
//   - WorkDir: directory relative descriptor paths resolve against
//     (the process working directory when empty)
//   - SourceRoot: absolute path of the plugdata checkout (CMake source dir)
//   - OutputRoot: absolute path of the directory receiving per-format copies
//
// Build options:
//   - Generator: CMake generator, usually HostGenerator()
//   - CompilerLauncher: optional ccache/sccache style wrapper
//   - DryRun: log the commands instead of running them
//
// Stdout and Stderr receive the child processes' output. Nil means os.Stdout
// and os.Stderr.
type BuildConfig struct {
	WorkDir    string
	SourceRoot string
	OutputRoot string

	Generator        Generator
	CompilerLauncher string
	DryRun           bool

	Stdout io.Writer
	Stderr io.Writer
}

// NewBuildConfig creates the configuration for a layout, using the host's
// CMake generator.
func NewBuildConfig(layout Layout) *BuildConfig {
	return &BuildConfig{
		WorkDir:    layout.WorkDir,
		SourceRoot: layout.SourceRoot,
		OutputRoot: layout.OutputRoot,
		Generator:  HostGenerator(),
	}
}

// ResolvePath makes a descriptor path absolute.
func (c *BuildConfig) ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if c.WorkDir != "" {
		return filepath.Join(c.WorkDir, path), nil
	}
	return filepath.Abs(path)
}

// PluginsDir is the directory where CMake deposits per-format outputs.
func (c *BuildConfig) PluginsDir() string {
	return filepath.Join(c.SourceRoot, pluginsDirName)
}
