package pluginbuild

import (
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// execLookPath is swapped out by tests.
var execLookPath = exec.LookPath

// ToolChecker is implemented by builders that depend on external programs.
//
// The CLI calls CheckTools() before processing any descriptor so that a
// missing build tool fails the run once instead of once per plugin.
type ToolChecker interface {
	// RequiredTools returns the list of tools the builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools returns an error naming every missing required tool.
	CheckTools() error
}

// ToolRequirement describes a program the build depends on.
//
// Examples:
//
//	ToolRequirement{Name: "cmake", Purpose: "CMake build system"}
//	ToolRequirement{Name: "sccache", Alternatives: []string{"ccache"}, Optional: true}
type ToolRequirement struct {
	// Name is the primary binary name.
	Name string

	// Alternatives can satisfy the requirement when Name is missing.
	Alternatives []string

	// Optional tools never cause CheckRequiredTools to fail.
	Optional bool

	// Purpose is shown in error messages.
	Purpose string
}

// CheckToolAvailable checks if a tool is on the PATH.
//
// # Parameters
//
//   - tool: The binary name to look up (e.g., "cmake", "ccache")
//
// # Returns
//
// Returns nil if the tool is found, or an error naming the tool if not.
//
// # Example
//
//	if err := CheckToolAvailable("cmake"); err != nil {
//	    return err // "cmake not found in PATH"
//	}
//
// # Thread Safety
//
// Safe for concurrent use as long as tests don't swap the lookup function.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return eris.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// MissingTools returns the requirements that no tool on the PATH satisfies.
//
// # Parameters
//
//   - requirements: Tools to look up; a requirement is met when its Name or
//     any of its Alternatives is found
//
// # Returns
//
// Returns the unmet requirements in input order, optional ones included, or
// nil when everything is available. The CLI uses it to warn about a missing
// compiler launcher without failing the run.
func MissingTools(requirements []ToolRequirement) []ToolRequirement {
	var missing []ToolRequirement

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil
		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}

		if !found {
			missing = append(missing, req)
		}
	}

	return missing
}

// CheckRequiredTools verifies that all non-optional requirements are met.
//
// Error format for a single tool:
//
//	cmake not found in PATH (required for: CMake build system)
//
// and for several tools:
//
//	missing required tools: cmake (CMake build system), ninja
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missing []ToolRequirement
	for _, req := range MissingTools(requirements) {
		if !req.Optional {
			missing = append(missing, req)
		}
	}

	switch len(missing) {
	case 0:
		return nil
	case 1:
		if missing[0].Purpose != "" {
			return eris.Errorf("%s not found in PATH (required for: %s)", missing[0].Name, missing[0].Purpose)
		}
		return eris.Errorf("%s not found in PATH", missing[0].Name)
	}

	names := make([]string, 0, len(missing))
	for _, req := range missing {
		if req.Purpose != "" {
			names = append(names, req.Name+" ("+req.Purpose+")")
		} else {
			names = append(names, req.Name)
		}
	}

	return eris.Errorf("missing required tools: %s", strings.Join(names, ", "))
}
