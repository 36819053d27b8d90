package pluginbuild

import (
	"os"

	"github.com/rotisserie/eris"
)

// BuildError creates a standardized error for a failed build tool step.
//
// # Format
//
// With an error:
//
//	CMake configure failed for Foo: cmake exited with status 1
//
// Without an error:
//
//	CMake configure failed for Foo
func BuildError(builder, step, subject string, err error) error {
	if err == nil {
		return eris.Errorf("%s %s failed for %s", builder, step, subject)
	}
	return eris.Wrapf(err, "%s %s failed for %s", builder, step, subject)
}

// isRegularFile reports whether path exists and is a regular file.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
