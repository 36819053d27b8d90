package pluginbuild

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
	"github.com/rotisserie/eris"
)

// RelocateFormat replaces <OutputRoot>/<format> with a copy of the format's
// output directory under the source root's Plugins directory.
//
// The previous copy is removed first so the output never mixes files from
// two builds. If the format's output directory does not exist nothing
// happens and (false, nil) is returned. The source directory is left intact.
func RelocateFormat(ctx context.Context, config *BuildConfig, format string) (bool, error) {
	if err := validateFormat(format); err != nil {
		return false, err
	}

	srcDir := filepath.Join(config.PluginsDir(), format)
	if !isDir(srcDir) {
		log(ctx).Debug().
			Str("format", format).
			Str("path", srcDir).
			Msg("No output directory for format")
		return false, nil
	}

	destDir := filepath.Join(config.OutputRoot, format)
	if config.DryRun {
		log(ctx).Info().
			Str("format", format).
			Msgf("Would copy %s to %s", srcDir, destDir)
		return false, nil
	}

	if err := sh.Rm(destDir); err != nil {
		return false, eris.Wrapf(err, "failed to clear %s", destDir)
	}

	if err := copyTree(srcDir, destDir); err != nil {
		return false, eris.Wrapf(err, "failed to copy %s to %s", srcDir, destDir)
	}

	log(ctx).Info().
		Str("format", format).
		Str("path", destDir).
		Msgf("Copied %s output to %s", format, destDir)
	return true, nil
}

// validateFormat rejects format names that would resolve outside the
// Plugins and output directories.
func validateFormat(format string) error {
	if format == "" || format == "." || format == ".." ||
		filepath.Base(format) != format || strings.ContainsAny(format, `/\`) {
		return eris.Errorf("invalid format name %q", format)
	}
	return nil
}

// copyTree recursively copies srcDir to destDir. Symlinks are followed so
// the copy contains regular files only.
func copyTree(srcDir, destDir string) error {
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, info.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(srcDir, entry.Name())
		destPath := filepath.Join(destDir, entry.Name())

		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			target, err := os.Stat(srcPath)
			if err != nil {
				return eris.Wrapf(err, "failed to resolve symlink %s", srcPath)
			}
			mode = target.Mode().Type()
		}

		if mode.IsDir() {
			err = copyTree(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
