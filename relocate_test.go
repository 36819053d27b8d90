package pluginbuild

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newRelocateConfig(t require.TestingT, root string) *BuildConfig {
	config := &BuildConfig{
		SourceRoot: filepath.Join(root, SourceRootName),
		OutputRoot: filepath.Join(root, OutputRootName),
	}
	require.NoError(t, os.MkdirAll(config.PluginsDir(), 0o755))
	require.NoError(t, os.MkdirAll(config.OutputRoot, 0o755))
	return config
}

func writeTree(t require.TestingT, root string, files map[string]string) {
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readTree(t require.TestingT, root string) map[string]string {
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRelocateFormatReplacesPreviousOutput(t *testing.T) {
	config := newRelocateConfig(t, t.TempDir())
	ctx := context.Background()

	writeTree(t, filepath.Join(config.OutputRoot, "vst3"), map[string]string{
		"Old.vst3/plugin.so": "old",
		"stale.txt":          "stale",
	})
	writeTree(t, filepath.Join(config.PluginsDir(), "vst3"), map[string]string{
		"Foo.vst3/Contents/x86_64-linux/Foo.so": "new",
		"Foo.vst3/Contents/Resources/info.txt":  "info",
	})

	relocated, err := RelocateFormat(ctx, config, "vst3")
	require.NoError(t, err)
	assert.True(t, relocated)

	assert.Equal(t, map[string]string{
		"Foo.vst3/Contents/x86_64-linux/Foo.so": "new",
		"Foo.vst3/Contents/Resources/info.txt":  "info",
	}, readTree(t, filepath.Join(config.OutputRoot, "vst3")))

	// source is copied, not moved
	assert.FileExists(t, filepath.Join(config.PluginsDir(), "vst3", "Foo.vst3", "Contents", "x86_64-linux", "Foo.so"))
}

func TestRelocateFormatMissingSource(t *testing.T) {
	config := newRelocateConfig(t, t.TempDir())
	writeTree(t, filepath.Join(config.OutputRoot, "lv2"), map[string]string{"keep.ttl": "keep"})

	relocated, err := RelocateFormat(context.Background(), config, "lv2")
	require.NoError(t, err)
	assert.False(t, relocated)

	// without fresh output the previous copy is left alone
	assert.Equal(t, map[string]string{"keep.ttl": "keep"}, readTree(t, filepath.Join(config.OutputRoot, "lv2")))
}

func TestRelocateFormatDryRun(t *testing.T) {
	config := newRelocateConfig(t, t.TempDir())
	config.DryRun = true
	writeTree(t, filepath.Join(config.PluginsDir(), "clap"), map[string]string{"Foo.clap": "clap"})

	relocated, err := RelocateFormat(context.Background(), config, "clap")
	require.NoError(t, err)
	assert.False(t, relocated)
	assert.NoDirExists(t, filepath.Join(config.OutputRoot, "clap"))
}

func TestCopyTreePreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}

	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeTree(t, src, map[string]string{"bin/Foo": "#!/bin/sh\n"})
	require.NoError(t, os.Chmod(filepath.Join(src, "bin", "Foo"), 0o755))

	dest := filepath.Join(root, "dest")
	require.NoError(t, copyTree(src, dest))

	info, err := os.Stat(filepath.Join(dest, "bin", "Foo"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyTreeFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeTree(t, src, map[string]string{"Versions/A/lib.so": "lib"})

	if err := os.Symlink(filepath.Join("Versions", "A"), filepath.Join(src, "Current")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	dest := filepath.Join(root, "dest")
	require.NoError(t, copyTree(src, dest))

	assert.Equal(t, map[string]string{
		"Versions/A/lib.so": "lib",
		"Current/lib.so":    "lib",
	}, readTree(t, dest))
}

func TestRelocateFormatIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root, err := os.MkdirTemp("", "relocate")
		if err != nil {
			rt.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(root)

		config := newRelocateConfig(rt, root)
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}(/[a-z]{1,6})?\.(so|ttl|txt)`), 1, 6, rapid.ID[string]).Draw(rt, "files")
		stale := rapid.SliceOfN(rapid.StringMatching(`old/[a-z]{1,6}\.bin`), 0, 3).Draw(rt, "stale")

		files := map[string]string{}
		for _, name := range names {
			files[name] = rapid.StringMatching(`[a-z ]{0,20}`).Draw(rt, "content")
		}
		writeTree(rt, filepath.Join(config.PluginsDir(), "vst3"), files)

		leftovers := map[string]string{}
		for _, name := range stale {
			leftovers[name] = "stale"
		}
		writeTree(rt, filepath.Join(config.OutputRoot, "vst3"), leftovers)

		ctx := context.Background()
		_, err = RelocateFormat(ctx, config, "vst3")
		require.NoError(rt, err)
		once := readTree(rt, filepath.Join(config.OutputRoot, "vst3"))

		_, err = RelocateFormat(ctx, config, "vst3")
		require.NoError(rt, err)
		twice := readTree(rt, filepath.Join(config.OutputRoot, "vst3"))

		assert.Equal(rt, files, once)
		assert.Equal(rt, once, twice)
	})
}

func TestRelocateFormatRejectsInvalidNames(t *testing.T) {
	root := t.TempDir()
	config := newRelocateConfig(t, root)
	writeTree(t, root, map[string]string{"config.json": "[]"})
	writeTree(t, config.OutputRoot, map[string]string{"vst3/Foo.vst3": "keep"})

	testCases := []string{"", ".", "..", "vst3/..", "../Build", `vst3\..`, "/abs"}
	for _, format := range testCases {
		t.Run(format, func(t *testing.T) {
			relocated, err := RelocateFormat(context.Background(), config, format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid format name")
			assert.False(t, relocated)
		})
	}

	assert.FileExists(t, filepath.Join(root, "config.json"))
	assert.FileExists(t, filepath.Join(config.OutputRoot, "vst3", "Foo.vst3"))
}

func TestValidateFormatAcceptsPlainNames(t *testing.T) {
	for _, format := range []string{"vst3", "lv2", "au", "clap", "Standalone", "..vst3"} {
		assert.NoError(t, validateFormat(format), format)
	}
}
