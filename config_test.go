package pluginbuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptors(t *testing.T) {
	input := `[
		{"name": "Foo", "path": "./foo.zip", "formats": ["vst3", "lv2"], "type": "fx"},
		{"name": "Bar", "path": "bar.zip", "author": "Bar Audio", "enable_gem": true,
		 "enable_sfizz": true, "enable_ffmpeg": false, "comment": "ignored"}
	]`

	plugins, err := ParseDescriptors(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, plugins, 2)

	foo := plugins[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.Equal(t, "./foo.zip", foo.Path)
	assert.Equal(t, []string{"vst3", "lv2"}, foo.Formats)
	assert.True(t, foo.IsEffect())
	assert.Nil(t, foo.Author)
	assert.False(t, bool(foo.EnableGem))
	assert.False(t, bool(foo.EnableSfizz))
	assert.False(t, bool(foo.EnableFFmpeg))

	bar := plugins[1]
	assert.Empty(t, bar.Formats)
	assert.False(t, bar.IsEffect())
	require.NotNil(t, bar.Author)
	assert.Equal(t, "Bar Audio", *bar.Author)
	assert.True(t, bool(bar.EnableGem))
	assert.True(t, bool(bar.EnableSfizz))
	assert.False(t, bool(bar.EnableFFmpeg))
}

func TestParseDescriptorsErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		message string
	}{
		{"invalid json", `[{"name": "Foo",`, "invalid plugin configuration"},
		{"not an array", `{"name": "Foo"}`, "invalid plugin configuration"},
		{"missing name", `[{"path": "foo.zip"}]`, "entry 0 has no name"},
		{"missing path", `[{"name": "Foo", "path": "foo.zip"}, {"name": "Bar"}]`, "Bar (entry 1) has no path"},
		{"null entry", `[null]`, "entry 0 is null"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDescriptors(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseDescriptorsToggles(t *testing.T) {
	testCases := []struct {
		value   string
		enabled bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`2.5`, true},
		{`"yes"`, true},
		{`""`, false},
		{`null`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			input := `[{"name": "Foo", "path": "foo.zip", "enable_gem": ` + tc.value + `}]`
			plugins, err := ParseDescriptors(strings.NewReader(input))
			require.NoError(t, err)
			assert.Equal(t, tc.enabled, bool(plugins[0].EnableGem))
		})
	}

	_, err := ParseDescriptors(strings.NewReader(`[{"name": "Foo", "path": "foo.zip", "enable_sfizz": [1]}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid toggle value")
}

func TestParseDescriptorsEmptyList(t *testing.T) {
	plugins, err := ParseDescriptors(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, plugins)
}

func TestLoadDescriptors(t *testing.T) {
	layout := DefaultLayout(t.TempDir())

	_, err := LoadDescriptors(layout.ConfigFile)
	require.Error(t, err, "a missing config file must fail the load")

	content := `[{"name": "Foo", "path": "foo.zip", "formats": ["clap"]}]`
	require.NoError(t, os.WriteFile(layout.ConfigFile, []byte(content), 0o644))

	plugins, err := LoadDescriptors(layout.ConfigFile)
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, []string{"clap"}, plugins[0].Formats)
}

func TestDefaultLayout(t *testing.T) {
	wd := filepath.Join("home", "user", "plugins")
	layout := DefaultLayout(wd)

	assert.Equal(t, filepath.Join(wd, "config.json"), layout.ConfigFile)
	assert.Equal(t, filepath.Join(wd, "plugdata"), layout.SourceRoot)
	assert.Equal(t, filepath.Join(wd, "Build"), layout.OutputRoot)

	config := NewBuildConfig(layout)
	assert.Equal(t, HostGenerator(), config.Generator)
	assert.Equal(t, filepath.Join(wd, "plugdata", "Plugins"), config.PluginsDir())
}

func TestResolvePath(t *testing.T) {
	wd := t.TempDir()
	config := &BuildConfig{WorkDir: wd}

	abs := filepath.Join(wd, "zips", "foo.zip")
	got, err := config.ResolvePath(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	got, err = config.ResolvePath("./zips/../foo.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "foo.zip"), got)
}
