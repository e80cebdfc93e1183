package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Sort
	}{
		{"hot", SortHot},
		{"NEW", SortNew},
		{"Top", SortTop},
		{" controversial ", SortControversial},
		{"rising", SortRising},
		{"best", SortHot},
		{"", SortHot},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, ParseSort(test.in), "ParseSort(%q)", test.in)
	}
}

func TestDecodeDefaultFile(t *testing.T) {
	t.Parallel()
	cfg, err := Decode([]byte(DefaultFile), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeTOML(t *testing.T) {
	t.Parallel()
	const file = `
[downloads]
subreddits = [" wallpapers ", "EarthPorn", "wallpapers", ""]
sort = "ToP"
nsfw = false
timeout = 1500
proceed_download_on_file_exist = true

[aspect_ratio]
enable = false

[symbolic_link]
enable = true
`
	cfg, err := Decode([]byte(file), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, []string{"wallpapers", "EarthPorn"}, cfg.Downloads.Subreddits)
	assert.Equal(t, SortTop, cfg.Downloads.Sort)
	assert.False(t, cfg.Downloads.NSFW)
	assert.True(t, cfg.Overwrite())
	assert.Equal(t, 1500*time.Millisecond, cfg.ConnectTimeout())
	assert.Equal(t, DefaultTransferTimeout, cfg.TransferTimeout())
	assert.False(t, cfg.AspectRatio.Enable)
	assert.Equal(t, 16, cfg.AspectRatio.WidthAspect, "missing keys keep defaults")
	assert.True(t, cfg.SymbolicLink.Enable)
	assert.True(t, cfg.MinimumSize.Enable)
}

func TestDecodeTOMLInvalidSort(t *testing.T) {
	t.Parallel()
	cfg, err := Decode([]byte("[downloads]\nsort = \"random\"\n"), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, SortHot, cfg.Downloads.Sort)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	const file = `
downloads:
  subreddits: [wallpaper]
  sort: Rising
  workers: 3
aspect_ratio:
  ratio_range: 0.25
minimum_size:
  enable: false
advanced:
  user_agent: test-agent
`
	cfg, err := Decode([]byte(file), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"wallpaper"}, cfg.Downloads.Subreddits)
	assert.Equal(t, SortRising, cfg.Downloads.Sort)
	assert.Equal(t, 3, cfg.WorkerCount())
	assert.InDelta(t, 0.25, cfg.AspectRatio.RatioRange, 1e-9)
	assert.False(t, cfg.MinimumSize.Enable)
	assert.Equal(t, "test-agent", cfg.UserAgent())
}

func TestDecodeYAMLNonStringSort(t *testing.T) {
	t.Parallel()
	cfg, err := Decode([]byte("downloads:\n  sort: [1, 2]\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, SortHot, cfg.Downloads.Sort)
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("[downloads\nsort="), FormatTOML)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode([]byte("downloads: [a: b"), FormatYAML)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFormatOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FormatTOML, FormatOf("ridit.toml"))
	assert.Equal(t, FormatYAML, FormatOf("ridit.YAML"))
	assert.Equal(t, FormatYAML, FormatOf("/etc/ridit.yml"))
	assert.Equal(t, FormatTOML, FormatOf("ridit"))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"default", func(*Config) {}, nil},
		{"no subreddits", func(c *Config) { c.Downloads.Subreddits = nil }, ErrNoSubreddits},
		{"zero height aspect", func(c *Config) { c.AspectRatio.HeightAspect = 0 }, ErrInvalidAspect},
		{"zero height aspect disabled", func(c *Config) {
			c.AspectRatio.Enable = false
			c.AspectRatio.HeightAspect = 0
		}, nil},
		{"negative range", func(c *Config) { c.AspectRatio.RatioRange = -1 }, ErrInvalidAspect},
		{"negative size", func(c *Config) { c.MinimumSize.MinimumWidth = -1 }, ErrInvalidSize},
		{"empty path", func(c *Config) { c.Downloads.Path = " " }, ErrInvalidPath},
		{"empty custom path", func(c *Config) {
			c.SymbolicLink.Enable = true
			c.SymbolicLink.UseCustomPath = true
		}, ErrInvalidPath},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if test.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.want)
			}
		})
	}
}

func TestAspectRatioBounds(t *testing.T) {
	t.Parallel()
	a := AspectRatio{Enable: true, WidthAspect: 16, HeightAspect: 9, RatioRange: 0.5}
	lo, hi := a.Bounds()
	assert.InDelta(t, 16.0/9.0-0.5, lo, 1e-9)
	assert.InDelta(t, 16.0/9.0+0.5, hi, 1e-9)
	assert.Zero(t, AspectRatio{}.Ratio())
}

func TestWorkerCountDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.Positive(t, cfg.WorkerCount())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RIDIT_TEST_DIR", "pictures")

	base := t.TempDir()
	tests := []struct {
		in, want string
	}{
		{"downloads", filepath.Join(base, "downloads")},
		{"./a/../b", filepath.Join(base, "b")},
		{"~", home},
		{"~/walls", filepath.Join(home, "walls")},
		{"$RIDIT_TEST_DIR/x", filepath.Join(base, "pictures", "x")},
		{base, base},
	}
	for _, test := range tests {
		got, err := ExpandPath(test.in, base)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}

	_, err = ExpandPath("", base)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte(`
[downloads]
subreddits = ["wallpaper"]
path = "`+filepath.ToSlash(filepath.Join(dir, "out"))+`"

[symbolic_link]
enable = true
use_custom_path = true
custom_path = "`+filepath.ToSlash(filepath.Join(dir, "links"))+`"
`), 0o644))

	t.Setenv(EnvSubreddits, "wallpapers, EarthPorn")
	t.Setenv(EnvUserAgent, "env-agent")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvNSFW, "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"wallpapers", "EarthPorn"}, cfg.Downloads.Subreddits)
	assert.Equal(t, "env-agent", cfg.UserAgent())
	assert.Equal(t, 2, cfg.WorkerCount())
	assert.False(t, cfg.Downloads.NSFW)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Downloads.Path)
	assert.Equal(t, filepath.Join(dir, "links"), cfg.SymbolicLink.CustomPath)
}

func TestLoadInvalidEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, WriteDefaultTo(path))

	t.Setenv(EnvWorkers, "many")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEnv)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindExplicit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")

	_, err := Find(path)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	got, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestWriteDefaultTo(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", Filename)
	require.NoError(t, WriteDefaultTo(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultFile, string(b))
}

func TestCreateDirs(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Downloads.Path = filepath.Join(t.TempDir(), "downloads")

	require.NoError(t, CreateDirs(cfg))
	require.NoError(t, CreateDirs(cfg), "creating existing directories is not an error")

	for _, s := range cfg.Downloads.Subreddits {
		fi, err := os.Stat(filepath.Join(cfg.Downloads.Path, s))
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestCreateDirsFailure(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := Default()
	cfg.Downloads.Path = filepath.Join(blocker, "downloads")
	assert.Error(t, CreateDirs(cfg))
}
