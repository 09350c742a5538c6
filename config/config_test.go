package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Sort
	}{
		{"hot", SortHot},
		{"HOT", SortHot},
		{"new", SortNew},
		{"rising", SortRising},
		{"controversial", SortControversial},
		{" top ", SortTop},
		{"best", SortNew},
		{"", SortNew},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseSort(tt.in))
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDownloadThreads, cfg.DownloadThreads)
	assert.Contains(t, cfg.Subreddits, "wallpaper")
	assert.Contains(t, cfg.Profiles, DefaultProfile)
	assert.Equal(t, "127.0.0.1:9876", cfg.Server.Addr())
}

func TestValidateJoinsErrors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.DownloadThreads = 0
	cfg.Path = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download_threads")
	assert.Contains(t, err.Error(), "path")
}

func TestSaveAndReadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Path = "/data/pictures"
	require.NoError(t, cfg.AddSubreddit(Subreddit{ProperName: "EarthPorn", NSFW: false, DownloadFirst: true, Sort: SortTop}))
	require.NoError(t, cfg.RemoveSubreddit("wallpapers"))
	require.NoError(t, cfg.Save(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/pictures", got.Path)
	assert.Len(t, got.Subreddits, 2)
	assert.Equal(t, Subreddit{ProperName: "EarthPorn", NSFW: false, DownloadFirst: true, Sort: SortTop}, got.Subreddits["earthporn"])
	assert.Equal(t, NewProfile(), got.Profiles[DefaultProfile])
}

func TestReadFileMissingUsesDefaults(t *testing.T) {
	t.Parallel()
	got, err := ReadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Subreddits, got.Subreddits)
}

func TestReadFileDoesNotMergeDefaultSubreddits(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), FileName)
	content := `
download_threads = 2
path = "/tmp/ridit"

[subreddits.earthporn]
nsfw = false
sort = "weird"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DownloadThreads)
	assert.Len(t, got.Subreddits, 1)
	assert.Equal(t, "earthporn", got.Subreddits["earthporn"].ProperName)
	assert.Equal(t, SortNew, got.Subreddits["earthporn"].Sort)
	assert.Empty(t, got.Profiles)
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv(EnvDownloadThreads, "7")
	t.Setenv(EnvPath, "/srv/ridit")

	got, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, 7, got.DownloadThreads)
	assert.Equal(t, "/srv/ridit", got.Path)
}

func TestLoadRejectsBadEnvironment(t *testing.T) {
	t.Setenv(EnvTimeout, "ten")

	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestDownloadDir(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Path = "/root"
	mobile := NewProfile()
	mobile.Path = "/phone"
	cfg.UpsertProfile("mobile", mobile)

	assert.Equal(t, filepath.Join("/root", "main", "wallpaper"), cfg.DownloadDir("main", "wallpaper"))
	assert.Equal(t, filepath.Join("/phone", "mobile", "wallpaper"), cfg.DownloadDir("mobile", "wallpaper"))
}

func TestProfileManagement(t *testing.T) {
	t.Parallel()
	cfg := Default()

	require.NoError(t, cfg.AddProfile("mobile"))
	assert.ErrorIs(t, cfg.AddProfile("mobile"), ErrProfileExists)
	assert.Equal(t, []string{"main", "mobile"}, cfg.ProfileNames())

	require.NoError(t, cfg.Focus("mobile"))
	require.NoError(t, cfg.RemoveProfile("mobile"))
	assert.Equal(t, "main", cfg.FocusedProfile)
	assert.ErrorIs(t, cfg.RemoveProfile("mobile"), ErrProfileNotFound)
	assert.ErrorIs(t, cfg.Focus("mobile"), ErrProfileNotFound)
}

func TestSetMinimumSizeKeepsSidesIndependent(t *testing.T) {
	t.Parallel()
	cfg := Default()
	height := 720

	require.NoError(t, cfg.SetMinimumSize("main", MinimumSizeUpdate{Height: &height}))

	p := cfg.Profiles["main"]
	assert.Equal(t, 1920, p.MinimumSize.Width)
	assert.Equal(t, 720, p.MinimumSize.Height)
}

func TestSetAspectRatio(t *testing.T) {
	t.Parallel()
	cfg := Default()
	enable := false
	width, height, rng := 9, 16, 0.1

	require.NoError(t, cfg.SetAspectRatio("main", AspectRatioUpdate{Enable: &enable, Width: &width, Height: &height, Range: &rng}))
	assert.Equal(t, AspectRatio{Enable: false, Width: 9, Height: 16, Range: 0.1}, cfg.Profiles["main"].AspectRatio)
	assert.ErrorIs(t, cfg.SetAspectRatio("nope", AspectRatioUpdate{}), ErrProfileNotFound)
}

func TestSubredditManagement(t *testing.T) {
	t.Parallel()
	cfg := Default()

	assert.ErrorIs(t, cfg.AddSubreddit(NewSubreddit("Wallpaper")), ErrSubredditExists)
	require.NoError(t, cfg.RemoveSubreddit("WALLPAPER"))
	assert.ErrorIs(t, cfg.RemoveSubreddit("wallpaper"), ErrSubredditNotFound)
	assert.Equal(t, []string{"wallpapers"}, cfg.SubredditIDs())
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cp := cfg.Clone()
	require.NoError(t, cp.RemoveSubreddit("wallpaper"))
	assert.Contains(t, cfg.Subreddits, "wallpaper")
}

func TestPrint(t *testing.T) {
	t.Parallel()
	cfg := Default()

	var buf bytes.Buffer
	require.NoError(t, cfg.Print(&buf, FormatJSON))
	var fromJSON Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, cfg.Subreddits, fromJSON.Subreddits)

	buf.Reset()
	require.NoError(t, cfg.Print(&buf, FormatYAML))
	var fromYAML Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, cfg.Profiles, fromYAML.Profiles)

	buf.Reset()
	require.NoError(t, cfg.Print(&buf, FormatTOML))
	assert.Contains(t, buf.String(), "download_threads = 4")

	var f Format
	assert.Error(t, f.UnmarshalText([]byte("xml")))
	assert.NoError(t, f.UnmarshalText([]byte("yaml")))
	assert.Equal(t, FormatYAML, f)
}
