package filter

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Logger = log.Level(zerolog.FatalLevel)
}

func TestAspectRatio(t *testing.T) {
	t.Parallel()
	main := config.NewProfile()
	tests := []struct {
		name string
		dims Dimensions
		want bool
	}{
		{"exact 16:9", Dimensions{1920, 1080}, true},
		{"ultrawide outside band", Dimensions{3440, 1440}, false},
		{"panorama", Dimensions{3000, 500}, false},
		{"16:10 inside band", Dimensions{1920, 1200}, true},
		{"lower edge", Dimensions{Width: 14778, Height: 10000}, true},
		{"below lower edge", Dimensions{Width: 14777, Height: 10000}, false},
		{"portrait", Dimensions{1080, 1920}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AspectRatio().Accepts(main, tt.dims))
		})
	}
}

func TestDisabledPredicatesAlwaysPass(t *testing.T) {
	t.Parallel()
	p := config.NewProfile()
	p.AspectRatio.Enable = false
	p.MinimumSize.Enable = false

	for _, d := range []Dimensions{{1, 1}, {3000, 500}, {0, 0}, {100000, 1}} {
		assert.True(t, AspectRatio().Accepts(p, d), d.String())
		assert.True(t, MinimumSize().Accepts(p, d), d.String())
	}
}

func TestMinimumSize(t *testing.T) {
	t.Parallel()
	p := config.NewProfile()
	tests := []struct {
		dims Dimensions
		want bool
	}{
		{Dimensions{1920, 1080}, true},
		{Dimensions{3840, 2160}, true},
		{Dimensions{1919, 1080}, false},
		{Dimensions{1920, 1079}, false},
		{Dimensions{5000, 100}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinimumSize().Accepts(p, tt.dims), tt.dims.String())
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://i.redd.it/05sk8tzriboa1.jpg", "05sk8tzriboa1.jpg", false},
		{"https://i.redd.it/mountains.png?width=3840&format=png", "mountains.png", false},
		{"https://i.redd.it/rain.gif", "", true},
		{"https://i.redd.it/photo.jpeg", "", true},
		{"https://i.redd.it/noext", "", true},
		{"https://imgur.com/a/", "", true},
		{"https://i.redd.it/UPPER.JPG", "", true},
		{"https://i.redd.it/we!rd:name.png", "werdname.png", false},
		{"https://i.redd.it/.png", "", true},
		{"https://i.redd.it/!!.jpg", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			got, err := Filename(tt.url)
			if tt.wantErr {
				var ferr *FilenameError
				assert.ErrorAs(t, err, &ferr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidatesMetadataMode(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	profiles := map[string]config.Profile{"main": config.NewProfile()}
	source := config.Subreddit{ProperName: "wallpaper", NSFW: false, Sort: config.SortNew}

	got := Candidates(l, source, profiles)

	require.Len(t, got, 2)
	assert.Equal(t, "05sk8tzriboa1.jpg", got[0].Filename)
	assert.Equal(t, []string{"main"}, got[0].Profiles)
	assert.Equal(t, "https://i.redd.it/05sk8tzriboa1.jpg", got[0].URL)
	assert.Equal(t, "treehugger", got[0].Author)
	assert.Equal(t, "wallpaper", got[0].Subreddit)
	assert.Equal(t, "mountains.png", got[1].Filename)

	d, ok := got[0].Dimensions()
	assert.True(t, ok)
	assert.Equal(t, Dimensions{1920, 1080}, d)
	assert.Equal(t, Known, got[0].State())
}

func TestCandidatesAllowsNSFW(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	profiles := map[string]config.Profile{"main": config.NewProfile()}
	source := config.Subreddit{ProperName: "wallpaper", NSFW: true}

	got := Candidates(l, source, profiles)

	require.Len(t, got, 3)
	assert.Equal(t, "spicysunset.jpg", got[1].Filename)
	assert.True(t, got[1].NSFW)
}

func TestCandidatesSentinelDimensions(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	open := config.NewProfile()
	open.AspectRatio.Enable = false
	open.MinimumSize.Enable = false
	source := config.Subreddit{ProperName: "wallpaper"}

	got := Candidates(l, source, map[string]config.Profile{"open": open})

	require.Len(t, got, 4)
	last := got[len(got)-1]
	assert.Equal(t, "nopreview.jpg", last.Filename)
	d, ok := last.Dimensions()
	assert.True(t, ok)
	assert.Equal(t, Dimensions{1, 1}, d)
}

func TestCandidatesMultipleProfiles(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	mobile := config.NewProfile()
	mobile.AspectRatio.Enable = false
	mobile.MinimumSize.Width = 1000
	mobile.MinimumSize.Height = 400
	profiles := map[string]config.Profile{
		"main":   config.NewProfile(),
		"mobile": mobile,
	}

	got := Candidates(l, config.Subreddit{ProperName: "wallpaper"}, profiles)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"main", "mobile"}, got[0].Profiles)
	assert.Equal(t, "panorama3000.png", got[1].Filename)
	assert.Equal(t, []string{"mobile"}, got[1].Profiles)
	assert.True(t, got[1].AcceptedBy("mobile"))
	assert.False(t, got[1].AcceptedBy("main"))
}

func TestCandidatesDownloadFirst(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	profiles := map[string]config.Profile{"main": config.NewProfile()}
	source := config.Subreddit{ProperName: "wallpaper", DownloadFirst: true}

	got := Candidates(l, source, profiles)

	// Everything with a valid filename, regardless of the listing size.
	require.Len(t, got, 4)
	for _, c := range got {
		assert.Equal(t, Unprobed, c.State())
		assert.Empty(t, c.Profiles)
		_, ok := c.Dimensions()
		assert.False(t, ok)
	}
}

func TestCandidatesUseConfiguredSubreddit(t *testing.T) {
	t.Parallel()
	l := &api.Listing{}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"children":[
		{"data":{"id":"a","subreddit":"../../escape","url":"https://i.redd.it/a.png",
			"preview":{"images":[{"source":{"url":"p","width":1920,"height":1080}}]}}},
		{"data":{"id":"b","subreddit":"","url":"https://i.redd.it/b.png",
			"preview":{"images":[{"source":{"url":"p","width":1920,"height":1080}}]}}}
	]}}`), l))
	profiles := map[string]config.Profile{"main": config.NewProfile()}

	got := Candidates(l, config.Subreddit{ProperName: "wallpaper"}, profiles)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, "wallpaper", c.Subreddit)
	}

	for _, name := range []string{"", ".", "..", "../x", `a\b`} {
		assert.Nil(t, Candidates(l, config.Subreddit{ProperName: name}, profiles), name)
	}
}

func TestCandidatesNoProfiles(t *testing.T) {
	t.Parallel()
	l := loadListing(t)
	assert.Empty(t, Candidates(l, config.Subreddit{}, nil))
	assert.Nil(t, Candidates(nil, config.Subreddit{}, nil))
}

func TestSetProbed(t *testing.T) {
	t.Parallel()
	c := NewUnprobedCandidate()
	require.NoError(t, c.SetProbed(Dimensions{800, 600}))
	assert.Equal(t, Probed, c.State())
	assert.ErrorIs(t, c.SetProbed(Dimensions{1, 1}), ErrDimensionsSet)

	d, _ := c.Dimensions()
	assert.Equal(t, Dimensions{800, 600}, d)

	known := NewCandidate(Dimensions{1920, 1080})
	assert.ErrorIs(t, known.SetProbed(Dimensions{1, 1}), ErrDimensionsSet)
}

func TestAcceptingProfilesSkip(t *testing.T) {
	t.Parallel()
	profiles := map[string]config.Profile{
		"main":   config.NewProfile(),
		"mobile": config.NewProfile(),
	}
	got := AcceptingProfiles(profiles, Dimensions{1920, 1080}, func(p string) bool { return p == "main" })
	assert.Equal(t, []string{"mobile"}, got)
}

func loadListing(t *testing.T) *api.Listing {
	t.Helper()
	b, err := os.ReadFile("../api/testdata/listing.json")
	require.NoError(t, err)

	var l api.Listing
	require.NoError(t, json.Unmarshal(b, &l))
	return &l
}
