package main

import (
	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/progress"
)

type AppArguments struct {
	Config  string           `arg:"--config" help:"path to ridit.toml, RIDIT_CONFIG overrides the default location"`
	Profile string           `arg:"-p,--profile" help:"profile to change, defaults to the focused profile"`
	Display progress.Display `arg:"--display" default:"auto" help:"progress display: auto, bar, text or none"`
	Verbose bool             `arg:"-v,--verbose" help:"enable debug logging"`

	Start       *StartCmd       `arg:"subcommand:start" help:"download wallpapers from every subscribed subreddit"`
	Serve       *ServeCmd       `arg:"subcommand:serve" help:"run the status server"`
	ProfileCmd  *ProfileCmd     `arg:"subcommand:profile" help:"manage download profiles"`
	AspectRatio *AspectRatioCmd `arg:"subcommand:aspect-ratio" help:"change the aspect ratio filter of a profile"`
	MinimumSize *MinimumSizeCmd `arg:"subcommand:minimum-size" help:"change the minimum size filter of a profile"`
	Subreddit   *SubredditCmd   `arg:"subcommand:subreddit" help:"manage subscribed subreddits"`
	Download    *DownloadCmd    `arg:"subcommand:download" help:"change global download settings"`
	Print       *PrintCmd       `arg:"subcommand:print" help:"print the configuration"`
}

func (AppArguments) Version() string {
	return "ridit " + api.Version
}

func (AppArguments) Description() string {
	return "ridit downloads wallpapers from reddit into one directory per profile and subreddit"
}

type StartCmd struct{}

type ServeCmd struct {
	Addr string `arg:"--addr" help:"listen address, defaults to the server section of the configuration"`
}

type ProfileCmd struct {
	Add    *NameArg `arg:"subcommand:add" help:"create a profile with default settings"`
	Remove *NameArg `arg:"subcommand:remove" help:"delete a profile"`
	List   *ListCmd `arg:"subcommand:list" help:"list profiles"`
	Focus  *NameArg `arg:"subcommand:focus" help:"use the profile when --profile is not given"`
}

type NameArg struct {
	Name string `arg:"positional,required"`
}

type ListCmd struct{}

type AspectRatioCmd struct {
	Enable  bool     `arg:"--enable" help:"turn the filter on"`
	Disable bool     `arg:"--disable" help:"turn the filter off"`
	Width   *int     `arg:"--width" help:"ratio width, e.g. 16"`
	Height  *int     `arg:"--height" help:"ratio height, e.g. 9"`
	Range   *float64 `arg:"--range" help:"accepted deviation from width/height"`
}

type MinimumSizeCmd struct {
	Enable  bool `arg:"--enable" help:"turn the filter on"`
	Disable bool `arg:"--disable" help:"turn the filter off"`
	Width   *int `arg:"--width" help:"minimum width in pixels"`
	Height  *int `arg:"--height" help:"minimum height in pixels"`
}

type SubredditCmd struct {
	Add    *SubredditAddCmd `arg:"subcommand:add" help:"subscribe to a subreddit"`
	Remove *NameArg         `arg:"subcommand:remove" help:"unsubscribe from a subreddit"`
	List   *ListCmd         `arg:"subcommand:list" help:"list subscribed subreddits"`
}

type SubredditAddCmd struct {
	Name          string      `arg:"positional,required"`
	NoNSFW        bool        `arg:"--no-nsfw" help:"skip posts marked NSFW"`
	DownloadFirst bool        `arg:"--download-first" help:"probe image sizes instead of trusting previews"`
	Sort          config.Sort `arg:"--sort" default:"new" help:"hot, new, top, rising or controversial"`
}

type DownloadCmd struct {
	Path           *PathArg    `arg:"subcommand:path" help:"set the download root"`
	ConnectTimeout *SecondsArg `arg:"subcommand:connect-timeout" help:"set the connect timeout in seconds"`
	Threads        *ThreadsArg `arg:"subcommand:threads" help:"set the number of simultaneous downloads"`
}

type PathArg struct {
	Path string `arg:"positional,required"`
}

type SecondsArg struct {
	Seconds int `arg:"positional,required"`
}

type ThreadsArg struct {
	Threads int `arg:"positional,required"`
}

type PrintCmd struct {
	Format config.Format `arg:"--format" default:"toml" help:"toml, json or yaml"`
}

// enabled turns an --enable/--disable pair into an optional value.
func enabled(enable, disable bool) *bool {
	switch {
	case enable:
		v := true
		return &v
	case disable:
		v := false
		return &v
	default:
		return nil
	}
}
