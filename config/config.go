// Package config holds the user settings: subscribed subreddits, download profiles
// and global download options. It is read from and written to ridit.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	DefaultDownloadThreads = 4
	DefaultTimeout         = 10
	DefaultProfile         = "main"
	DefaultServerIP        = "127.0.0.1"
	DefaultServerPort      = 9876
)

var (
	ErrProfileExists     = errors.New("profile already exists")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrSubredditExists   = errors.New("subreddit already exists")
	ErrSubredditNotFound = errors.New("subreddit not found")
)

// Config is the whole application configuration.
type Config struct {
	// DownloadThreads is the maximum number of simultaneous transfers.
	DownloadThreads int `toml:"download_threads" json:"download_threads" yaml:"download_threads"`
	// Timeout is the connect timeout in seconds.
	Timeout int `toml:"timeout" json:"timeout" yaml:"timeout"`
	// Path is the root under which every profile gets its own directory.
	Path           string `toml:"path" json:"path" yaml:"path"`
	FocusedProfile string `toml:"focused_profile" json:"focused_profile" yaml:"focused_profile"`
	Server         Server `toml:"server" json:"server" yaml:"server"`

	Subreddits map[string]Subreddit `toml:"subreddits" json:"subreddits" yaml:"subreddits"`
	Profiles   map[string]Profile   `toml:"profiles" json:"profiles" yaml:"profiles"`
}

type Server struct {
	IP   string `toml:"ip" json:"ip" yaml:"ip"`
	Port int    `toml:"port" json:"port" yaml:"port"`
}

// Addr returns the listen address of the status server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.IP, s.Port)
}

// Subreddit is a subscribed source.
type Subreddit struct {
	// ProperName is the canonical casing reported by reddit, used in URLs and directory names.
	ProperName    string `toml:"proper_name" json:"proper_name" yaml:"proper_name"`
	NSFW          bool   `toml:"nsfw" json:"nsfw" yaml:"nsfw"`
	DownloadFirst bool   `toml:"download_first" json:"download_first" yaml:"download_first"`
	Sort          Sort   `toml:"sort" json:"sort" yaml:"sort"`
}

// NewSubreddit returns a subreddit with default settings.
func NewSubreddit(properName string) Subreddit {
	return Subreddit{
		ProperName:    properName,
		NSFW:          true,
		DownloadFirst: false,
		Sort:          SortNew,
	}
}

// Profile is a named acceptance policy and destination.
type Profile struct {
	AspectRatio AspectRatio `toml:"aspect_ratio" json:"aspect_ratio" yaml:"aspect_ratio"`
	MinimumSize MinimumSize `toml:"minimum_size" json:"minimum_size" yaml:"minimum_size"`
	// Path overrides the global download root for this profile.
	Path string `toml:"path,omitempty" json:"path,omitempty" yaml:"path,omitempty"`
}

type AspectRatio struct {
	Enable bool    `toml:"enable" json:"enable" yaml:"enable"`
	Width  int     `toml:"width" json:"width" yaml:"width"`
	Height int     `toml:"height" json:"height" yaml:"height"`
	Range  float64 `toml:"range" json:"range" yaml:"range"`
}

type MinimumSize struct {
	Enable bool `toml:"enable" json:"enable" yaml:"enable"`
	Width  int  `toml:"width" json:"width" yaml:"width"`
	Height int  `toml:"height" json:"height" yaml:"height"`
}

// NewProfile returns a profile that accepts 16:9 images of at least 1920x1080.
func NewProfile() Profile {
	return Profile{
		AspectRatio: AspectRatio{
			Enable: true,
			Width:  16,
			Height: 9,
			Range:  0.3,
		},
		MinimumSize: MinimumSize{
			Enable: true,
			Width:  1920,
			Height: 1080,
		},
	}
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		DownloadThreads: DefaultDownloadThreads,
		Timeout:         DefaultTimeout,
		Path:            defaultDownloadPath(),
		FocusedProfile:  DefaultProfile,
		Server: Server{
			IP:   DefaultServerIP,
			Port: DefaultServerPort,
		},
		Subreddits: map[string]Subreddit{
			"wallpaper":  NewSubreddit("wallpaper"),
			"wallpapers": NewSubreddit("wallpapers"),
		},
		Profiles: map[string]Profile{
			DefaultProfile: NewProfile(),
		},
	}
}

func defaultDownloadPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ridit")
	}
	return filepath.Join(home, "Pictures", "ridit")
}

// ConnectTimeout returns Timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ProfileRoot returns the directory that holds every subreddit directory of the profile.
func (c *Config) ProfileRoot(profile string) string {
	root := c.Path
	if p, ok := c.Profiles[profile]; ok && p.Path != "" {
		root = p.Path
	}
	return filepath.Join(root, profile)
}

// DownloadDir is <root>/<profile>/<subreddit>.
func (c *Config) DownloadDir(profile, subreddit string) string {
	return filepath.Join(c.ProfileRoot(profile), subreddit)
}

// SubredditIDs returns the subscribed subreddit keys in a stable order.
func (c *Config) SubredditIDs() []string {
	ids := make([]string, 0, len(c.Subreddits))
	for id := range c.Subreddits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProfileNames returns the profile names in a stable order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy, safe to hand to a run while the original keeps changing.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Subreddits = make(map[string]Subreddit, len(c.Subreddits))
	for k, v := range c.Subreddits {
		cp.Subreddits[k] = v
	}
	cp.Profiles = make(map[string]Profile, len(c.Profiles))
	for k, v := range c.Profiles {
		cp.Profiles[k] = v
	}
	return &cp
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DownloadThreads <= 0 {
		errs = append(errs, fmt.Errorf("download_threads must be positive, got %d", c.DownloadThreads))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %d", c.Timeout))
	}
	if strings.TrimSpace(c.Path) == "" {
		errs = append(errs, errors.New("path must not be empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	for _, name := range c.ProfileNames() {
		p := c.Profiles[name]
		if p.AspectRatio.Enable && (p.AspectRatio.Width <= 0 || p.AspectRatio.Height <= 0) {
			errs = append(errs, fmt.Errorf("profile %s: aspect ratio sides must be positive", name))
		}
		if p.AspectRatio.Range < 0 {
			errs = append(errs, fmt.Errorf("profile %s: aspect ratio range must not be negative", name))
		}
		if p.MinimumSize.Width < 0 || p.MinimumSize.Height < 0 {
			errs = append(errs, fmt.Errorf("profile %s: minimum size must not be negative", name))
		}
	}
	return errors.Join(errs...)
}
