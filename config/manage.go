package config

import (
	"fmt"
	"strings"
)

// AspectRatioUpdate changes only the fields that are set.
type AspectRatioUpdate struct {
	Enable *bool    `json:"enable,omitempty"`
	Width  *int     `json:"width,omitempty"`
	Height *int     `json:"height,omitempty"`
	Range  *float64 `json:"range,omitempty"`
}

// MinimumSizeUpdate changes only the fields that are set. Width and height are independent.
type MinimumSizeUpdate struct {
	Enable *bool `json:"enable,omitempty"`
	Width  *int  `json:"width,omitempty"`
	Height *int  `json:"height,omitempty"`
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// AddProfile creates a profile with default settings.
func (c *Config) AddProfile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name can not be empty")
	}
	if _, ok := c.Profiles[name]; ok {
		return fmt.Errorf("%w: %s", ErrProfileExists, name)
	}
	c.UpsertProfile(name, NewProfile())
	return nil
}

// UpsertProfile replaces or creates the profile.
func (c *Config) UpsertProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = p
	if c.FocusedProfile == "" {
		c.FocusedProfile = name
	}
}

// RemoveProfile deletes the profile. If it was focused, focus moves to the first remaining profile.
func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(c.Profiles, name)
	if c.FocusedProfile == name {
		c.FocusedProfile = ""
		if names := c.ProfileNames(); len(names) != 0 {
			c.FocusedProfile = names[0]
		}
	}
	return nil
}

// Focus sets the profile used when a command does not name one.
func (c *Config) Focus(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.FocusedProfile = name
	return nil
}

func (c *Config) SetAspectRatio(profile string, u AspectRatioUpdate) error {
	p, err := c.Profile(profile)
	if err != nil {
		return err
	}
	if u.Enable != nil {
		p.AspectRatio.Enable = *u.Enable
	}
	if u.Width != nil {
		p.AspectRatio.Width = *u.Width
	}
	if u.Height != nil {
		p.AspectRatio.Height = *u.Height
	}
	if u.Range != nil {
		p.AspectRatio.Range = *u.Range
	}
	c.Profiles[profile] = p
	return nil
}

func (c *Config) SetMinimumSize(profile string, u MinimumSizeUpdate) error {
	p, err := c.Profile(profile)
	if err != nil {
		return err
	}
	if u.Enable != nil {
		p.MinimumSize.Enable = *u.Enable
	}
	if u.Width != nil {
		p.MinimumSize.Width = *u.Width
	}
	if u.Height != nil {
		p.MinimumSize.Height = *u.Height
	}
	c.Profiles[profile] = p
	return nil
}

// SubredditID is the map key for a subreddit name.
func SubredditID(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddSubreddit subscribes to a subreddit. The key is the lower-cased name.
func (c *Config) AddSubreddit(sub Subreddit) error {
	id := SubredditID(sub.ProperName)
	if id == "" {
		return fmt.Errorf("subreddit name can not be empty")
	}
	if _, ok := c.Subreddits[id]; ok {
		return fmt.Errorf("%w: %s", ErrSubredditExists, sub.ProperName)
	}
	if c.Subreddits == nil {
		c.Subreddits = make(map[string]Subreddit)
	}
	c.Subreddits[id] = sub
	return nil
}

func (c *Config) RemoveSubreddit(name string) error {
	id := SubredditID(name)
	if _, ok := c.Subreddits[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSubredditNotFound, name)
	}
	delete(c.Subreddits, id)
	return nil
}
