// Package filter turns listing posts into download candidates
// and decides which profiles want each of them.
package filter

import (
	"sort"
	"strings"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/rs/zerolog/log"
)

// sentinel is used when the listing carries no size, it keeps ratio checks away from zero.
var sentinel = Dimensions{Width: 1, Height: 1}

// Decider tells whether a profile accepts an image of the given size.
type Decider interface {
	Accepts(config.Profile, Dimensions) bool
}

// DeciderFunc implements Decider.
type DeciderFunc func(config.Profile, Dimensions) bool

func (fn DeciderFunc) Accepts(p config.Profile, d Dimensions) bool {
	return fn(p, d)
}

// Default returns the deciders every profile is checked with.
func Default() []Decider {
	return []Decider{
		AspectRatio(),
		MinimumSize(),
	}
}

// AspectRatio passes images whose ratio is within profile range of the target ratio, inclusive.
func AspectRatio() DeciderFunc {
	return func(p config.Profile, d Dimensions) bool {
		ar := p.AspectRatio
		if !ar.Enable {
			return true
		}
		if ar.Height == 0 || d.Height == 0 {
			return false
		}
		target := float64(ar.Width) / float64(ar.Height)
		ratio := d.Ratio()
		return ratio >= target-ar.Range && ratio <= target+ar.Range
	}
}

// MinimumSize passes images at least as wide and as tall as the profile asks.
func MinimumSize() DeciderFunc {
	return func(p config.Profile, d Dimensions) bool {
		ms := p.MinimumSize
		if !ms.Enable {
			return true
		}
		return d.Width >= ms.Width && d.Height >= ms.Height
	}
}

// Accepts reports whether every decider accepts.
func Accepts(p config.Profile, d Dimensions, ds ...Decider) bool {
	for _, decider := range ds {
		if !decider.Accepts(p, d) {
			return false
		}
	}
	return true
}

// AcceptingProfiles returns the sorted names of the profiles that accept d.
// Profiles for which skip returns true are left out.
func AcceptingProfiles(profiles map[string]config.Profile, d Dimensions, skip func(profile string) bool) []string {
	accepted := make([]string, 0, len(profiles))
	for name, p := range profiles {
		if skip != nil && skip(name) {
			continue
		}
		if Accepts(p, d, Default()...) {
			accepted = append(accepted, name)
		}
	}
	sort.Strings(accepted)
	return accepted
}

// Candidates converts a listing page into the candidates that should be queued.
//
// Videos, NSFW posts of subreddits that do not allow them, and urls without a jpg or png
// filename are dropped. For download-first subreddits every remaining post is queued
// unprobed with no profiles, otherwise only posts accepted by at least one profile are kept.
func Candidates(l *api.Listing, source config.Subreddit, profiles map[string]config.Profile) []Candidate {
	if l == nil {
		return nil
	}
	if !safeDirName(source.ProperName) {
		log.Warn().Str("subreddit", source.ProperName).Msg("subreddit name can not be a directory name")
		return nil
	}

	candidates := make([]Candidate, 0, len(l.Data.Children))
	for i := range l.Data.Children {
		post := &l.Data.Children[i]
		if post.Data.IsVideo {
			log.Debug().Str("id", post.Data.ID).Msg("skipped a video")
			continue
		}
		if post.Data.Over18 && !source.NSFW {
			log.Debug().Str("id", post.Data.ID).Msg("filtered out NSFW")
			continue
		}

		filename, err := Filename(post.URL())
		if err != nil {
			log.Debug().Err(err).Str("id", post.Data.ID).Msg("skipped an item")
			continue
		}

		var c Candidate
		if source.DownloadFirst {
			c = NewUnprobedCandidate()
		} else {
			dims := sentinel
			if w, h, ok := post.Dimensions(); ok {
				dims = Dimensions{Width: w, Height: h}
			}
			c = NewCandidate(dims)
		}

		c.ID = post.Data.ID
		c.Subreddit = source.ProperName
		c.URL = post.URL()
		c.Permalink = post.Permalink()
		c.Title = post.Title()
		c.Author = post.Data.Author
		c.Filename = filename
		c.NSFW = post.Data.Over18

		if !source.DownloadFirst {
			c.Profiles = AcceptingProfiles(profiles, c.dims, nil)
			if len(c.Profiles) == 0 {
				log.Debug().
					Str("id", c.ID).
					Int("width", c.dims.Width).
					Int("height", c.dims.Height).
					Msg("unfit dimensions")
				continue
			}
		}

		candidates = append(candidates, c)
	}

	return candidates
}

// safeDirName reports whether name stays a single directory below the profile root.
func safeDirName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
