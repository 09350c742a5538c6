// package api contains the code required to fetch subreddit listings and media from reddit.
// This package is heavily inspired by https://github.com/vartanbeno/go-reddit/, you should check it out.
// But, this package is simpler, smaller and more specialized to the use-case required by me.
package api

import (
	"strings"
)

type Listing struct {
	Data struct {
		After    string `json:"after"`
		Children []Post `json:"children"`
	} `json:"data"`
}

type Post struct {
	Data struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		Permalink string `json:"permalink"`
		URL       string `json:"url"`
		PostHint  string `json:"post_hint"`
		Subreddit string `json:"subreddit"`
		Preview   *struct {
			Images []Image `json:"images"`
		} `json:"preview"`
		Over18   bool `json:"over_18"`
		IsVideo  bool `json:"is_video"`
		Stickied bool `json:"stickied"`
	} `json:"data"`
}

type Image struct {
	Source *struct {
		URL    string `json:"url"`
		Height int    `json:"height"`
		Width  int    `json:"width"`
	} `json:"source"`
}

// Dimensions returns the size of the first preview image, ok is false when the post has none.
func (p *Post) Dimensions() (w, h int, ok bool) {
	if p.Data.Preview == nil || len(p.Data.Preview.Images) == 0 {
		return 0, 0, false
	}
	src := p.Data.Preview.Images[0].Source
	if src == nil || src.Width <= 0 || src.Height <= 0 {
		return 0, 0, false
	}
	return src.Width, src.Height, true
}

// Title is just the post title.
func (p *Post) Title() string {
	return p.Data.Title
}

// URL returns an automatically formatted url of the post.
func (p *Post) URL() string {
	return strings.ReplaceAll(p.Data.URL, "&amp;", "&")
}

// Permalink is the absolute link to the post's comment page.
func (p *Post) Permalink() string {
	return defaultBaseURL + p.Data.Permalink
}
