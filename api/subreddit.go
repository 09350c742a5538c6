package api

import (
	"context"
	"encoding/json"
	"fmt"
)

type SubredditService struct {
	client *Client
}

type RequestOptions struct {
	Subreddit string
	Sorting   string
	Limit     int
}

// GetListing fetches the first page of a subreddit listing.
func (s *SubredditService) GetListing(ctx context.Context, opts *RequestOptions) (*Listing, error) {
	if opts == nil {
		return nil, fmt.Errorf("empty options")
	}
	var l Listing
	if err := s.client.getJSON(ctx, s.client.optsURL(opts), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Exists checks whether the subreddit exists, and if it does, returns its name in proper casing.
func (s *SubredditService) Exists(ctx context.Context, name string) (exists bool, properName string, err error) {
	u := s.client.base.JoinPath("r", name+".json").String()

	var l Listing
	if err := s.client.getJSON(ctx, u, &l); err != nil {
		return false, "", fmt.Errorf("failed to check subreddit %s: %w", name, err)
	}
	if len(l.Data.Children) == 0 {
		return false, "", nil
	}
	return true, l.Data.Children[0].Data.Subreddit, nil
}

func (c *Client) getJSON(ctx context.Context, surl string, v any) error {
	res, err := c.get(ctx, surl, nil, true)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &DecodeError{err: err, URL: surl}
	}
	return nil
}

func (c *Client) optsURL(opts *RequestOptions) string {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListingLimit
	}

	u := c.base.
		JoinPath("r").
		JoinPath(opts.Subreddit).
		JoinPath(opts.Sorting + ".json")

	values := u.Query()
	values.Add("limit", fmt.Sprint(limit))

	u.RawQuery = values.Encode()

	return u.String()
}
