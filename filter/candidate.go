package filter

import (
	"errors"
	"fmt"
	"slices"
)

// State tracks where a candidate's dimensions came from.
type State uint8

const (
	// Unprobed candidates have no usable size yet, a partial download has to tell.
	Unprobed State = iota
	// Known dimensions came from listing metadata, or the 1x1 fallback.
	Known
	// Probed dimensions were decoded from the head of the file.
	Probed
)

func (s State) String() string {
	switch s {
	case Unprobed:
		return "unprobed"
	case Known:
		return "known"
	case Probed:
		return "probed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

var ErrDimensionsSet = errors.New("candidate dimensions are already set")

type Dimensions struct {
	Width  int
	Height int
}

// Ratio is width divided by height.
func (d Dimensions) Ratio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Candidate is one image from a listing that may get downloaded.
type Candidate struct {
	ID        string
	Subreddit string
	URL       string
	Permalink string
	Title     string
	Author    string
	Filename  string
	NSFW      bool

	// Profiles accepting the candidate, sorted.
	Profiles []string

	dims  Dimensions
	state State
}

// NewCandidate returns a candidate with known dimensions.
func NewCandidate(dims Dimensions) Candidate {
	return Candidate{dims: dims, state: Known}
}

// NewUnprobedCandidate returns a candidate whose dimensions must be probed.
func NewUnprobedCandidate() Candidate {
	return Candidate{state: Unprobed}
}

func (c *Candidate) State() State {
	return c.state
}

// Dimensions returns the size and whether it is usable for acceptance.
func (c *Candidate) Dimensions() (Dimensions, bool) {
	return c.dims, c.state != Unprobed
}

// SetProbed records the probe result. Dimensions never change once set.
func (c *Candidate) SetProbed(d Dimensions) error {
	if c.state != Unprobed {
		return fmt.Errorf("%w: %s is %s", ErrDimensionsSet, c.URL, c.state)
	}
	c.dims = d
	c.state = Probed
	return nil
}

// AcceptedBy reports whether the named profile accepts the candidate.
func (c *Candidate) AcceptedBy(profile string) bool {
	_, ok := slices.BinarySearch(c.Profiles, profile)
	return ok
}
