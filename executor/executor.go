// Package executor downloads one candidate and places it in every profile directory that wants it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/filter"
	"github.com/handsomefox/ridit/progress"
	"github.com/handsomefox/ridit/scheduler"
	"github.com/rs/zerolog/log"
)

// ProbeLimit is how many bytes are read to learn the size of a download-first image.
const ProbeLimit = 1024 * 2 * 10

// Result says what Execute did with a candidate that did not fail.
type Result uint8

const (
	// Placed means at least one new file was written.
	Placed Result = iota
	// Skipped means every accepting profile already had the file.
	Skipped
	// Rejected means the probe showed that no profile wants the image.
	Rejected
)

func (r Result) String() string {
	switch r {
	case Placed:
		return "placed"
	case Skipped:
		return "skipped"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// Fetcher is the part of the reddit client the executor uses.
type Fetcher interface {
	GetURL(ctx context.Context, url string) (*http.Response, error)
	GetRange(ctx context.Context, url string, limit int64) ([]byte, error)
}

// Executor runs fetch-and-place for the candidates of one run pass.
// It must not be shared between passes: it remembers which urls were already placed.
type Executor struct {
	client     Fetcher
	cfg        *config.Config
	gate       *scheduler.Gate
	bus        progress.Publisher
	stagingDir string
	urls       *registry
}

// New returns an executor. cfg is read only and should not change during the pass.
func New(client Fetcher, cfg *config.Config, gate *scheduler.Gate, bus progress.Publisher) *Executor {
	return &Executor{
		client:     client,
		cfg:        cfg,
		gate:       gate,
		bus:        bus,
		stagingDir: DefaultStagingDir(),
		urls:       newRegistry(),
	}
}

// WithStagingDir replaces the staging root.
func (e *Executor) WithStagingDir(dir string) *Executor {
	e.stagingDir = dir
	return e
}

// DefaultStagingDir is <tmp>/ridit.
func DefaultStagingDir() string {
	return filepath.Join(os.TempDir(), "ridit")
}

// Execute fetches the candidate once and copies it to every accepting profile that does not have it.
// Candidates sharing a url are processed one after another, and only the first one touches the network.
func (e *Executor) Execute(ctx context.Context, c *filter.Candidate) (Result, error) {
	entry := e.urls.lock(c.URL)
	defer entry.unlock()

	if c.State() == filter.Unprobed {
		if e.everyProfileHas(c) {
			log.Debug().Str("url", c.URL).Msg("already downloaded to every profile, not probing")
			return Skipped, nil
		}
		if err := e.resolveProbed(ctx, c, entry); err != nil {
			e.publish(progress.NewEvent(c.Subreddit, c.Profiles, c.URL, 0).WithError(err))
			return 0, err
		}
		if len(c.Profiles) == 0 {
			log.Debug().Str("url", c.URL).Msg("no profile accepts the probed image")
			return Rejected, nil
		}
	}

	missing := e.missingProfiles(c)
	if len(missing) == 0 {
		log.Debug().Str("url", c.URL).Strs("profiles", c.Profiles).Msg("already downloaded")
		return Skipped, nil
	}

	if entry.placed != "" {
		return e.replicate(c, missing, entry.placed)
	}

	placed, err := e.fetchAndPlace(ctx, c, missing)
	if err != nil {
		return 0, err
	}
	entry.placed = placed
	return Placed, nil
}

// resolveProbed learns the candidate size, from an earlier candidate with the same url if possible,
// and decides which profiles accept it.
func (e *Executor) resolveProbed(ctx context.Context, c *filter.Candidate, entry *urlEntry) error {
	dims, ok := entry.dims, entry.probed
	if !ok {
		release, err := e.gate.Acquire(ctx)
		if err != nil {
			return err
		}
		dims, err = e.probe(ctx, c.URL)
		release()
		if err != nil {
			return err
		}
		entry.dims, entry.probed = dims, true
	}

	if err := c.SetProbed(dims); err != nil {
		return err
	}
	c.Profiles = filter.AcceptingProfiles(e.cfg.Profiles, dims, func(profile string) bool {
		return FileExists(e.destination(profile, c))
	})
	return nil
}

// everyProfileHas reports whether the candidate file is in every configured profile,
// in which case there is nothing a probe could change.
func (e *Executor) everyProfileHas(c *filter.Candidate) bool {
	if len(e.cfg.Profiles) == 0 {
		return false
	}
	for profile := range e.cfg.Profiles {
		if !FileExists(e.destination(profile, c)) {
			return false
		}
	}
	return true
}

func (e *Executor) missingProfiles(c *filter.Candidate) []string {
	missing := make([]string, 0, len(c.Profiles))
	for _, profile := range c.Profiles {
		if !FileExists(e.destination(profile, c)) {
			missing = append(missing, profile)
		}
	}
	return missing
}

// fetchAndPlace downloads the candidate into staging and copies it to the missing profiles.
// It returns the path of one placed file.
func (e *Executor) fetchAndPlace(ctx context.Context, c *filter.Candidate, profiles []string) (placed string, err error) {
	ev := progress.NewEvent(c.Subreddit, c.Profiles, c.URL, 0)
	defer func() {
		if err != nil {
			e.publish(ev.WithError(err))
		} else {
			e.publish(ev.WithFinished())
		}
	}()

	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	res, err := e.client.GetURL(ctx, c.URL)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if err := e.ensureDirs(c, profiles); err != nil {
		return "", err
	}

	if res.ContentLength > 0 {
		ev.DownloadLength = res.ContentLength
	}
	e.publish(ev)

	staged, err := e.stage(c, res.Body, func(n int) {
		e.publish(ev.WithChunk(int64(n)))
	})
	if err != nil {
		return "", err
	}
	defer removeStaged(staged)

	return e.place(c, profiles, staged)
}

// replicate copies an already placed file of the same url, no network involved.
func (e *Executor) replicate(c *filter.Candidate, profiles []string, from string) (Result, error) {
	ev := progress.NewEvent(c.Subreddit, c.Profiles, c.URL, 0)
	if info, err := os.Stat(from); err == nil {
		ev.DownloadLength = info.Size()
	}
	e.publish(ev)

	if err := e.ensureDirs(c, profiles); err != nil {
		e.publish(ev.WithError(err))
		return 0, err
	}
	if _, err := e.place(c, profiles, from); err != nil {
		e.publish(ev.WithError(err))
		return 0, err
	}

	e.publish(ev.WithFinished())
	return Placed, nil
}

func (e *Executor) ensureDirs(c *filter.Candidate, profiles []string) error {
	for _, profile := range profiles {
		dir := e.cfg.DownloadDir(profile, c.Subreddit)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return &PlaceError{err: err, Profile: profile, Path: dir, explanation: "failed to create download directory"}
		}
	}
	return nil
}

// place copies src to every profile destination and returns the first destination.
func (e *Executor) place(c *filter.Candidate, profiles []string, src string) (string, error) {
	var first string
	for _, profile := range profiles {
		dst := e.destination(profile, c)
		if err := copyFile(src, dst); err != nil {
			return "", &PlaceError{err: err, Profile: profile, Path: dst, explanation: "failed to copy file from staging"}
		}
		log.Debug().Str("profile", profile).Str("path", dst).Msg("placed")
		if first == "" {
			first = dst
		}
	}
	return first, nil
}

func (e *Executor) destination(profile string, c *filter.Candidate) string {
	return filepath.Join(e.cfg.DownloadDir(profile, c.Subreddit), c.Filename)
}

func (e *Executor) publish(ev progress.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// PlaceError is a local filesystem failure for one profile.
type PlaceError struct {
	err         error
	explanation string
	Profile     string
	Path        string
}

func (pe *PlaceError) Error() string {
	msg := fmt.Sprintf("%s (profile=%s, path=%s)", pe.explanation, pe.Profile, pe.Path)
	if pe.err != nil {
		return msg + ": " + pe.err.Error()
	}
	return msg
}

func (pe *PlaceError) Unwrap() error {
	return pe.err
}

var ErrUnknownFormat = errors.New("unknown image format")
