// Package pipeline drives a run pass: one listing, filter and download pipeline per subreddit,
// all sharing one transfer gate.
package pipeline

import (
	"context"
	"sync"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/executor"
	"github.com/handsomefox/ridit/filter"
	"github.com/handsomefox/ridit/progress"
	"github.com/handsomefox/ridit/scheduler"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one candidate, or of a whole subreddit when its listing failed.
type Outcome struct {
	Subreddit string
	// Candidate is nil for listing failures.
	Candidate *filter.Candidate
	Result    executor.Result
	Err       error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Profiles returns the profiles affected by the outcome.
func (o Outcome) Profiles() []string {
	if o.Candidate == nil {
		return nil
	}
	return o.Candidate.Profiles
}

// Runner runs passes over every subscribed subreddit.
type Runner struct {
	client     *api.Client
	cfg        *config.Config
	bus        progress.Publisher
	stagingDir string
	stats      Stats
}

// New returns a runner. bus may be nil when nobody watches progress.
func New(client *api.Client, cfg *config.Config, bus progress.Publisher) *Runner {
	return &Runner{
		client:     client,
		cfg:        cfg,
		bus:        bus,
		stagingDir: executor.DefaultStagingDir(),
	}
}

func (r *Runner) WithStagingDir(dir string) *Runner {
	r.stagingDir = dir
	return r
}

func (r *Runner) Stats() *Stats {
	return &r.stats
}

// Run performs one pass and returns once every spawned download has finished.
// Failures never stop the pass, they are reported in the outcomes.
func (r *Runner) Run(ctx context.Context) []Outcome {
	r.stats.reset()

	gate := scheduler.NewGate(r.cfg.DownloadThreads)
	exec := executor.New(r.client, r.cfg, gate, r.bus).WithStagingDir(r.stagingDir)

	var (
		mu       sync.Mutex
		outcomes []Outcome
		sources  errgroup.Group
	)
	collect := func(o ...Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o...)
		mu.Unlock()
	}

	for _, id := range r.cfg.SubredditIDs() {
		sub := r.cfg.Subreddits[id]
		if sub.ProperName == "" {
			sub.ProperName = id
		}
		sources.Go(func() error {
			collect(r.runSubreddit(ctx, sub, exec)...)
			return nil
		})
	}
	_ = sources.Wait()

	log.Info().
		Int64("saved", r.stats.Saved()).
		Int64("failed", r.stats.Failed()).
		Int64("skipped", r.stats.Skipped()).
		Msg("Finished downloading")

	return outcomes
}

func (r *Runner) runSubreddit(ctx context.Context, sub config.Subreddit, exec *executor.Executor) []Outcome {
	log.Info().Str("subreddit", sub.ProperName).Msg("fetching listing")

	listing, err := r.client.Subreddit.GetListing(ctx, &api.RequestOptions{
		Subreddit: sub.ProperName,
		Sorting:   sub.Sort.String(),
	})
	if err != nil {
		log.Err(err).Str("subreddit", sub.ProperName).Msg("failed to fetch listing")
		return []Outcome{{Subreddit: sub.ProperName, Err: err}}
	}

	candidates := filter.Candidates(listing, sub, r.cfg.Profiles)
	log.Debug().
		Str("subreddit", sub.ProperName).
		Int("posts", len(listing.Data.Children)).
		Int("candidates", len(candidates)).
		Msg("filtered listing")

	outcomes := make([]Outcome, len(candidates))
	var tasks errgroup.Group
	for i := range candidates {
		i := i
		c := &candidates[i]
		r.stats.queued.Add(1)
		tasks.Go(func() error {
			defer r.stats.queued.Add(-1)

			res, err := exec.Execute(ctx, c)
			switch {
			case err != nil:
				r.stats.failed.Add(1)
			case res == executor.Placed:
				r.stats.saved.Add(1)
			default:
				r.stats.skipped.Add(1)
			}
			outcomes[i] = Outcome{Subreddit: sub.ProperName, Candidate: c, Result: res, Err: err}
			return nil
		})
	}
	_ = tasks.Wait()

	return outcomes
}

// Stream runs a pass in the background and yields its progress events.
// The channel is closed when the pass is over, wait then returns the outcomes.
func Stream(ctx context.Context, client *api.Client, cfg *config.Config) (events <-chan progress.Event, wait func() []Outcome) {
	bus := progress.NewBus()
	events, _ = bus.Subscribe()

	done := make(chan []Outcome, 1)
	go func() {
		outcomes := New(client, cfg, bus).Run(ctx)
		bus.Close()
		done <- outcomes
	}()

	var (
		once     sync.Once
		outcomes []Outcome
	)
	return events, func() []Outcome {
		once.Do(func() { outcomes = <-done })
		return outcomes
	}
}
