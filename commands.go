package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/pipeline"
	"github.com/handsomefox/ridit/progress"
	"github.com/handsomefox/ridit/server"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoSubcommand    = errors.New("no command given, see --help")
	ErrNoSuchSubreddit = errors.New("subreddit does not exist")
)

// app holds what every command needs.
type app struct {
	cfg     *config.Config
	cfgPath string
	client  *api.Client
	out     io.Writer
	// progress goes here, the summary goes to out
	progress io.Writer
	display  progress.Display
	profile  string
}

func (a *app) run(ctx context.Context, args *AppArguments) error {
	switch {
	case args.Start != nil:
		return a.start(ctx)
	case args.Serve != nil:
		return a.serve(ctx, args.Serve)
	case args.ProfileCmd != nil:
		return a.profileCmd(args.ProfileCmd)
	case args.AspectRatio != nil:
		return a.aspectRatio(args.AspectRatio)
	case args.MinimumSize != nil:
		return a.minimumSize(args.MinimumSize)
	case args.Subreddit != nil:
		return a.subreddit(ctx, args.Subreddit)
	case args.Download != nil:
		return a.download(args.Download)
	case args.Print != nil:
		return a.cfg.Print(a.out, args.Print.Format)
	default:
		return ErrNoSubcommand
	}
}

// start runs one pass and prints the failures.
func (a *app) start(ctx context.Context) error {
	events, wait := pipeline.Stream(ctx, a.client, a.cfg)
	progress.NewRenderer(a.display, a.progress).Render(events)

	outcomes := wait()
	return pipeline.WriteSummary(a.out, outcomes)
}

func (a *app) serve(ctx context.Context, cmd *ServeCmd) error {
	addr := cmd.Addr
	if addr == "" {
		addr = a.cfg.Server.Addr()
	}
	return server.New(a.client, a.cfg, a.cfgPath).ListenAndServe(ctx, addr)
}

func (a *app) profileCmd(cmd *ProfileCmd) error {
	switch {
	case cmd.Add != nil:
		if err := a.cfg.AddProfile(cmd.Add.Name); err != nil {
			return err
		}
		log.Info().Str("profile", cmd.Add.Name).Msg("added profile")
	case cmd.Remove != nil:
		if err := a.cfg.RemoveProfile(cmd.Remove.Name); err != nil {
			return err
		}
		log.Info().Str("profile", cmd.Remove.Name).Msg("removed profile")
	case cmd.Focus != nil:
		if err := a.cfg.Focus(cmd.Focus.Name); err != nil {
			return err
		}
		log.Info().Str("profile", cmd.Focus.Name).Msg("focused profile")
	case cmd.List != nil:
		return a.listProfiles()
	default:
		return ErrNoSubcommand
	}
	return a.save()
}

func (a *app) listProfiles() error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tASPECT RATIO\tMINIMUM SIZE\tPATH")
	for _, name := range a.cfg.ProfileNames() {
		p := a.cfg.Profiles[name]
		if name == a.cfg.FocusedProfile {
			name += " *"
		}

		ar := "off"
		if p.AspectRatio.Enable {
			ar = fmt.Sprintf("%d:%d ±%g", p.AspectRatio.Width, p.AspectRatio.Height, p.AspectRatio.Range)
		}
		ms := "off"
		if p.MinimumSize.Enable {
			ms = fmt.Sprintf("%dx%d", p.MinimumSize.Width, p.MinimumSize.Height)
		}
		path := p.Path
		if path == "" {
			path = a.cfg.Path
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, ar, ms, path)
	}
	return tw.Flush()
}

// targetProfile is --profile, or the focused profile.
func (a *app) targetProfile() string {
	if a.profile != "" {
		return a.profile
	}
	return a.cfg.FocusedProfile
}

func (a *app) aspectRatio(cmd *AspectRatioCmd) error {
	profile := a.targetProfile()
	err := a.cfg.SetAspectRatio(profile, config.AspectRatioUpdate{
		Enable: enabled(cmd.Enable, cmd.Disable),
		Width:  cmd.Width,
		Height: cmd.Height,
		Range:  cmd.Range,
	})
	if err != nil {
		return err
	}
	log.Info().Str("profile", profile).Any("aspect_ratio", a.cfg.Profiles[profile].AspectRatio).Msg("updated profile")
	return a.save()
}

func (a *app) minimumSize(cmd *MinimumSizeCmd) error {
	profile := a.targetProfile()
	err := a.cfg.SetMinimumSize(profile, config.MinimumSizeUpdate{
		Enable: enabled(cmd.Enable, cmd.Disable),
		Width:  cmd.Width,
		Height: cmd.Height,
	})
	if err != nil {
		return err
	}
	log.Info().Str("profile", profile).Any("minimum_size", a.cfg.Profiles[profile].MinimumSize).Msg("updated profile")
	return a.save()
}

func (a *app) subreddit(ctx context.Context, cmd *SubredditCmd) error {
	switch {
	case cmd.Add != nil:
		name := strings.TrimPrefix(strings.TrimSpace(cmd.Add.Name), "r/")
		exists, properName, err := a.client.Subreddit.Exists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrNoSuchSubreddit, name)
		}

		sub := config.NewSubreddit(properName)
		sub.NSFW = !cmd.Add.NoNSFW
		sub.DownloadFirst = cmd.Add.DownloadFirst
		sub.Sort = cmd.Add.Sort
		if err := a.cfg.AddSubreddit(sub); err != nil {
			return err
		}
		log.Info().Str("subreddit", properName).Msg("subscribed")
	case cmd.Remove != nil:
		if err := a.cfg.RemoveSubreddit(cmd.Remove.Name); err != nil {
			return err
		}
		log.Info().Str("subreddit", cmd.Remove.Name).Msg("unsubscribed")
	case cmd.List != nil:
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBREDDIT\tSORT\tNSFW\tDOWNLOAD FIRST")
		for _, id := range a.cfg.SubredditIDs() {
			sub := a.cfg.Subreddits[id]
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", sub.ProperName, sub.Sort, sub.NSFW, sub.DownloadFirst)
		}
		return tw.Flush()
	default:
		return ErrNoSubcommand
	}
	return a.save()
}

func (a *app) download(cmd *DownloadCmd) error {
	switch {
	case cmd.Path != nil:
		path, err := filepath.Abs(cmd.Path.Path)
		if err != nil {
			return err
		}
		a.cfg.Path = path
	case cmd.ConnectTimeout != nil:
		a.cfg.Timeout = cmd.ConnectTimeout.Seconds
	case cmd.Threads != nil:
		a.cfg.DownloadThreads = cmd.Threads.Threads
	default:
		return ErrNoSubcommand
	}
	return a.save()
}

func (a *app) save() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	return a.cfg.Save(a.cfgPath)
}

func newApp(cfg *config.Config, cfgPath string, args *AppArguments) *app {
	return &app{
		cfg:      cfg,
		cfgPath:  cfgPath,
		client:   api.DefaultClient().WithConnectTimeout(cfg.ConnectTimeout()),
		out:      os.Stdout,
		progress: os.Stderr,
		display:  args.Display.Resolve(os.Stderr),
		profile:  args.Profile,
	}
}
