package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/handsomefox/ridit/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var args AppArguments
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing command, try start, serve, profile, subreddit or --help")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if args.Verbose {
		log.Logger = log.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Level(zerolog.InfoLevel)
	}
	log.Debug().Any("app_arguments", args).Send()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &args); err != nil {
		stop()
		log.Fatal().Err(err).Msg("error running the app")
	}
}

func run(ctx context.Context, args *AppArguments) error {
	path := args.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Debug().Str("path", path).Msg("loaded configuration")

	err = newApp(cfg, path, args).run(ctx, args)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("interrupted")
		return nil
	}
	return err
}
