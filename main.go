package main

import (
	"context"
	"errors"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/downloader"
	"github.com/handsomefox/ridit/fetch"
	"github.com/handsomefox/ridit/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	var args AppArguments
	p := arg.MustParse(&args)

	if args.Workers < 0 {
		p.Fail("--workers can not be negative")
	}
	logging.Setup(args.Verbose)

	log.Debug().Any("app_arguments", args).Send()

	config.LoadEnvFiles(".env")

	if args.Init {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to write the default config")
		}
		log.Info().Str("path", path).Msg("wrote the default config")
		return
	}

	cfg, ok := loadConfig(&args)
	if !ok {
		return
	}

	if err := run(context.Background(), cfg, &args); err != nil {
		log.Fatal().Err(err).Msg("error running the app")
	}

	if cfg.Run.HoldOnJobDone && !args.NoPause {
		pause(os.Stdin)
	}
}

// loadConfig finds and loads the config. It returns false when there was none
// and the default one was written for the user to edit.
func loadConfig(args *AppArguments) (*config.Config, bool) {
	path, err := config.Find(args.Config)
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) || args.Config != "" {
			log.Fatal().Err(err).Msg("failed to find the config")
		}
		written, err := config.WriteDefault()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to write the default config")
		}
		log.Info().Str("path", written).Msg("no config found, wrote the default one. Configure it and rerun")
		return nil, false
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to load the config")
	}
	if args.Workers > 0 {
		cfg.Downloads.Workers = args.Workers
	}
	log.Debug().Str("path", path).Any("config", cfg).Msg("loaded config")

	if err := config.CreateDirs(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to create download directories")
	}

	return cfg, true
}

func run(ctx context.Context, cfg *config.Config, args *AppArguments) error {
	f := fetch.New(fetch.NewClient(cfg), cfg)
	dl := downloader.New(cfg, f)

	stop := make(chan struct{})
	done := make(chan struct{})
	if args.Progress {
		go func() {
			defer close(done)
			progressLoop(dl, args.Verbose, stop)
		}()
	} else {
		close(done)
	}

	report, err := dl.Run(ctx, logEvent)
	close(stop)
	<-done
	if err != nil {
		return err
	}

	for _, s := range report.Subreddits {
		log.Info().
			Str("subreddit", s.Subreddit).
			Bool("listing_failed", s.ListingFailed()).
			Int64("succeeded", s.Succeeded()).
			Int64("skipped", s.Skipped()).
			Int64("failed", s.Failed()).
			Send()
	}

	succeeded, skipped, failed := report.Totals()
	log.Info().
		Int64("succeeded", succeeded).
		Int64("skipped", skipped).
		Int64("failed", failed).
		Int("failed_listings", report.ListingFailures()).
		Msg("Finished downloading")

	return nil
}

// logEvent logs failures as errors and everything else at debug level.
func logEvent(e downloader.Event) {
	if e.Kind.IsFailure() {
		log.Err(e.Err).
			Str("event", e.Kind.String()).
			Str("subreddit", e.Subreddit).
			Str("url", e.URL).
			Str("path", e.Path).
			Send()
		return
	}

	ev := log.Debug().Str("event", e.Kind.String()).Str("subreddit", e.Subreddit)
	switch e.Kind {
	case downloader.EventListed:
		ev = ev.Int("candidates", e.Candidates)
	case downloader.EventStored:
		ev = ev.Str("url", e.URL).Str("path", e.Path).Int64("bytes", e.Bytes)
	default:
		ev = ev.Str("url", e.URL).Str("path", e.Path)
	}
	ev.Send()
}
