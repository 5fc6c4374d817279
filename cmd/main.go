package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/latepost/internal/config"
	"github.com/MimeLyc/latepost/internal/late"
	"github.com/MimeLyc/latepost/internal/service"
	"github.com/MimeLyc/latepost/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

type scheduler interface {
	Schedule(ctx context.Context) error
}

// run returns the process exit code: 0 when the pass completed, 1 on a
// configuration error, a fatal API error or an interrupt.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("latepost", flag.ContinueOnError)
	dryRun := flags.Bool("dry-run", false, "plan and print the schedule without calling the API")
	videoDir := flags.String("video-dir", "", "directory of videos to post (overrides VIDEO_DIR)")
	cronExpr := flags.String("cron", "", "run on this cron schedule instead of once (overrides CRON_EXPR)")
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load %s: %v", *envFile, err)
	}

	var opts []config.Option
	if *dryRun {
		opts = append(opts, config.WithDryRun(true))
	}
	if *videoDir != "" {
		opts = append(opts, config.WithVideoDir(*videoDir))
	}
	if *cronExpr != "" {
		opts = append(opts, config.WithCronExpr(*cronExpr))
	}

	errHandler := service.NewDefaultErrorHandler()

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		errHandler.Handle(service.WrapError(err, service.ErrConfig, "failed to load configuration"))
		return 1
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		errHandler.Handle(service.WrapError(err, service.ErrConfig, "failed to open log file"))
		return 1
	}
	defer closeLog()

	campaign, err := cfg.Campaign()
	if err != nil {
		errHandler.Handle(service.WrapError(err, service.ErrConfig, "failed to load campaign"))
		return 1
	}

	console := service.NewConsole(stdout)

	var (
		publisher service.Publisher
		accounts  = cfg.Accounts
	)
	if !cfg.Schedule.DryRun {
		client, err := late.NewClient(cfg.LateClientConfig())
		if err != nil {
			errHandler.Handle(service.WrapError(err, service.ErrConfig, "failed to create Late client"))
			return 1
		}
		accounts, err = client.ResolveAccounts(ctx, cfg.Late.ProfileName, cfg.Accounts)
		if err != nil {
			errHandler.Handle(service.Classify(err).WithContext("profile", cfg.Late.ProfileName))
			return 1
		}
		publisher = client
	}

	console.Banner(*cfg, accounts)
	runner := service.NewRunner(*cfg, campaign, accounts, publisher, service.WithConsole(console))

	runOnce := func(ctx context.Context) (*service.RunReport, error) {
		report, err := runner.Run(ctx)
		if report != nil {
			console.Summary(report)
		}
		return report, err
	}

	if cfg.Schedule.CronExpr == "" {
		if _, err := runOnce(ctx); err != nil {
			errHandler.Handle(err)
			return 1
		}
		return 0
	}

	loc, _ := cfg.Location()
	cronSvc := service.NewCronService(cfg.Schedule.CronExpr, cron.New(cron.WithLocation(loc)), runOnce)
	return runScheduled(ctx, cronSvc)
}

// runScheduled blocks until ctx is done. Stopping the scheduler with a
// signal is the normal way out of cron mode.
func runScheduled(ctx context.Context, s scheduler) int {
	err := s.Schedule(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Scheduler stopped: %v", err)
		return 1
	}
	log.Info("Scheduler stopped")
	return 0
}

func setupLogging(cfg config.LogConfig) (func(), error) {
	level := log.ParseLevel(cfg.Level)
	if cfg.File == "" {
		log.InitLogger(level)
		return func() {}, nil
	}

	fileLogger, err := log.NewFileLogger(cfg.File, level, log.DefaultFileOptions())
	if err != nil {
		return nil, err
	}
	log.SetLogger(fileLogger.Logger)
	return func() {
		if err := fileLogger.Close(); err != nil {
			log.Warn("Failed to close log file: %v", err)
		}
	}, nil
}
