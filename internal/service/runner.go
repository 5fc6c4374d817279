package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MimeLyc/latepost/internal/config"
	"github.com/MimeLyc/latepost/internal/late"
	"github.com/MimeLyc/latepost/internal/library"
	"github.com/MimeLyc/latepost/internal/planner"
	"github.com/MimeLyc/latepost/pkg/log"
)

// Publisher is the part of the Late client a run needs.
type Publisher interface {
	Uploader
	CreatePost(ctx context.Context, req late.CreatePostRequest) (string, error)
}

// Runner plans the rest of the month and submits it, one request at a time.
type Runner struct {
	cfg       config.Config
	campaign  config.Campaign
	accounts  late.Accounts
	publisher Publisher
	console   *Console
	rng       planner.Rand
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

type RunnerOption func(*Runner)

func WithRand(rng planner.Rand) RunnerOption {
	return func(r *Runner) {
		r.rng = rng
	}
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithSleeper replaces the rate limit pause, mostly for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

func WithConsole(console *Console) RunnerOption {
	return func(r *Runner) {
		r.console = console
	}
}

// NewRunner wires a run. publisher may be nil for dry runs.
func NewRunner(
	cfg config.Config,
	campaign config.Campaign,
	accounts late.Accounts,
	publisher Publisher,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		cfg:       cfg,
		campaign:  campaign,
		accounts:  accounts,
		publisher: publisher,
		console:   NewConsole(nil),
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one full pass. The report is always returned; err is non-nil
// only when the run aborted, in which case report.Aborted holds the same
// classified error.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		DryRun:    r.cfg.Schedule.DryRun,
	}
	log.Info("Run %s started", report.RunID)

	if err := r.plan(ctx, report); err != nil {
		return r.abort(report, err)
	}

	if report.DryRun {
		r.console.DryRun(report.Slots)
		report.FinishedAt = r.now()
		return report, nil
	}
	if r.publisher == nil {
		return r.abort(report, NewError(ErrConfig, "no publisher configured"))
	}

	cache := NewMediaCache(r.publisher)
	if err := r.upload(ctx, report, cache); err != nil {
		return r.abort(report, err)
	}
	if err := r.submit(ctx, report, cache); err != nil {
		return r.abort(report, err)
	}

	report.FinishedAt = r.now()
	log.Info("Run %s finished: %d scheduled, %d failed, %d skipped",
		report.RunID, report.Scheduled(), len(report.Errors()), report.Skipped())
	return report, nil
}

func (r *Runner) abort(report *RunReport, err error) (*RunReport, error) {
	schedErr := Classify(err)
	report.Aborted = schedErr
	report.FinishedAt = r.now()
	log.Error("Run %s aborted: %v", report.RunID, schedErr)
	return report, schedErr
}

// plan loads the media pool and builds every slot before any network call.
func (r *Runner) plan(ctx context.Context, report *RunReport) error {
	loc, err := r.cfg.Location()
	if err != nil {
		return NewErrorWithCause(ErrConfig, "invalid timezone", err)
	}

	r.console.Println("Loading video files...")
	pool, err := library.NewScanner(r.cfg.Schedule.VideoDir).Scan(ctx)
	if err != nil {
		return err
	}
	r.console.Success("Found %d videos", pool.Len())

	var opts []planner.Option
	if r.rng != nil {
		opts = append(opts, planner.WithRand(r.rng))
	}
	p := planner.New(pool.Paths(), r.campaign.Captions, r.campaign.Hashtags, opts...)

	today := r.now().In(loc)
	slots, err := p.Plan(today)
	if err != nil {
		return err
	}

	report.Slots = slots
	report.Plan = planner.Summarize(today, slots, len(p.Windows()))
	r.console.PlanHeader(report.Plan)
	return nil
}

// upload sends every video the plan references, in first-reference order,
// before any post is created.
func (r *Runner) upload(ctx context.Context, report *RunReport, cache *MediaCache) error {
	r.console.Println("Uploading videos to Late...")

	seen := make(map[string]bool)
	for _, slot := range report.Slots {
		if seen[slot.Video] {
			continue
		}
		seen[slot.Video] = true

		if err := ctx.Err(); err != nil {
			return err
		}

		name := filepath.Base(slot.Video)
		r.console.Item("Uploading %s...", name)
		if _, schedErr := cache.Resolve(ctx, slot.Video); schedErr != nil {
			if schedErr.Fatal() {
				return schedErr
			}
			report.UploadFailures = append(report.UploadFailures, UploadFailure{Video: slot.Video, Err: schedErr})
			r.console.Failure("Error uploading %s: %s", name, shortError(schedErr))

			var rateLimit *late.RateLimitError
			if errors.As(schedErr, &rateLimit) {
				if err := r.pauseAfterRateLimit(ctx, rateLimit); err != nil {
					return err
				}
			}
		}
	}

	report.Uploaded = cache.Len()
	r.console.Success("Uploaded %d videos", report.Uploaded)
	return nil
}

func (r *Runner) submit(ctx context.Context, report *RunReport, cache *MediaCache) error {
	r.console.Println("Scheduling posts...")

	for _, slot := range report.Slots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if slot.Window == 0 {
			r.console.Day(slot.Date)
		}

		result := PostResult{
			Slot:         slot,
			ScheduledFor: slot.ScheduledFor(),
		}

		item, ok := cache.Get(slot.Video)
		if !ok {
			result.Outcome = OutcomeSkipped
			report.Results = append(report.Results, result)
			r.console.Warning("Skipping %s - video not uploaded", result.ScheduledFor)
			continue
		}

		postID, err := r.publisher.CreatePost(ctx, r.buildRequest(slot, item))
		if err != nil {
			schedErr := Classify(err).WithContext("scheduled_for", result.ScheduledFor)
			if schedErr.Fatal() {
				return schedErr
			}

			result.Outcome = OutcomeFailed
			result.Err = schedErr
			report.Results = append(report.Results, result)
			r.console.Failure("%s - Error: %s", result.ScheduledFor, shortError(schedErr))

			var rateLimit *late.RateLimitError
			if errors.As(err, &rateLimit) {
				if err := r.pauseAfterRateLimit(ctx, rateLimit); err != nil {
					return err
				}
			}
			continue
		}

		result.Outcome = OutcomeScheduled
		result.PostID = postID
		report.Results = append(report.Results, result)
		r.console.Success("%s - Scheduled (Post ID: %s)", result.ScheduledFor, result.ShortPostID())
	}
	return nil
}

func (r *Runner) buildRequest(slot planner.PostSlot, item late.MediaItem) late.CreatePostRequest {
	return late.CreatePostRequest{
		Content:      slot.Caption,
		Platforms:    late.BuildPlatforms(r.accounts, late.YouTubeTitle(r.campaign.YouTubeTitlePrefix, slot.Date)),
		ScheduledFor: slot.ScheduledFor(),
		Timezone:     r.cfg.Schedule.Timezone,
		MediaItems:   []late.MediaItem{item},
		PublishNow:   false,
	}
}

// rateLimitPause is the fixed pause unless honoring the server reset is
// enabled and the reset could be parsed.
func (r *Runner) rateLimitPause(rateLimit *late.RateLimitError) time.Duration {
	fixed := r.cfg.RateLimit.Pause
	if rateLimit == nil || rateLimit.ResetAt.IsZero() {
		return fixed
	}

	untilReset := rateLimit.ResetAt.Sub(r.now())
	if !r.cfg.RateLimit.HonorReset {
		if untilReset > fixed {
			log.Warn("Rate limit resets in %s but the fixed pause is %s; set RATE_LIMIT_HONOR_RESET=true to wait for the reset",
				untilReset.Round(time.Second), fixed)
		}
		return fixed
	}

	if untilReset < 0 {
		untilReset = 0
	}
	if untilReset > r.cfg.RateLimit.MaxWait {
		untilReset = r.cfg.RateLimit.MaxWait
	}
	return untilReset
}

func (r *Runner) pauseAfterRateLimit(ctx context.Context, rateLimit *late.RateLimitError) error {
	d := r.rateLimitPause(rateLimit)
	r.console.Waiting(d)
	return r.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
