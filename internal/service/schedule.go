package service

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/latepost/pkg/icron"
	"github.com/MimeLyc/latepost/pkg/log"
)

// RunFunc performs one scheduling pass.
type RunFunc func(ctx context.Context) (*RunReport, error)

type cronService struct {
	cronExpr string
	cron     *cron.Cron
	run      RunFunc
	group    singleflight.Group
}

// NewCronService runs fn on cronExpr. Triggers that fire while a pass is
// still running join it instead of starting a second one.
func NewCronService(cronExpr string, c *cron.Cron, fn RunFunc) *cronService {
	return &cronService{
		cronExpr: cronExpr,
		cron:     c,
		run:      fn,
	}
}

// Trigger runs one pass, or waits for the pass already in flight. joined
// reports whether the result came from another caller's pass.
func (s *cronService) Trigger(ctx context.Context) (report *RunReport, joined bool, err error) {
	// only the caller whose function runs leads the pass; singleflight
	// reports shared to the leader too once anyone has joined
	led := false
	v, err, _ := s.group.Do("run", func() (any, error) {
		led = true
		return s.run(ctx)
	})
	report, _ = v.(*RunReport)
	return report, !led, err
}

// job is one cron firing. A panicking pass is logged and the scheduler
// keeps running.
func (s *cronService) job(ctx context.Context) error {
	err := SafeExecute(func() error {
		report, joined, err := s.Trigger(ctx)
		if joined {
			log.Warn("Previous run still in progress, skipped overlapping trigger")
			return nil
		}
		if report != nil {
			log.Info("Run %s: %d scheduled, %d failed", report.RunID, report.Scheduled(), len(report.Errors()))
		}
		return err
	})
	if err != nil {
		NewDefaultErrorHandler().Handle(err)
	}
	s.logNext()
	return err
}

// Schedule registers the job and blocks until ctx is done.
func (s *cronService) Schedule(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cronExpr, func() {
		_ = s.job(ctx)
	})
	if err != nil {
		return err
	}

	s.logNext()
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

const upcomingRuns = 3

func (s *cronService) logNext() {
	now := time.Now()
	info, err := icron.GetTriggerInfo(s.cronExpr, now)
	if err != nil {
		log.Warn("Cannot compute next trigger for %q: %v", s.cronExpr, err)
		return
	}
	log.Info("Next run at %s (in %s)", info.Next.Format("2006-01-02 15:04"), info.TimeUntilNext.Round(time.Second))

	runs, err := icron.NextN(s.cronExpr, info.Next, upcomingRuns-1)
	if err != nil || len(runs) == 0 {
		return
	}
	formatted := make([]string, len(runs))
	for i, t := range runs {
		formatted[i] = t.Format("2006-01-02 15:04")
	}
	log.Debug("Then at %s", strings.Join(formatted, ", "))
}
