package service

import (
	"time"

	"github.com/MimeLyc/latepost/internal/planner"
)

type Outcome int

const (
	OutcomeScheduled Outcome = iota
	OutcomeFailed
	// OutcomeSkipped marks slots whose video never made it into the upload
	// cache.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// PostResult records what happened to one planned slot.
type PostResult struct {
	Slot         planner.PostSlot
	ScheduledFor string
	Outcome      Outcome
	PostID       string
	Err          *SchedulerError
}

// ShortPostID trims the remote ID for console output.
func (r PostResult) ShortPostID() string {
	if r.PostID == "" {
		return "N/A"
	}
	if len(r.PostID) <= 8 {
		return r.PostID
	}
	return r.PostID[:8] + "..."
}

type UploadFailure struct {
	Video string
	Err   *SchedulerError
}

// RunReport is the outcome of one run. It is returned even when the run
// aborts, holding whatever completed before the abort.
type RunReport struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	DryRun         bool
	Plan           planner.Summary
	Slots          []planner.PostSlot
	Uploaded       int
	UploadFailures []UploadFailure
	Results        []PostResult
	Aborted        *SchedulerError
}

func (r *RunReport) count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func (r *RunReport) Scheduled() int {
	return r.count(OutcomeScheduled)
}

func (r *RunReport) Skipped() int {
	return r.count(OutcomeSkipped)
}

// Errors lists failed slots in submission order.
func (r *RunReport) Errors() []PostResult {
	var ret []PostResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			ret = append(ret, res)
		}
	}
	return ret
}
