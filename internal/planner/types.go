package planner

import (
	"errors"
	"fmt"
	"time"
)

const (
	// HashtagPlaceholder is replaced by the hashtag block in every caption.
	HashtagPlaceholder = "{HASHTAGS}"

	// ScheduledForLayout is local wall-clock time without a UTC offset; the
	// timezone travels separately in the post request.
	ScheduledForLayout = "2006-01-02T15:04"
)

var (
	ErrEmptyMediaPool   = errors.New("no videos found")
	ErrEmptyCaptionPool = errors.New("no captions configured")
)

// Window is a half-open hour range [Start, End).
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) String() string {
	return fmt.Sprintf("%02d-%02d", w.Start, w.End)
}

func (w Window) validate() error {
	if w.Start < 0 || w.End > 24 || w.End <= w.Start {
		return fmt.Errorf("invalid posting window %s", w)
	}
	return nil
}

// DefaultWindows are the ten daily posting windows.
var DefaultWindows = []Window{
	{Start: 5, End: 6},
	{Start: 7, End: 8},
	{Start: 10, End: 11},
	{Start: 12, End: 13},
	{Start: 14, End: 15},
	{Start: 15, End: 16},
	{Start: 17, End: 18},
	{Start: 19, End: 20},
	{Start: 21, End: 22},
	{Start: 23, End: 24},
}

// PostSlot is one planned post: a day, a window inside it and the content
// assigned to it.
type PostSlot struct {
	Index   int       `json:"index"`
	Date    time.Time `json:"date"`
	Window  int       `json:"window"`
	Hour    int       `json:"hour"`
	Minute  int       `json:"minute"`
	Video   string    `json:"video"`
	Caption string    `json:"caption"`
}

// At returns the slot's wall-clock time in the location of its Date.
func (s PostSlot) At() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.Hour, s.Minute, 0, 0, s.Date.Location())
}

// ScheduledFor formats the slot as YYYY-MM-DDTHH:MM.
func (s PostSlot) ScheduledFor() string {
	return s.At().Format(ScheduledForLayout)
}

// Rand is the subset of math/rand/v2.Rand the planner draws from.
type Rand interface {
	IntN(n int) int
}
