package planner

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Planner maps a media pool and a caption pool onto the posting windows of
// every remaining day of the month.
type Planner struct {
	videos   []string
	captions []string
	hashtags string
	windows  []Window
	rng      Rand
}

type Option func(*Planner)

// WithRand replaces the random source used for hour and minute draws.
func WithRand(rng Rand) Option {
	return func(p *Planner) {
		p.rng = rng
	}
}

func WithWindows(windows []Window) Option {
	return func(p *Planner) {
		p.windows = append([]Window(nil), windows...)
	}
}

func New(videos, captions []string, hashtags string, opts ...Option) *Planner {
	p := &Planner{
		videos:   append([]string(nil), videos...),
		captions: append([]string(nil), captions...),
		hashtags: hashtags,
		windows:  DefaultWindows,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Windows() []Window {
	return append([]Window(nil), p.windows...)
}

// Plan builds every slot from today's midnight up to RangeEnd(today).
func (p *Planner) Plan(today time.Time) ([]PostSlot, error) {
	return p.PlanDates(DatesUntil(today, RangeEnd(today)))
}

// PlanDates builds len(windows) slots per date. Videos restart at index 0 on
// every day; captions follow one running counter across all dates.
func (p *Planner) PlanDates(dates []time.Time) ([]PostSlot, error) {
	if len(p.videos) == 0 {
		return nil, ErrEmptyMediaPool
	}
	if len(p.captions) == 0 {
		return nil, ErrEmptyCaptionPool
	}
	for _, w := range p.windows {
		if err := w.validate(); err != nil {
			return nil, err
		}
	}

	slots := make([]PostSlot, 0, len(dates)*len(p.windows))
	k := 0
	for _, date := range dates {
		dayVideos := CycleVideos(p.videos, len(p.windows))
		for i, w := range p.windows {
			hour, minute := RandomTime(p.rng, w)
			slots = append(slots, PostSlot{
				Index:   k,
				Date:    Midnight(date),
				Window:  i,
				Hour:    hour,
				Minute:  minute,
				Video:   dayVideos[i],
				Caption: Caption(p.captions, p.hashtags, k),
			})
			k++
		}
	}
	return slots, nil
}

// RandomTime draws an hour in [w.Start, w.End-1] and a minute in [0, 59].
func RandomTime(rng Rand, w Window) (hour, minute int) {
	hour = w.Start + rng.IntN(w.End-w.Start)
	minute = rng.IntN(60)
	return hour, minute
}

// CycleVideos returns n entries taken from videos in order, wrapping around.
func CycleVideos(videos []string, n int) []string {
	if len(videos) == 0 {
		return nil
	}
	ret := make([]string, n)
	for i := range n {
		ret[i] = videos[i%len(videos)]
	}
	return ret
}

// Caption returns captions[k mod len(captions)] with the hashtag placeholder
// substituted.
func Caption(captions []string, hashtags string, k int) string {
	template := captions[k%len(captions)]
	return strings.ReplaceAll(template, HashtagPlaceholder, hashtags)
}

// Summary describes a planned range for console output.
type Summary struct {
	From  time.Time
	To    time.Time
	Days  int
	Posts int
}

func Summarize(today time.Time, slots []PostSlot, windowsPerDay int) Summary {
	days := 0
	if windowsPerDay > 0 {
		days = len(slots) / windowsPerDay
	}
	return Summary{
		From:  Midnight(today),
		To:    RangeEnd(today),
		Days:  days,
		Posts: len(slots),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%s to %s: %d days, %d posts",
		s.From.Format(time.DateOnly), s.To.Format(time.DateOnly), s.Days, s.Posts)
}
