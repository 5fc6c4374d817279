package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MimeLyc/latepost/internal/config"
	"github.com/MimeLyc/latepost/internal/late"
	"github.com/MimeLyc/latepost/internal/planner"
)

// MaxListedErrors caps the error listing of the run summary.
const MaxListedErrors = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Console prints human readable progress. The format is not meant to be
// parsed.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Println(format string, args ...any) {
	fmt.Fprintln(c.out, fmt.Sprintf(format, args...))
}

func (c *Console) Item(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+okStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (c *Console) Warning(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

func (c *Console) Failure(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+errorStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

func (c *Console) Banner(cfg config.Config, accounts late.Accounts) {
	fmt.Fprintln(c.out, titleStyle.Render("Late post scheduler - "+cfg.Late.ProfileName))
	fmt.Fprintf(c.out, "Profile: %s\n", cfg.Late.ProfileName)
	fmt.Fprintf(c.out, "Timezone: %s\n", cfg.Schedule.Timezone)
	fmt.Fprintf(c.out, "Video Directory: %s\n", cfg.Schedule.VideoDir)
	if cfg.Schedule.DryRun {
		fmt.Fprintln(c.out, warnStyle.Render("Dry run: nothing will be uploaded or scheduled"))
		return
	}
	c.Success("Using profile ID: %s", accounts.ProfileID)
	c.Success("Instagram Account ID: %s", accounts.Instagram)
	c.Success("TikTok Account ID: %s", accounts.TikTok)
	c.Success("YouTube Account ID: %s", accounts.YouTube)
}

func (c *Console) PlanHeader(s planner.Summary) {
	fmt.Fprintf(c.out, "Scheduling posts from %s to %s\n", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly))
	fmt.Fprintf(c.out, "Total days: %d\n", s.Days)
	fmt.Fprintf(c.out, "Total posts: %d\n", s.Posts)
}

func (c *Console) Day(date time.Time) {
	fmt.Fprintln(c.out, titleStyle.Render(date.Format(time.DateOnly)+":"))
}

func (c *Console) Waiting(d time.Duration) {
	c.Warning("Waiting %s due to rate limit...", d.Round(time.Second))
}

func (c *Console) DryRun(slots []planner.PostSlot) {
	for _, slot := range slots {
		if slot.Window == 0 {
			c.Day(slot.Date)
		}
		firstLine, _, _ := strings.Cut(slot.Caption, "\n")
		c.Item("%s  %-24s %s", slot.ScheduledFor(), filepath.Base(slot.Video), mutedStyle.Render(firstLine))
	}
}

// Summary prints the end-of-run totals and up to MaxListedErrors failures.
func (c *Console) Summary(report *RunReport) {
	var b strings.Builder
	switch {
	case report.Aborted != nil:
		b.WriteString(errorStyle.Render("Scheduling aborted"))
	case report.DryRun:
		b.WriteString(okStyle.Render("Dry run complete"))
	default:
		b.WriteString(okStyle.Render("Scheduling complete!"))
	}
	fmt.Fprintf(&b, "\nRun: %s", report.RunID)
	if report.DryRun {
		fmt.Fprintf(&b, "\nTotal posts planned: %d", len(report.Slots))
	} else {
		fmt.Fprintf(&b, "\nTotal posts scheduled: %d", report.Scheduled())
	}
	if n := report.Skipped(); n > 0 {
		fmt.Fprintf(&b, "\nSkipped (video not uploaded): %d", n)
	}
	if n := len(report.UploadFailures); n > 0 {
		fmt.Fprintf(&b, "\nUpload failures: %d", n)
	}

	errs := report.Errors()
	if len(errs) > 0 {
		fmt.Fprintf(&b, "\n%s", warnStyle.Render(fmt.Sprintf("Errors: %d", len(errs))))
		for i, res := range errs {
			if i == MaxListedErrors {
				fmt.Fprintf(&b, "\n   ... and %d more errors", len(errs)-MaxListedErrors)
				break
			}
			fmt.Fprintf(&b, "\n   - %s: %s", res.ScheduledFor, shortError(res.Err))
		}
	}
	if report.Aborted != nil {
		fmt.Fprintf(&b, "\n%s", errorStyle.Render("Fatal: "+shortError(report.Aborted)))
	}

	fmt.Fprintln(c.out, summaryStyle.Render(b.String()))
}

// shortError renders "Type: cause" without the context map.
func shortError(err *SchedulerError) string {
	if err == nil {
		return ""
	}
	if err.Cause != nil {
		return fmt.Sprintf("%s: %v", err.Type, err.Cause)
	}
	return fmt.Sprintf("%s: %s", err.Type, err.Message)
}
