package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Failure records a page whose generation failed.
type Failure struct {
	PageID int64
	Err    error
}

// Summary is the outcome of a bulk generation run.
type Summary struct {
	Total     int
	Succeeded int
	Failures  []Failure
	Elapsed   time.Duration
}

// Tracker counts per-page generation outcomes. Interactive terminals get a
// progress bar; CI logs get one line per page.
type Tracker struct {
	out      io.Writer
	bar      *progressbar.ProgressBar
	started  time.Time
	total    int
	done     int
	failures []Failure
}

// New returns a Tracker for total pages writing to out (stderr when nil).
func New(out io.Writer, total int) *Tracker {
	if isCI() {
		return NewLines(out, total)
	}
	t := newTracker(out, total)
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription("Generating static content"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return t
}

// NewLines returns a Tracker that always prints plain lines.
func NewLines(out io.Writer, total int) *Tracker {
	t := newTracker(out, total)
	fmt.Fprintf(t.out, "Generating static content for %d pages\n", total)
	return t
}

func newTracker(out io.Writer, total int) *Tracker {
	if out == nil {
		out = os.Stderr
	}
	return &Tracker{out: out, total: total, started: time.Now()}
}

// Record registers the outcome for one page.
func (t *Tracker) Record(pageID int64, err error) {
	t.done++
	label := fmt.Sprintf("page %d", pageID)
	if err != nil {
		t.failures = append(t.failures, Failure{PageID: pageID, Err: err})
		label += " failed"
	}
	if t.bar != nil {
		t.bar.Describe(label)
		_ = t.bar.Set(t.done)
		return
	}
	fmt.Fprintf(t.out, "[%d/%d] %s\n", t.done, t.total, label)
}

// Finish closes the bar and returns the run summary.
func (t *Tracker) Finish() Summary {
	if t.bar != nil {
		_ = t.bar.Finish()
	} else {
		fmt.Fprintln(t.out, "Static content generation complete")
	}
	return Summary{
		Total:     t.total,
		Succeeded: t.done - len(t.failures),
		Failures:  t.failures,
		Elapsed:   time.Since(t.started),
	}
}

func isCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}
