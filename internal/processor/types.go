package processor

import (
	"time"

	"github.com/sirupsen/logrus"

	"oniazusa/internal/raster"
	"oniazusa/internal/stylize"
)

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

type Options struct {
	Workers      int           // 0 means runtime.NumCPU()
	Timeout      time.Duration // per item; 0 disables
	SkipExisting bool          // skip outputs already rendered with the same profile
	KeepOutput   bool          // retain the rendered image in each Result
	Decoder      Decoder       // nil uses FileDecoder
	Writer       Writer        // nil uses PNGWriter
	Logger       *logrus.Logger
}

// WorkItem pairs an input file with its output path.
type WorkItem struct {
	Source      string
	Destination string
	Display     string
}

// Result is the outcome of one WorkItem. Image is only set on success and
// only when Options.KeepOutput is true.
type Result struct {
	Item   WorkItem
	Status Status
	Image  *raster.Image
	Kind   ErrorKind
	Stage  stylize.Stage
	Err    error
}

type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Report is everything Run returns: one Result per WorkItem, in input
// order, plus the tally.
type Report struct {
	Results []Result
	Summary Summary
}

// Failures returns the failed results in input order.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailure {
			out = append(out, res)
		}
	}
	return out
}

type ProgressUpdate struct {
	TotalDelta     int
	ProcessedDelta int
	ErrorDelta     int
	SkippedDelta   int
	Current        string
}
