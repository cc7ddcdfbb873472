// Package report renders classified scheduling results and job status
// lines. No business logic lives here: tiers and ordering arrive already
// computed and are never re-derived or re-sorted.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/me/rota/internal/classify"
	"github.com/me/rota/pkg/model"
)

// Sink receives the core's two outward calls: one per job event, and one
// when a classified result is ready.
type Sink interface {
	OnJobEvent(ev model.JobEvent)
	OnClassifiedResult(res classify.Result, unassigned []model.UnassignedSession)
}

// Report is one rendered result set. It is replaced wholesale when a new
// result arrives, never merged.
type Report struct {
	Records     []model.ClassifiedRecord
	Unassigned  []model.UnassignedSession
	Warning     *model.MalformedRecordError
	GeneratedAt time.Time
}

// Presenter writes job status lines and result tables to an output
// stream. It retains the last successful report: a failed re-run leaves
// the previous report untouched until a new job succeeds.
type Presenter struct {
	out    io.Writer
	logger *slog.Logger

	mu   sync.Mutex
	last *Report
}

// NewPresenter creates a presenter writing rendered tables to out.
func NewPresenter(out io.Writer, logger *slog.Logger) *Presenter {
	return &Presenter{
		out:    out,
		logger: logger.With("component", "report"),
	}
}

// OnJobEvent implements Sink.
func (p *Presenter) OnJobEvent(ev model.JobEvent) {
	switch ev.Type {
	case model.EventPhaseChanged:
		p.logger.Info("phase", "job_id", ev.JobID, "phase", ev.Phase)
	case model.EventSucceeded:
		p.logger.Info("job succeeded", "job_id", ev.JobID)
	case model.EventFailed:
		// The previous report, if any, stays on screen.
		p.logger.Error("job failed", "job_id", ev.JobID, "kind", ev.ErrKind, "error", ev.ErrMessage)
	}
}

// OnClassifiedResult implements Sink. The incoming records replace the
// retained report entirely.
func (p *Presenter) OnClassifiedResult(res classify.Result, unassigned []model.UnassignedSession) {
	rep := &Report{
		Records:     res.Records,
		Unassigned:  unassigned,
		Warning:     res.Warning(),
		GeneratedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.last = rep
	p.mu.Unlock()

	if rep.Warning != nil {
		p.logger.Warn("malformed records dropped", "count", len(rep.Warning.Faults))
	}
	p.logger.Info("report ready", "summary", classify.Summarize(res).String())

	if err := Render(p.out, rep); err != nil {
		p.logger.Error("render report", "error", err)
	}
}

// Last returns the most recent successful report, or nil. Failures never
// clear it.
func (p *Presenter) Last() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// tierMark is the visual triage marker printed in the table's first column.
func tierMark(t model.Tier) string {
	switch t {
	case model.TierOverflow:
		return "!!"
	case model.TierQualificationWarning:
		return "?"
	default:
		return ""
	}
}

// Render writes a report as an aligned text table in canonical order.
func Render(w io.Writer, rep *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tCOURSE\tSECTION\tTYPE\tSTUDENTS\tDAY\tSTART\tEND\tROOM\tINSTRUCTOR\tTIER")
	for _, rec := range rep.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tierMark(rec.Tier), rec.Course, rec.Section, rec.SessionType, rec.Students,
			rec.Day, rec.StartHHMM(), rec.EndHHMM(), rec.Room, rec.Instructor, rec.Tier)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Unassigned) > 0 {
		fmt.Fprintf(w, "\n%d session(s) could not be placed:\n", len(rep.Unassigned))
		for _, u := range rep.Unassigned {
			fmt.Fprintf(w, "  - %s/%s %s (%d students)\n", u.Course, u.Section, u.SessionType, u.Students)
		}
	}
	if rep.Warning != nil {
		fmt.Fprintf(w, "\nwarning: %s\n", rep.Warning.Error())
	}
	return nil
}
