// Package classify assigns display tiers to solver result records and
// produces the canonical presentation order. Classification is a pure
// function of its input: the same record sequence always yields the same
// tiers and the same ordering, independent of solver emission order.
package classify

import (
	"fmt"
	"sort"

	"github.com/me/rota/pkg/model"
)

// Result is the classified, canonically ordered form of a solver result.
type Result struct {
	Records []model.ClassifiedRecord
	// Dropped lists records that failed structural invariants. They are
	// excluded from Records and surfaced as a warning, never coerced.
	Dropped []model.RecordFault
}

// Warning returns a MalformedRecordError describing the dropped records,
// or nil when none were dropped.
func (r Result) Warning() *model.MalformedRecordError {
	if len(r.Dropped) == 0 {
		return nil
	}
	return &model.MalformedRecordError{Faults: r.Dropped}
}

// Classify tags each record with a Tier and sorts the survivors into the
// canonical (weekday, start-minute) order. The sort is stable: records
// tied on day and start minute keep their input relative order.
func Classify(records []model.AssignmentRecord) Result {
	var res Result
	res.Records = make([]model.ClassifiedRecord, 0, len(records))

	for i, rec := range records {
		if err := rec.Check(); err != nil {
			res.Dropped = append(res.Dropped, model.RecordFault{
				Index:  i,
				Course: rec.Course,
				Reason: err.Error(),
			})
			continue
		}
		res.Records = append(res.Records, model.ClassifiedRecord{
			AssignmentRecord: rec,
			Tier:             tierOf(rec),
		})
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.StartMin < b.StartMin
	})
	for i := range res.Records {
		res.Records[i].Position = i
	}
	return res
}

// tierOf applies the tier rules in precedence order. Overflow is checked
// before qualification: a capacity violation is the more operationally
// urgent condition and must not be masked by a simultaneous qualification
// issue.
func tierOf(rec model.AssignmentRecord) model.Tier {
	switch {
	case rec.Students >= model.OverflowStudentThreshold:
		return model.TierOverflow
	case !rec.InstructorQualified:
		return model.TierQualificationWarning
	default:
		return model.TierNominal
	}
}

// Summary counts records per tier, for status lines and logs.
type Summary struct {
	Total                int `json:"total"`
	Overflow             int `json:"overflow"`
	QualificationWarning int `json:"qualification_warning"`
	Nominal              int `json:"nominal"`
	Dropped              int `json:"dropped"`
}

// Summarize computes a Summary from a classification result.
func Summarize(res Result) Summary {
	s := Summary{Total: len(res.Records), Dropped: len(res.Dropped)}
	for _, rec := range res.Records {
		switch rec.Tier {
		case model.TierOverflow:
			s.Overflow++
		case model.TierQualificationWarning:
			s.QualificationWarning++
		case model.TierNominal:
			s.Nominal++
		}
	}
	return s
}

// String renders the summary as a one-line report.
func (s Summary) String() string {
	return fmt.Sprintf("%d records (%d overflow, %d qualification warnings, %d nominal, %d dropped)",
		s.Total, s.Overflow, s.QualificationWarning, s.Nominal, s.Dropped)
}
