package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/me/rota/pkg/model"
)

// solutionHeader matches the solver's exported solution file, plus the
// derived Tier column.
var solutionHeader = []string{
	"Course", "Section", "SessionType", "Students",
	"Day", "StartMin", "EndMin", "StartHHMM", "EndHHMM",
	"Room", "Instructor", "InstructorQualified", "TimeslotIsPreferred", "Tier",
}

// WriteSolutionCSV writes classified records in canonical order as CSV.
func WriteSolutionCSV(w io.Writer, records []model.ClassifiedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(solutionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Course,
			rec.Section,
			rec.SessionType,
			strconv.Itoa(rec.Students),
			rec.Day.String(),
			strconv.Itoa(rec.StartMin),
			strconv.Itoa(rec.EndMin),
			rec.StartHHMM(),
			rec.EndHHMM(),
			rec.Room,
			rec.Instructor,
			strconv.FormatBool(rec.InstructorQualified),
			strconv.FormatBool(rec.TimeslotPreferred),
			string(rec.Tier),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s/%s: %w", rec.Course, rec.Section, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailuresCSV writes the sessions the solver could not place.
func WriteFailuresCSV(w io.Writer, unassigned []model.UnassignedSession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Course", "Section", "SessionType", "Students"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, u := range unassigned {
		row := []string{u.Course, u.Section, u.SessionType, strconv.Itoa(u.Students)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write session %s/%s: %w", u.Course, u.Section, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
