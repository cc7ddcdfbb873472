package solver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/me/rota/pkg/model"
)

// wireAssignment matches the solver's result payload schema. Field names
// are owned by the solver. StartHHMM/EndHHMM are collaborator-supplied
// duplicates of the minute fields and are ignored: the core re-derives
// display times from StartMin/EndMin.
type wireAssignment struct {
	Course              string `json:"Course"`
	Section             string `json:"Section"`
	SessionType         string `json:"SessionType"`
	Students            int    `json:"Students"`
	Day                 string `json:"Day"`
	StartMin            int    `json:"StartMin"`
	EndMin              int    `json:"EndMin"`
	StartHHMM           string `json:"StartHHMM"`
	EndHHMM             string `json:"EndHHMM"`
	SlotType            string `json:"SlotType"`
	Room                string `json:"Room"`
	Instructor          string `json:"Instructor"`
	InstructorQualified any    `json:"InstructorQualified"`
	TimeslotIsPreferred any    `json:"TimeslotIsPreferred"`
}

type wireUnassigned struct {
	Course      string `json:"Course"`
	Section     string `json:"Section"`
	SessionType string `json:"SessionType"`
	Students    int    `json:"Students"`
}

type wireResult struct {
	Assignments []wireAssignment `json:"assignments"`
	Unassigned  []wireUnassigned `json:"unassigned"`
}

// DecodeResult parses a solver result payload and normalizes it into core
// types. Qualification and preference flags arrive as booleans or as
// string literals ("False", "true"); both are accepted here so that the
// classifier never performs loose comparisons. An absent or unrecognized
// qualification value means qualified.
func DecodeResult(data []byte) (*model.SolveResult, error) {
	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse result payload: %w", err)
	}

	res := &model.SolveResult{
		Assignments: make([]model.AssignmentRecord, 0, len(wire.Assignments)),
	}
	for _, wa := range wire.Assignments {
		day, err := model.ParseWeekday(wa.Day)
		if err != nil {
			day = model.WeekdayUnknown
		}
		res.Assignments = append(res.Assignments, model.AssignmentRecord{
			Course:              wa.Course,
			Section:             wa.Section,
			SessionType:         wa.SessionType,
			Students:            wa.Students,
			Day:                 day,
			StartMin:            wa.StartMin,
			EndMin:              wa.EndMin,
			Room:                wa.Room,
			Instructor:          wa.Instructor,
			InstructorQualified: normalizeBool(wa.InstructorQualified, true),
			TimeslotPreferred:   normalizeBool(wa.TimeslotIsPreferred, false),
		})
	}
	for _, wu := range wire.Unassigned {
		res.Unassigned = append(res.Unassigned, model.UnassignedSession{
			Course:      wu.Course,
			Section:     wu.Section,
			SessionType: wu.SessionType,
			Students:    wu.Students,
		})
	}
	return res, nil
}

// normalizeBool coerces the loose boolean encodings seen in solver output
// to a strict bool. Absent (nil) and unrecognized values take def.
func normalizeBool(v any, def bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	case float64:
		return b != 0
	}
	return def
}
