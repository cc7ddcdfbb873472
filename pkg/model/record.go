package model

import (
	"fmt"
	"strings"
)

// Weekday is a day of the teaching week, ordered Mon < Tue < ... < Sun.
// The zero value is WeekdayUnknown.
type Weekday int

const (
	WeekdayUnknown Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[Weekday]string{
	Monday:    "Mon",
	Tuesday:   "Tue",
	Wednesday: "Wed",
	Thursday:  "Thu",
	Friday:    "Fri",
	Saturday:  "Sat",
	Sunday:    "Sun",
}

// String returns the short weekday name ("Mon" .. "Sun"), or "N/A".
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return "N/A"
}

// ParseWeekday parses a day name as emitted by the solver. Full names,
// three-letter abbreviations, and any casing are accepted.
func ParseWeekday(s string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mon", "monday":
		return Monday, nil
	case "tue", "tues", "tuesday":
		return Tuesday, nil
	case "wed", "wednesday":
		return Wednesday, nil
	case "thu", "thur", "thurs", "thursday":
		return Thursday, nil
	case "fri", "friday":
		return Friday, nil
	case "sat", "saturday":
		return Saturday, nil
	case "sun", "sunday":
		return Sunday, nil
	}
	return WeekdayUnknown, fmt.Errorf("unknown weekday %q", s)
}

// MinutesToHHMM formats a minute offset from midnight as "HH:MM".
func MinutesToHHMM(m int) string {
	if m < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AssignmentRecord is one scheduled session from a solver result.
// StartMin/EndMin are authoritative; HH:MM display strings are derived
// from them, never from collaborator-supplied duplicates.
type AssignmentRecord struct {
	Course              string  `json:"course"`
	Section             string  `json:"section"`
	SessionType         string  `json:"session_type"`
	Students            int     `json:"students"`
	Day                 Weekday `json:"day"`
	StartMin            int     `json:"start_min"`
	EndMin              int     `json:"end_min"`
	Room                string  `json:"room"`
	Instructor          string  `json:"instructor"`
	InstructorQualified bool    `json:"instructor_qualified"`
	TimeslotPreferred   bool    `json:"timeslot_preferred"`
}

// StartHHMM returns the display start time derived from StartMin.
func (r AssignmentRecord) StartHHMM() string {
	return MinutesToHHMM(r.StartMin)
}

// EndHHMM returns the display end time derived from EndMin.
func (r AssignmentRecord) EndHHMM() string {
	return MinutesToHHMM(r.EndMin)
}

// Check validates the record's structural invariants.
func (r AssignmentRecord) Check() error {
	if r.StartMin >= r.EndMin {
		return fmt.Errorf("start %d not before end %d", r.StartMin, r.EndMin)
	}
	if r.StartMin < 0 || r.EndMin > 24*60 {
		return fmt.Errorf("times [%d, %d] outside [0, 1440]", r.StartMin, r.EndMin)
	}
	if r.Students < 0 {
		return fmt.Errorf("negative student count %d", r.Students)
	}
	return nil
}

// Tier is the mutually exclusive visual/priority classification of a
// result record.
type Tier string

const (
	// TierOverflow flags sessions likely over nominal hall capacity,
	// regardless of any simultaneous qualification issue.
	TierOverflow Tier = "OVERFLOW"
	// TierQualificationWarning flags an explicitly unqualified instructor.
	TierQualificationWarning Tier = "QUALIFICATION_WARNING"
	// TierNominal is everything else.
	TierNominal Tier = "NOMINAL"
)

// OverflowStudentThreshold is the student count at which a session is
// tagged TierOverflow.
const OverflowStudentThreshold = 200

// ClassifiedRecord is an AssignmentRecord plus its derived Tier and its
// position in the canonical (day, start-minute) sort order.
type ClassifiedRecord struct {
	AssignmentRecord
	Tier     Tier `json:"tier"`
	Position int  `json:"position"`
}

// UnassignedSession is a session the solver could not place.
type UnassignedSession struct {
	Course      string `json:"course"`
	Section     string `json:"section"`
	SessionType string `json:"session_type"`
	Students    int    `json:"students"`
}
