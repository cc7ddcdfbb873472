package solver

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/me/rota/pkg/model"
)

// SimTransport walks the phase sequence with a configurable delay per
// phase and derives a result by plumbing the bundle tables together:
// sessions from LectureMapping are dealt onto time slots, rooms, and
// instructors round-robin. It does no constraint solving; it exists so
// the full job lifecycle can run without a solver backend (demos, tests).
type SimTransport struct {
	PhaseDelay time.Duration
	logger     *slog.Logger
}

// NewSimTransport creates a simulated transport.
func NewSimTransport(phaseDelay time.Duration, logger *slog.Logger) *SimTransport {
	return &SimTransport{
		PhaseDelay: phaseDelay,
		logger:     logger.With("component", "sim-transport"),
	}
}

// Run implements Transport.
func (t *SimTransport) Run(ctx context.Context, bundle *model.InputBundle, notify func(model.JobPhase)) (*model.SolveResult, error) {
	for _, phase := range model.PhaseOrder {
		notify(phase)
		if t.PhaseDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(t.PhaseDelay):
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	res := t.derive(bundle)
	t.logger.Debug("simulated solve complete",
		"assignments", len(res.Assignments), "unassigned", len(res.Unassigned))
	return res, nil
}

// slot is one row of the TimeSlots table, parsed.
type slot struct {
	day      model.Weekday
	startMin int
	endMin   int
}

// derive deals sessions onto slots, rooms, and instructors in input order.
func (t *SimTransport) derive(bundle *model.InputBundle) *model.SolveResult {
	students := map[string]int{}
	for _, row := range bundle.Table(model.TableSections) {
		id := col(row, "SectionID", "ID")
		if id != "" {
			students[id] = atoi(col(row, "StudentCount", "Students", "Enrolled"))
		}
	}

	// InstructorID -> set of qualified CourseIDs.
	quals := map[string]map[string]bool{}
	var instructors []string
	for _, row := range bundle.Table(model.TableInstructorCourses) {
		iid := col(row, "InstructorID")
		cid := col(row, "CourseID")
		if iid == "" || cid == "" {
			continue
		}
		if quals[iid] == nil {
			quals[iid] = map[string]bool{}
			instructors = append(instructors, iid)
		}
		quals[iid][cid] = true
	}

	// Roles from the optional Instructor table.
	roles := map[string]string{}
	for _, row := range bundle.Table(model.TableInstructor) {
		iid := col(row, "InstructorID", "ID")
		if iid != "" {
			roles[iid] = strings.ToLower(col(row, "Role", "Type", "Rank"))
		}
	}

	var slots []slot
	for _, row := range bundle.Table(model.TableTimeSlots) {
		day, err := model.ParseWeekday(col(row, "Day", "Weekday"))
		if err != nil {
			continue
		}
		start := atoi(col(row, "StartMin", "StartMinute", "Start"))
		end := atoi(col(row, "EndMin", "EndMinute", "End"))
		if end <= start {
			continue
		}
		slots = append(slots, slot{day: day, startMin: start, endMin: end})
	}

	var rooms []string
	for _, row := range bundle.Table(model.TableRooms) {
		if id := col(row, "RoomID", "ID"); id != "" {
			rooms = append(rooms, id)
		}
	}

	res := &model.SolveResult{}
	i := 0
	for _, row := range bundle.Table(model.TableLectureMapping) {
		section := col(row, "SectionID", "Section")
		course := col(row, "CourseID", "Course")
		sessionType := col(row, "SessionType", "Type")
		if section == "" || course == "" || sessionType == "" {
			continue
		}
		count := students[section]

		if count <= 0 || len(slots) == 0 || len(rooms) == 0 || len(instructors) == 0 {
			res.Unassigned = append(res.Unassigned, model.UnassignedSession{
				Course:      course,
				Section:     section,
				SessionType: sessionType,
				Students:    count,
			})
			continue
		}

		instructor := pickInstructor(instructors, quals, course, i)
		sl := slots[i%len(slots)]
		lowerType := strings.ToLower(sessionType)
		wantsAssistant := strings.Contains(lowerType, "lab") || strings.Contains(lowerType, "tutorial")
		role := roles[instructor]
		preferred := wantsAssistant &&
			(strings.Contains(role, "assistant") || strings.Contains(role, "ta") || strings.Contains(role, "lab"))

		res.Assignments = append(res.Assignments, model.AssignmentRecord{
			Course:              course,
			Section:             section,
			SessionType:         sessionType,
			Students:            count,
			Day:                 sl.day,
			StartMin:            sl.startMin,
			EndMin:              sl.endMin,
			Room:                rooms[i%len(rooms)],
			Instructor:          instructor,
			InstructorQualified: quals[instructor][course],
			TimeslotPreferred:   preferred,
		})
		i++
	}
	return res
}

// pickInstructor prefers an instructor qualified for the course, falling
// back to round-robin over everyone.
func pickInstructor(all []string, quals map[string]map[string]bool, course string, i int) string {
	var qualified []string
	for _, iid := range all {
		if quals[iid][course] {
			qualified = append(qualified, iid)
		}
	}
	if len(qualified) > 0 {
		return qualified[i%len(qualified)]
	}
	return all[i%len(all)]
}

// col returns the first non-empty value among candidate column names,
// matched case-insensitively. Solver input CSVs are loose about header
// casing and synonyms.
func col(row model.Row, candidates ...string) string {
	for _, cand := range candidates {
		for k, v := range row {
			if strings.EqualFold(k, cand) {
				if s := strings.TrimSpace(v); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Tolerate float-formatted counts ("120.0").
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return n
}
