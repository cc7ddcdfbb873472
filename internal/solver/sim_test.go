package solver

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/me/rota/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func simBundle() *model.InputBundle {
	return model.NewInputBundle(map[model.TableName]model.Table{
		model.TableInstructorCourses: {
			{"InstructorID": "I1", "CourseID": "CS101"},
			{"InstructorID": "I2", "CourseID": "MA110"},
		},
		model.TableCourses: {
			{"CourseID": "CS101", "CourseName": "Intro CS"},
			{"CourseID": "MA110", "CourseName": "Calculus"},
		},
		model.TableRooms: {
			{"RoomID": "H1", "RoomType": "Hall", "Capacity": "300"},
			{"RoomID": "L2", "RoomType": "Lab", "Capacity": "30"},
		},
		model.TableTimeSlots: {
			{"TimeSlotID": "T1", "Day": "Mon", "StartMin": "540", "EndMin": "660"},
			{"TimeSlotID": "T2", "Day": "Tue", "StartMin": "600", "EndMin": "720"},
		},
		model.TableSections: {
			{"SectionID": "A", "StudentCount": "120"},
			{"SectionID": "B", "StudentCount": "0"},
		},
		model.TableLectureMapping: {
			{"SectionID": "A", "CourseID": "CS101", "SessionType": "Lecture"},
			{"SectionID": "A", "CourseID": "MA110", "SessionType": "Lab"},
			{"SectionID": "B", "CourseID": "CS101", "SessionType": "Lecture"},
		},
	})
}

func TestSimTransport_PhasesInOrder(t *testing.T) {
	tr := NewSimTransport(0, testLogger())

	var phases []model.JobPhase
	_, err := tr.Run(context.Background(), simBundle(), func(p model.JobPhase) {
		phases = append(phases, p)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(phases) != len(model.PhaseOrder) {
		t.Fatalf("phases = %d, want %d", len(phases), len(model.PhaseOrder))
	}
	for i, p := range model.PhaseOrder {
		if phases[i] != p {
			t.Errorf("phase %d = %s, want %s", i, phases[i], p)
		}
	}
}

func TestSimTransport_DerivesAssignments(t *testing.T) {
	tr := NewSimTransport(0, testLogger())

	res, err := tr.Run(context.Background(), simBundle(), func(model.JobPhase) {})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Section A's two sessions are assigned; section B has zero students
	// and lands in unassigned.
	if len(res.Assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(res.Assignments))
	}
	if len(res.Unassigned) != 1 || res.Unassigned[0].Section != "B" {
		t.Fatalf("unassigned = %v, want section B", res.Unassigned)
	}

	for _, a := range res.Assignments {
		if a.Students != 120 {
			t.Errorf("%s: students = %d, want 120", a.Course, a.Students)
		}
		if err := a.Check(); err != nil {
			t.Errorf("%s: invalid derived record: %v", a.Course, err)
		}
		// The qualified instructor for each course is preferred, so the
		// qualification flag holds.
		if !a.InstructorQualified {
			t.Errorf("%s: instructor %s not qualified", a.Course, a.Instructor)
		}
	}
}

func TestSimTransport_Cancellation(t *testing.T) {
	tr := NewSimTransport(time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := tr.Run(ctx, simBundle(), func(model.JobPhase) {})
	if err != context.Canceled {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}
