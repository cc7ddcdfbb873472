package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/me/rota/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleJob(id string) *model.Job {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Job{
		ID:        id,
		Status:    model.JobStatusSubmitting,
		CreatedAt: now,
	}
}

func sampleResult() ([]model.ClassifiedRecord, []model.UnassignedSession) {
	records := []model.ClassifiedRecord{
		{
			AssignmentRecord: model.AssignmentRecord{
				Course: "CS101", Section: "A", SessionType: "Lecture", Students: 250,
				Day: model.Monday, StartMin: 540, EndMin: 660,
				Room: "H1", Instructor: "Dr. Vega", InstructorQualified: true,
			},
			Tier: model.TierOverflow, Position: 0,
		},
		{
			AssignmentRecord: model.AssignmentRecord{
				Course: "MA110", Section: "B", SessionType: "Lab", Students: 28,
				Day: model.Tuesday, StartMin: 780, EndMin: 900,
				Room: "L2", Instructor: "T. Okafor", TimeslotPreferred: true,
			},
			Tier: model.TierQualificationWarning, Position: 1,
		},
	}
	unassigned := []model.UnassignedSession{
		{Course: "PH202", Section: "C", SessionType: "Tutorial", Students: 15},
	}
	return records, unassigned
}

// --- Migration tests ---

func TestMigrate_Idempotent(t *testing.T) {
	st := testStore(t)
	// Migrate a second time, should not error.
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// --- Job CRUD tests ---

func TestCreateAndGetJob(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	job := sampleJob("job_test-1")

	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("got nil job")
	}
	if got.ID != job.ID {
		t.Errorf("id = %q, want %q", got.ID, job.ID)
	}
	if got.Status != model.JobStatusSubmitting {
		t.Errorf("status = %q, want %q", got.Status, model.JobStatusSubmitting)
	}
	if got.StartedAt != nil || got.FinishedAt != nil {
		t.Errorf("timestamps = %v/%v, want nil/nil", got.StartedAt, got.FinishedAt)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	st := testStore(t)

	got, err := st.GetJob(context.Background(), "job_missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got = %v, want nil", got)
	}
}

func TestUpdateJob(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	job := sampleJob("job_test-1")
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	started := time.Now().UTC().Truncate(time.Millisecond)
	finished := started.Add(2 * time.Second)
	job.Status = model.JobStatusSucceeded
	job.Phase = model.PhaseExporting
	job.Assigned = 12
	job.Unassigned = 1
	job.Dropped = 2
	job.StartedAt = &started
	job.FinishedAt = &finished

	if err := st.UpdateJob(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.JobStatusSucceeded {
		t.Errorf("status = %q, want SUCCEEDED", got.Status)
	}
	if got.Assigned != 12 || got.Unassigned != 1 || got.Dropped != 2 {
		t.Errorf("counts = %d/%d/%d, want 12/1/2", got.Assigned, got.Unassigned, got.Dropped)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, started)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("finished_at = %v, want %v", got.FinishedAt, finished)
	}
}

func TestUpdateJob_NotFound(t *testing.T) {
	st := testStore(t)

	job := sampleJob("job_missing")
	if err := st.UpdateJob(context.Background(), job); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestListJobs_FilterAndPaginate(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		job := sampleJob(fmt.Sprintf("job_test-%d", i))
		job.CreatedAt = job.CreatedAt.Add(time.Duration(i) * time.Second)
		if i%2 == 0 {
			job.Status = model.JobStatusFailed
		}
		if err := st.CreateJob(ctx, job); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	jobs, total, err := st.ListJobs(ctx, model.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(jobs) != 2 {
		t.Errorf("len = %d, want 2", len(jobs))
	}
	// Newest first.
	if jobs[0].ID != "job_test-4" {
		t.Errorf("first = %q, want job_test-4", jobs[0].ID)
	}

	failed, total, err := st.ListJobs(ctx, model.ListOptions{Limit: 10, Status: string(model.JobStatusFailed)})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(failed) != 3 {
		t.Errorf("failed total/len = %d/%d, want 3/3", total, len(failed))
	}
}

// --- Result storage tests ---

func TestReplaceAndGetResult(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	job := sampleJob("job_test-1")
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, unassigned := sampleResult()
	if err := st.ReplaceResult(ctx, job.ID, records, unassigned); err != nil {
		t.Fatalf("replace: %v", err)
	}

	gotRecords, gotUnassigned, err := st.GetResult(ctx, job.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if len(gotRecords) != 2 {
		t.Fatalf("records = %d, want 2", len(gotRecords))
	}
	first := gotRecords[0]
	if first.Course != "CS101" || first.Tier != model.TierOverflow || first.Position != 0 {
		t.Errorf("first record = %+v", first)
	}
	if !first.InstructorQualified {
		t.Error("qualified flag lost on round trip")
	}
	if first.Day != model.Monday || first.StartMin != 540 {
		t.Errorf("first slot = %v %d", first.Day, first.StartMin)
	}
	if !gotRecords[1].TimeslotPreferred {
		t.Error("preferred flag lost on round trip")
	}
	if len(gotUnassigned) != 1 || gotUnassigned[0].Course != "PH202" {
		t.Errorf("unassigned = %v, want [PH202]", gotUnassigned)
	}
}

func TestReplaceResult_Wholesale(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	job := sampleJob("job_test-1")
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, unassigned := sampleResult()
	if err := st.ReplaceResult(ctx, job.ID, records, unassigned); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// A second result replaces the first outright.
	replacement := []model.ClassifiedRecord{
		{
			AssignmentRecord: model.AssignmentRecord{
				Course: "BI300", Section: "A", SessionType: "Lecture", Students: 40,
				Day: model.Friday, StartMin: 600, EndMin: 720,
				Room: "H3", Instructor: "K. Lindqvist", InstructorQualified: true,
			},
			Tier: model.TierNominal, Position: 0,
		},
	}
	if err := st.ReplaceResult(ctx, job.ID, replacement, nil); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	gotRecords, gotUnassigned, err := st.GetResult(ctx, job.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if len(gotRecords) != 1 || gotRecords[0].Course != "BI300" {
		t.Errorf("records = %v, want [BI300]", gotRecords)
	}
	if len(gotUnassigned) != 0 {
		t.Errorf("unassigned = %v, want empty", gotUnassigned)
	}
}

func TestGetResult_Empty(t *testing.T) {
	st := testStore(t)

	records, unassigned, err := st.GetResult(context.Background(), "job_missing")
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if len(records) != 0 || len(unassigned) != 0 {
		t.Errorf("got %d/%d rows, want none", len(records), len(unassigned))
	}
}
