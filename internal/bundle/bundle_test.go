package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/me/rota/pkg/model"
)

// writeCSVFiles lays out a complete bundle directory. The returned dir is
// cleaned up with the test.
func writeCSVFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func fullBundleFiles() map[string]string {
	return map[string]string{
		"InstructorCourses.csv": "InstructorID,CourseID\nI1,CS101\nI2,MA110\n",
		"Courses.csv":           "CourseID,CourseName\nCS101,Intro CS\nMA110,Calculus\n",
		"Rooms.csv":             "RoomID,RoomType,Capacity\nH1,Hall,300\nL2,Lab,30\n",
		"TimeSlots.csv":         "TimeSlotID,Day,StartMin,EndMin\nT1,Mon,540,660\nT2,Tue,600,720\n",
		"Sections.csv":          "SectionID,StudentCount\nA,120\nB,35\n",
		"LectureMapping.csv":    "SectionID,CourseID,SessionType\nA,CS101,Lecture\nB,MA110,Lab\n",
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := writeCSVFiles(t, fullBundleFiles())

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	courses := b.Table(model.TableCourses)
	if len(courses) != 2 {
		t.Fatalf("Courses rows = %d, want 2", len(courses))
	}
	if courses[0]["CourseID"] != "CS101" || courses[0]["CourseName"] != "Intro CS" {
		t.Errorf("Courses[0] = %v", courses[0])
	}
}

func TestLoad_OptionalInstructorAbsent(t *testing.T) {
	dir := writeCSVFiles(t, fullBundleFiles())

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Table(model.TableInstructor) != nil {
		t.Error("Instructor table should be absent")
	}
	if err := b.Validate(); err != nil {
		t.Errorf("bundle without Instructor.csv should validate: %v", err)
	}
}

func TestLoad_MissingRequiredSurfacesInValidate(t *testing.T) {
	files := fullBundleFiles()
	delete(files, "Rooms.csv")
	dir := writeCSVFiles(t, files)

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := b.Validate(); err == nil {
		t.Fatal("Validate should report missing Rooms")
	}
}

func TestLoad_RaggedRowsPadded(t *testing.T) {
	files := fullBundleFiles()
	files["Sections.csv"] = "SectionID,StudentCount,Courses\nA,120\n"
	dir := writeCSVFiles(t, files)

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	row := b.Table(model.TableSections)[0]
	if row["Courses"] != "" {
		t.Errorf("short row not padded: %v", row)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := writeCSVFiles(t, fullBundleFiles())

	manifest := `tables:
  InstructorCourses: InstructorCourses.csv
  Courses: Courses.csv
  Rooms: Rooms.csv
  TimeSlots: TimeSlots.csv
  Sections: Sections.csv
  LectureMapping: LectureMapping.csv
`
	path := filepath.Join(dir, "bundle.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	b, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadManifest_UnknownTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.yaml")
	if err := os.WriteFile(path, []byte("tables:\n  Roomz: Rooms.csv\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for unknown table name")
	}
}
