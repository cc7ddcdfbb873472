package model

import (
	"errors"
	"testing"
)

// minimalTables returns one row for every required table.
func minimalTables() map[TableName]Table {
	tables := make(map[TableName]Table)
	for _, name := range RequiredTables {
		tables[name] = Table{{"ID": "1"}}
	}
	return tables
}

func TestInputBundle_Validate(t *testing.T) {
	b := NewInputBundle(minimalTables())
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestInputBundle_Validate_MissingTable(t *testing.T) {
	tables := minimalTables()
	delete(tables, TableRooms)
	b := NewInputBundle(tables)

	err := b.Validate()
	if err == nil {
		t.Fatal("expected InvalidBundleError")
	}
	var ibe *InvalidBundleError
	if !errors.As(err, &ibe) {
		t.Fatalf("error type = %T, want *InvalidBundleError", err)
	}
	if len(ibe.Missing) != 1 || ibe.Missing[0] != TableRooms {
		t.Errorf("Missing = %v, want [Rooms]", ibe.Missing)
	}
}

func TestInputBundle_Validate_EmptyTable(t *testing.T) {
	tables := minimalTables()
	tables[TableCourses] = Table{}
	b := NewInputBundle(tables)

	err := b.Validate()
	var ibe *InvalidBundleError
	if !errors.As(err, &ibe) {
		t.Fatalf("error type = %T, want *InvalidBundleError", err)
	}
	if len(ibe.Empty) != 1 || ibe.Empty[0] != TableCourses {
		t.Errorf("Empty = %v, want [Courses]", ibe.Empty)
	}
}

func TestInputBundle_OptionalInstructor(t *testing.T) {
	// Instructor absent: still valid.
	b := NewInputBundle(minimalTables())
	if err := b.Validate(); err != nil {
		t.Fatalf("bundle without Instructor: %v", err)
	}

	// Instructor present: appears in TableNames after the required set.
	tables := minimalTables()
	tables[TableInstructor] = Table{{"InstructorID": "I1"}}
	b = NewInputBundle(tables)
	names := b.TableNames()
	if names[len(names)-1] != TableInstructor {
		t.Errorf("TableNames() = %v, want Instructor last", names)
	}
}

func TestInputBundle_CopiesInput(t *testing.T) {
	tables := minimalTables()
	b := NewInputBundle(tables)

	// Mutating the source after construction must not be observable.
	tables[TableCourses][0]["ID"] = "mutated"
	delete(tables, TableRooms)

	if got := b.Table(TableCourses)[0]["ID"]; got != "1" {
		t.Errorf("bundle observed row mutation: ID = %q", got)
	}
	if b.Table(TableRooms) == nil {
		t.Error("bundle observed table deletion")
	}
}
