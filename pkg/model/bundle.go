package model

// TableName identifies one of the fixed solver input tables.
type TableName string

const (
	TableInstructorCourses TableName = "InstructorCourses"
	TableCourses           TableName = "Courses"
	TableRooms             TableName = "Rooms"
	TableTimeSlots         TableName = "TimeSlots"
	TableSections          TableName = "Sections"
	TableLectureMapping    TableName = "LectureMapping"
	TableInstructor        TableName = "Instructor"
)

// RequiredTables lists the tables a bundle must contain, non-empty,
// before it may be submitted. TableInstructor is optional.
var RequiredTables = []TableName{
	TableInstructorCourses,
	TableCourses,
	TableRooms,
	TableTimeSlots,
	TableSections,
	TableLectureMapping,
}

// Row is one tabular row: column name to scalar value. Column schemas are
// owned by the solver and opaque here beyond "non-empty".
type Row map[string]string

// Table is an ordered sequence of rows.
type Table []Row

// InputBundle is the complete set of named input tables for one scheduling
// job. Construct with NewInputBundle; the bundle copies its inputs and is
// treated as immutable once submitted.
type InputBundle struct {
	tables map[TableName]Table
}

// NewInputBundle builds a bundle from the given tables. The table map and
// each row are copied so later mutation by the caller cannot be observed
// by an in-flight job.
func NewInputBundle(tables map[TableName]Table) *InputBundle {
	copied := make(map[TableName]Table, len(tables))
	for name, tbl := range tables {
		rows := make(Table, len(tbl))
		for i, row := range tbl {
			r := make(Row, len(row))
			for k, v := range row {
				r[k] = v
			}
			rows[i] = r
		}
		copied[name] = rows
	}
	return &InputBundle{tables: copied}
}

// Table returns the named table, or nil if absent.
func (b *InputBundle) Table(name TableName) Table {
	return b.tables[name]
}

// Len returns the number of tables in the bundle.
func (b *InputBundle) Len() int {
	return len(b.tables)
}

// TableNames returns the names of all tables present, in RequiredTables
// order followed by TableInstructor if present.
func (b *InputBundle) TableNames() []TableName {
	var names []TableName
	for _, name := range RequiredTables {
		if _, ok := b.tables[name]; ok {
			names = append(names, name)
		}
	}
	if _, ok := b.tables[TableInstructor]; ok {
		names = append(names, TableInstructor)
	}
	return names
}

// Validate checks that every required table is present and non-empty.
// It returns an *InvalidBundleError naming each violation, or nil.
func (b *InputBundle) Validate() error {
	var missing, empty []TableName
	for _, name := range RequiredTables {
		tbl, ok := b.tables[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if len(tbl) == 0 {
			empty = append(empty, name)
		}
	}
	if len(missing) == 0 && len(empty) == 0 {
		return nil
	}
	return &InvalidBundleError{Missing: missing, Empty: empty}
}
