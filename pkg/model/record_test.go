package model

import "testing"

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want Weekday
	}{
		{"Mon", Monday},
		{"monday", Monday},
		{"TUESDAY", Tuesday},
		{"Wed", Wednesday},
		{"thurs", Thursday},
		{"Friday", Friday},
		{" Sat ", Saturday},
		{"sun", Sunday},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if err != nil {
			t.Errorf("ParseWeekday(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseWeekday("Funday"); err == nil {
		t.Error("ParseWeekday(Funday) expected error")
	}
}

func TestWeekdayOrdering(t *testing.T) {
	// The canonical sort relies on Mon < Tue < ... < Sun as integers.
	days := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
	for i := 1; i < len(days); i++ {
		if days[i-1] >= days[i] {
			t.Errorf("%v not ordered before %v", days[i-1], days[i])
		}
	}
}

func TestMinutesToHHMM(t *testing.T) {
	tests := []struct {
		min  int
		want string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{630, "10:30"},
		{1439, "23:59"},
		{-5, "N/A"},
	}
	for _, tt := range tests {
		if got := MinutesToHHMM(tt.min); got != tt.want {
			t.Errorf("MinutesToHHMM(%d) = %q, want %q", tt.min, got, tt.want)
		}
	}
}

func TestAssignmentRecord_Check(t *testing.T) {
	ok := AssignmentRecord{Course: "CS101", Students: 30, Day: Monday, StartMin: 540, EndMin: 630}
	if err := ok.Check(); err != nil {
		t.Errorf("valid record: %v", err)
	}

	inverted := ok
	inverted.StartMin, inverted.EndMin = 630, 540
	if err := inverted.Check(); err == nil {
		t.Error("start >= end should fail Check")
	}

	negative := ok
	negative.Students = -1
	if err := negative.Check(); err == nil {
		t.Error("negative students should fail Check")
	}

	overnight := ok
	overnight.EndMin = 1441
	if err := overnight.Check(); err == nil {
		t.Error("end past midnight should fail Check")
	}
}
