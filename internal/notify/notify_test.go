package notify

import "testing"

func TestNewAssignsDistinctIDs(t *testing.T) {
	a := New(Success, "one")
	b := New(Success, "one")
	if a.ID == b.ID {
		t.Fatalf("notices share ID %q", a.ID)
	}
	if a.DurationMs != 5000 {
		t.Errorf("DurationMs = %d, want 5000", a.DurationMs)
	}
}

func TestUnknownSeverityFallsBackToInfo(t *testing.T) {
	n := New(Severity("purple"), "x")
	if n.Severity != Info {
		t.Errorf("Severity = %q, want info", n.Severity)
	}
	if got := Severity("purple").Class(); got != Info.Class() {
		t.Errorf("Class() = %q, want %q", got, Info.Class())
	}
}

func TestClass(t *testing.T) {
	tests := map[Severity]string{
		Success: "alert alert-success alert-dismissible fade show",
		Danger:  "alert alert-danger alert-dismissible fade show",
		Warning: "alert alert-warning alert-dismissible fade show",
	}
	for sev, want := range tests {
		if got := sev.Class(); got != want {
			t.Errorf("%s.Class() = %q, want %q", sev, got, want)
		}
	}
}
