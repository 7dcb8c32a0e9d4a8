package participation

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}

	for _, s := range []Status{"", "done", "not started", "COMPLETED"} {
		if s.Valid() {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}
