package quiz_test

import (
	"testing"

	"github.com/Seednode/yokaiquiz/quiz"
)

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := quiz.NewTracker()

	tr.Add(21)
	tr.Add(18)
	tr.Add(21)

	if tr.Count() != 2 {
		t.Fatalf("expected 2 found, got %d", tr.Count())
	}
	if !tr.Has(18) || tr.Has(1) {
		t.Fatalf("unexpected membership")
	}
	if got := tr.IDs(); got[0] != 21 || got[1] != 18 {
		t.Fatalf("expected discovery order [21 18], got %v", got)
	}

	if tr.IsComplete(3) {
		t.Fatalf("expected 2 of 3 to be incomplete")
	}
	if !tr.IsComplete(2) {
		t.Fatalf("expected 2 of 2 to be complete")
	}

	tr.Reset()
	if tr.Count() != 0 || tr.Has(21) || len(tr.IDs()) != 0 {
		t.Fatalf("expected Reset to empty the tracker")
	}
}
