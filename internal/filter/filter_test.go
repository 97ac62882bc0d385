package filter

import (
	"testing"
	"time"

	"joty/internal/domain"
)

var testMetaPatterns = []string{
	`joty.*voting`,
	`joty.*nom`,
	`personal joty`,
}

func newHeuristic(t *testing.T) *Heuristic {
	t.Helper()
	h, err := New(testMetaPatterns, 20)
	if err != nil {
		t.Fatalf("new heuristic: %v", err)
	}
	return h
}

func TestActual_PlainNomination(t *testing.T) {
	h := newHeuristic(t)
	for _, text := range []string{"JOTY", "joty", "JOTY will", "  JOTY  "} {
		if !h.Actual(text) {
			t.Errorf("%q should be a nomination", text)
		}
	}
}

func TestActual_RejectsMetaCommentary(t *testing.T) {
	h := newHeuristic(t)
	for _, text := range []string{
		"JOTY voting",
		"that's a JOTY nom",
		"Personal JOTY",
	} {
		if h.Actual(text) {
			t.Errorf("%q is meta-commentary, should be rejected", text)
		}
	}
}

func TestActual_RejectsLongMessages(t *testing.T) {
	h := newHeuristic(t)
	if h.Actual("joty for that whole exchange we just had") {
		t.Fatal("messages over the length cap should be rejected")
	}
	// Exactly at the cap passes.
	if !h.Actual("joty abcdefghijklmn") {
		t.Fatal("message at the cap should pass")
	}
}

func TestActual_TrimsBeforeMeasuring(t *testing.T) {
	h := newHeuristic(t)
	padded := "   joty   \n"
	if !h.Actual(padded) {
		t.Fatal("surrounding whitespace must not count toward the cap")
	}
}

func TestKeep_PreservesOrderAndIsIdempotent(t *testing.T) {
	h := newHeuristic(t)
	now := time.Now()
	msgs := []domain.Message{
		{ID: 1, Time: now, Text: "JOTY"},
		{ID: 2, Time: now, Text: "joty voting opens tomorrow for everyone"},
		{ID: 3, Time: now, Text: "joty steve"},
	}

	kept := h.Keep(msgs)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].ID != 1 || kept[1].ID != 3 {
		t.Fatalf("order not preserved: %+v", kept)
	}

	again := h.Keep(kept)
	if len(again) != len(kept) {
		t.Fatalf("filter must be idempotent: %d != %d", len(again), len(kept))
	}
	for i := range again {
		if again[i].ID != kept[i].ID {
			t.Fatalf("idempotency violated at %d", i)
		}
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New([]string{"joty.*voting", "("}, 20); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestNew_DefaultLength(t *testing.T) {
	h, err := New(nil, 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !h.Actual("12345678901234567890") {
		t.Fatal("20 runes should pass with the default cap")
	}
	if h.Actual("123456789012345678901") {
		t.Fatal("21 runes should fail with the default cap")
	}
}
