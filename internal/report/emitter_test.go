package report

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"joty/internal/domain"
)

func sampleEntry() domain.ReviewEntry {
	return domain.ReviewEntry{
		ID:       1,
		Time:     "2025-03-01 10:02",
		Text:     "JOTY",
		Sender:   "Will",
		ChatName: "Gnar",
		Context: []domain.ContextEntry{
			{Time: "10:00", Sender: "Will", Text: "lol"},
			{Time: "10:01", Sender: "Connor", Text: "that's so bad"},
			{Time: "10:02", Sender: "Will", Text: "JOTY", IsJoty: true},
		},
	}
}

func TestLikelyJoke_PicksLastQualifyingLine(t *testing.T) {
	joke := LikelyJoke(sampleEntry())
	if joke == nil {
		t.Fatal("expected a likely joke")
	}
	if joke.Text != "that's so bad" || joke.Time != "10:01" {
		t.Fatalf("expected the 10:01 line, got %+v", joke)
	}
}

func TestLikelyJoke_SkipsNominationAndShortLines(t *testing.T) {
	entry := domain.ReviewEntry{
		Context: []domain.ContextEntry{
			{Time: "10:00", Sender: "Will", Text: "hi"},
			{Time: "10:01", Sender: "Will", Text: "JOTY for sure", IsJoty: true},
		},
	}
	if joke := LikelyJoke(entry); joke != nil {
		t.Fatalf("expected no joke, got %+v", joke)
	}
}

func TestLikelyJoke_EmptyContext(t *testing.T) {
	if joke := LikelyJoke(domain.ReviewEntry{}); joke != nil {
		t.Fatalf("expected nil for empty context, got %+v", joke)
	}
}

func TestWriteReadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	entries := []domain.ReviewEntry{sampleEntry(), {ID: 2, Time: "2025-03-02 09:00", Text: "joty", Sender: "Connor", ChatName: "Gnar", IsThread: true}}

	e := Emitter{Label: "JOTY"}
	if err := e.WriteJSON(path, entries); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(loaded, entries) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, entries)
	}
}

func TestReadJSON_MissingFile(t *testing.T) {
	if _, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenderMarkdown_Transcript(t *testing.T) {
	e := Emitter{Label: "JOTY"}
	md := e.RenderMarkdown([]domain.ReviewEntry{sampleEntry()})

	for _, want := range []string{
		"# JOTY Candidates",
		"## JOTY #1 — 2025-03-01 10:02",
		"**Chat:** Gnar",
		"**Nominated by:** Will",
		"10:01 Connor: that's so bad",
		"⭐ JOTY ⭐",
		"**Likely joke:** \"that's so bad\" — Connor",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "🧵") {
		t.Error("flat entry must not carry a thread marker")
	}
}

func TestRenderMarkdown_ThreadMarkers(t *testing.T) {
	entry := domain.ReviewEntry{
		ID: 1, Time: "2025-03-01 09:10", Text: "JOTY", Sender: "Will",
		ChatName: "Gnar", IsThread: true,
		Context: []domain.ContextEntry{
			{Time: "08:58", Sender: "Connor", Text: "before the thread"},
			{Time: "09:00", Sender: "Will", Text: "anchor joke here", InThread: true},
			{Time: "09:10", Sender: "Will", Text: "JOTY", InThread: true, IsJoty: true},
		},
	}
	md := Emitter{Label: "JOTY"}.RenderMarkdown([]domain.ReviewEntry{entry})

	if !strings.Contains(md, "## JOTY #1 — 2025-03-01 09:10 🧵") {
		t.Error("thread entry heading should carry the thread marker")
	}
	if !strings.Contains(md, "    ↳ 09:00 Will: anchor joke here") {
		t.Error("in-thread lines should be indented")
	}
	if strings.Contains(md, "    ↳ 08:58") {
		t.Error("pre-thread lines must not be indented")
	}
}

func TestRenderMarkdown_SearchSnippetForImageJoke(t *testing.T) {
	long := strings.Repeat("ha", 30) // 60 runes
	entry := domain.ReviewEntry{
		ID: 1, Time: "2025-03-01 10:02", Text: "JOTY", Sender: "Will", ChatName: "Gnar",
		Context: []domain.ContextEntry{
			{Time: "10:00", Sender: "Connor", Text: long, HasImage: true},
			{Time: "10:02", Sender: "Will", Text: "JOTY", IsJoty: true},
		},
	}
	md := Emitter{Label: "JOTY"}.RenderMarkdown([]domain.ReviewEntry{entry})

	if !strings.Contains(md, "📷") {
		t.Error("image joke should carry the camera marker")
	}
	wantSnippet := "*Search on phone:* `" + long[:40] + "`"
	if !strings.Contains(md, wantSnippet) {
		t.Errorf("markdown missing truncated search snippet %q", wantSnippet)
	}
}

func TestRenderMarkdown_DefaultLabel(t *testing.T) {
	md := Emitter{}.RenderMarkdown(nil)
	if !strings.Contains(md, "# JOTY Candidates") {
		t.Fatalf("expected default label, got:\n%s", md)
	}
}
