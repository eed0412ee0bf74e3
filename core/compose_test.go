package core

import (
	"errors"
	"testing"
)

func newJaneDoe() *ProfessorRecord {
	return &ProfessorRecord{
		Name:              "Jane Doe",
		Department:        "CS",
		School:            "State U",
		OverallQuality:    Known(4.5),
		NumberOfRatings:   Known[int64](30),
		WouldTakeAgainPct: Known(80.0),
		Difficulty:        Known(3.0),
		TopTags:           []string{"Tough", "Clear"},
	}
}

func TestComposeProfessor_Basic(t *testing.T) {
	c, err := NewComposer(ComposeBasic)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}

	got := c.ComposeProfessor(newJaneDoe())
	want := "Jane Doe teaches in the CS department at State U."
	if got != want {
		t.Errorf("ComposeProfessor() = %q, want %q", got, want)
	}
}

func TestComposeProfessor_Detailed(t *testing.T) {
	c, err := NewComposer(ComposeDetailed)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}

	p := newJaneDoe()
	got := c.ComposeProfessor(p)
	want := "Jane Doe teaches in the CS department at State U." +
		" Overall quality: 4.5, Number of ratings: 30, Would take again percentage: 80.0%, Level of difficulty: 3.0." +
		" Top tags: Tough, Clear."
	if got != want {
		t.Errorf("ComposeProfessor() =\n%q\nwant\n%q", got, want)
	}

	p.NumberOfRatings = Unknown[int64]()
	p.ReviewSnippets = []string{"Loved it", "Hard exams"}
	got = c.ComposeProfessor(p)
	want = "Jane Doe teaches in the CS department at State U." +
		" Overall quality: 4.5, Number of ratings: N/A, Would take again percentage: 80.0%, Level of difficulty: 3.0." +
		" Top tags: Tough, Clear. Reviews: Loved it | Hard exams"
	if got != want {
		t.Errorf("ComposeProfessor() =\n%q\nwant\n%q", got, want)
	}
}

func TestComposeProfessor_Deterministic(t *testing.T) {
	c, _ := NewComposer(ComposeDetailed)
	p := newJaneDoe()
	if c.ComposeProfessor(p) != c.ComposeProfessor(p) {
		t.Error("composition must be deterministic")
	}
}

func TestComposeReview_Verbatim(t *testing.T) {
	c, _ := NewComposer(ComposeBasic)
	r := &ReviewRecord{ReviewText: "  Great class!\nWould take again.  "}
	if got := c.ComposeReview(r); got != r.ReviewText {
		t.Errorf("ComposeReview() = %q, want verbatim %q", got, r.ReviewText)
	}
}

func TestParseComposeMode(t *testing.T) {
	if m, err := ParseComposeMode(""); err != nil || m != ComposeBasic {
		t.Errorf("ParseComposeMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseComposeMode("Detailed"); err != nil || m != ComposeDetailed {
		t.Errorf("ParseComposeMode(Detailed) = %q, %v", m, err)
	}
	if _, err := ParseComposeMode("verbose"); !errors.Is(err, ErrInvalidComposeMode) {
		t.Errorf("expected ErrInvalidComposeMode, got %v", err)
	}
	if _, err := NewComposer("verbose"); !errors.Is(err, ErrInvalidComposeMode) {
		t.Errorf("NewComposer: expected ErrInvalidComposeMode, got %v", err)
	}
}
