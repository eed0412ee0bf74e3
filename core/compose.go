package core

import (
	"fmt"
	"strings"
)

// ComposeMode selects how professor summaries are written.
type ComposeMode string

const (
	// ComposeBasic writes only the department/school sentence.
	ComposeBasic ComposeMode = "basic"
	// ComposeDetailed appends ratings, tags and any review snippets.
	ComposeDetailed ComposeMode = "detailed"
)

// ParseComposeMode parses a mode name. The empty string means ComposeBasic.
func ParseComposeMode(s string) (ComposeMode, error) {
	switch ComposeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ComposeBasic:
		return ComposeBasic, nil
	case ComposeDetailed:
		return ComposeDetailed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidComposeMode, s)
}

// Composer derives the text that gets embedded for each unit. Build one per
// ingestion run; vectors written with different modes are not comparable.
type Composer struct {
	mode ComposeMode
}

// NewComposer creates a composer for mode.
func NewComposer(mode ComposeMode) (*Composer, error) {
	if mode != ComposeBasic && mode != ComposeDetailed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidComposeMode, mode)
	}
	return &Composer{mode: mode}, nil
}

// Mode returns the composition mode.
func (c *Composer) Mode() ComposeMode {
	return c.mode
}

// ComposeProfessor returns the summary sentence for a professor.
func (c *Composer) ComposeProfessor(p *ProfessorRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s teaches in the %s department at %s.", p.Name, p.Department, p.School)
	if c.mode != ComposeDetailed {
		return b.String()
	}

	fmt.Fprintf(&b, " Overall quality: %s, Number of ratings: %s, Would take again percentage: %s%%, Level of difficulty: %s.",
		p.OverallQuality, p.NumberOfRatings, p.WouldTakeAgainPct, p.Difficulty)
	fmt.Fprintf(&b, " Top tags: %s.", strings.Join(p.TopTags, ", "))
	if len(p.ReviewSnippets) > 0 {
		fmt.Fprintf(&b, " Reviews: %s", strings.Join(p.ReviewSnippets, " | "))
	}
	return b.String()
}

// ComposeReview returns the review text verbatim.
func (c *Composer) ComposeReview(r *ReviewRecord) string {
	return r.ReviewText
}
