package core

import (
	"fmt"
	"slices"
	"strings"
)

// TagPolicy decides whether tag lists are deduplicated before records are built.
type TagPolicy string

const (
	// TagPolicyKeep stores tags exactly as the source listed them.
	TagPolicyKeep TagPolicy = "keep"
	// TagPolicyUnique drops repeated tags, keeping first occurrence order.
	TagPolicyUnique TagPolicy = "unique"
)

// ParseTagPolicy parses a policy name. The empty string means TagPolicyKeep.
func ParseTagPolicy(s string) (TagPolicy, error) {
	switch TagPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TagPolicyKeep:
		return TagPolicyKeep, nil
	case TagPolicyUnique:
		return TagPolicyUnique, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTagPolicy, s)
}

// Apply returns a copy of row with the policy applied to its tag lists.
func (p TagPolicy) Apply(row NormalizedRow) NormalizedRow {
	if p != TagPolicyUnique {
		return row
	}
	row.TopTags = UniqueTags(row.TopTags)
	row.ReviewTags = UniqueTags(row.ReviewTags)
	return row
}

// BuildRecords assembles the professor record and, when the row carries
// review text, the review record.
//
// A row without a professor name returns a *MissingIdentityError. Any other
// missing field is already Unknown and never fails the build. Tags are stored
// as given; deduplication is the caller's decision (see TagPolicy).
func BuildRecords(row NormalizedRow) (*ProfessorRecord, *ReviewRecord, error) {
	if row.ProfessorName == "" {
		return nil, nil, &MissingIdentityError{Line: row.Line}
	}

	professor := &ProfessorRecord{
		Name:              row.ProfessorName,
		Department:        row.Department,
		School:            row.School,
		OverallQuality:    row.OverallQuality,
		NumberOfRatings:   row.NumberOfRatings,
		WouldTakeAgainPct: row.WouldTakeAgainPct,
		Difficulty:        row.Difficulty,
		TopTags:           cloneTags(row.TopTags),
		ReviewSnippets:    slices.Clone(row.ReviewSnippets),
	}

	if strings.TrimSpace(row.ReviewText) == "" {
		return professor, nil, nil
	}

	// Review-specific tags win; otherwise the review inherits the professor's.
	tags := row.ReviewTags
	if len(tags) == 0 {
		tags = row.TopTags
	}

	review := &ReviewRecord{
		ProfessorName:  row.ProfessorName,
		Subject:        row.Subject,
		Date:           row.Date,
		Quality:        row.Quality,
		Difficulty:     row.ReviewDifficulty,
		ForCredit:      row.ForCredit,
		Attendance:     row.Attendance,
		WouldTakeAgain: row.WouldTakeAgain,
		GradeReceived:  row.GradeReceived,
		TextbookUsed:   row.TextbookUsed,
		ReviewText:     row.ReviewText,
		Tags:           cloneTags(tags),
	}

	return professor, review, nil
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
