package core

import "slices"

// Metadata returns the flat vector-store metadata for a professor unit.
func (p *ProfessorRecord) Metadata() map[string]any {
	md := map[string]any{
		"type":                        string(UnitKindProfessor),
		"professor_name":              p.Name,
		"department":                  p.Department,
		"school":                      p.School,
		"overall_quality":             p.OverallQuality.Metadata(),
		"number_of_ratings":           p.NumberOfRatings.Metadata(),
		"would_take_again_percentage": p.WouldTakeAgainPct.Metadata(),
		"level_of_difficulty":         p.Difficulty.Metadata(),
		"top_tags":                    cloneTags(p.TopTags),
	}
	if len(p.ReviewSnippets) > 0 {
		md["reviews"] = slices.Clone(p.ReviewSnippets)
	}
	return md
}

// Metadata returns the flat vector-store metadata for a review unit.
func (r *ReviewRecord) Metadata() map[string]any {
	return map[string]any{
		"type":             string(UnitKindReview),
		"professor_name":   r.ProfessorName,
		"subject":          r.Subject,
		"date":             r.Date,
		"quality":          r.Quality.Metadata(),
		"difficulty":       r.Difficulty.Metadata(),
		"for_credit":       r.ForCredit.Metadata(),
		"attendance":       r.Attendance.Metadata(),
		"would_take_again": r.WouldTakeAgain.Metadata(),
		"grade_received":   r.GradeReceived.Metadata(),
		"textbook_used":    r.TextbookUsed.Metadata(),
		"review":           r.ReviewText,
		"tags":             cloneTags(r.Tags),
	}
}

// NewProfessorUnit builds the professor-info unit.
func NewProfessorUnit(p *ProfessorRecord, c *Composer) EmbeddableUnit {
	return EmbeddableUnit{
		ID:       UnitID(UnitKindProfessor, p.Name),
		Kind:     UnitKindProfessor,
		Text:     c.ComposeProfessor(p),
		Metadata: p.Metadata(),
	}
}

// NewReviewUnit builds the unit for one review.
func NewReviewUnit(r *ReviewRecord, c *Composer) EmbeddableUnit {
	return EmbeddableUnit{
		ID:       UnitID(UnitKindReview, r.ProfessorName, r.Subject, r.Date),
		Kind:     UnitKindReview,
		Text:     c.ComposeReview(r),
		Metadata: r.Metadata(),
	}
}
