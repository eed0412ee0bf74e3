package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseInt converts a raw integer field. Surrounding whitespace is ignored;
// anything else that is not a base-10 integer yields Unknown.
func ParseInt(raw string) Value[int64] {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Unknown[int64]()
	}
	return Known(n)
}

// ParseFloat converts a raw decimal field. NaN and infinities are treated as
// unparsable because they cannot be stored as metadata.
func ParseFloat(raw string) Value[float64] {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown[float64]()
	}
	return Known(f)
}

// ParsePercent converts a percentage such as "87%" or "87" to 87.0.
// One trailing percent sign is stripped before parsing.
func ParsePercent(raw string) Value[float64] {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	return ParseFloat(s)
}

// ParseText converts a free-text field. Blank input and the literal
// UnknownMarker are Unknown, which keeps the marker unambiguous in metadata.
func ParseText(raw string) Value[string] {
	s := strings.TrimSpace(raw)
	if s == "" || s == UnknownMarker {
		return Unknown[string]()
	}
	return Known(s)
}

// ParseTags splits a comma separated tag list and trims each element.
// Empty input yields an empty, non-nil slice. Case and duplicates are kept.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// UniqueTags returns tags with later duplicates removed, keeping first
// occurrence order. Callers that need unique tags apply it before building.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Normalize runs the field normalizer over every field of a raw row.
func Normalize(row RawRow) NormalizedRow {
	snippets := make([]string, 0, len(row.ReviewSnippets))
	for _, s := range row.ReviewSnippets {
		if s = strings.TrimSpace(s); s != "" {
			snippets = append(snippets, s)
		}
	}

	return NormalizedRow{
		Line:              row.Line,
		ProfessorName:     strings.TrimSpace(row.ProfessorName),
		Department:        strings.TrimSpace(row.Department),
		School:            strings.TrimSpace(row.School),
		OverallQuality:    ParseFloat(row.OverallQuality),
		NumberOfRatings:   ParseInt(row.NumberOfRatings),
		WouldTakeAgainPct: ParsePercent(row.WouldTakeAgain),
		Difficulty:        ParseFloat(row.Difficulty),
		TopTags:           ParseTags(row.TopTags),
		ReviewSnippets:    snippets,

		Subject:          strings.TrimSpace(row.Subject),
		Date:             strings.TrimSpace(row.Date),
		Quality:          ParseFloat(row.Quality),
		ReviewDifficulty: ParseFloat(row.ReviewDifficulty),
		ForCredit:        ParseText(row.ForCredit),
		Attendance:       ParseText(row.Attendance),
		WouldTakeAgain:   ParseText(row.ReviewWouldTakeAgain),
		GradeReceived:    ParseText(row.GradeReceived),
		TextbookUsed:     ParseText(row.TextbookUsed),
		ReviewText:       row.Comments,
		ReviewTags:       ParseTags(row.ReviewTags),
	}
}
