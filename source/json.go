package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/profindex/core"
)

// JSON reads a pre-scraped document of the form {"professors": [...]} or a
// bare array of professors. Each professor yields one row per review object;
// reviews given as plain strings stay on the professor as review snippets.
// Line is the 1-based position of the professor in the document.
type JSON struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewJSONFile returns a JSON source reading path on every range.
func NewJSONFile(path string) *JSON {
	return &JSON{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewJSONReader returns a JSON source over r, readable once.
func NewJSONReader(name string, r io.Reader) *JSON {
	return &JSON{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (j *JSON) Name() string {
	return j.name
}

func (j *JSON) Rows(ctx context.Context) iter.Seq2[core.RawRow, error] {
	return func(yield func(core.RawRow, error) bool) {
		rc, err := j.open()
		if err != nil {
			yield(core.RawRow{}, fmt.Errorf("open %s: %w", j.name, err))
			return
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			yield(core.RawRow{}, fmt.Errorf("read %s: %w", j.name, err))
			return
		}
		professors, err := decodeProfessors(data)
		if err != nil {
			yield(core.RawRow{}, fmt.Errorf("%s: %w", j.name, err))
			return
		}

		for i, p := range professors {
			if err := ctx.Err(); err != nil {
				yield(core.RawRow{}, err)
				return
			}
			for _, row := range p.rows(i + 1) {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

func decodeProfessors(data []byte) ([]jsonProfessor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []jsonProfessor
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		return list, nil
	}
	var doc struct {
		Professors []jsonProfessor `json:"professors"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return doc.Professors, nil
}

type jsonProfessor struct {
	Name           flexString   `json:"name"`
	ProfessorName  flexString   `json:"professor_name"`
	Department     flexString   `json:"department"`
	School         flexString   `json:"school"`
	OverallQuality flexString   `json:"overall_quality"`
	Ratings        flexString   `json:"number_of_ratings"`
	WouldTakeAgain flexString   `json:"would_take_again_percentage"`
	Difficulty     flexString   `json:"level_of_difficulty"`
	TopTags        flexTags     `json:"top_tags"`
	Reviews        []jsonReview `json:"reviews"`
}

// jsonReview is either a bare string or an object.
type jsonReview struct {
	Text   string
	Object *jsonReviewObject
}

type jsonReviewObject struct {
	Subject        flexString `json:"subject"`
	Date           flexString `json:"date"`
	Quality        flexString `json:"quality"`
	Difficulty     flexString `json:"difficulty"`
	ForCredit      flexString `json:"for_credit"`
	Attendance     flexString `json:"attendance"`
	WouldTakeAgain flexString `json:"would_take_again"`
	GradeReceived  flexString `json:"grade_received"`
	TextbookUsed   flexString `json:"textbook_used"`
	Review         flexString `json:"review"`
	Comments       flexString `json:"comments"`
	Tags           flexTags   `json:"tags"`
}

func (r *jsonReview) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		r.Object = &jsonReviewObject{}
		return json.Unmarshal(trimmed, r.Object)
	}
	var s flexString
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	r.Text = string(s)
	return nil
}

func (p jsonProfessor) rows(line int) []core.RawRow {
	base := core.RawRow{
		Line:            line,
		ProfessorName:   string(p.Name),
		Department:      string(p.Department),
		School:          string(p.School),
		OverallQuality:  string(p.OverallQuality),
		NumberOfRatings: string(p.Ratings),
		WouldTakeAgain:  string(p.WouldTakeAgain),
		Difficulty:      string(p.Difficulty),
		TopTags:         string(p.TopTags),
	}
	if base.ProfessorName == "" {
		base.ProfessorName = string(p.ProfessorName)
	}

	var objects []*jsonReviewObject
	for _, r := range p.Reviews {
		if r.Object != nil {
			objects = append(objects, r.Object)
			continue
		}
		if strings.TrimSpace(r.Text) != "" {
			base.ReviewSnippets = append(base.ReviewSnippets, r.Text)
		}
	}
	if len(objects) == 0 {
		return []core.RawRow{base}
	}

	rows := make([]core.RawRow, 0, len(objects))
	for _, o := range objects {
		row := base
		row.Subject = string(o.Subject)
		row.Date = string(o.Date)
		row.Quality = string(o.Quality)
		row.ReviewDifficulty = string(o.Difficulty)
		row.ForCredit = string(o.ForCredit)
		row.Attendance = string(o.Attendance)
		row.ReviewWouldTakeAgain = string(o.WouldTakeAgain)
		row.GradeReceived = string(o.GradeReceived)
		row.TextbookUsed = string(o.TextbookUsed)
		row.Comments = string(o.Review)
		if row.Comments == "" {
			row.Comments = string(o.Comments)
		}
		row.ReviewTags = string(o.Tags)
		rows = append(rows, row)
	}
	return rows
}

// flexString accepts strings, numbers, booleans and null and keeps the raw
// text for the field normalizer.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = ""
	case string:
		*s = flexString(v)
	case json.Number:
		*s = flexString(v.String())
	case bool:
		*s = flexString(strconv.FormatBool(v))
	default:
		return fmt.Errorf("%w: expected scalar, got %s", ErrMalformedDocument, bytes.TrimSpace(data))
	}
	return nil
}

// flexTags accepts a list of strings or a comma separated string and stores
// the comma separated form.
type flexTags string

func (t *flexTags) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []flexString
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		parts := make([]string, len(list))
		for i, v := range list {
			parts[i] = string(v)
		}
		*t = flexTags(strings.Join(parts, ","))
		return nil
	}
	var s flexString
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*t = flexTags(s)
	return nil
}
