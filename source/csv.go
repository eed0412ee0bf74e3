package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/poiesic/profindex/core"
)

type fieldSetter func(row *core.RawRow, value string)

// columns maps accepted header names to RawRow fields. The first name of each
// group is the column used by the scraped rating dataset.
var columns = map[string]fieldSetter{}

func init() {
	register := func(set fieldSetter, names ...string) {
		for _, n := range names {
			columns[n] = set
		}
	}
	register(func(r *core.RawRow, v string) { r.ProfessorName = v }, "professor_name", "name")
	register(func(r *core.RawRow, v string) { r.Department = v }, "department_name", "department")
	register(func(r *core.RawRow, v string) { r.School = v }, "school_name", "school")
	register(func(r *core.RawRow, v string) { r.OverallQuality = v }, "star_rating", "overall_quality")
	register(func(r *core.RawRow, v string) { r.NumberOfRatings = v }, "num_student", "number_of_ratings")
	register(func(r *core.RawRow, v string) { r.WouldTakeAgain = v }, "take_again", "would_take_again_percentage")
	register(func(r *core.RawRow, v string) { r.Difficulty = v }, "diff_index", "level_of_difficulty")
	register(func(r *core.RawRow, v string) { r.TopTags = v }, "tag_professor", "top_tags")
	register(func(r *core.RawRow, v string) { r.Comments = v }, "comments", "review")
	register(func(r *core.RawRow, v string) { r.Quality = v }, "student_star", "quality")
	register(func(r *core.RawRow, v string) { r.ReviewDifficulty = v }, "student_difficult", "difficulty")
	register(func(r *core.RawRow, v string) { r.Subject = v }, "local_name", "subject")
	register(func(r *core.RawRow, v string) { r.Date = v }, "post_date", "date")
	register(func(r *core.RawRow, v string) { r.ForCredit = v }, "for_credits", "for_credit")
	register(func(r *core.RawRow, v string) { r.Attendance = v }, "attence", "attendance")
	register(func(r *core.RawRow, v string) { r.ReviewWouldTakeAgain = v }, "would_take_agains", "would_take_again")
	register(func(r *core.RawRow, v string) { r.GradeReceived = v }, "grades", "grade_received")
	register(func(r *core.RawRow, v string) { r.TextbookUsed = v }, "iscourseonline", "textbook_used")
	register(func(r *core.RawRow, v string) { r.ReviewTags = v }, "review_tags", "tags")
}

// CSV reads one row per line from a CSV file with a header. Header names are
// matched case-insensitively; unknown columns are ignored. Line is the
// physical line number of the record in the file.
type CSV struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewCSVFile returns a CSV source reading path on every range.
func NewCSVFile(path string) *CSV {
	return &CSV{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewCSVReader returns a CSV source over r. The reader is consumed by the
// first range, so the source can only be read once.
func NewCSVReader(name string, r io.Reader) *CSV {
	return &CSV{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (c *CSV) Name() string {
	return c.name
}

func (c *CSV) Rows(ctx context.Context) iter.Seq2[core.RawRow, error] {
	return func(yield func(core.RawRow, error) bool) {
		rc, err := c.open()
		if err != nil {
			yield(core.RawRow{}, fmt.Errorf("open %s: %w", c.name, err))
			return
		}
		defer rc.Close()

		reader := csv.NewReader(rc)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		header, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			yield(core.RawRow{}, fmt.Errorf("read header of %s: %w", c.name, err))
			return
		}
		setters, err := mapHeader(header)
		if err != nil {
			yield(core.RawRow{}, fmt.Errorf("%s: %w", c.name, err))
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(core.RawRow{}, err)
				return
			}
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					if !yield(core.RawRow{}, &RowError{Source: c.name, Line: perr.StartLine, Err: err}) {
						return
					}
					continue
				}
				yield(core.RawRow{}, fmt.Errorf("read %s: %w", c.name, err))
				return
			}

			line, _ := reader.FieldPos(0)
			row := core.RawRow{Line: line}
			for i, value := range record {
				if i < len(setters) && setters[i] != nil {
					setters[i](&row, value)
				}
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func mapHeader(header []string) ([]fieldSetter, error) {
	setters := make([]fieldSetter, len(header))
	hasName := false
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		set, ok := columns[key]
		if !ok {
			continue
		}
		setters[i] = set
		if key == "professor_name" || key == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("%w: professor_name", ErrMissingColumn)
	}
	return setters, nil
}
