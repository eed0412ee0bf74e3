package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

// header is the column layout of the professor review dataset.
var header = []string{
	"professor_name", "school_name", "department_name", "local_name",
	"star_rating", "num_student", "take_again", "diff_index", "tag_professor",
	"student_star", "student_difficult", "post_date", "for_credits", "attence",
	"would_take_agains", "grades", "iscourseonline", "review_tags", "comments",
}

var (
	firstNames = []string{"Jane", "John", "Maria", "Wei", "Amara", "Luis", "Priya", "Tomasz", "Keiko", "Samuel"}
	lastNames  = []string{"Doe", "Smith", "Garcia", "Chen", "Okafor", "Moreno", "Patel", "Nowak", "Tanaka", "Reed"}
	schools    = []string{"State University", "Lakeside College", "Northern Institute of Technology", "Riverside University"}

	departments = map[string][]string{
		"Computer Science": {"CS101", "CS201", "CS350"},
		"Mathematics":      {"MATH110", "MATH221", "MATH340"},
		"History":          {"HIST100", "HIST215"},
		"Biology":          {"BIO101", "BIO230"},
		"Economics":        {"ECON101", "ECON305"},
	}

	tags = []string{
		"Tough Grader", "Caring", "Lots of homework", "Inspirational", "Clear grading criteria",
		"Get ready to read", "Accessible outside class", "Lecture heavy", "Amazing lectures", "Test heavy",
	}

	grades = []string{"A", "A-", "B+", "B", "C", "Not sure yet", ""}

	comments = []string{
		"Lectures were clear and the exams matched the material.",
		"Very caring, always willing to explain things again in office hours.",
		"Homework every week but it really helps for the final.",
		"Tough grader. Read the rubric carefully before you submit anything.",
		"Brought real examples into every class, made the subject come alive.",
		"The textbook is essential, most quiz questions come straight from it.",
		"Attendance is not mandatory but you will miss a lot if you skip.",
		"Group projects were disorganized and feedback came back late.",
		"Best professor in the department, would take any class they teach.",
		"Fair tests, clear expectations, and quick replies to email.",
		"",
	}
)

type seeder struct {
	rng        *rand.Rand
	professors int
	reviews    int
}

func (s *seeder) pick(values []string) string {
	return values[s.rng.IntN(len(values))]
}

func (s *seeder) rating(low, high float64) string {
	v := low + s.rng.Float64()*(high-low)
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func (s *seeder) pickTags(n int) string {
	picked := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(tags))[:n] {
		picked = append(picked, tags[i])
	}
	return strings.Join(picked, ",")
}

// generate writes the header and professors*reviews rows. Each professor's
// columns repeat on every one of its review rows.
func (s *seeder) generate(w io.Writer) (int, error) {
	out := csv.NewWriter(w)
	if err := out.Write(header); err != nil {
		return 0, err
	}

	names := slices.Sorted(maps.Keys(departments))

	rows := 0
	for p := 0; p < s.professors; p++ {
		name := fmt.Sprintf("%s %s", firstNames[p%len(firstNames)], lastNames[(p/len(firstNames))%len(lastNames)])
		if p >= len(firstNames)*len(lastNames) {
			name = fmt.Sprintf("%s %d", name, p/(len(firstNames)*len(lastNames)))
		}
		department := s.pick(names)
		school := s.pick(schools)
		quality := s.rating(1, 5)
		count := strconv.Itoa(s.reviews + s.rng.IntN(50))
		takeAgain := strconv.Itoa(s.rng.IntN(101)) + "%"
		difficulty := s.rating(1, 5)
		topTags := s.pickTags(3)

		for r := 0; r < s.reviews; r++ {
			record := []string{
				name, school, department, s.pick(departments[department]),
				quality, count, takeAgain, difficulty, topTags,
				strconv.Itoa(1 + s.rng.IntN(5)),
				strconv.Itoa(1 + s.rng.IntN(5)),
				fmt.Sprintf("%02d/%02d/%d", 1+s.rng.IntN(12), 1+s.rng.IntN(28), 2015+s.rng.IntN(10)),
				s.pick([]string{"Yes", "No", ""}),
				s.pick([]string{"Mandatory", "Not Mandatory", ""}),
				s.pick([]string{"Yes", "No", ""}),
				s.pick(grades),
				s.pick([]string{"Yes", "No", ""}),
				s.pickTags(s.rng.IntN(3)),
				s.pick(comments),
			}
			if err := out.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
	}

	out.Flush()
	return rows, out.Error()
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seeder",
		Usage: "Generate a synthetic professor review CSV",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "professors",
				Aliases: []string{"p"},
				Usage:   "Number of professors",
				Value:   25,
			},
			&cli.IntFlag{
				Name:    "reviews",
				Aliases: []string{"r"},
				Usage:   "Review rows per professor",
				Value:   4,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed",
				Value: 1,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (stdout if empty)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Int("professors") < 0 || c.Int("reviews") < 1 {
				return fmt.Errorf("professors must be >= 0 and reviews >= 1")
			}
			seed := c.Uint64("seed")
			s := &seeder{
				rng:        rand.New(rand.NewPCG(seed, seed)),
				professors: c.Int("professors"),
				reviews:    c.Int("reviews"),
			}

			w := c.App.Writer
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			rows, err := s.generate(w)
			if err != nil {
				return err
			}
			slog.Info("dataset generated", "professors", s.professors, "rows", rows)
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
