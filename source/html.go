// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/profindex/core"
)

const (
	// DefaultConcurrency is the number of pages fetched at once.
	DefaultConcurrency = 4

	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "profindex/1.0"
)

// Selectors locate professor fields on a rating page. Label fields are
// matched against the exact text of a div; the value is read from the div
// right before it.
type Selectors struct {
	Name           string `toml:"name" yaml:"name"`
	Title          string `toml:"title" yaml:"title"` // links: department, then school
	OverallQuality string `toml:"overall_quality" yaml:"overall_quality"`
	NumRatings     string `toml:"num_ratings" yaml:"num_ratings"`
	WouldTakeAgain string `toml:"would_take_again_label" yaml:"would_take_again_label"`
	Difficulty     string `toml:"difficulty_label" yaml:"difficulty_label"`
	Tags           string `toml:"tags" yaml:"tags"`
	Review         string `toml:"review" yaml:"review"`
	Comment        string `toml:"comment" yaml:"comment"`

	// When both are set, each review card becomes its own review row keyed by
	// subject and date. Otherwise review texts stay on the professor.
	ReviewSubject string `toml:"review_subject" yaml:"review_subject"`
	ReviewDate    string `toml:"review_date" yaml:"review_date"`
}

// DefaultSelectors returns the selectors of the public rating site layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Name:           "div.NameTitle__Name-dowf0z-0",
		Title:          "div.NameTitle__Title-dowf0z-1 a",
		OverallQuality: "div.RatingValue__Numerator-qw8sqy-2",
		NumRatings:     "div.RatingValue__NumRatings-qw8sqy-0 a",
		WouldTakeAgain: "Would take again",
		Difficulty:     "Level of Difficulty",
		Tags:           "div.TeacherTags__TagsContainer-sc-16vmh1y-0 span.Tag-bs9vf4-0",
		Review:         "div.Rating__StyledRating-sc-1rhvpxz-1",
		Comment:        "div.Comments__StyledComments-dzzyvm-0",
	}
}

// merge fills empty selectors from defaults.
func (s Selectors) merge(defaults Selectors) Selectors {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&s.Name, defaults.Name)
	fill(&s.Title, defaults.Title)
	fill(&s.OverallQuality, defaults.OverallQuality)
	fill(&s.NumRatings, defaults.NumRatings)
	fill(&s.WouldTakeAgain, defaults.WouldTakeAgain)
	fill(&s.Difficulty, defaults.Difficulty)
	fill(&s.Tags, defaults.Tags)
	fill(&s.Review, defaults.Review)
	fill(&s.Comment, defaults.Comment)
	return s
}

// HTML extracts rows from professor rating pages. Locations are http(s)
// URLs or local files. Pages are fetched concurrently but rows are yielded in
// location order. Line is the 1-based position of the page.
type HTML struct {
	locations []string
	client    *http.Client
	selectors Selectors
	poolSize  int
	userAgent string
	logger    *slog.Logger
}

// HTMLOption configures an HTML source.
type HTMLOption func(*HTML)

// WithPageClient sets the HTTP client used for URL locations.
func WithPageClient(client *http.Client) HTMLOption {
	return func(h *HTML) {
		if client != nil {
			h.client = client
		}
	}
}

// WithPageSelectors overrides the extraction selectors. Empty fields keep
// their default.
func WithPageSelectors(s Selectors) HTMLOption {
	return func(h *HTML) {
		h.selectors = s.merge(DefaultSelectors())
	}
}

// WithPoolSize sets how many pages are fetched at once.
func WithPoolSize(n int) HTMLOption {
	return func(h *HTML) {
		if n < 1 {
			n = 1
		}
		h.poolSize = n
	}
}

// WithPageUserAgent sets the User-Agent header.
func WithPageUserAgent(ua string) HTMLOption {
	return func(h *HTML) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithPageLogger sets a custom logger.
func WithPageLogger(logger *slog.Logger) HTMLOption {
	return func(h *HTML) {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger.With("component", "html-source")
	}
}

// NewHTML creates an HTML source over the given locations.
func NewHTML(locations []string, opts ...HTMLOption) *HTML {
	h := &HTML{
		locations: locations,
		client:    http.DefaultClient,
		selectors: DefaultSelectors(),
		poolSize:  DefaultConcurrency,
		userAgent: DefaultUserAgent,
		logger:    slog.Default().With("component", "html-source"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTML) Name() string {
	if len(h.locations) == 1 {
		return h.locations[0]
	}
	return fmt.Sprintf("html(%d pages)", len(h.locations))
}

type pageResult struct {
	rows []core.RawRow
	err  error
}

func (h *HTML) Rows(ctx context.Context) iter.Seq2[core.RawRow, error] {
	return func(yield func(core.RawRow, error) bool) {
		if len(h.locations) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		pool, err := ants.NewPool(min(h.poolSize, len(h.locations)))
		if err != nil {
			yield(core.RawRow{}, err)
			return
		}
		defer pool.Release()

		results := make([]chan pageResult, len(h.locations))
		for i := range results {
			results[i] = make(chan pageResult, 1)
		}

		go func() {
			for i, loc := range h.locations {
				line, out := i+1, results[i]
				err := pool.Submit(func() {
					rows, err := h.page(ctx, loc, line)
					out <- pageResult{rows: rows, err: err}
				})
				if err != nil {
					out <- pageResult{err: err}
				}
			}
		}()

		for i, ch := range results {
			var res pageResult
			select {
			case res = <-ch:
			case <-ctx.Done():
				yield(core.RawRow{}, ctx.Err())
				return
			}
			if res.err != nil {
				if ctx.Err() != nil {
					yield(core.RawRow{}, ctx.Err())
					return
				}
				h.logger.Warn("page skipped", "location", h.locations[i], "err", res.err)
				if !yield(core.RawRow{}, &RowError{Source: h.locations[i], Line: i + 1, Err: res.err}) {
					return
				}
				continue
			}
			for _, row := range res.rows {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

func (h *HTML) page(ctx context.Context, location string, line int) ([]core.RawRow, error) {
	body, err := h.load(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	rows := Extract(doc, h.selectors, line)
	h.logger.Debug("page extracted", "location", location, "rows", len(rows))
	return rows, nil
}

func (h *HTML) load(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchFailed, location, resp.StatusCode)
	}
	return resp.Body, nil
}

// Extract reads the rows of one rating page. Missing elements leave their
// field empty, which the normalizer turns into Unknown.
func Extract(doc *goquery.Document, sel Selectors, line int) []core.RawRow {
	sel = sel.merge(DefaultSelectors())

	row := core.RawRow{
		Line:           line,
		ProfessorName:  text(doc.Find(sel.Name).First()),
		OverallQuality: text(doc.Find(sel.OverallQuality).First()),
		WouldTakeAgain: labelled(doc, sel.WouldTakeAgain),
		Difficulty:     labelled(doc, sel.Difficulty),
	}

	title := doc.Find(sel.Title)
	row.Department = text(title.Eq(0))
	row.School = text(title.Eq(1))

	ratings := text(doc.Find(sel.NumRatings).First())
	row.NumberOfRatings = strings.TrimSpace(strings.TrimSuffix(ratings, "ratings"))

	var tags []string
	doc.Find(sel.Tags).Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, text(s))
	})
	row.TopTags = strings.Join(tags, ",")

	perReview := sel.ReviewSubject != "" && sel.ReviewDate != ""
	var rows []core.RawRow
	doc.Find(sel.Review).Each(func(_ int, card *goquery.Selection) {
		comment := text(card.Find(sel.Comment).First())
		if comment == "" {
			return
		}
		if !perReview {
			row.ReviewSnippets = append(row.ReviewSnippets, comment)
			return
		}
		review := core.RawRow{
			Line:     line,
			Subject:  text(card.Find(sel.ReviewSubject).First()),
			Date:     text(card.Find(sel.ReviewDate).First()),
			Comments: comment,
		}
		rows = append(rows, review)
	})

	if len(rows) == 0 {
		return []core.RawRow{row}
	}
	for i := range rows {
		review := rows[i]
		rows[i] = row
		rows[i].Subject = review.Subject
		rows[i].Date = review.Date
		rows[i].Comments = review.Comments
	}
	return rows
}

// labelled returns the text of the nearest div sibling before the leaf div
// whose text is exactly label.
func labelled(doc *goquery.Document, label string) string {
	var value string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 || strings.TrimSpace(s.Text()) != label {
			return true
		}
		value = text(s.PrevAllFiltered("div").First())
		return false
	})
	return strings.TrimSpace(strings.TrimSuffix(value, "%"))
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
