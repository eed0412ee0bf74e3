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


package core

// UnitKind identifies what an embeddable unit was derived from. The value is
// stored verbatim under the "type" metadata key.
type UnitKind string

const (
	// UnitKindProfessor is the single summary unit produced for a professor.
	UnitKindProfessor UnitKind = "professor_info"
	// UnitKindReview is produced for each review with non-empty text.
	UnitKindReview UnitKind = "review"
)

// RawRow is one source row before normalization. Every field is the string the
// source produced, possibly empty. Sources fill whatever they can; the rest of
// the pipeline does not care whether the row came from HTML, CSV or JSON.
type RawRow struct {
	Line int // 1-based position in the source, used for reporting

	ProfessorName   string
	Department      string
	School          string
	OverallQuality  string
	NumberOfRatings string
	WouldTakeAgain  string // percent, "%" optional
	Difficulty      string
	TopTags         string // comma separated

	// ReviewSnippets are review texts the source only knows as plain strings
	// (no subject or date). They stay on the professor record.
	ReviewSnippets []string

	Subject              string
	Date                 string
	Quality              string
	ReviewDifficulty     string
	ForCredit            string
	Attendance           string
	ReviewWouldTakeAgain string
	GradeReceived        string
	TextbookUsed         string
	Comments             string
	ReviewTags           string // comma separated, empty means "inherit professor tags"
}

// NormalizedRow is a RawRow after the field normalizer ran. It is the input of
// the record builder.
type NormalizedRow struct {
	Line int

	ProfessorName     string
	Department        string
	School            string
	OverallQuality    Value[float64]
	NumberOfRatings   Value[int64]
	WouldTakeAgainPct Value[float64]
	Difficulty        Value[float64]
	TopTags           []string
	ReviewSnippets    []string

	Subject          string
	Date             string
	Quality          Value[float64]
	ReviewDifficulty Value[float64]
	ForCredit        Value[string]
	Attendance       Value[string]
	WouldTakeAgain   Value[string]
	GradeReceived    Value[string]
	TextbookUsed     Value[string]
	ReviewText       string
	ReviewTags       []string
}

// ProfessorRecord is the canonical professor shape. Name is the join key for
// reviews and the base of every identifier.
type ProfessorRecord struct {
	Name              string         `json:"name"`
	Department        string         `json:"department"`
	School            string         `json:"school"`
	OverallQuality    Value[float64] `json:"overall_quality"`
	NumberOfRatings   Value[int64]   `json:"number_of_ratings"`
	WouldTakeAgainPct Value[float64] `json:"would_take_again_percentage"`
	Difficulty        Value[float64] `json:"level_of_difficulty"`
	TopTags           []string       `json:"top_tags"`
	ReviewSnippets    []string       `json:"reviews,omitempty"`
}

// ReviewRecord is one student review. It references its professor by name only.
type ReviewRecord struct {
	ProfessorName  string         `json:"professor_name"`
	Subject        string         `json:"subject"`
	Date           string         `json:"date"`
	Quality        Value[float64] `json:"quality"`
	Difficulty     Value[float64] `json:"difficulty"`
	ForCredit      Value[string]  `json:"for_credit"`
	Attendance     Value[string]  `json:"attendance"`
	WouldTakeAgain Value[string]  `json:"would_take_again"`
	GradeReceived  Value[string]  `json:"grade_received"`
	TextbookUsed   Value[string]  `json:"textbook_used"`
	ReviewText     string         `json:"review"`
	Tags           []string       `json:"tags"`
}

// EmbeddableUnit is the unit of work between the text composer and the vector
// store: the text to embed plus the id and metadata it is stored under.
type EmbeddableUnit struct {
	ID       string
	Kind     UnitKind
	Text     string
	Metadata map[string]any
}
