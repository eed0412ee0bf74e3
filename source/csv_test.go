package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetCSV = `professor_name,school_name,department_name,local_name,student_star,student_difficult,comments,post_date,star_rating,take_again,diff_index,tag_professor,num_student,attence,for_credits,would_take_agains,grades,IsCourseOnline
Jane Doe,State U,Math,MATH101,5,2,Great lecturer,2024-01-15,4.5,87%,2.1,"Caring, Clear grading",12,Mandatory,Yes,Yes,A,No
John Roe,State U,Physics,PHYS200,3,4,,2024-02-01,N/A,,3.9,,,,,,,
`

func TestCSVDatasetColumns(t *testing.T) {
	rows, errs := collect(t, NewCSVReader("dataset.csv", strings.NewReader(datasetCSV)))
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	jane := rows[0]
	assert.Equal(t, 2, jane.Line)
	assert.Equal(t, "Jane Doe", jane.ProfessorName)
	assert.Equal(t, "State U", jane.School)
	assert.Equal(t, "Math", jane.Department)
	assert.Equal(t, "MATH101", jane.Subject)
	assert.Equal(t, "5", jane.Quality)
	assert.Equal(t, "2", jane.ReviewDifficulty)
	assert.Equal(t, "Great lecturer", jane.Comments)
	assert.Equal(t, "2024-01-15", jane.Date)
	assert.Equal(t, "4.5", jane.OverallQuality)
	assert.Equal(t, "87%", jane.WouldTakeAgain)
	assert.Equal(t, "2.1", jane.Difficulty)
	assert.Equal(t, "Caring, Clear grading", jane.TopTags)
	assert.Equal(t, "12", jane.NumberOfRatings)
	assert.Equal(t, "Mandatory", jane.Attendance)
	assert.Equal(t, "Yes", jane.ForCredit)
	assert.Equal(t, "Yes", jane.ReviewWouldTakeAgain)
	assert.Equal(t, "A", jane.GradeReceived)
	assert.Equal(t, "No", jane.TextbookUsed)
	assert.Empty(t, jane.ReviewTags)

	john := rows[1]
	assert.Equal(t, 3, john.Line)
	assert.Equal(t, "John Roe", john.ProfessorName)
	assert.Empty(t, john.Comments)
	assert.Equal(t, "N/A", john.OverallQuality)
}

func TestCSVAliasesAndUnknownColumns(t *testing.T) {
	data := "\ufeffName , Department,School,extra,Review,Tags\n" +
		"Jane Doe,Math,State U,ignored,Fine,\"tough, fair\"\n"

	rows, errs := collect(t, NewCSVReader("aliases.csv", strings.NewReader(data)))
	require.Empty(t, errs)
	require.Len(t, rows, 1)

	assert.Equal(t, "Jane Doe", rows[0].ProfessorName)
	assert.Equal(t, "Math", rows[0].Department)
	assert.Equal(t, "State U", rows[0].School)
	assert.Equal(t, "Fine", rows[0].Comments)
	assert.Equal(t, "tough, fair", rows[0].ReviewTags)
}

func TestCSVShortAndLongRecords(t *testing.T) {
	data := "name,department,school\nJane Doe\nJohn Roe,Physics,State U,surplus\n"

	rows, errs := collect(t, NewCSVReader("ragged.csv", strings.NewReader(data)))
	require.Empty(t, errs)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Doe", rows[0].ProfessorName)
	assert.Empty(t, rows[0].Department)
	assert.Equal(t, "State U", rows[1].School)
}

func TestCSVMissingNameColumn(t *testing.T) {
	rows, errs := collect(t, NewCSVReader("bad.csv", strings.NewReader("department,school\nMath,State U\n")))
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingColumn)
}

func TestCSVEmptyInput(t *testing.T) {
	rows, errs := collect(t, NewCSVReader("empty.csv", strings.NewReader("")))
	assert.Empty(t, rows)
	assert.Empty(t, errs)
}

func TestCSVFileIsRereadable(t *testing.T) {
	src := NewCSVFile(writeFile(t, "dataset.csv", datasetCSV))

	first, errs := collect(t, src)
	require.Empty(t, errs)
	second, errs := collect(t, src)
	require.Empty(t, errs)
	assert.Equal(t, first, second)
}

func TestCSVMissingFile(t *testing.T) {
	_, errs := collect(t, NewCSVFile("/nonexistent/dataset.csv"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "open /nonexistent/dataset.csv")
}

func TestCSVStopsEarly(t *testing.T) {
	src := NewCSVReader("dataset.csv", strings.NewReader(datasetCSV))
	count := 0
	for _, err := range src.Rows(context.Background()) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestCSVCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range NewCSVReader("dataset.csv", strings.NewReader(datasetCSV)).Rows(ctx) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}
