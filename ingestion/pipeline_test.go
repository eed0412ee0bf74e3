package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/poiesic/profindex/ai"
	"github.com/poiesic/profindex/ai/mock"
	"github.com/poiesic/profindex/core"
	"github.com/poiesic/profindex/embedding"
	"github.com/poiesic/profindex/source"
	"github.com/poiesic/profindex/storage"
	"github.com/poiesic/profindex/storage/badger"
	"github.com/poiesic/profindex/upsert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

const janeCSV = `name,department,school,star_rating,num_student,take_again,diff_index,tag_professor,comments,local_name,post_date
Jane Doe,CS,State U,4.5,30,80%,3.0,"Tough, Clear",Great class,CS101,2024-05-01
`

// rowsSource serves fixed rows and errors.
type rowsSource struct {
	name  string
	items []item
}

type item struct {
	row core.RawRow
	err error
}

func (s *rowsSource) Name() string { return s.name }

func (s *rowsSource) Rows(ctx context.Context) iter.Seq2[core.RawRow, error] {
	return func(yield func(core.RawRow, error) bool) {
		for _, it := range s.items {
			if !yield(it.row, it.err) {
				return
			}
		}
	}
}

// failingStore rejects every upsert.
type failingStore struct{}

func (failingStore) Upsert(ctx context.Context, namespace string, vectors []storage.Vector) (int, error) {
	return 0, errors.New("store unavailable")
}

func (failingStore) DescribeIndexStats(ctx context.Context) (*storage.IndexStats, error) {
	return &storage.IndexStats{}, nil
}

func (failingStore) Close() error { return nil }

func setup(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Pipeline, *badger.Store) {
	t.Helper()
	store, err := badger.NewMemoryStore(testDimension)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	adapter := embedding.NewAdapter(embedder, embedding.WithRetryPolicy(embedding.NoDelayPolicy(5)))
	p, err := NewPipeline(adapter, store, opts...)
	require.NoError(t, err)
	return p, store
}

func csvSource(data string) source.Source {
	return source.NewCSVReader("test.csv", strings.NewReader(data))
}

func TestNewPipeline_Validation(t *testing.T) {
	adapter := embedding.NewAdapter(mock.NewMockEmbedder())
	store, err := badger.NewMemoryStore(0)
	require.NoError(t, err)
	defer store.Close()

	_, err = NewPipeline(nil, store)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(adapter, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(adapter, store, WithNamespace(""))
	assert.ErrorIs(t, err, ErrNamespaceRequired)

	_, err = NewPipeline(adapter, store, WithBatchSize(0))
	assert.ErrorIs(t, err, upsert.ErrInvalidBatchSize)

	_, err = NewPipeline(adapter, store, WithComposeMode("fancy"))
	assert.ErrorIs(t, err, core.ErrInvalidComposeMode)

	p, err := NewPipeline(adapter, store)
	require.NoError(t, err)
	assert.Equal(t, DefaultNamespace, p.Namespace())
}

func TestRun_JaneDoeWithReview(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(janeCSV))
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "ns1", report.Namespace)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Professors)
	assert.Equal(t, 1, report.Reviews)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 2, report.Upsert.Accepted)
	assert.Empty(t, report.Skipped)

	got, err := store.Fetch(context.Background(), "ns1", "Jane_Doe_info", "Jane_Doe_CS101_2024-05-01")
	require.NoError(t, err)
	require.Len(t, got, 2)

	professor := got[0]
	assert.Equal(t, "Jane_Doe_info", professor.ID)
	assert.Equal(t, "professor_info", professor.Metadata["type"])
	assert.Equal(t, 4.5, professor.Metadata["overall_quality"])
	assert.Equal(t, 80.0, professor.Metadata["would_take_again_percentage"])
	assert.Equal(t, int64(30), professor.Metadata["number_of_ratings"])
	assert.Equal(t, []string{"Tough", "Clear"}, professor.Metadata["top_tags"])
	assert.Equal(t, mock.GenerateDeterministicVector("Jane Doe teaches in the CS department at State U.", testDimension), professor.Values)

	review := got[1]
	assert.Equal(t, "review", review.Metadata["type"])
	assert.Equal(t, "Great class", review.Metadata["review"])
	assert.Equal(t, []string{"Tough", "Clear"}, review.Metadata["tags"])
	assert.Equal(t, "N/A", review.Metadata["grade_received"])
}

func TestRun_JaneDoeWithoutReview(t *testing.T) {
	data := strings.Replace(janeCSV, "Great class", "", 1)
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Professors)
	assert.Equal(t, 0, report.Reviews)

	stats, err := store.DescribeIndexStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVectorCount)
}

func TestRun_MissingNameSkipped(t *testing.T) {
	data := "name,department,school,comments\n" +
		"Jane Doe,CS,State U,Great class\n" +
		",Math,State U,Orphan review\n" +
		"John Roe,Physics,State U,\n"
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Professors)
	assert.Equal(t, 1, report.Reviews)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 3, report.Skipped[0].Line)
	assert.Equal(t, "test.csv", report.Skipped[0].Source)
	assert.ErrorIs(t, report.Skipped[0].Reason, core.ErrMissingIdentity)

	stats, err := store.DescribeIndexStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalVectorCount)
}

func TestRun_ProfessorEmittedOncePerRun(t *testing.T) {
	data := "name,department,school,comments,subject,date\n" +
		"Jane Doe,CS,State U,First,CS101,2024-01-01\n" +
		"Jane Doe,CS,State U,Second,CS102,2024-01-02\n" +
		"Jane Doe,CS,State U,Third,CS103,2024-01-03\n"
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, _ := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Professors)
	assert.Equal(t, 3, report.Reviews)
	assert.Equal(t, 4, report.Upsert.Accepted)
	assert.Empty(t, report.Conflicts)
}

func TestRun_ProfessorConflictReported(t *testing.T) {
	data := "name,department,school,comments,subject,date\n" +
		"Jane Doe,CS,State U,First,CS101,2024-01-01\n" +
		"Jane Doe,Mathematics,State U,Second,MATH1,2024-01-02\n"
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Professors)
	assert.Equal(t, 2, report.Reviews)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, 3, report.Conflicts[0].Line)
	assert.ErrorIs(t, report.Conflicts[0].Reason, ErrProfessorConflict)

	got, err := store.Fetch(context.Background(), "ns1", "Jane_Doe_info")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CS", got[0].Metadata["department"])
}

func TestRun_ReviewCollisionLaterWins(t *testing.T) {
	data := "name,department,school,comments,subject,date\n" +
		"Jane Doe,CS,State U,Earlier,CS101,2024-01-01\n" +
		"Jane Doe,CS,State U,Later,CS101,2024-01-01\n"
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Collisions)
	assert.Equal(t, 1, report.Reviews)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 2, report.Upsert.Accepted)

	got, err := store.Fetch(context.Background(), "ns1", "Jane_Doe_CS101_2024-01-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Later", got[0].Metadata["review"])
}

func TestRun_Idempotent(t *testing.T) {
	data := "name,department,school,comments,subject,date\n" +
		"Jane Doe,CS,State U,Great class,CS101,2024-01-01\n" +
		"John Roe,Physics,State U,Hard labs,PHYS200,2024-02-01\n"
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, store := setup(t, embedder)

	_, err := p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	first, err := store.DescribeIndexStats(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background(), csvSource(data))
	require.NoError(t, err)
	second, err := store.DescribeIndexStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), first.TotalVectorCount)
	assert.Equal(t, first.TotalVectorCount, second.TotalVectorCount)
	assert.Equal(t, first.Namespaces, second.Namespaces)
}

func TestRun_ThrottleIsTransparent(t *testing.T) {
	plain := mock.NewMockEmbedder().WithDimension(testDimension)
	p1, store1 := setup(t, plain)
	_, err := p1.Run(context.Background(), csvSource(janeCSV))
	require.NoError(t, err)

	throttled := mock.NewMockEmbedder().WithDimension(testDimension).ThrottleNext(2)
	p2, store2 := setup(t, throttled)
	report, err := p2.Run(context.Background(), csvSource(janeCSV))
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 3, throttled.CallCount())

	ids := []string{"Jane_Doe_info", "Jane_Doe_CS101_2024-05-01"}
	want, err := store1.Fetch(context.Background(), "ns1", ids...)
	require.NoError(t, err)
	got, err := store2.Fetch(context.Background(), "ns1", ids...)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRun_ProviderFatalAborts(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithDimension(testDimension).
		WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, ai.NewStatusError(ai.ProviderMock, 401, "bad key")
		})
	p, store := setup(t, embedder)

	report, err := p.Run(context.Background(), csvSource(janeCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, embedding.ErrProviderFatal)
	assert.ErrorIs(t, err, ai.ErrUnauthorized)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 0, report.Upsert.Batches)

	stats, err := store.DescribeIndexStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectorCount)
}

func TestRun_FailedBatchesReported(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	adapter := embedding.NewAdapter(embedder, embedding.WithRetryPolicy(embedding.NoDelayPolicy(1)))
	p, err := NewPipeline(adapter, failingStore{}, WithBatchSize(1))
	require.NoError(t, err)

	report, err := p.Run(context.Background(), csvSource(janeCSV))
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Upsert.Batches)
	assert.Len(t, report.Upsert.Failed, 2)
	assert.ErrorIs(t, report.Upsert.Err(), upsert.ErrBatchFailed)
}

func TestRun_SourceErrors(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)

	t.Run("row error skips the row", func(t *testing.T) {
		p, _ := setup(t, embedder)
		src := &rowsSource{name: "pages", items: []item{
			{err: &source.RowError{Source: "https://example.com/a", Line: 1, Err: source.ErrFetchFailed}},
			{row: core.RawRow{Line: 2, ProfessorName: "Jane Doe", Department: "CS", School: "State U"}},
		}}
		report, err := p.Run(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Rows)
		assert.Equal(t, 1, report.Professors)
		require.Len(t, report.Skipped, 1)
		assert.ErrorIs(t, report.Skipped[0].Reason, source.ErrFetchFailed)
	})

	t.Run("source error aborts", func(t *testing.T) {
		p, _ := setup(t, embedder)
		src := &rowsSource{name: "broken.csv", items: []item{
			{row: core.RawRow{Line: 2, ProfessorName: "Jane Doe"}},
			{err: errors.New("disk gone")},
		}}
		_, err := p.Run(context.Background(), src)
		assert.ErrorIs(t, err, ErrSourceFailed)
	})
}

func TestRun_MultipleSourcesAndChunking(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,department,school\n")
	for i := range 25 {
		fmt.Fprintf(&b, "Professor %02d,CS,State U\n", i)
	}
	json := `{"professors": [{"name": "Jane Doe", "department": "CS", "school": "State U",
		"reviews": ["Great class"]}]}`

	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	var progress bytes.Buffer
	p, store := setup(t, embedder,
		WithBatchSize(10),
		WithChunkSize(7),
		WithComposeMode(core.ComposeDetailed),
		WithNamespace("professors"),
		WithProgress(upsert.NewProgressTracker(&progress, 0, 1)),
	)

	report, err := p.Run(context.Background(),
		csvSource(b.String()),
		source.NewJSONReader("reviews.json", strings.NewReader(json)),
	)
	require.NoError(t, err)
	assert.Equal(t, 26, report.Professors)
	assert.Equal(t, 26, report.Upsert.Accepted)
	assert.Equal(t, 3, report.Upsert.Batches)
	assert.Equal(t, 4, embedder.CallCount())
	assert.Contains(t, progress.String(), "Upserted: 26")

	got, err := store.Fetch(context.Background(), "professors", "Jane_Doe_info")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Great class"}, got[0].Metadata["reviews"])
}

func TestRun_Cancelled(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithDimension(testDimension)
	p, _ := setup(t, embedder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.Run(ctx, csvSource(janeCSV))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, report.Upsert)
}
