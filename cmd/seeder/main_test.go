package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/profindex/core"
	"github.com/poiesic/profindex/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRows(t *testing.T, data []byte) []core.RawRow {
	t.Helper()
	var rows []core.RawRow
	for row, err := range source.NewCSVReader("seed", bytes.NewReader(data)).Rows(context.Background()) {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	s := &seeder{rng: rand.New(rand.NewPCG(7, 7)), professors: 12, reviews: 3}

	n, err := s.generate(&buf)
	require.NoError(t, err)
	assert.Equal(t, 36, n)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 36)

	assert.Equal(t, "Jane Doe", rows[0].ProfessorName)
	assert.Equal(t, "John Doe", rows[3].ProfessorName)
	assert.Equal(t, "Jane Smith", rows[30].ProfessorName)
	for i, row := range rows {
		assert.NotEmpty(t, row.School, "row %d", i)
		assert.NotEmpty(t, row.Subject, "row %d", i)
		assert.Equal(t, rows[i-i%3].Department, row.Department, "row %d", i)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	var a, b bytes.Buffer
	_, err := (&seeder{rng: rand.New(rand.NewPCG(1, 1)), professors: 5, reviews: 2}).generate(&a)
	require.NoError(t, err)
	_, err = (&seeder{rng: rand.New(rand.NewPCG(1, 1)), professors: 5, reviews: 2}).generate(&b)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerate_UniqueNamesPastTheNamePool(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&seeder{rng: rand.New(rand.NewPCG(3, 3)), professors: 101, reviews: 1}).generate(&buf)
	require.NoError(t, err)

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 101)
	assert.Equal(t, "Jane Doe 1", rows[100].ProfessorName)
}

func TestApp_WritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, newApp().Run([]string{"seeder", "-p", "2", "-r", "2", "-o", out}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, readRows(t, data), 4)
}

func TestApp_RejectsZeroReviews(t *testing.T) {
	assert.Error(t, newApp().Run([]string{"seeder", "-r", "0"}))
}
