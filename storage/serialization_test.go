package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalVector(t *testing.T) {
	tests := []struct {
		name   string
		vector Vector
	}{
		{
			name: "professor unit",
			vector: Vector{
				ID:     "Jane_Doe_info",
				Values: []float32{0.1, -0.25, 1, 0},
				Metadata: map[string]any{
					"type":                        "professor_info",
					"professor_name":              "Jane Doe",
					"overall_quality":             4.5,
					"number_of_ratings":           int64(30),
					"would_take_again_percentage": "N/A",
					"top_tags":                    []string{"Tough", "Clear", "Tough"},
				},
			},
		},
		{
			name: "bool and empty list",
			vector: Vector{
				ID:       "x",
				Values:   []float32{3.5},
				Metadata: map[string]any{"online": true, "tags": []string{}},
			},
		},
		{
			name: "unicode id",
			vector: Vector{
				ID:       "José_info",
				Values:   []float32{},
				Metadata: map[string]any{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalVector(tt.vector)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vector, decoded)
		})
	}
}

func TestMarshalVector_WidensNumbers(t *testing.T) {
	data, err := MarshalVector(Vector{
		ID:       "n",
		Values:   []float32{1},
		Metadata: map[string]any{"count": 7, "score": float32(0.5)},
	})
	require.NoError(t, err)

	decoded, err := UnmarshalVector(data)
	require.NoError(t, err)
	assert.Equal(t, int64(7), decoded.Metadata["count"])
	assert.Equal(t, 0.5, decoded.Metadata["score"])
}

func TestMarshalVector_Deterministic(t *testing.T) {
	v := Vector{
		ID:       "d",
		Values:   []float32{1, 2},
		Metadata: map[string]any{"a": "1", "b": "2", "c": "3", "d": "4"},
	}

	first, err := MarshalVector(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalVector(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalVector_UnsupportedMetadata(t *testing.T) {
	_, err := MarshalVector(Vector{
		ID:       "bad",
		Metadata: map[string]any{"nested": map[string]any{"x": 1}},
	})
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, ErrUnsupportedMetadata)
}

func TestUnmarshalVector_Invalid(t *testing.T) {
	valid, err := MarshalVector(Vector{
		ID:       "Jane_Doe_info",
		Values:   []float32{0.1, 0.2},
		Metadata: map[string]any{"type": "professor_info"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)-3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalVector(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalDimension(t *testing.T) {
	for _, dim := range []int{1, 384, 1024, 3072} {
		got, err := UnmarshalDimension(MarshalDimension(dim))
		require.NoError(t, err)
		assert.Equal(t, dim, got)
	}

	_, err := UnmarshalDimension(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
