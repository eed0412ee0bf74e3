package core

import (
	"encoding/json"
	"testing"
)

func TestValue_UnknownIsDistinctFromZero(t *testing.T) {
	zero := Known[float64](0)
	unknown := Unknown[float64]()

	if zero == unknown {
		t.Fatal("known zero must differ from Unknown")
	}
	if zero.Metadata() != float64(0) {
		t.Errorf("known zero metadata = %v", zero.Metadata())
	}
	if unknown.Metadata() != UnknownMarker {
		t.Errorf("unknown metadata = %v, want %q", unknown.Metadata(), UnknownMarker)
	}

	var empty Value[string]
	if empty.IsKnown() {
		t.Error("zero Value must be Unknown")
	}
	if Known("").Metadata() != "" {
		t.Error("known empty string must stay empty in metadata")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "integral float", got: Known(80.0).String(), want: "80.0"},
		{name: "fractional float", got: Known(4.5).String(), want: "4.5"},
		{name: "int", got: Known[int64](30).String(), want: "30"},
		{name: "text", got: Known("Yes").String(), want: "Yes"},
		{name: "unknown", got: Unknown[int64]().String(), want: "N/A"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestValue_Or(t *testing.T) {
	if got := Unknown[int64]().Or(-1); got != -1 {
		t.Errorf("Or() on Unknown = %d", got)
	}
	if got := Known[int64](3).Or(-1); got != 3 {
		t.Errorf("Or() on known = %d", got)
	}
}

func TestValue_JSON(t *testing.T) {
	var doc struct {
		Quality Value[float64] `json:"quality"`
		Ratings Value[int64]   `json:"ratings"`
		Again   Value[float64] `json:"again"`
		Credit  Value[string]  `json:"credit"`
		Missing Value[float64] `json:"missing"`
	}

	input := `{"quality": 4.5, "ratings": "N/A", "again": "80%", "credit": null, "missing": "oops"}`
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if v, ok := doc.Quality.Get(); !ok || v != 4.5 {
		t.Errorf("quality = %v", doc.Quality)
	}
	if doc.Ratings.IsKnown() {
		t.Errorf("ratings should be Unknown")
	}
	if v, ok := doc.Again.Get(); !ok || v != 80 {
		t.Errorf("again = %v", doc.Again)
	}
	if doc.Credit.IsKnown() || doc.Missing.IsKnown() {
		t.Errorf("credit and missing should be Unknown")
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"quality":4.5,"ratings":"N/A","again":80,"credit":"N/A","missing":"N/A"}`
	if string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}
}
