package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractionOptionsDefaults(t *testing.T) {
	got := NewExtractionOptions().Build()
	if diff := cmp.Diff(ExtractionOptions{}, got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

// Every combination of the seven flags is accepted and reported back as set.
func TestExtractionOptionsAllCombinations(t *testing.T) {
	for mask := 0; mask < 1<<7; mask++ {
		bit := func(i int) bool { return mask&(1<<i) != 0 }
		want := ExtractionOptions{
			SingleColumn: bit(0),
			Text:         bit(1),
			RawText:      bit(2),
			Tables:       bit(3),
			Metadata:     bit(4),
			ForceRender:  bit(5),
			Detailed:     bit(6),
		}
		got := NewExtractionOptions().
			SingleColumn(bit(0)).
			Text(bit(1)).
			RawText(bit(2)).
			Tables(bit(3)).
			Metadata(bit(4)).
			ForceRender(bit(5)).
			Detailed(bit(6)).
			Build()
		if got != want {
			t.Fatalf("mask %07b: got %+v, want %+v", mask, got, want)
		}
	}
}

func TestExtractionOptionsBuildIsSnapshot(t *testing.T) {
	b := NewExtractionOptions().Tables(true)
	first := b.Build()
	b.Tables(false).Detailed(true)

	if !first.Tables || first.Detailed {
		t.Errorf("built value changed after builder mutation: %+v", first)
	}
	if second := b.Build(); second.Tables || !second.Detailed {
		t.Errorf("second build = %+v", second)
	}
}

func TestExtractionOptionsJSONKeys(t *testing.T) {
	opts := NewExtractionOptions().SingleColumn(true).RawText(true).ForceRender(true).Build()
	b, err := json.Marshal(opts)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]bool
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{
		"single_column": true,
		"text":          false,
		"raw_text":      true,
		"tables":        false,
		"metadata":      false,
		"force_render":  true,
		"detailed":      false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json (-want +got):\n%s", diff)
	}
}
