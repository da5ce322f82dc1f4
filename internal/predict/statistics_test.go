package predict

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		want   Summary
	}{
		{
			name:   "empty population yields zero summary",
			sorted: nil,
			want:   Summary{},
		},
		{
			name:   "single participant",
			sorted: []float64{72.5},
			want:   Summary{Max: 72.5, T10: 72.5, T20: 72.5, Avg: 72.5},
		},
		{
			name:   "two participants",
			sorted: []float64{5.0, 2.5},
			want:   Summary{Max: 5.0, T10: 5.0, T20: 5.0, Avg: 3.8},
		},
		{
			name: "ten participants picks first and second",
			sorted: []float64{
				100, 95, 90, 85, 80, 75, 70, 65, 60, 55,
			},
			want: Summary{Max: 100, T10: 100, T20: 95, Avg: 77.5},
		},
		{
			name: "twenty participants",
			sorted: []float64{
				100, 99, 98, 97, 96, 95, 94, 93, 92, 91,
				90, 89, 88, 87, 86, 85, 84, 83, 82, 81,
			},
			want: Summary{Max: 100, T10: 99, T20: 97, Avg: 90.5},
		},
		{
			name:   "average rounded to one decimal",
			sorted: []float64{10, 10, 5},
			want:   Summary{Max: 10, T10: 10, T20: 10, Avg: 8.3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.sorted)
			if got != tc.want {
				t.Errorf("Summarize = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildStatisticsCoversEveryNestedSlice(t *testing.T) {
	scores := SortedScores{
		BucketAll: {
			ScopeTotal: {"eoneo": {5.0, 2.5}},
			"A":        {"eoneo": {5.0, 2.5}},
			"B":        {"eoneo": nil},
		},
		BucketFiltered: {
			ScopeTotal: {"eoneo": {5.0}},
			"A":        {"eoneo": {5.0}},
			"B":        {"eoneo": nil},
		},
	}

	stats := BuildStatistics(scores)

	if got := stats[BucketAll]["A"]["eoneo"]; got != (Summary{Max: 5.0, T10: 5.0, T20: 5.0, Avg: 3.8}) {
		t.Errorf("all/A = %+v", got)
	}
	if got := stats[BucketFiltered][ScopeTotal]["eoneo"]; got != (Summary{Max: 5.0, T10: 5.0, T20: 5.0, Avg: 5.0}) {
		t.Errorf("filtered/total = %+v", got)
	}
	// Departments with no participants still carry a zero summary.
	if got := stats[BucketAll]["B"]["eoneo"]; got != (Summary{}) {
		t.Errorf("all/B = %+v, want zero summary", got)
	}
}

func TestParticipantCounts(t *testing.T) {
	scores := SortedScores{
		BucketAll:      {ScopeTotal: {"eoneo": {5.0, 2.5, 1.0}}},
		BucketFiltered: {ScopeTotal: {"eoneo": {5.0}}},
	}
	counts := ParticipantCounts(scores)
	if got := counts[BucketAll][ScopeTotal]["eoneo"]; got != 3 {
		t.Errorf("all = %d, want 3", got)
	}
	if got := counts[BucketFiltered][ScopeTotal]["eoneo"]; got != 1 {
		t.Errorf("filtered = %d, want 1", got)
	}
}
