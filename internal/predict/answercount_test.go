package predict

import (
	"testing"
	"time"

	"github.com/kpredict/predict-backend/internal/profile"
)

func TestTabulate(t *testing.T) {
	answerLists := [][]int{
		{1, 2, 0},
		{1, 3, 45}, // 45 = several choices marked on problem 3
		{1, 0, 5},
	}
	vectors := Tabulate(answerLists, 3)

	if got := vectors[0]; got.Count1 != 3 || got.CountTotal != 3 {
		t.Errorf("problem 1 = %+v", got)
	}
	p2 := vectors[1]
	if p2.Count2 != 1 || p2.Count3 != 1 || p2.Count0 != 1 {
		t.Errorf("problem 2 = %+v", p2)
	}
	// count_0 is excluded from count_total.
	if p2.CountTotal != 2 {
		t.Errorf("problem 2 total = %d, want 2", p2.CountTotal)
	}
	p3 := vectors[2]
	if p3.CountMultiple != 1 || p3.Count5 != 1 || p3.Count0 != 1 {
		t.Errorf("problem 3 = %+v", p3)
	}
	if p3.CountTotal != 2 {
		t.Errorf("problem 3 total = %d, want 2", p3.CountTotal)
	}
}

func TestTabulateTotalInvariant(t *testing.T) {
	answerLists := [][]int{
		{1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1},
		{0, 17, 2, 0, 3},
	}
	for i, v := range Tabulate(answerLists, 5) {
		sum := v.Count1 + v.Count2 + v.Count3 + v.Count4 + v.Count5 + v.CountMultiple
		if v.CountTotal != sum {
			t.Errorf("problem %d: total %d != component sum %d", i+1, v.CountTotal, sum)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name         string
		rank         int
		participants int
		wantTier     string
		wantOK       bool
	}{
		{name: "rank 1 of 100 is top", rank: 1, participants: 100, wantTier: profile.RankTop, wantOK: true},
		{name: "boundary 27 of 100 is top", rank: 27, participants: 100, wantTier: profile.RankTop, wantOK: true},
		{name: "28 of 100 is mid", rank: 28, participants: 100, wantTier: profile.RankMid, wantOK: true},
		{name: "boundary 73 of 100 is mid", rank: 73, participants: 100, wantTier: profile.RankMid, wantOK: true},
		{name: "74 of 100 is low", rank: 74, participants: 100, wantTier: profile.RankLow, wantOK: true},
		{name: "last place is low", rank: 100, participants: 100, wantTier: profile.RankLow, wantOK: true},
		{name: "rank 1 of 1 has ratio 1.0", rank: 1, participants: 1, wantTier: profile.RankLow, wantOK: true},
		{name: "no rank yet", rank: 0, participants: 100, wantOK: false},
		{name: "empty population", rank: 1, participants: 0, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier, ok := TierFor(tc.rank, tc.participants)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && tier != tc.wantTier {
				t.Errorf("tier = %s, want %s", tier, tc.wantTier)
			}
		})
	}
}

func categoryTestSetup(t *testing.T) (*Tabulator, []*StudentRecord, Participants) {
	t.Helper()
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"eoneo"},
		ProblemCounts:     map[string]int{"eoneo": 2},
		ScoreUnits:        map[string]float64{"eoneo": 2.5},
		CompositeSubjects: []string{"eoneo"},
		CompositeDivisor:  1,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	tab := NewTabulator(p)

	early := openedAt.Add(-time.Hour)
	students := make([]*StudentRecord, 0, 4)
	for i, answers := range [][]int{{1, 2}, {1, 1}, {2, 2}, {3, 3}} {
		at := early
		s := &StudentRecord{
			ID:         int64(i + 1),
			Department: "A",
			Sheets: map[string]*AnswerSheet{
				"eoneo":    {Confirmed: true, Answers: answers},
				"psat_avg": {Confirmed: true},
			},
			AllConfirmedAt: &at,
		}
		s.Rank = NewRank([]string{"eoneo", "psat_avg"})
		s.Rank.All.Total["psat_avg"] = i + 1
		s.Rank.Filtered.Total["psat_avg"] = i + 1
		students = append(students, s)
	}

	participants := Participants{
		BucketAll:      {ScopeTotal: {"psat_avg": 4}},
		BucketFiltered: {ScopeTotal: {"psat_avg": 4}},
	}
	return tab, students, participants
}

func TestTabulateByCategory(t *testing.T) {
	tab, students, participants := categoryTestSetup(t)

	counts := tab.TabulateByCategory(students, participants, openedAt)

	// Everyone lands in all_rank.
	allRank := counts[BucketAll][profile.RankAll]["eoneo"]
	if got := allRank[0].CountTotal; got != 4 {
		t.Errorf("all_rank problem 1 total = %d, want 4", got)
	}

	// Rank 1 of 4 (ratio 0.25) is the only top-tier student.
	top := counts[BucketAll][profile.RankTop]["eoneo"]
	if got := top[0].CountTotal; got != 1 {
		t.Errorf("top_rank problem 1 total = %d, want 1", got)
	}
	if top[0].Count1 != 1 {
		t.Errorf("top_rank problem 1 = %+v, want count_1 = 1", top[0])
	}

	// Rank 2 of 4 (ratio 0.5) is mid; ranks 3 and 4 (0.75, 1.0) are low.
	mid := counts[BucketAll][profile.RankMid]["eoneo"]
	if got := mid[0].CountTotal; got != 1 {
		t.Errorf("mid_rank problem 1 total = %d, want 1", got)
	}
	low := counts[BucketAll][profile.RankLow]["eoneo"]
	if got := low[0].CountTotal; got != 2 {
		t.Errorf("low_rank problem 1 total = %d, want 2", got)
	}
}

func TestTabulateByCategoryEmptyCompositePopulation(t *testing.T) {
	tab, students, _ := categoryTestSetup(t)

	// No composite participants yet: tiers stay empty, all_rank still counts.
	empty := Participants{
		BucketAll:      {ScopeTotal: {"psat_avg": 0}},
		BucketFiltered: {ScopeTotal: {"psat_avg": 0}},
	}
	counts := tab.TabulateByCategory(students, empty, openedAt)

	if got := counts[BucketAll][profile.RankAll]["eoneo"][0].CountTotal; got != 4 {
		t.Errorf("all_rank total = %d, want 4", got)
	}
	for _, tier := range []string{profile.RankTop, profile.RankMid, profile.RankLow} {
		if got := counts[BucketAll][tier]["eoneo"][0].CountTotal; got != 0 {
			t.Errorf("%s total = %d, want 0", tier, got)
		}
	}
}
