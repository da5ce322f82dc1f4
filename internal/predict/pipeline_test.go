package predict

import (
	"testing"
	"time"

	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/rs/zerolog"
)

// Two students, one department, one 2-problem subject: the full pipeline
// end to end.
func TestPipelineRoundTrip(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Year:              2024,
		Subjects:          []string{"eoneo"},
		ProblemCounts:     map[string]int{"eoneo": 2},
		ScoreUnits:        map[string]float64{"eoneo": 2.5},
		CompositeSubjects: []string{"eoneo"},
		CompositeDivisor:  1,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	pipeline := NewPipeline(p, zerolog.Nop())

	official := AnswerKey{"eoneo": {1, 2}}
	early := openedAt.Add(-time.Hour)

	newStudent := func(id int64, answers []int) *StudentRecord {
		at := early
		return &StudentRecord{
			ID:         id,
			Department: "A",
			Sheets: map[string]*AnswerSheet{
				"eoneo": {Confirmed: true, Answers: answers},
			},
			AllConfirmedAt: &at,
		}
	}
	x := newStudent(1, []int{1, 2})
	y := newStudent(2, []int{1, 1})
	students := []*StudentRecord{x, y}

	result := pipeline.Run(students, official, openedAt, []string{"A"})

	// Scores.
	if got := x.Sheet("eoneo").Score; got != 5.0 {
		t.Errorf("X score = %v, want 5.0", got)
	}
	if got := y.Sheet("eoneo").Score; got != 2.5 {
		t.Errorf("Y score = %v, want 2.5", got)
	}

	// Ranks: total and department agree (both students are in A).
	if x.Rank.All.Total["eoneo"] != 1 || x.Rank.All.Department["eoneo"] != 1 {
		t.Errorf("X ranks = %+v, want 1/1", x.Rank.All)
	}
	if y.Rank.All.Total["eoneo"] != 2 || y.Rank.All.Department["eoneo"] != 2 {
		t.Errorf("Y ranks = %+v, want 2/2", y.Rank.All)
	}

	// Department statistics.
	want := Summary{Max: 5.0, T10: 5.0, T20: 5.0, Avg: 3.8}
	if got := result.Statistics[BucketAll]["A"]["eoneo"]; got != want {
		t.Errorf("dept A stats = %+v, want %+v", got, want)
	}

	// Answer distribution.
	counts := result.AnswerCounts["eoneo"]
	if counts[0].Count1 != 2 || counts[0].CountTotal != 2 {
		t.Errorf("problem 1 = %+v, want count_1=2 total=2", counts[0])
	}
	if counts[1].Count1 != 1 || counts[1].Count2 != 1 || counts[1].CountTotal != 2 {
		t.Errorf("problem 2 = %+v, want count_1=1 count_2=1 total=2", counts[1])
	}

	// Participant counts.
	if got := result.Participants[BucketAll][ScopeTotal]["eoneo"]; got != 2 {
		t.Errorf("participants = %d, want 2", got)
	}
	if got := result.Participants[BucketFiltered][ScopeTotal]["eoneo"]; got != 2 {
		t.Errorf("filtered participants = %d, want 2", got)
	}

	// First run writes both students.
	if result.Scored.UpdateCount != 2 {
		t.Errorf("score updates = %d, want 2", result.Scored.UpdateCount)
	}
	if result.Ranked.UpdateCount != 2 {
		t.Errorf("rank updates = %d, want 2", result.Ranked.UpdateCount)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"eoneo", "jaryo"},
		ProblemCounts:     map[string]int{"eoneo": 2, "jaryo": 2},
		ScoreUnits:        map[string]float64{"eoneo": 2.5, "jaryo": 2.5},
		CompositeSubjects: []string{"eoneo", "jaryo"},
		CompositeDivisor:  2,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	pipeline := NewPipeline(p, zerolog.Nop())

	official := AnswerKey{"eoneo": {1, 2}, "jaryo": {3, 4}}
	early := openedAt.Add(-time.Hour)
	at1, at2 := early, early.Add(time.Minute)

	students := []*StudentRecord{
		{
			ID: 1, Department: "A",
			Sheets: map[string]*AnswerSheet{
				"eoneo": {Confirmed: true, Answers: []int{1, 2}},
				"jaryo": {Confirmed: true, Answers: []int{3, 3}},
			},
			AllConfirmedAt: &at1,
		},
		{
			ID: 2, Department: "B",
			Sheets: map[string]*AnswerSheet{
				"eoneo": {Confirmed: true, Answers: []int{2, 2}},
				"jaryo": {Confirmed: true, Answers: []int{3, 4}},
			},
			AllConfirmedAt: &at2,
		},
	}

	first := pipeline.Run(students, official, openedAt, []string{"A", "B"})
	if first.Scored.UpdateCount == 0 || first.Ranked.UpdateCount == 0 {
		t.Fatalf("first run must produce updates, got %d/%d",
			first.Scored.UpdateCount, first.Ranked.UpdateCount)
	}

	second := pipeline.Run(students, official, openedAt, []string{"A", "B"})
	if second.Scored.UpdateCount != 0 {
		t.Errorf("second run score updates = %d, want 0", second.Scored.UpdateCount)
	}
	if second.Ranked.UpdateCount != 0 {
		t.Errorf("second run rank updates = %d, want 0", second.Ranked.UpdateCount)
	}

	// Aggregates are stable across runs.
	if first.Statistics[BucketAll][ScopeTotal]["psat_avg"] != second.Statistics[BucketAll][ScopeTotal]["psat_avg"] {
		t.Error("statistics differ between identical runs")
	}
}

// Students with different selective subjects share the total-score rank list
// while each selective subject keeps its own column.
func TestPipelineGroupedSelections(t *testing.T) {
	makeProfile := func(subjects []string) *profile.Profile {
		counts := make(map[string]int, len(subjects))
		units := make(map[string]float64, len(subjects))
		for _, s := range subjects {
			counts[s] = 2
			units[s] = 2.5
		}
		return &profile.Profile{
			Exam:              profile.ExamGyeongwi,
			Subjects:          subjects,
			ProblemCounts:     counts,
			ScoreUnits:        units,
			CompositeSubjects: subjects,
			CompositeDivisor:  1,
			FinalField:        profile.FinalFieldSum,
		}
	}

	agg := makeProfile([]string{"hyeongsa", "minbeob", "haenghag"})
	agg.CompositeSubjects = nil
	pipeline := NewPipeline(agg, zerolog.Nop())

	official := AnswerKey{
		"hyeongsa": {1, 2},
		"minbeob":  {1, 2},
		"haenghag": {1, 2},
	}
	early := openedAt.Add(-time.Hour)

	newStudent := func(id int64, selection string, hyeongsa, selected []int) *StudentRecord {
		at := early
		return &StudentRecord{
			ID:         id,
			Department: "일반",
			Sheets: map[string]*AnswerSheet{
				"hyeongsa": {Confirmed: true, Answers: hyeongsa},
				selection:  {Confirmed: true, Answers: selected},
			},
			AllConfirmedAt: &at,
		}
	}
	m := newStudent(1, "minbeob", []int{1, 2}, []int{1, 2})
	h := newStudent(2, "haenghag", []int{1, 1}, []int{1, 2})

	groups := []Group{
		{Profile: makeProfile([]string{"hyeongsa", "minbeob"}), Students: []*StudentRecord{m}},
		{Profile: makeProfile([]string{"hyeongsa", "haenghag"}), Students: []*StudentRecord{h}},
	}
	result := pipeline.RunGrouped(groups, official, openedAt, []string{"일반"})

	// Composite sums come from each student's own subject pair.
	if got := m.Sheet("sum").Score; got != 10.0 {
		t.Errorf("M sum = %v, want 10.0", got)
	}
	if got := h.Sheet("sum").Score; got != 7.5 {
		t.Errorf("H sum = %v, want 7.5", got)
	}

	// Cross-selection ranking on the shared sum field.
	if got := m.Rank.All.Total["sum"]; got != 1 {
		t.Errorf("M sum rank = %d, want 1", got)
	}
	if got := h.Rank.All.Total["sum"]; got != 2 {
		t.Errorf("H sum rank = %d, want 2", got)
	}

	// Each selective subject counts only its own takers.
	if got := result.Participants[BucketAll][ScopeTotal]["minbeob"]; got != 1 {
		t.Errorf("minbeob participants = %d, want 1", got)
	}
	if got := result.Participants[BucketAll][ScopeTotal]["haenghag"]; got != 1 {
		t.Errorf("haenghag participants = %d, want 1", got)
	}
	if got := result.Participants[BucketAll][ScopeTotal]["hyeongsa"]; got != 2 {
		t.Errorf("hyeongsa participants = %d, want 2", got)
	}
	if got := result.Participants[BucketAll][ScopeTotal]["sum"]; got != 2 {
		t.Errorf("sum participants = %d, want 2", got)
	}
}

func TestPipelineSkipsBadKeySubject(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"eoneo", "jaryo"},
		ProblemCounts:     map[string]int{"eoneo": 2, "jaryo": 2},
		ScoreUnits:        map[string]float64{"eoneo": 2.5, "jaryo": 2.5},
		CompositeSubjects: []string{"eoneo", "jaryo"},
		CompositeDivisor:  2,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	pipeline := NewPipeline(p, zerolog.Nop())

	// jaryo's key is short: the subject is skipped, the batch continues.
	official := AnswerKey{"eoneo": {1, 2}, "jaryo": {1}}
	at := openedAt.Add(-time.Hour)
	student := &StudentRecord{
		ID: 1, Department: "A",
		Sheets: map[string]*AnswerSheet{
			"eoneo": {Confirmed: true, Answers: []int{1, 2}},
			"jaryo": {Confirmed: true, Answers: []int{1, 2}},
		},
		AllConfirmedAt: &at,
	}

	pipeline.Run([]*StudentRecord{student}, official, openedAt, []string{"A"})

	if got := student.Sheet("eoneo").Score; got != 5.0 {
		t.Errorf("eoneo score = %v, want 5.0", got)
	}
	if got := student.Sheet("jaryo").Score; got != 0 {
		t.Errorf("jaryo score = %v, want 0 (key skipped)", got)
	}
}
