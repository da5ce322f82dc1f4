package predict

import (
	"errors"
	"testing"

	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/rs/zerolog"
)

func TestScoreSubject(t *testing.T) {
	tests := []struct {
		name        string
		official    []int
		answers     []int
		unit        float64
		wantCorrect int
		wantScore   float64
	}{
		{name: "all correct", official: []int{1, 2, 3}, answers: []int{1, 2, 3}, unit: 2.5, wantCorrect: 3, wantScore: 7.5},
		{name: "two of three", official: []int{1, 2, 3}, answers: []int{1, 2, 4}, unit: 2.5, wantCorrect: 2, wantScore: 5.0},
		{name: "none correct", official: []int{1, 2, 3}, answers: []int{2, 3, 1}, unit: 4, wantCorrect: 0, wantScore: 0},
		{name: "disputed accepts 2", official: []int{23}, answers: []int{2}, unit: 2.5, wantCorrect: 1, wantScore: 2.5},
		{name: "disputed accepts 3", official: []int{23}, answers: []int{3}, unit: 2.5, wantCorrect: 1, wantScore: 2.5},
		{name: "disputed rejects 1", official: []int{23}, answers: []int{1}, unit: 2.5, wantCorrect: 0, wantScore: 0},
		{name: "disputed rejects 4", official: []int{23}, answers: []int{4}, unit: 2.5, wantCorrect: 0, wantScore: 0},
		{name: "blank never correct", official: []int{1}, answers: []int{0}, unit: 2.5, wantCorrect: 0, wantScore: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			correct, score, err := ScoreSubject(tc.official, tc.answers, tc.unit)
			if err != nil {
				t.Fatalf("ScoreSubject: %v", err)
			}
			if correct != tc.wantCorrect {
				t.Errorf("correct = %d, want %d", correct, tc.wantCorrect)
			}
			if score != tc.wantScore {
				t.Errorf("score = %v, want %v", score, tc.wantScore)
			}
		})
	}
}

func TestScoreSubjectLengthMismatch(t *testing.T) {
	_, _, err := ScoreSubject([]int{1, 2, 3}, []int{1, 2}, 2.5)
	if !errors.Is(err, ErrKeyLengthMismatch) {
		t.Fatalf("err = %v, want ErrKeyLengthMismatch", err)
	}
}

func TestScoreStudentComposite(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"a", "b", "c"},
		ProblemCounts:     map[string]int{"a": 1, "b": 1, "c": 1},
		ScoreUnits:        map[string]float64{"a": 10, "b": 20, "c": 30},
		CompositeSubjects: []string{"a", "b", "c"},
		CompositeDivisor:  3,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	scorer := NewScorer(p, zerolog.Nop())
	official := AnswerKey{"a": {1}, "b": {1}, "c": {1}}

	rec := &StudentRecord{ID: 1, Sheets: map[string]*AnswerSheet{
		"a": {Confirmed: true, Answers: []int{1}},
		"b": {Confirmed: true, Answers: []int{1}},
		"c": {Confirmed: true, Answers: []int{1}},
	}}

	if changed := scorer.ScoreStudent(rec, official, scorer.ValidateKey(official)); !changed {
		t.Fatal("first scoring pass must report changes")
	}

	// 10 + 20 + 30 over divisor 3.
	if got := rec.Sheet(profile.FinalFieldPsatAvg).Score; got != 20.0 {
		t.Errorf("composite = %v, want 20.0", got)
	}
	if !rec.Sheet(profile.FinalFieldPsatAvg).Confirmed {
		t.Error("composite must be confirmed when every composite subject is")
	}

	// Second pass over identical data: nothing changes.
	if changed := scorer.ScoreStudent(rec, official, scorer.ValidateKey(official)); changed {
		t.Error("re-scoring unchanged answers must report no changes")
	}
}

func TestScoreStudentCompositeUnconfirmed(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"a", "b"},
		ProblemCounts:     map[string]int{"a": 1, "b": 1},
		ScoreUnits:        map[string]float64{"a": 10, "b": 10},
		CompositeSubjects: []string{"a", "b"},
		CompositeDivisor:  2,
		FinalField:        profile.FinalFieldPsatAvg,
	}
	scorer := NewScorer(p, zerolog.Nop())
	official := AnswerKey{"a": {1}, "b": {1}}

	rec := &StudentRecord{ID: 1, Sheets: map[string]*AnswerSheet{
		"a": {Confirmed: true, Answers: []int{1}},
		"b": {Confirmed: false, Answers: []int{1}},
	}}
	scorer.ScoreStudent(rec, official, scorer.ValidateKey(official))

	if rec.Sheet(profile.FinalFieldPsatAvg).Confirmed {
		t.Error("composite must stay unconfirmed while a composite subject is unconfirmed")
	}
	// Score is still computed for display.
	if got := rec.Sheet(profile.FinalFieldPsatAvg).Score; got != 10.0 {
		t.Errorf("composite = %v, want 10.0", got)
	}
}

func TestScoreStudentSkipsBadSheet(t *testing.T) {
	p := &profile.Profile{
		Exam:              profile.ExamHaengsi,
		Subjects:          []string{"a", "b"},
		ProblemCounts:     map[string]int{"a": 2, "b": 2},
		ScoreUnits:        map[string]float64{"a": 2.5, "b": 2.5},
		CompositeSubjects: []string{"a", "b"},
		CompositeDivisor:  1,
		FinalField:        profile.FinalFieldSum,
	}
	scorer := NewScorer(p, zerolog.Nop())
	official := AnswerKey{"a": {1, 2}, "b": {1, 2}}

	rec := &StudentRecord{ID: 1, Sheets: map[string]*AnswerSheet{
		"a": {Confirmed: true, Answers: []int{1, 2}},
		"b": {Confirmed: true, Answers: []int{1}}, // truncated sheet
	}}
	scorer.ScoreStudent(rec, official, scorer.ValidateKey(official))

	if got := rec.Sheet("a").Score; got != 5.0 {
		t.Errorf("subject a = %v, want 5.0", got)
	}
	if got := rec.Sheet("b").Score; got != 0 {
		t.Errorf("bad subject b = %v, want 0 (skipped)", got)
	}
}

func TestValidateKeyDropsMismatchedSubject(t *testing.T) {
	p := &profile.Profile{
		Exam:          profile.ExamHaengsi,
		Subjects:      []string{"a", "b"},
		ProblemCounts: map[string]int{"a": 2, "b": 3},
		ScoreUnits:    map[string]float64{"a": 2.5, "b": 2.5},
		FinalField:    profile.FinalFieldSum,
	}
	scorer := NewScorer(p, zerolog.Nop())

	valid := scorer.ValidateKey(AnswerKey{"a": {1, 2}, "b": {1, 2}})
	if !valid["a"] {
		t.Error("subject a should be scoreable")
	}
	if valid["b"] {
		t.Error("subject b has a short key and must be dropped")
	}
}
