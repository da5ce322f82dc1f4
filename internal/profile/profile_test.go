package profile

import (
	"errors"
	"testing"
)

func TestNewHaengsi(t *testing.T) {
	p, err := New(ExamHaengsi, 2024, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantSubjects := []string{SubjectHeonbeob, SubjectEoneo, SubjectJaryo, SubjectSanghwang}
	if len(p.Subjects) != len(wantSubjects) {
		t.Fatalf("subjects = %v, want %v", p.Subjects, wantSubjects)
	}
	for i, s := range wantSubjects {
		if p.Subjects[i] != s {
			t.Errorf("subjects[%d] = %s, want %s", i, p.Subjects[i], s)
		}
	}

	if got := p.ScoreUnit(SubjectHeonbeob); got != 4 {
		t.Errorf("heonbeob unit = %v, want 4", got)
	}
	if got := p.ScoreUnit(SubjectEoneo); got != 2.5 {
		t.Errorf("eoneo unit = %v, want 2.5", got)
	}
	if got := p.ProblemCount(SubjectHeonbeob); got != 25 {
		t.Errorf("heonbeob count = %d, want 25", got)
	}
	if got := p.ProblemCount(SubjectJaryo); got != 40 {
		t.Errorf("jaryo count = %d, want 40", got)
	}

	if p.FinalField != FinalFieldPsatAvg {
		t.Errorf("final field = %s, want %s", p.FinalField, FinalFieldPsatAvg)
	}
	if p.CompositeDivisor != 3 {
		t.Errorf("divisor = %v, want 3", p.CompositeDivisor)
	}
	if p.IsComposite(SubjectHeonbeob) {
		t.Error("heonbeob must not feed the PSAT average")
	}
	if !p.IsComposite(SubjectEoneo) {
		t.Error("eoneo must feed the PSAT average")
	}

	fields := p.ScoreFields()
	if fields[len(fields)-1] != FinalFieldPsatAvg {
		t.Errorf("last score field = %s, want %s", fields[len(fields)-1], FinalFieldPsatAvg)
	}
}

func TestNewChilgeup(t *testing.T) {
	p, err := New(ExamChilgeup, 2024, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.HasSubject(SubjectHeonbeob) {
		t.Error("chilgeup must not include heonbeob")
	}
	if got := p.ProblemCount(SubjectEoneo); got != 25 {
		t.Errorf("eoneo count = %d, want 25", got)
	}
	if got := p.ScoreUnit(SubjectEoneo); got != 4 {
		t.Errorf("eoneo unit = %v, want 4", got)
	}
	// The divisor stays 3 even though only 3 subjects exist: deliberate policy.
	if p.CompositeDivisor != 3 {
		t.Errorf("divisor = %v, want 3", p.CompositeDivisor)
	}
}

func TestNewPolice(t *testing.T) {
	p, err := NewWithSelection(ExamGyeongwi, 2024, 0, SubjectHaenghag)
	if err != nil {
		t.Fatalf("NewWithSelection: %v", err)
	}
	if !p.HasSubject(SubjectHaenghag) {
		t.Error("selection subject missing from police profile")
	}
	if p.HasSubject(SubjectMinbeob) {
		t.Error("unselected subject present in police profile")
	}
	if p.FinalField != FinalFieldSum {
		t.Errorf("final field = %s, want %s", p.FinalField, FinalFieldSum)
	}
	if p.CompositeDivisor != 1 {
		t.Errorf("divisor = %v, want 1", p.CompositeDivisor)
	}
	if len(p.CompositeSubjects) != 5 {
		t.Errorf("composite subjects = %d, want 5", len(p.CompositeSubjects))
	}
}

func TestForStatistics(t *testing.T) {
	p, err := ForStatistics(ExamGyeongwi, 2024, 0)
	if err != nil {
		t.Fatalf("ForStatistics: %v", err)
	}
	for _, sel := range Selections() {
		if !p.HasSubject(sel) {
			t.Errorf("aggregation profile missing selective subject %s", sel)
		}
	}
	if p.FinalField != FinalFieldSum {
		t.Errorf("final field = %s, want %s", p.FinalField, FinalFieldSum)
	}

	// PSAT families aggregate on the registration profile.
	psat, err := ForStatistics(ExamHaengsi, 2024, 0)
	if err != nil {
		t.Fatalf("ForStatistics haengsi: %v", err)
	}
	if len(psat.Subjects) != 4 {
		t.Errorf("haengsi aggregation subjects = %d, want 4", len(psat.Subjects))
	}
	if psat.HasSubject(SubjectHaenghag) {
		t.Error("haengsi aggregation must not carry police selections")
	}
}

func TestNewUnknownExam(t *testing.T) {
	if _, err := New("toeic", 2024, 0); !errors.Is(err, ErrUnknownExam) {
		t.Fatalf("err = %v, want ErrUnknownExam", err)
	}
	if _, err := NewWithSelection(ExamGyeongwi, 2024, 0, "nope"); !errors.Is(err, ErrUnknownExam) {
		t.Fatalf("bad selection err = %v, want ErrUnknownExam", err)
	}
}
