package service

import (
	"testing"
	"time"

	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/predict"
	"github.com/kpredict/predict-backend/internal/profile"
)

func TestDeriveAllConfirmedAt(t *testing.T) {
	prof, err := profile.New(profile.ExamChilgeup, 2024, 0)
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}

	t1 := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	sheets := map[string]*predict.AnswerSheet{
		profile.SubjectEoneo:     {Confirmed: true, ConfirmedAt: &t2},
		profile.SubjectJaryo:     {Confirmed: true, ConfirmedAt: &t1},
		profile.SubjectSanghwang: {Confirmed: true, ConfirmedAt: &t3},
	}
	got := deriveAllConfirmedAt(prof, sheets)
	if got == nil || !got.Equal(t3) {
		t.Errorf("all confirmed at = %v, want %v (latest subject)", got, t3)
	}

	// One unconfirmed subject keeps the student out of the confirmed set.
	sheets[profile.SubjectJaryo].Confirmed = false
	if got := deriveAllConfirmedAt(prof, sheets); got != nil {
		t.Errorf("all confirmed at = %v, want nil", got)
	}

	// A missing subject sheet behaves like an unconfirmed one.
	delete(sheets, profile.SubjectEoneo)
	sheets[profile.SubjectJaryo].Confirmed = true
	if got := deriveAllConfirmedAt(prof, sheets); got != nil {
		t.Errorf("all confirmed at with missing sheet = %v, want nil", got)
	}
}

func TestStudentSelection(t *testing.T) {
	st := &model.Student{
		Sheets: map[string]*predict.AnswerSheet{
			profile.SubjectHyeongsa: {},
			profile.SubjectHaenghag: {},
		},
	}
	if got := studentSelection(st); got != profile.SubjectHaenghag {
		t.Errorf("selection = %s, want %s", got, profile.SubjectHaenghag)
	}

	// No selective sheet falls back to the default.
	st.Sheets = map[string]*predict.AnswerSheet{profile.SubjectHyeongsa: {}}
	if got := studentSelection(st); got != profile.SubjectMinbeob {
		t.Errorf("default selection = %s, want %s", got, profile.SubjectMinbeob)
	}
}
