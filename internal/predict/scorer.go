package predict

import (
	"errors"
	"fmt"
	"math"

	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/rs/zerolog"
)

// ErrKeyLengthMismatch flags an official key whose length disagrees with the
// profile's problem count, or a sheet whose answers do not line up with the
// key. The offending subject is skipped; the batch keeps going.
var ErrKeyLengthMismatch = errors.New("answer key length mismatch")

// Scorer converts raw answer sheets into per-subject and composite scores.
type Scorer struct {
	profile *profile.Profile
	log     zerolog.Logger
}

// NewScorer creates a Scorer for one exam offering.
func NewScorer(p *profile.Profile, log zerolog.Logger) *Scorer {
	return &Scorer{
		profile: p,
		log:     log.With().Str("component", "scorer").Logger(),
	}
}

// ScoreSubject scores one subject's answers against its official entries.
// Returns the correct count and the subject score (correct * unit).
func ScoreSubject(official, answers []int, unit float64) (int, float64, error) {
	if len(official) != len(answers) {
		return 0, 0, fmt.Errorf("%w: official %d, answers %d", ErrKeyLengthMismatch, len(official), len(answers))
	}
	correct := 0
	for i, ans := range answers {
		if answerCorrect(official[i], ans) {
			correct++
		}
	}
	return correct, float64(correct) * unit, nil
}

// answerCorrect applies the disputed-question policy: official values 1..5
// demand equality, larger values accept any of their decimal digits.
func answerCorrect(official, answer int) bool {
	if official >= 1 && official <= 5 {
		return answer == official
	}
	for official > 0 {
		if official%10 == answer {
			return true
		}
		official /= 10
	}
	return false
}

// ValidateKey checks each official subject list against the profile's problem
// count and returns the set of subjects safe to score. Bad subjects are
// logged and dropped, never fatal.
func (s *Scorer) ValidateKey(official AnswerKey) map[string]bool {
	valid := make(map[string]bool, len(s.profile.Subjects))
	for _, subject := range s.profile.Subjects {
		want := s.profile.ProblemCount(subject)
		got := len(official[subject])
		if got != want {
			s.log.Warn().
				Str("subject", subject).
				Int("want", want).
				Int("got", got).
				Msg("official answer key length mismatch, subject skipped")
			continue
		}
		valid[subject] = true
	}
	return valid
}

// ScoreStudent recomputes every subject score and the composite score on one
// record. Subjects absent from validSubjects keep their previous score.
// Returns true when any score changed.
//
// The composite sheet is confirmed iff every composite-eligible subject is
// confirmed; its score is round(sum/divisor, 1) with the profile-declared
// divisor.
func (s *Scorer) ScoreStudent(rec *StudentRecord, official AnswerKey, validSubjects map[string]bool) bool {
	changed := false

	for _, subject := range s.profile.Subjects {
		if !validSubjects[subject] {
			continue
		}
		sheet := rec.Sheet(subject)
		if len(sheet.Answers) == 0 {
			continue
		}

		_, score, err := ScoreSubject(official[subject], sheet.Answers, s.profile.ScoreUnit(subject))
		if err != nil {
			s.log.Warn().
				Err(err).
				Int64("student_id", rec.ID).
				Str("subject", subject).
				Msg("answer sheet skipped")
			continue
		}
		if sheet.Score != score {
			sheet.Score = score
			changed = true
		}
	}

	composite := 0.0
	compositeConfirmed := true
	for _, subject := range s.profile.CompositeSubjects {
		sheet := rec.Sheet(subject)
		composite += sheet.Score
		if !sheet.Confirmed {
			compositeConfirmed = false
		}
	}
	composite = round1(composite / s.profile.CompositeDivisor)

	final := rec.Sheet(s.profile.FinalField)
	if final.Score != composite {
		final.Score = composite
		changed = true
	}
	if final.Confirmed != compositeConfirmed {
		final.Confirmed = compositeConfirmed
		changed = true
	}

	return changed
}

// round1 rounds to one decimal place, the precision every displayed and
// persisted score uses.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scoreKey maps a score to its 1-decimal integer form. Rank ties are detected
// at this precision so float noise cannot split equal scores.
func scoreKey(v float64) int {
	return int(math.Round(v * 10))
}
