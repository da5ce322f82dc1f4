package profile

import (
	"fmt"
)

// Exam family codes. One profile exists per (exam, year, round) offering;
// the family decides subject tables, score units and the composite rule.
const (
	ExamHaengsi  = "haengsi"  // 5급 공채 PSAT
	ExamChilgeup = "chilgeup" // 7급 공채 PSAT (no constitutional law)
	ExamGyeongwi = "gyeongwi" // 경위공채 (police)
	ExamPrime    = "prime"    // 프라임 모의고사 (PSAT-shaped mock rounds)
)

// Subject field codes shared across families.
const (
	SubjectHeonbeob  = "heonbeob"
	SubjectEoneo     = "eoneo"
	SubjectJaryo     = "jaryo"
	SubjectSanghwang = "sanghwang"

	SubjectHyeongsa   = "hyeongsa"
	SubjectGyeongchal = "gyeongchal"
	SubjectBeomjoe    = "beomjoe"
	SubjectMinbeob    = "minbeob"
	SubjectHaenghag   = "haenghag"
	SubjectHaengbeob  = "haengbeob"
)

// Composite score field names. PSAT families persist an average, police a sum.
const (
	FinalFieldPsatAvg = "psat_avg"
	FinalFieldSum     = "sum"
)

// Rank tier buckets used by answer-distribution analytics.
const (
	RankAll = "all_rank"
	RankTop = "top_rank"
	RankMid = "mid_rank"
	RankLow = "low_rank"
)

// Rank tier ratio boundaries: (0, 0.27] top, (0.27, 0.73] mid, (0.73, 1] low.
const (
	TopRankThreshold = 0.27
	MidRankThreshold = 0.73
)

// ErrUnknownExam is returned when no profile is registered for an exam code.
var ErrUnknownExam = fmt.Errorf("unknown exam family")

// Profile is the immutable configuration of one exam offering. Everything in
// the prediction engine is parameterized by it: subject tables, problem
// counts, per-subject score units and the composite rule all come from here
// rather than from family-specific code paths.
type Profile struct {
	Exam  string
	Year  int
	Round int

	// Subjects is the ordered list of scored subject fields. Order matters
	// for presentation and default-map construction only, never for scoring.
	Subjects []string

	// SubjectNames maps a subject field to its display name.
	SubjectNames map[string]string

	ProblemCounts map[string]int
	ScoreUnits    map[string]float64

	// CompositeSubjects feed the final composite score. CompositeDivisor is
	// deliberate configuration, not len(CompositeSubjects): the PSAT average
	// divides by 3 regardless of how many subjects an offering carries.
	CompositeSubjects []string
	CompositeDivisor  float64

	// FinalField names the composite score slot ("psat_avg" or "sum").
	FinalField string
}

// New builds the profile for an exam offering, using the default selective
// subject where the family has one. Returns ErrUnknownExam for unregistered
// families; callers must treat that as fatal configuration error before any
// student data is touched.
func New(exam string, year, round int) (*Profile, error) {
	return NewWithSelection(exam, year, round, SubjectMinbeob)
}

// NewWithSelection builds a profile with an explicit selective subject
// (police offerings let students choose 민법총칙/행정학/행정법).
func NewWithSelection(exam string, year, round int, selection string) (*Profile, error) {
	switch exam {
	case ExamHaengsi, ExamPrime:
		return psatProfile(exam, year, round, true), nil
	case ExamChilgeup:
		return psatProfile(exam, year, round, false), nil
	case ExamGyeongwi:
		return policeProfile(year, round, selection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExam, exam)
	}
}

func psatProfile(exam string, year, round int, withHeonbeob bool) *Profile {
	p := &Profile{
		Exam:  exam,
		Year:  year,
		Round: round,
		SubjectNames: map[string]string{
			SubjectHeonbeob:   "헌법",
			SubjectEoneo:      "언어논리",
			SubjectJaryo:      "자료해석",
			SubjectSanghwang:  "상황판단",
			FinalFieldPsatAvg: "PSAT 평균",
		},
		CompositeSubjects: []string{SubjectEoneo, SubjectJaryo, SubjectSanghwang},
		CompositeDivisor:  3,
		FinalField:        FinalFieldPsatAvg,
	}

	if withHeonbeob {
		p.Subjects = []string{SubjectHeonbeob, SubjectEoneo, SubjectJaryo, SubjectSanghwang}
		p.ProblemCounts = map[string]int{
			SubjectHeonbeob: 25, SubjectEoneo: 40, SubjectJaryo: 40, SubjectSanghwang: 40,
		}
		p.ScoreUnits = map[string]float64{
			SubjectHeonbeob: 4, SubjectEoneo: 2.5, SubjectJaryo: 2.5, SubjectSanghwang: 2.5,
		}
	} else {
		// 7급: no constitutional law, 25 problems at 4 points each.
		p.Subjects = []string{SubjectEoneo, SubjectJaryo, SubjectSanghwang}
		p.ProblemCounts = map[string]int{
			SubjectEoneo: 25, SubjectJaryo: 25, SubjectSanghwang: 25,
		}
		p.ScoreUnits = map[string]float64{
			SubjectEoneo: 4, SubjectJaryo: 4, SubjectSanghwang: 4,
		}
	}
	return p
}

func policeProfile(year, round int, selection string) (*Profile, error) {
	selectionNames := map[string]string{
		SubjectMinbeob:   "민법총칙",
		SubjectHaenghag:  "행정학",
		SubjectHaengbeob: "행정법",
	}
	selName, ok := selectionNames[selection]
	if !ok {
		return nil, fmt.Errorf("%w: police selection %q", ErrUnknownExam, selection)
	}

	subjects := []string{SubjectHyeongsa, SubjectHeonbeob, SubjectGyeongchal, SubjectBeomjoe, selection}
	counts := make(map[string]int, len(subjects))
	units := make(map[string]float64, len(subjects))
	for _, s := range subjects {
		counts[s] = 40
		units[s] = 2.5
	}

	return &Profile{
		Exam:     ExamGyeongwi,
		Year:     year,
		Round:    round,
		Subjects: subjects,
		SubjectNames: map[string]string{
			SubjectHyeongsa:   "형사학",
			SubjectHeonbeob:   "헌법",
			SubjectGyeongchal: "경찰학",
			SubjectBeomjoe:    "범죄학",
			selection:         selName,
			FinalFieldSum:     "총점",
		},
		ProblemCounts: counts,
		ScoreUnits:    units,
		// The police composite is the plain sum of every subject.
		CompositeSubjects: subjects,
		CompositeDivisor:  1,
		FinalField:        FinalFieldSum,
	}, nil
}

// Selections lists the selective subjects a police student chooses from.
func Selections() []string {
	return []string{SubjectMinbeob, SubjectHaenghag, SubjectHaengbeob}
}

// ForStatistics builds the aggregation profile for an offering. Scoring always
// uses a registration profile with a single selective subject; aggregation on
// police offerings spans every selective subject, so students with different
// selections share the total-score rank lists while each selective subject
// keeps its own column. PSAT families aggregate on their registration profile.
func ForStatistics(exam string, year, round int) (*Profile, error) {
	if exam != ExamGyeongwi {
		return New(exam, year, round)
	}

	subjects := []string{SubjectHyeongsa, SubjectHeonbeob, SubjectGyeongchal, SubjectBeomjoe}
	subjects = append(subjects, Selections()...)

	counts := make(map[string]int, len(subjects))
	units := make(map[string]float64, len(subjects))
	for _, s := range subjects {
		counts[s] = 40
		units[s] = 2.5
	}

	return &Profile{
		Exam:     ExamGyeongwi,
		Year:     year,
		Round:    round,
		Subjects: subjects,
		SubjectNames: map[string]string{
			SubjectHyeongsa:   "형사학",
			SubjectHeonbeob:   "헌법",
			SubjectGyeongchal: "경찰학",
			SubjectBeomjoe:    "범죄학",
			SubjectMinbeob:    "민법총칙",
			SubjectHaenghag:   "행정학",
			SubjectHaengbeob:  "행정법",
			FinalFieldSum:     "총점",
		},
		ProblemCounts: counts,
		ScoreUnits:    units,
		// Aggregation never computes composites; scoring profiles do.
		CompositeDivisor: 1,
		FinalField:       FinalFieldSum,
	}, nil
}

// ScoreFields returns subject fields plus the final composite field, in order.
func (p *Profile) ScoreFields() []string {
	fields := make([]string, 0, len(p.Subjects)+1)
	fields = append(fields, p.Subjects...)
	return append(fields, p.FinalField)
}

// ScoreUnit returns the points awarded per correct answer in a subject.
func (p *Profile) ScoreUnit(subject string) float64 {
	return p.ScoreUnits[subject]
}

// ProblemCount returns the number of problems in a subject.
func (p *Profile) ProblemCount(subject string) int {
	return p.ProblemCounts[subject]
}

// IsComposite reports whether a subject feeds the final composite score.
func (p *Profile) IsComposite(subject string) bool {
	for _, s := range p.CompositeSubjects {
		if s == subject {
			return true
		}
	}
	return false
}

// HasSubject reports whether the offering scores the given subject field.
func (p *Profile) HasSubject(subject string) bool {
	for _, s := range p.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// RankList returns the rank tier vocabulary in presentation order.
func RankList() []string {
	return []string{RankAll, RankTop, RankMid, RankLow}
}
