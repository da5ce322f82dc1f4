package predict

import (
	"time"

	"github.com/kpredict/predict-backend/internal/profile"
)

// CountVector is the per-problem answer-choice frequency table. count_0 holds
// blank answers and is deliberately excluded from count_total; count_multiple
// tallies raw values that encode several marked choices (a data-entry
// artifact, distinct from the official key's disputed answers).
type CountVector struct {
	Count0        int `json:"count_0"`
	Count1        int `json:"count_1"`
	Count2        int `json:"count_2"`
	Count3        int `json:"count_3"`
	Count4        int `json:"count_4"`
	Count5        int `json:"count_5"`
	CountMultiple int `json:"count_multiple"`
	CountTotal    int `json:"count_total"`
}

func (v *CountVector) add(value int) {
	switch {
	case value > 5:
		v.CountMultiple++
	case value == 5:
		v.Count5++
	case value == 4:
		v.Count4++
	case value == 3:
		v.Count3++
	case value == 2:
		v.Count2++
	case value == 1:
		v.Count1++
	default:
		v.Count0++
	}
}

func (v *CountVector) total() int {
	return v.Count1 + v.Count2 + v.Count3 + v.Count4 + v.Count5 + v.CountMultiple
}

// Tabulate builds one count vector per problem from the answer lists of all
// contributing students. Lists shorter than problemCount contribute only the
// positions they carry.
func Tabulate(answerLists [][]int, problemCount int) []CountVector {
	vectors := make([]CountVector, problemCount)
	for _, answers := range answerLists {
		for i, value := range answers {
			if i >= problemCount {
				break
			}
			vectors[i].add(value)
		}
	}
	for i := range vectors {
		vectors[i].CountTotal = vectors[i].total()
	}
	return vectors
}

// Tabulator builds answer-choice distributions, optionally bucketed by
// population category and rank tier.
type Tabulator struct {
	profile *profile.Profile
}

// NewTabulator creates a Tabulator for one exam offering.
func NewTabulator(p *profile.Profile) *Tabulator {
	return &Tabulator{profile: p}
}

// CollectAll gathers the confirmed answer lists per subject with no
// population split.
func (t *Tabulator) CollectAll(students []*StudentRecord) map[string][][]int {
	lists := make(map[string][][]int, len(t.profile.Subjects))
	for _, subject := range t.profile.Subjects {
		lists[subject] = nil
	}
	for _, student := range students {
		for _, subject := range t.profile.Subjects {
			sheet := student.Sheet(subject)
			if sheet.Confirmed {
				lists[subject] = append(lists[subject], sheet.Answers)
			}
		}
	}
	return lists
}

// TabulateAll runs the base tabulation for every subject.
func (t *Tabulator) TabulateAll(students []*StudentRecord) map[string][]CountVector {
	counts := make(map[string][]CountVector, len(t.profile.Subjects))
	for subject, lists := range t.CollectAll(students) {
		counts[subject] = Tabulate(lists, t.profile.ProblemCount(subject))
	}
	return counts
}

// TierFor classifies a composite rank into a rank tier. The ratio
// rank/participants falls in (0, 0.27] for top, (0.27, 0.73] for mid and
// (0.73, 1] for low; upper bounds are inclusive. Returns false when the
// student cannot be classified (no rank, or an empty composite population) —
// such students still count toward all_rank.
func TierFor(rank, participants int) (string, bool) {
	if rank <= 0 || participants <= 0 {
		return "", false
	}
	ratio := float64(rank) / float64(participants)
	switch {
	case ratio <= profile.TopRankThreshold:
		return profile.RankTop, true
	case ratio <= profile.MidRankThreshold:
		return profile.RankMid, true
	case ratio <= 1:
		return profile.RankLow, true
	default:
		return "", false
	}
}

// CollectByCategory gathers confirmed answer lists per subject, split by
// population bucket and rank tier. The tier comes from the student's
// composite rank against the composite participant count of the matching
// bucket; every contributing student also lands in all_rank.
func (t *Tabulator) CollectByCategory(
	students []*StudentRecord, participants Participants, openedAt time.Time,
) map[string]map[string]map[string][][]int {
	final := t.profile.FinalField
	lists := t.emptyCategoryLists()

	participantsAll := participants[BucketAll][ScopeTotal][final]
	participantsFiltered := participants[BucketFiltered][ScopeTotal][final]

	for _, student := range students {
		tierAll, hasTierAll := TierFor(student.Rank.All.Total[final], participantsAll)
		tierFiltered, hasTierFiltered := TierFor(student.Rank.Filtered.Total[final], participantsFiltered)
		filtered := student.InFiltered(openedAt)

		for _, subject := range t.profile.Subjects {
			sheet := student.Sheet(subject)
			if !sheet.Confirmed {
				continue
			}

			lists[BucketAll][profile.RankAll][subject] = append(lists[BucketAll][profile.RankAll][subject], sheet.Answers)
			if hasTierAll {
				lists[BucketAll][tierAll][subject] = append(lists[BucketAll][tierAll][subject], sheet.Answers)
			}

			if filtered {
				lists[BucketFiltered][profile.RankAll][subject] = append(lists[BucketFiltered][profile.RankAll][subject], sheet.Answers)
				if hasTierFiltered {
					lists[BucketFiltered][tierFiltered][subject] = append(lists[BucketFiltered][tierFiltered][subject], sheet.Answers)
				}
			}
		}
	}
	return lists
}

// TabulateByCategory runs the base tabulation separately per bucket and tier.
func (t *Tabulator) TabulateByCategory(
	students []*StudentRecord, participants Participants, openedAt time.Time,
) map[string]map[string]map[string][]CountVector {
	lists := t.CollectByCategory(students, participants, openedAt)

	counts := make(map[string]map[string]map[string][]CountVector, len(lists))
	for bucket, byTier := range lists {
		counts[bucket] = make(map[string]map[string][]CountVector, len(byTier))
		for tier, byField := range byTier {
			counts[bucket][tier] = make(map[string][]CountVector, len(byField))
			for subject, answerLists := range byField {
				counts[bucket][tier][subject] = Tabulate(answerLists, t.profile.ProblemCount(subject))
			}
		}
	}
	return counts
}

func (t *Tabulator) emptyCategoryLists() map[string]map[string]map[string][][]int {
	lists := make(map[string]map[string]map[string][][]int, 2)
	for _, bucket := range []string{BucketAll, BucketFiltered} {
		lists[bucket] = make(map[string]map[string][][]int, len(profile.RankList()))
		for _, tier := range profile.RankList() {
			byField := make(map[string][][]int, len(t.profile.Subjects))
			for _, subject := range t.profile.Subjects {
				byField[subject] = nil
			}
			lists[bucket][tier] = byField
		}
	}
	return lists
}
