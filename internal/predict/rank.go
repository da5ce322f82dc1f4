package predict

import (
	"sort"
	"time"

	"github.com/kpredict/predict-backend/internal/profile"
)

// RankEngine computes dense ranks over a fully-scored roster. Ranks are
// 1-based; students tied on a score (at 1-decimal precision) share one
// ordinal and the next distinct score takes the next ordinal, with no gap
// for the tie.
type RankEngine struct {
	profile *profile.Profile
}

// NewRankEngine creates a RankEngine for one exam offering.
func NewRankEngine(p *profile.Profile) *RankEngine {
	return &RankEngine{profile: p}
}

// Collect gathers confirmed scores into descending-sorted lists per
// bucket/scope/field. departments pre-seeds a scope per department so empty
// subgroups still appear downstream.
func (e *RankEngine) Collect(students []*StudentRecord, openedAt time.Time, departments []string) SortedScores {
	fields := e.profile.ScoreFields()

	scores := SortedScores{
		BucketAll:      {ScopeTotal: emptyLists(fields)},
		BucketFiltered: {ScopeTotal: emptyLists(fields)},
	}
	for _, dept := range departments {
		scores[BucketAll][dept] = emptyLists(fields)
		scores[BucketFiltered][dept] = emptyLists(fields)
	}

	for _, student := range students {
		if _, ok := scores[BucketAll][student.Department]; !ok {
			scores[BucketAll][student.Department] = emptyLists(fields)
			scores[BucketFiltered][student.Department] = emptyLists(fields)
		}
		filtered := student.InFiltered(openedAt)

		for _, field := range fields {
			sheet := student.Sheet(field)
			if !sheet.Confirmed {
				continue
			}
			scores[BucketAll][ScopeTotal][field] = append(scores[BucketAll][ScopeTotal][field], sheet.Score)
			scores[BucketAll][student.Department][field] = append(scores[BucketAll][student.Department][field], sheet.Score)
			if filtered {
				scores[BucketFiltered][ScopeTotal][field] = append(scores[BucketFiltered][ScopeTotal][field], sheet.Score)
				scores[BucketFiltered][student.Department][field] = append(scores[BucketFiltered][student.Department][field], sheet.Score)
			}
		}
	}

	for _, byScope := range scores {
		for _, byField := range byScope {
			for _, list := range byField {
				sort.Sort(sort.Reverse(sort.Float64Slice(list)))
			}
		}
	}
	return scores
}

// Assign computes every student's rank nest from the sorted lists and returns
// the changeset of students whose rank actually changed. Unconfirmed subjects
// keep rank 0; students outside the filtered population keep rank 0 in the
// filtered bucket.
func (e *RankEngine) Assign(students []*StudentRecord, scores SortedScores, openedAt time.Time) *Changeset[*StudentRecord] {
	fields := e.profile.ScoreFields()
	changes := &Changeset[*StudentRecord]{}

	tables := rankTables(scores)

	for _, student := range students {
		rank := NewRank(fields)
		filtered := student.InFiltered(openedAt)

		for _, field := range fields {
			sheet := student.Sheet(field)
			if !sheet.Confirmed {
				continue
			}
			key := scoreKey(sheet.Score)
			rank.All.Total[field] = tables[BucketAll][ScopeTotal][field][key]
			rank.All.Department[field] = tables[BucketAll][student.Department][field][key]
			if filtered {
				rank.Filtered.Total[field] = tables[BucketFiltered][ScopeTotal][field][key]
				rank.Filtered.Department[field] = tables[BucketFiltered][student.Department][field][key]
			}
		}

		if !student.Rank.Equal(rank) {
			student.Rank = rank
			changes.Update(student)
		}
	}
	return changes
}

// ParticipantCounts derives confirmed-submission counts from the sorted score
// lists. The filtered slice is a subset of "all" by construction.
func ParticipantCounts(scores SortedScores) Participants {
	counts := make(Participants, len(scores))
	for bucket, byScope := range scores {
		counts[bucket] = make(map[string]map[string]int, len(byScope))
		for scope, byField := range byScope {
			counts[bucket][scope] = make(map[string]int, len(byField))
			for field, list := range byField {
				counts[bucket][scope][field] = len(list)
			}
		}
	}
	return counts
}

// rankTables precomputes, for each sorted list, the dense rank of every
// distinct score: one O(n) pass per list instead of an index scan per student.
// The ordinal advances once per distinct score, never by the tie count, so
// [30, 30, 20] ranks 1, 1, 2.
func rankTables(scores SortedScores) map[string]map[string]map[string]map[int]int {
	tables := make(map[string]map[string]map[string]map[int]int, len(scores))
	for bucket, byScope := range scores {
		tables[bucket] = make(map[string]map[string]map[int]int, len(byScope))
		for scope, byField := range byScope {
			tables[bucket][scope] = make(map[string]map[int]int, len(byField))
			for field, list := range byField {
				table := make(map[int]int, len(list))
				ordinal := 0
				for _, score := range list {
					key := scoreKey(score)
					if _, seen := table[key]; !seen {
						ordinal++
						table[key] = ordinal
					}
				}
				tables[bucket][scope][field] = table
			}
		}
	}
	return tables
}

func emptyLists(fields []string) map[string][]float64 {
	m := make(map[string][]float64, len(fields))
	for _, f := range fields {
		m[f] = nil
	}
	return m
}
