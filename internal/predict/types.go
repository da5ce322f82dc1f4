package predict

import (
	"time"
)

// Population bucket keys. "all" covers every confirmed submission; "filtered"
// only students who finalized before the official key went public.
const (
	BucketAll      = "all"
	BucketFiltered = "filtered"
)

// ScopeTotal is the scope key for the whole cohort; department scopes are
// keyed by department name.
const ScopeTotal = "total"

// AnswerKey maps a subject field to its ordered official answers. An entry
// in 1..5 is a single correct choice; a larger value encodes several accepted
// choices as its decimal digits (disputed-question policy).
type AnswerKey map[string][]int

// AnswerSheet is one student's submission state for one score field.
// ConfirmedAt is bookkeeping for deriving the student-level AllConfirmedAt;
// the engine itself never reads it.
type AnswerSheet struct {
	Confirmed   bool       `json:"is_confirmed"`
	Score       float64    `json:"score"`
	Answers     []int      `json:"raw_answers,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// StudentRecord is the in-memory view of one student the engine operates on.
// Sheets is keyed by score field and always includes the composite field.
type StudentRecord struct {
	ID         int64
	Name       string
	Serial     string
	Department string

	Sheets map[string]*AnswerSheet

	// AllConfirmedAt is set once every subject is confirmed; it gates the
	// filtered-population membership test against the key publication time.
	AllConfirmedAt *time.Time

	Rank Rank
}

// Sheet returns the sheet for a score field, creating a zeroed one on demand.
func (r *StudentRecord) Sheet(field string) *AnswerSheet {
	if r.Sheets == nil {
		r.Sheets = make(map[string]*AnswerSheet)
	}
	sheet, ok := r.Sheets[field]
	if !ok {
		sheet = &AnswerSheet{}
		r.Sheets[field] = sheet
	}
	return sheet
}

// InFiltered reports whether the student belongs to the filtered population:
// fully confirmed strictly before the official answers were opened. The test
// is all-or-nothing per student, never per subject.
func (r *StudentRecord) InFiltered(openedAt time.Time) bool {
	return r.AllConfirmedAt != nil && r.AllConfirmedAt.Before(openedAt)
}

// RankScope holds per-field ranks against the total cohort and against the
// student's own department subgroup. Rank 0 means "not ranked" (unconfirmed).
type RankScope struct {
	Total      map[string]int `json:"total"`
	Department map[string]int `json:"department"`
}

// Rank is the persisted per-student rank nest: bucket → scope → field.
type Rank struct {
	All      RankScope `json:"all"`
	Filtered RankScope `json:"filtered"`
}

// NewRank returns a Rank zeroed for every given score field.
func NewRank(fields []string) Rank {
	zero := func() map[string]int {
		m := make(map[string]int, len(fields))
		for _, f := range fields {
			m[f] = 0
		}
		return m
	}
	return Rank{
		All:      RankScope{Total: zero(), Department: zero()},
		Filtered: RankScope{Total: zero(), Department: zero()},
	}
}

// Equal compares two rank nests field by field.
func (a Rank) Equal(b Rank) bool {
	return scopeEqual(a.All, b.All) && scopeEqual(a.Filtered, b.Filtered)
}

func scopeEqual(a, b RankScope) bool {
	return intMapEqual(a.Total, b.Total) && intMapEqual(a.Department, b.Department)
}

func intMapEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Summary is the statistics cell for one subject/scope/bucket slice. The
// persisted key names (t10/t20) predate this implementation and stay as-is
// for interop with existing data.
type Summary struct {
	Max float64 `json:"max"`
	T10 float64 `json:"t10"`
	T20 float64 `json:"t20"`
	Avg float64 `json:"avg"`
}

// Statistics nests summaries bucket → scope → field.
type Statistics map[string]map[string]map[string]Summary

// Participants nests confirmed-submission counts bucket → scope → field.
type Participants map[string]map[string]map[string]int

// SortedScores nests descending-sorted confirmed score lists
// bucket → scope → field. It is built once by the rank engine and reused by
// the statistics aggregator.
type SortedScores map[string]map[string]map[string][]float64
