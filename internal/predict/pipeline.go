package predict

import (
	"time"

	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/rs/zerolog"
)

// Result carries everything one full pipeline run produced: changesets for
// write-back, the reusable sorted score lists, and the aggregates.
type Result struct {
	Scored *Changeset[*StudentRecord]
	Ranked *Changeset[*StudentRecord]

	SortedScores SortedScores
	Participants Participants
	Statistics   Statistics

	// AnswerCounts: subject → per-problem vectors, whole population.
	AnswerCounts map[string][]CountVector
	// AnswerCountsByCategory: bucket → rank tier → subject → vectors.
	AnswerCountsByCategory map[string]map[string]map[string][]CountVector
}

// Group is one cohort slice scored under its own profile. Police offerings
// produce one group per selective subject; PSAT offerings a single group.
type Group struct {
	Profile  *profile.Profile
	Students []*StudentRecord
}

// Pipeline runs the aggregation stages in order over an in-memory roster
// snapshot: score → rank → statistics → distributions. It never touches a
// data store; callers persist the changesets and aggregates afterwards.
// The pipeline profile governs aggregation; scoring runs per group.
type Pipeline struct {
	profile *profile.Profile
	log     zerolog.Logger

	ranker    *RankEngine
	tabulator *Tabulator
}

// NewPipeline creates a Pipeline for one exam offering. p is the aggregation
// profile (profile.ForStatistics on police offerings).
func NewPipeline(p *profile.Profile, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		profile:   p,
		log:       log.With().Str("component", "predict_pipeline").Logger(),
		ranker:    NewRankEngine(p),
		tabulator: NewTabulator(p),
	}
}

// Run executes the full recompute for a roster that shares one scoring
// profile.
func (p *Pipeline) Run(
	students []*StudentRecord, official AnswerKey, openedAt time.Time, departments []string,
) *Result {
	return p.RunGrouped(
		[]Group{{Profile: p.profile, Students: students}},
		official, openedAt, departments,
	)
}

// RunGrouped scores each group with its own profile, then ranks and
// aggregates the combined roster on the pipeline profile's field set.
func (p *Pipeline) RunGrouped(
	groups []Group, official AnswerKey, openedAt time.Time, departments []string,
) *Result {
	scored := &Changeset[*StudentRecord]{}
	var students []*StudentRecord

	for _, g := range groups {
		scorer := NewScorer(g.Profile, p.log)
		validSubjects := scorer.ValidateKey(official)
		for _, student := range g.Students {
			if scorer.ScoreStudent(student, official, validSubjects) {
				scored.Update(student)
			}
		}
		students = append(students, g.Students...)
	}

	sortedScores := p.ranker.Collect(students, openedAt, departments)
	ranked := p.ranker.Assign(students, sortedScores, openedAt)

	participants := ParticipantCounts(sortedScores)
	statistics := BuildStatistics(sortedScores)

	answerCounts := p.tabulator.TabulateAll(students)
	answerCountsByCategory := p.tabulator.TabulateByCategory(students, participants, openedAt)

	p.log.Info().
		Int("students", len(students)).
		Int("score_updates", scored.UpdateCount).
		Int("rank_updates", ranked.UpdateCount).
		Msg("pipeline run complete")

	return &Result{
		Scored:                 scored,
		Ranked:                 ranked,
		SortedScores:           sortedScores,
		Participants:           participants,
		Statistics:             statistics,
		AnswerCounts:           answerCounts,
		AnswerCountsByCategory: answerCountsByCategory,
	}
}
