package predict

// Summarize computes the summary cell for one descending-sorted score list.
// t10/t20 are the scores of the max(1, floor(n*0.1/0.2))-th ranked student.
// An empty list yields the zero summary, never an error.
func Summarize(sorted []float64) Summary {
	n := len(sorted)
	if n == 0 {
		return Summary{}
	}

	top10 := max(1, n/10)
	top20 := max(1, n/5)

	sum := 0.0
	for _, s := range sorted {
		sum += s
	}

	return Summary{
		Max: round1(sorted[0]),
		T10: round1(sorted[top10-1]),
		T20: round1(sorted[top20-1]),
		Avg: round1(sum / float64(n)),
	}
}

// BuildStatistics summarizes every bucket/scope/field slice of the sorted
// score lists produced by the rank engine. The same sort is reused, not
// recomputed.
func BuildStatistics(scores SortedScores) Statistics {
	stats := make(Statistics, len(scores))
	for bucket, byScope := range scores {
		stats[bucket] = make(map[string]map[string]Summary, len(byScope))
		for scope, byField := range byScope {
			stats[bucket][scope] = make(map[string]Summary, len(byField))
			for field, list := range byField {
				stats[bucket][scope][field] = Summarize(list)
			}
		}
	}
	return stats
}
