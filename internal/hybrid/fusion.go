// Package hybrid implements the hybrid search coordinator (spec §4.7): fans
// a query out to text and vector backends, then fuses the two rankings
// with RRF or a weighted sum.
package hybrid

import "sort"

// Ranked is one input ranking's view of a document: its rank (1-based) and
// raw score within that ranking.
type Ranked struct {
	ID    string
	Rank  int
	Score float64
}

// FusedDoc is one document in the fused output.
type FusedDoc struct {
	ID    string
	Score float64
}

// DefaultRRFK is the rrf_k default when a query doesn't override it (spec
// §4.7: "defaulting to RRF with k = rrf_k ?? 60").
const DefaultRRFK = 60

// RRF combines rankings by reciprocal rank fusion (spec §4.7, P4, scenario
// 2): for each input ranking, add 1/(k+rank) to each document's fused
// score; sum across inputs; sort descending; truncate to limit.
func RRF(k int, limit int, rankings ...[]Ranked) []FusedDoc {
	if k <= 0 {
		k = DefaultRRFK
	}
	scores := make(map[string]float64)
	order := make([]string, 0)
	for _, ranking := range rankings {
		for _, r := range ranking {
			if _, seen := scores[r.ID]; !seen {
				order = append(order, r.ID)
			}
			scores[r.ID] += 1.0 / float64(k+r.Rank)
		}
	}

	out := make([]FusedDoc, 0, len(order))
	for _, id := range order {
		out = append(out, FusedDoc{ID: id, Score: scores[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WeightedSum combines two rankings by min-max normalizing each by its own
// max score, then fused = textWeight*tNorm + vectorWeight*vNorm (spec
// §4.7). Documents present in only one ranking are treated as having a
// normalized score of 0 in the other.
func WeightedSum(limit int, textWeight, vectorWeight float64, text, vector []Ranked) []FusedDoc {
	textMax := maxScore(text)
	vectorMax := maxScore(vector)

	scores := make(map[string]float64)
	order := make([]string, 0)
	addTo := func(id string) {
		if _, seen := scores[id]; !seen {
			order = append(order, id)
			scores[id] = 0
		}
	}

	for _, r := range text {
		addTo(r.ID)
		norm := 0.0
		if textMax > 0 {
			norm = r.Score / textMax
		}
		scores[r.ID] += textWeight * norm
	}
	for _, r := range vector {
		addTo(r.ID)
		norm := 0.0
		if vectorMax > 0 {
			norm = r.Score / vectorMax
		}
		scores[r.ID] += vectorWeight * norm
	}

	out := make([]FusedDoc, 0, len(order))
	for _, id := range order {
		out = append(out, FusedDoc{ID: id, Score: scores[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func maxScore(ranking []Ranked) float64 {
	max := 0.0
	for _, r := range ranking {
		if r.Score > max {
			max = r.Score
		}
	}
	return max
}
