package rag

import (
	"math"
	"sort"
)

// RetrievedPassage is a passage plus its cosine similarity to the query.
type RetrievedPassage struct {
	Passage
	Score float64
}

// Rank returns the topK passages of snap most similar to queryVec, best first.
// Equal scores keep corpus order. Snapshots and query vectors of different
// dimensionality score zero.
func Rank(snap *Snapshot, queryVec []float64, topK int) []RetrievedPassage {
	n := snap.Len()
	if topK <= 0 || n == 0 {
		return []RetrievedPassage{}
	}

	scores := scoreEntries(snap, queryVec)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	topK = min(topK, n)
	selected := make([]RetrievedPassage, topK)
	for rank, idx := range order[:topK] {
		selected[rank] = RetrievedPassage{Passage: snap.Passage(idx), Score: scores[idx]}
	}
	return selected
}

func scoreEntries(snap *Snapshot, queryVec []float64) []float64 {
	scores := make([]float64, snap.Len())
	queryNorm := vectorNorm(queryVec)
	for i, vec := range snap.embeddings {
		if len(vec) != len(queryVec) {
			continue
		}
		scores[i] = cosineSimilarity(queryVec, vec, queryNorm)
	}
	return scores
}

// cosineSimilarity is zero when either vector has zero norm.
func cosineSimilarity(a, b []float64, normA float64) float64 {
	if normA == 0 {
		return 0
	}
	normB := vectorNorm(b)
	if normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	sim := dot / (normA * normB)
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
