// Package alg implements the similarity measures used by semantic matching.
package alg

import (
	"hash/fnv"
	"math"
)

// TermFrequency calculates the relative frequency of each token.
func TermFrequency(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		tf[token]++
	}
	for token := range tf {
		tf[token] /= float64(len(tokens))
	}
	return tf
}

// HashVector folds a term-frequency map into a dense vector of the given
// dimension using the FNV-1a hash of each term, the hashing trick.
// Returns nil for dims <= 0.
func HashVector(tf map[string]float64, dims int) []float32 {
	if dims <= 0 {
		return nil
	}

	vec := make([]float32, dims)
	for term, weight := range tf {
		h := fnv.New32a()
		h.Write([]byte(term))
		vec[h.Sum32()%uint32(dims)] += float32(weight)
	}
	return vec
}

// CosineSimilarity calculates the cosine similarity of two vectors.
// The result is in [-1, 1], and 0 when either vector has zero magnitude
// or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	dotProduct := 0.0
	magnitude1 := 0.0
	magnitude2 := 0.0

	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		magnitude1 += x * x
		magnitude2 += y * y
	}

	if magnitude1 == 0 || magnitude2 == 0 {
		return 0
	}

	sim := dotProduct / (math.Sqrt(magnitude1) * math.Sqrt(magnitude2))
	return max(-1, min(1, sim))
}

// MapCosineSimilarity calculates the cosine similarity between two sparse
// term-frequency maps.
func MapCosineSimilarity(tf1, tf2 map[string]float64) float64 {
	dotProduct := 0.0
	magnitude1 := 0.0
	magnitude2 := 0.0

	for term, score1 := range tf1 {
		if score2, exists := tf2[term]; exists {
			dotProduct += score1 * score2
		}
		magnitude1 += score1 * score1
	}
	for _, score2 := range tf2 {
		magnitude2 += score2 * score2
	}

	if magnitude1 == 0 || magnitude2 == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(magnitude1) * math.Sqrt(magnitude2))
}
