package ml

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"
)

// Vector is a sparse term-weight vector: token -> non-negative weight. A
// normalized vector has unit L2 norm or is empty.
type Vector map[string]float64

// WeightedVector pairs a vector with its contribution weight for merging.
type WeightedVector struct {
	Vector Vector
	Weight float64
}

// ScoredItem is one ranked entry: item ID plus cosine relevance.
type ScoredItem struct {
	ID    string
	Score float64
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize splits text into lowercase word tokens. Unicode letters and
// digits are kept, everything else separates tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := norm.NFC.String(text)
	return tokenRe.FindAllString(strings.ToLower(cleaned), -1)
}

// BuildItemVectors computes a TF-IDF vector per corpus document along with
// the IDF table used to build them. Document frequency counts each token
// once per document; IDF is smoothed so every known token weighs at least 1:
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// Each document vector is L2-normalized and keeps only non-zero weights.
func BuildItemVectors(corpus map[string]string) (map[string]Vector, map[string]float64) {
	tokenized := make(map[string][]string, len(corpus))
	for id, text := range corpus {
		tokenized[id] = Tokenize(text)
	}

	df := make(map[string]int)
	for _, tokens := range tokenized {
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	docCount := len(tokenized)
	idf := make(map[string]float64, len(df))
	for token, count := range df {
		idf[token] = math.Log(float64(1+docCount)/float64(1+count)) + 1.0
	}

	vectors := make(map[string]Vector, len(tokenized))
	for id, tokens := range tokenized {
		vectors[id] = Normalize(tfidf(tokens, idf))
	}
	return vectors, idf
}

// VectorizeText builds a normalized TF-IDF vector for free text against a
// prebuilt IDF table, so queries don't require a corpus rebuild. Tokens
// missing from the table contribute nothing.
func VectorizeText(text string, idf map[string]float64) Vector {
	return Normalize(tfidf(Tokenize(text), idf))
}

func tfidf(tokens []string, idf map[string]float64) Vector {
	if len(tokens) == 0 {
		return Vector{}
	}
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	total := float64(len(tokens))
	vec := make(Vector, len(counts))
	for token, freq := range counts {
		if weight := float64(freq) / total * idf[token]; weight != 0 {
			vec[token] = weight
		}
	}
	return vec
}

// MergeVectors combines vectors as a weighted linear sum. The result is not
// renormalized; that is the caller's call.
func MergeVectors(parts []WeightedVector) Vector {
	merged := Vector{}
	for _, part := range parts {
		if len(part.Vector) == 0 || part.Weight == 0 {
			continue
		}
		for token, value := range part.Vector {
			merged[token] += value * part.Weight
		}
	}
	return merged
}

// Normalize scales a vector to unit L2 norm. Zero-magnitude input yields an
// empty vector, never a division by zero.
func Normalize(v Vector) Vector {
	if len(v) == 0 {
		return Vector{}
	}

	values := make([]float64, 0, len(v))
	for _, value := range v {
		values = append(values, value)
	}
	n := floats.Norm(values, 2)
	if n == 0 {
		return Vector{}
	}

	normalized := make(Vector, len(v))
	for token, value := range v {
		if value != 0 {
			normalized[token] = value / n
		}
	}
	return normalized
}

// CosineSimilarity is the dot product of two sparse vectors, iterating the
// smaller one. For unit-normalized non-negative vectors the result is in
// [0, 1]; an empty vector on either side yields 0.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	var score float64
	for token, value := range a {
		score += value * b[token]
	}
	return score
}

// RankItems scores every item vector against the user vector and returns the
// positively scored ones, best first. Items in exclude are skipped. The walk
// follows order and the sort is stable, so equal scores keep catalog order
// and the result is deterministic for a fixed matrix. topK <= 0 means no
// cap.
func RankItems(user Vector, vectors map[string]Vector, order []string, exclude map[string]struct{}, topK int) []ScoredItem {
	if len(user) == 0 {
		return nil
	}

	scored := make([]ScoredItem, 0, len(order))
	for _, id := range order {
		if _, skip := exclude[id]; skip {
			continue
		}
		vec, ok := vectors[id]
		if !ok {
			continue
		}
		if score := CosineSimilarity(user, vec); score > 0 {
			scored = append(scored, ScoredItem{ID: id, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
