package evaluation

import "math"

// PrecisionAtK calculates the fraction of relevant passages among the top k
// ranked candidates. relevances holds binary labels in rank order (index 0 is
// rank 1). If k exceeds the candidate count, it is clipped to it.
func PrecisionAtK(relevances []int, k int) float64 {
	if k > len(relevances) {
		k = len(relevances)
	}
	if k == 0 {
		return 0
	}

	relevant := 0
	for i := 0; i < k; i++ {
		if relevances[i] > 0 {
			relevant++
		}
	}

	return float64(relevant) / float64(k)
}

// DCGAtK calculates Discounted Cumulative Gain over the top k positions with
// binary gains: each relevant passage at rank r contributes 1/log2(r+1).
func DCGAtK(relevances []int, k int) float64 {
	if k > len(relevances) {
		k = len(relevances)
	}

	dcg := 0.0
	for i := 0; i < k; i++ {
		if relevances[i] > 0 {
			dcg += 1.0 / math.Log2(float64(i+2))
		}
	}

	return dcg
}

// IdealDCG calculates the DCG of a perfect ranking: all relevant passages
// packed into the top positions. With binary gains this only depends on how
// many relevant passages fit into the cutoff, min(relevant, k).
func IdealDCG(relevant, k int) float64 {
	if relevant > k {
		relevant = k
	}

	idcg := 0.0
	for i := 0; i < relevant; i++ {
		idcg += 1.0 / math.Log2(float64(i+2))
	}

	return idcg
}

// NDCGAtK calculates Normalized Discounted Cumulative Gain at k. A ranking
// that places every relevant passage ahead of every non-relevant one scores
// exactly 1.0. Returns (0, false) when the candidate set has no relevant
// passages, since NDCG is undefined there.
func NDCGAtK(relevances []int, k int) (float64, bool) {
	totalRelevant := 0
	for _, r := range relevances {
		if r > 0 {
			totalRelevant++
		}
	}
	if totalRelevant == 0 {
		return 0, false
	}

	idcg := IdealDCG(totalRelevant, k)
	if idcg == 0 {
		return 0, false
	}

	return DCGAtK(relevances, k) / idcg, true
}
