package models

// PriorityWeights tunes how the four sub-scores combine into the final
// priority score. Weights are applied as-is; they are not required to sum
// to one and no normalization is performed.
type PriorityWeights struct {
	Urgency      float64 `json:"urgency"`
	Importance   float64 `json:"importance"`
	Effort       float64 `json:"effort"`
	Dependencies float64 `json:"dependencies"`
}

// DefaultPriorityWeights returns the stock weighting.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{
		Urgency:      0.4,
		Importance:   0.3,
		Effort:       0.2,
		Dependencies: 0.1,
	}
}
