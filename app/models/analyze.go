package models

// AnalyzeRequest is the payload for a batch scoring pass. Weights are
// optional; when omitted the service defaults apply.
type AnalyzeRequest struct {
	Tasks   []Task           `json:"tasks" validate:"required,min=1,dive"`
	Weights *PriorityWeights `json:"weights,omitempty"`
}

// AnalyzeResponse returns the scored tasks sorted by priority, highest
// first. Strategy is "custom" when the request supplied its own weights,
// "default" otherwise; Weights echoes the effective custom weights.
type AnalyzeResponse struct {
	Tasks    []Task           `json:"tasks"`
	Strategy string           `json:"strategy"`
	Weights  *PriorityWeights `json:"weights,omitempty"`
}
