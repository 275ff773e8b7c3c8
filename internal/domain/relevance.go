package domain

// FileRelevance is the agent's verdict on one log file. Ordering of a
// []FileRelevance reflects estimated relevance, not directory order.
type FileRelevance struct {
	File   string  `json:"file"`
	Reason string  `json:"reason"`
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
}
