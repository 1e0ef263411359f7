package entity

// EvalReport holds the held-out metrics of a trained run. Fake is the
// positive class throughout.
type EvalReport struct {
	TestCount      int     `json:"test_count"`
	Threshold      float64 `json:"threshold"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	AUC            float64 `json:"auc"`
	TruePositives  int     `json:"true_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
}
