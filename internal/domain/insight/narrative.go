package insight

import "github.com/okian/churnboard/internal/domain/predict"

// Narrative is a fixed summary paragraph.
type Narrative struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

var churnNarrative = Narrative{
	Title: "Summary for Churned Employees",
	Points: []string{
		"Churned employees often have a combination of low satisfaction levels and high last evaluations.",
		"Overworking, represented by higher monthly hours and higher project loads, is often associated with churn.",
		"The XGBoost classifier effectively identifies churn patterns based on these factors and helps predict which employees are at risk of leaving.",
	},
}

var retentionNarrative = Narrative{
	Title: "Summary for Non-Churned Employees",
	Points: []string{
		"Non-churned employees typically have higher satisfaction levels and moderate last evaluation scores.",
		"These employees manage a reasonable number of projects and maintain a balanced workload.",
		"The XGBoost classifier correctly identifies these patterns to predict employees who are less likely to leave the company.",
	},
}

// NarrativeFor picks the summary for label. Only the label decides.
func NarrativeFor(label predict.Label) Narrative {
	n := retentionNarrative
	if label == predict.Churned {
		n = churnNarrative
	}
	n.Points = append([]string(nil), n.Points...)
	return n
}
