// Package model provides the serving-side handle for the pre-trained job
// role classifier. The training pipeline exports a JSON artifact carrying
// the ordered class labels, the feature schema the model was fitted
// against, and multinomial logistic regression coefficients. Loading is
// tolerant: any artifact problem leaves the service running without a
// model rather than crashing it.
package model

// Handle is the read-only capability the prediction service needs from a
// loaded model. Implementations must be safe for concurrent use; the
// serving path never mutates a handle after startup.
type Handle interface {
	// Classes returns the ordered class labels. The probability vector
	// returned by PredictProba is aligned with this order.
	Classes() []string

	// PredictProba returns one probability per class for the given
	// feature vector, or an error if the vector does not match the
	// trained feature width.
	PredictProba(features []float64) ([]float64, error)
}

// Schema describes the feature columns the model was trained on. The
// vectorizer must reproduce exactly this column order.
type Schema struct {
	SkillVocabulary  []string `json:"skill_vocabulary"`
	Qualifications   []string `json:"qualifications"`
	ExperienceLevels []string `json:"experience_levels"`
}

// Width returns the trained feature vector width: one binary column per
// vocabulary skill, one-hot qualification, one-hot experience level, and
// a trailing normalized skill-count column.
func (s Schema) Width() int {
	return len(s.SkillVocabulary) + len(s.Qualifications) + len(s.ExperienceLevels) + 1
}
