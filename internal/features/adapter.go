// Package features turns raw candidate records into the fixed-width
// numeric vectors the role classifier consumes. The column layout is
// dictated entirely by the model artifact's schema so that serving-time
// vectors line up with training-time columns.
package features

import (
	"fmt"
	"strings"

	"roleserve/internal/model"
)

// CandidateProfile is one raw inference input record.
type CandidateProfile struct {
	Skills          string `json:"skills"`
	Qualification   string `json:"qualification"`
	ExperienceLevel string `json:"experience_level"`
}

// Adapter maps a validated candidate record to a feature vector matching
// the column order the model was trained on.
type Adapter interface {
	Vectorize(p CandidateProfile) ([]float64, error)
}

// Vectorizer is the schema-driven Adapter implementation. It is pure and
// deterministic; concurrent use needs no synchronization.
type Vectorizer struct {
	schema     model.Schema
	vocabIndex map[string]int
	qualIndex  map[string]int
	levelIndex map[string]int
}

// NewVectorizer builds a vectorizer for the given trained schema.
func NewVectorizer(schema model.Schema) (*Vectorizer, error) {
	if schema.Width() <= 1 {
		return nil, fmt.Errorf("feature schema is empty")
	}

	v := &Vectorizer{
		schema:     schema,
		vocabIndex: make(map[string]int, len(schema.SkillVocabulary)),
		qualIndex:  make(map[string]int, len(schema.Qualifications)),
		levelIndex: make(map[string]int, len(schema.ExperienceLevels)),
	}
	for i, s := range schema.SkillVocabulary {
		v.vocabIndex[normalizeToken(s)] = i
	}
	for i, q := range schema.Qualifications {
		v.qualIndex[normalizeToken(q)] = i
	}
	for i, l := range schema.ExperienceLevels {
		v.levelIndex[normalizeToken(l)] = i
	}

	return v, nil
}

// Vectorize produces the feature vector for one profile. Unseen
// categorical values map to all-zero one-hot groups rather than failing;
// schema drift in upstream values must not break the request path.
func (v *Vectorizer) Vectorize(p CandidateProfile) ([]float64, error) {
	width := v.schema.Width()
	vec := make([]float64, width)

	tokens := SkillTokens(p.Skills)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no skill tokens in %q", p.Skills)
	}
	for _, tok := range tokens {
		if i, ok := v.vocabIndex[tok]; ok {
			vec[i] = 1
		}
	}

	qualOffset := len(v.schema.SkillVocabulary)
	if i, ok := v.qualIndex[normalizeToken(p.Qualification)]; ok {
		vec[qualOffset+i] = 1
	}

	levelOffset := qualOffset + len(v.schema.Qualifications)
	if i, ok := v.levelIndex[normalizeToken(p.ExperienceLevel)]; ok {
		vec[levelOffset+i] = 1
	}

	// Trailing column: skill count scaled into [0,1] against the vocabulary.
	vec[width-1] = float64(len(tokens)) / float64(len(v.schema.SkillVocabulary)+1)

	return vec, nil
}

// SkillTokens splits a free-text skills field into normalized tokens.
// Splitting is on commas and semicolons, matching the training exporter.
func SkillTokens(skills string) []string {
	raw := strings.FieldsFunc(skills, func(r rune) bool {
		return r == ',' || r == ';'
	})

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if tok := normalizeToken(t); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
