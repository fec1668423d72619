package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// SupportedSchemaVersion is the artifact format this build can serve.
// The exporter bumps it on incompatible layout changes.
const SupportedSchemaVersion = 1

// Artifact is a loaded model artifact: a multinomial logistic regression
// over the schema's feature columns. It implements Handle.
type Artifact struct {
	version       string
	schemaVersion int
	trainedAt     time.Time
	classes       []string
	schema        Schema
	weights       [][]float64
	intercepts    []float64
}

type artifactFile struct {
	Version       string      `json:"version"`
	SchemaVersion int         `json:"schema_version"`
	TrainedAt     time.Time   `json:"trained_at"`
	Classes       []string    `json:"classes"`
	Schema        Schema      `json:"schema"`
	Weights       [][]float64 `json:"weights"`
	Intercepts    []float64   `json:"intercepts"`
}

// Load reads and validates a model artifact from path. Every failure mode
// (missing file, corrupt JSON, schema/shape mismatch) is returned as an
// error so the caller can fall back to serving without a model.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if file.SchemaVersion != SupportedSchemaVersion {
		return nil, fmt.Errorf("unsupported artifact schema version %d (want %d)",
			file.SchemaVersion, SupportedSchemaVersion)
	}
	if len(file.Classes) < 2 {
		return nil, fmt.Errorf("artifact must carry at least 2 classes, got %d", len(file.Classes))
	}
	width := file.Schema.Width()
	if width <= 1 {
		return nil, fmt.Errorf("artifact feature schema is empty")
	}
	if len(file.Weights) != len(file.Classes) {
		return nil, fmt.Errorf("weight rows (%d) do not match classes (%d)",
			len(file.Weights), len(file.Classes))
	}
	if len(file.Intercepts) != len(file.Classes) {
		return nil, fmt.Errorf("intercepts (%d) do not match classes (%d)",
			len(file.Intercepts), len(file.Classes))
	}
	for i, row := range file.Weights {
		if len(row) != width {
			return nil, fmt.Errorf("weight row %d has width %d, schema expects %d",
				i, len(row), width)
		}
	}

	a := &Artifact{
		version:       file.Version,
		schemaVersion: file.SchemaVersion,
		trainedAt:     file.TrainedAt,
		classes:       file.Classes,
		schema:        file.Schema,
		weights:       file.Weights,
		intercepts:    file.Intercepts,
	}

	log.Info().
		Str("model_path", path).
		Str("version", a.version).
		Int("classes", len(a.classes)).
		Int("feature_width", width).
		Msg("model artifact loaded")

	return a, nil
}

// Classes returns the ordered class labels. Callers must not mutate the
// returned slice.
func (a *Artifact) Classes() []string {
	return a.classes
}

// Schema returns the feature schema the artifact was trained on.
func (a *Artifact) Schema() Schema {
	return a.schema
}

// Version returns the exporter-assigned artifact version string.
func (a *Artifact) Version() string {
	return a.version
}

// TrainedAt returns the training timestamp recorded in the artifact.
func (a *Artifact) TrainedAt() time.Time {
	return a.trainedAt
}

// PredictProba computes softmax(Wx + b) over the class rows.
func (a *Artifact) PredictProba(features []float64) ([]float64, error) {
	width := a.schema.Width()
	if len(features) != width {
		return nil, fmt.Errorf("expected %d features, got %d", width, len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("feature %d is not finite: %f", i, f)
		}
	}

	logits := make([]float64, len(a.classes))
	maxLogit := math.Inf(-1)
	for c, row := range a.weights {
		sum := a.intercepts[c]
		for i, w := range row {
			sum += w * features[i]
		}
		logits[c] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}

	// Shift by the max logit so exp never overflows.
	var total float64
	proba := make([]float64, len(logits))
	for c, l := range logits {
		e := math.Exp(l - maxLogit)
		proba[c] = e
		total += e
	}
	for c := range proba {
		proba[c] /= total
	}

	return proba, nil
}
