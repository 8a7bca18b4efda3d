package predict

import "fmt"

// Pipeline runs a PatientInput through the scaler and classifier.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	scaler     Scaler
	classifier Classifier
}

// NewPipeline creates a pipeline over already loaded artifacts
func NewPipeline(scaler Scaler, classifier Classifier) *Pipeline {
	return &Pipeline{
		scaler:     scaler,
		classifier: classifier,
	}
}

// NewPipelineFromArtifacts is a convenience wrapper over NewPipeline
func NewPipelineFromArtifacts(a *Artifacts) *Pipeline {
	return NewPipeline(a.Scaler, a.Classifier)
}

// Predict returns exactly one label for a valid input
func (p *Pipeline) Predict(input PatientInput) (Label, error) {
	if err := input.Validate(); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	return p.PredictRow(input.Vector())
}

// PredictRow runs a raw row that is already in fit order
func (p *Pipeline) PredictRow(row []float64) (Label, error) {
	scaled, err := p.scaler.Transform(row)
	if err != nil {
		return "", err
	}

	class, err := p.classifier.Predict(scaled)
	if err != nil {
		return "", err
	}

	return LabelForClass(class)
}

// ScalerKind reports the loaded scaler's format
func (p *Pipeline) ScalerKind() string {
	return p.scaler.Kind()
}

// ClassifierKind reports the loaded classifier's format
func (p *Pipeline) ClassifierKind() string {
	return p.classifier.Kind()
}
