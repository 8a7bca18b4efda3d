package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liamcoop/healthrisk/internal/logger"
)

// Scaler applies a previously fit feature transform
type Scaler interface {
	// Transform maps a raw row to its scaled form
	Transform(row []float64) (ScaledVector, error)

	// Features returns the row width the scaler was fit on
	Features() int

	// Kind names the artifact format
	Kind() string
}

// Classifier applies a previously fit binary classifier
type Classifier interface {
	// Predict returns the class index for a scaled row
	Predict(x ScaledVector) (int, error)

	// Features returns the row width the classifier was fit on
	Features() int

	// Kind names the artifact format
	Kind() string
}

// Artifacts bundles the scaler and classifier loaded at startup.
// Both are read-only after load and safe to share between sessions.
type Artifacts struct {
	Scaler     Scaler
	Classifier Classifier
}

// artifactHeader is the common envelope of every artifact file
type artifactHeader struct {
	Kind    string `json:"kind"`
	Version string `json:"version,omitempty"`
}

// LoadArtifacts loads both artifacts and checks they agree on row width
func LoadArtifacts(scalerPath, modelPath string) (*Artifacts, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}

	classifier, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, err
	}

	if scaler.Features() != FeatureCount {
		return nil, fmt.Errorf("scaler %s was fit on %d features, expected %d", scalerPath, scaler.Features(), FeatureCount)
	}
	if classifier.Features() != scaler.Features() {
		return nil, fmt.Errorf("classifier %s expects %d features but scaler produces %d", modelPath, classifier.Features(), scaler.Features())
	}

	logger.Info("artifacts loaded",
		"scaler", scalerPath, "scalerKind", scaler.Kind(),
		"model", modelPath, "modelKind", classifier.Kind())

	return &Artifacts{Scaler: scaler, Classifier: classifier}, nil
}

// LoadScaler reads a scaler artifact from disk
func LoadScaler(path string) (Scaler, error) {
	data, header, err := readArtifact(path)
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	var scaler Scaler
	switch header.Kind {
	case "standard":
		scaler, err = decodeStandardScaler(data)
	case "minmax":
		scaler, err = decodeMinMaxScaler(data)
	default:
		err = fmt.Errorf("unknown scaler kind %q", header.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load scaler %s: %w", path, err)
	}

	return scaler, nil
}

// LoadClassifier reads a classifier artifact from disk
func LoadClassifier(path string) (Classifier, error) {
	data, header, err := readArtifact(path)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	var classifier Classifier
	switch header.Kind {
	case "logistic":
		classifier, err = decodeLogisticClassifier(data)
	case "cel":
		classifier, err = decodeCELClassifier(data)
	default:
		err = fmt.Errorf("unknown classifier kind %q", header.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load classifier %s: %w", path, err)
	}

	return classifier, nil
}

func readArtifact(path string) ([]byte, artifactHeader, error) {
	var header artifactHeader

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, header, fmt.Errorf("failed to read artifact: %w", err)
	}

	if err := json.Unmarshal(data, &header); err != nil {
		return nil, header, fmt.Errorf("invalid artifact %s: %w", path, err)
	}

	return data, header, nil
}
