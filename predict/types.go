package predict

import "fmt"

// FeatureCount is the number of raw indicators a PatientInput carries
const FeatureCount = 8

// FeatureNames lists the indicators in the positional order the scaler and
// classifier were fit on
var FeatureNames = [FeatureCount]string{
	"pregnancies",
	"glucose",
	"bloodPressure",
	"skinThickness",
	"insulin",
	"bmi",
	"diabetesPedigreeFunction",
	"age",
}

// PatientInput holds the eight health indicators collected by the form
type PatientInput struct {
	Pregnancies              int     `json:"pregnancies"`
	Glucose                  int     `json:"glucose"`
	BloodPressure            int     `json:"bloodPressure"`
	SkinThickness            int     `json:"skinThickness"`
	Insulin                  int     `json:"insulin"`
	BMI                      float64 `json:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetesPedigreeFunction"`
	Age                      int     `json:"age"`
}

// Vector returns the indicators as a single row in fit order
func (p PatientInput) Vector() []float64 {
	return []float64{
		float64(p.Pregnancies),
		float64(p.Glucose),
		float64(p.BloodPressure),
		float64(p.SkinThickness),
		float64(p.Insulin),
		p.BMI,
		p.DiabetesPedigreeFunction,
		float64(p.Age),
	}
}

// Validate rejects negative indicators
func (p PatientInput) Validate() error {
	for i, v := range p.Vector() {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", FeatureNames[i], v)
		}
	}
	return nil
}

// ScaledVector is the scaler output; same arity as the raw row
type ScaledVector []float64

// Label is the binary outcome of a prediction
type Label string

const (
	AtRisk  Label = "at_risk"
	Healthy Label = "healthy"
)

// Class indices produced by the classifier. The model was trained with the
// positive (diabetic) outcome encoded as 1.
const (
	ClassHealthy = 0
	ClassAtRisk  = 1
)

// ParseLabel converts a stored label string back into a Label
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case AtRisk:
		return AtRisk, nil
	case Healthy:
		return Healthy, nil
	default:
		return "", fmt.Errorf("unknown label %q", s)
	}
}

// LabelForClass maps a raw class index to a Label
func LabelForClass(class int) (Label, error) {
	switch class {
	case ClassAtRisk:
		return AtRisk, nil
	case ClassHealthy:
		return Healthy, nil
	default:
		return "", &PredictionError{Reason: fmt.Sprintf("unexpected class index %d", class)}
	}
}

func (l Label) String() string {
	return string(l)
}

// TransformError is returned when the scaler cannot transform a row
type TransformError struct {
	Expected int
	Got      int
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform: scaler expects %d features, got %d", e.Expected, e.Got)
}

// PredictionError is returned when the classifier cannot produce a class
type PredictionError struct {
	Reason string
	Err    error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("predict: %s: %v", e.Reason, e.Err)
	}
	return "predict: " + e.Reason
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
