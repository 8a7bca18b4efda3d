// Package form describes the eight-field patient input form: field order,
// labels, defaults and minimum bounds, and turns submitted values into a
// predict.PatientInput.
package form

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/liamcoop/healthrisk/predict"
)

// Field describes one numeric control on the form
type Field struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit,omitempty"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Integer bool    `json:"integer"`
	Step    float64 `json:"step"`
}

// Fields lists the controls in the order the model expects them
var Fields = []Field{
	{Name: "pregnancies", Label: "Pregnancies", Default: 1, Integer: true, Step: 1},
	{Name: "glucose", Label: "Glucose Level", Default: 120, Integer: true, Step: 1},
	{Name: "bloodPressure", Label: "Blood Pressure", Unit: "mm Hg", Default: 70, Integer: true, Step: 1},
	{Name: "skinThickness", Label: "Skin Thickness", Unit: "mm", Default: 20, Integer: true, Step: 1},
	{Name: "insulin", Label: "Insulin Level", Unit: "mu U/ml", Default: 80, Integer: true, Step: 1},
	{Name: "bmi", Label: "BMI", Default: 25.0, Step: 0.01},
	{Name: "diabetesPedigreeFunction", Label: "Diabetes Pedigree Function", Default: 0.5, Step: 0.01},
	{Name: "age", Label: "Age", Default: 30, Integer: true, Step: 1},
}

// ValidationError reports a submitted value the form cannot accept
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Defaults returns the input the form shows before any submission
func Defaults() predict.PatientInput {
	in, _ := FromVector(defaultVector())
	return in
}

func defaultVector() []float64 {
	v := make([]float64, len(Fields))
	for i, f := range Fields {
		v[i] = f.Default
	}
	return v
}

// Parse builds a PatientInput from submitted form values.
// Missing or blank fields take their default.
func Parse(values url.Values) (predict.PatientInput, error) {
	vec := defaultVector()

	for i, f := range Fields {
		raw := strings.TrimSpace(values.Get(f.Name))
		if raw == "" {
			continue
		}

		v, err := f.parse(raw)
		if err != nil {
			return predict.PatientInput{}, err
		}
		vec[i] = v
	}

	return FromVector(vec)
}

// FromMap builds a PatientInput from decoded JSON values keyed by field name.
// Missing fields take their default; unknown names are rejected.
func FromMap(values map[string]float64) (predict.PatientInput, error) {
	vec := defaultVector()

	index := make(map[string]int, len(Fields))
	for i, f := range Fields {
		index[f.Name] = i
	}

	for name, v := range values {
		i, ok := index[name]
		if !ok {
			return predict.PatientInput{}, &ValidationError{Field: name, Value: strconv.FormatFloat(v, 'g', -1, 64), Reason: "unknown field"}
		}
		if err := Fields[i].Check(v, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return predict.PatientInput{}, err
		}
		vec[i] = v
	}

	return FromVector(vec)
}

func (f Field) parse(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "not a number"}
	}
	return v, f.Check(v, raw)
}

// MaxInteger bounds integer fields so they convert to int without overflow
const MaxInteger = math.MaxInt32

// Check enforces the field's bounds and integrality
func (f Field) Check(v float64, raw string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: f.Name, Value: raw, Reason: "not a number"}
	}
	if v < f.Min {
		return &ValidationError{Field: f.Name, Value: raw, Reason: fmt.Sprintf("must be >= %v", f.Min)}
	}
	if f.Integer && v > MaxInteger {
		return &ValidationError{Field: f.Name, Value: raw, Reason: fmt.Sprintf("must be <= %d", MaxInteger)}
	}
	if f.Integer && v != math.Trunc(v) {
		return &ValidationError{Field: f.Name, Value: raw, Reason: "must be a whole number"}
	}
	return nil
}

// Validate checks an already decoded input against every field's bound
func Validate(in predict.PatientInput) error {
	for i, v := range in.Vector() {
		f := Fields[i]
		if err := f.Check(v, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

// FromVector assembles a PatientInput from a row in field order
func FromVector(v []float64) (predict.PatientInput, error) {
	if len(v) != len(Fields) {
		return predict.PatientInput{}, fmt.Errorf("expected %d values, got %d", len(Fields), len(v))
	}

	return predict.PatientInput{
		Pregnancies:              int(v[0]),
		Glucose:                  int(v[1]),
		BloodPressure:            int(v[2]),
		SkinThickness:            int(v[3]),
		Insulin:                  int(v[4]),
		BMI:                      v[5],
		DiabetesPedigreeFunction: v[6],
		Age:                      int(v[7]),
	}, nil
}

// Values renders an input back into form values, e.g. to refill the form
func Values(in predict.PatientInput) url.Values {
	out := url.Values{}
	for i, v := range in.Vector() {
		f := Fields[i]
		if f.Integer {
			out.Set(f.Name, strconv.FormatInt(int64(v), 10))
		} else {
			out.Set(f.Name, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}
