package predict

import (
	"encoding/json"
	"fmt"
)

// StandardScaler centres each feature on its training mean and divides by
// its training standard deviation
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func decodeStandardScaler(data []byte) (*StandardScaler, error) {
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid standard scaler: %w", err)
	}
	if len(s.Mean) == 0 {
		return nil, fmt.Errorf("standard scaler has no features")
	}
	if len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("standard scaler has %d means but %d scales", len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// Transform applies (x - mean) / scale to each feature.
// A zero scale marks a constant training column and is treated as 1.
func (s *StandardScaler) Transform(row []float64) (ScaledVector, error) {
	if len(row) != len(s.Mean) {
		return nil, &TransformError{Expected: len(s.Mean), Got: len(row)}
	}

	out := make(ScaledVector, len(row))
	for i, v := range row {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// Features returns the number of features the scaler was fit on
func (s *StandardScaler) Features() int {
	return len(s.Mean)
}

func (s *StandardScaler) Kind() string {
	return "standard"
}

// MinMaxScaler maps each feature into the range it was fit on:
// x*scale + min
type MinMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func decodeMinMaxScaler(data []byte) (*MinMaxScaler, error) {
	var s MinMaxScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid minmax scaler: %w", err)
	}
	if len(s.Min) == 0 {
		return nil, fmt.Errorf("minmax scaler has no features")
	}
	if len(s.Min) != len(s.Scale) {
		return nil, fmt.Errorf("minmax scaler has %d offsets but %d scales", len(s.Min), len(s.Scale))
	}
	return &s, nil
}

// Transform applies x*scale + min to each feature
func (s *MinMaxScaler) Transform(row []float64) (ScaledVector, error) {
	if len(row) != len(s.Min) {
		return nil, &TransformError{Expected: len(s.Min), Got: len(row)}
	}

	out := make(ScaledVector, len(row))
	for i, v := range row {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

func (s *MinMaxScaler) Features() int {
	return len(s.Min)
}

func (s *MinMaxScaler) Kind() string {
	return "minmax"
}
