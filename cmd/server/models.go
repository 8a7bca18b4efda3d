package main

import (
	"github.com/liamcoop/healthrisk/advice"
	"github.com/liamcoop/healthrisk/form"
	"github.com/liamcoop/healthrisk/predict"
)

// API request and response models

// PredictRequest carries the form values keyed by field name.
// Omitted or null fields take the form defaults.
type PredictRequest map[string]*float64 // @name PredictRequest

// Values drops null entries so they fall back to defaults
func (p PredictRequest) Values() map[string]float64 {
	out := make(map[string]float64, len(p))
	for name, v := range p {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

// PredictResponse is returned by POST /api/v1/predict
type PredictResponse struct {
	Label   predict.Label        `json:"label" example:"healthy"`
	Message string               `json:"message"`
	Input   predict.PatientInput `json:"input"`
} // @name PredictResponse

// FormResponse describes the input form
type FormResponse struct {
	Fields []form.Field `json:"fields"`
} // @name FormResponse

// AdviceResponse wraps the rendered precautions page
type AdviceResponse struct {
	advice.Page
} // @name AdviceResponse

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string           `json:"status" example:"healthy"`
	Scaler       string           `json:"scaler" example:"standard"`
	Classifier   string           `json:"classifier" example:"logistic"`
	SessionStore string           `json:"sessionStore" example:"memory"`
	Counters     map[string]int64 `json:"counters"`
	Error        string           `json:"error,omitempty"`
} // @name HealthResponse

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid input"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse
