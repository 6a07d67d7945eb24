package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/liamcoop/salarypredict/analytics"
	"github.com/liamcoop/salarypredict/features"
	"github.com/liamcoop/salarypredict/internal/logger"
)

// looseString accepts any JSON value. Strings and numbers keep their text;
// anything else reads as empty, which the encoder treats as 0 years.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(n.String())
	return nil
}

// PredictRequest is the body of POST /api/v1/predict
type PredictRequest struct {
	Model      string      `json:"model" example:"Random Forest"`
	Country    string      `json:"country" example:"Germany"`
	EdLevel    string      `json:"edlevel" example:"Master's degree"`
	Employment string      `json:"employment" example:"Full-time"`
	Experience looseString `json:"experience" example:"5"`
}

// Selection converts the request into encoder input
func (r PredictRequest) Selection() features.Selection {
	return features.Selection{
		YearsExperience: string(r.Experience),
		Country:         r.Country,
		EducationLevel:  r.EdLevel,
		EmploymentType:  r.Employment,
	}
}

// PredictResponse is a single prediction
type PredictResponse struct {
	ID         string             `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Prediction float64            `json:"prediction" example:"85000.5"`
	Formatted  string             `json:"formatted" example:"85,000.50"`
	Model      string             `json:"model" example:"Random Forest"`
	Inputs     features.Selection `json:"inputs"`
}

// OptionsResponse lists the values the prediction form offers
type OptionsResponse struct {
	Countries   []string       `json:"countries"`
	Educations  []string       `json:"educations"`
	Employments []string       `json:"employments"`
	Models      []string       `json:"models"`
	Defaults    PredictRequest `json:"defaults"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status" example:"healthy"`
	Predictors   int    `json:"predictors" example:"3"`
	Observations int    `json:"observations" example:"12000"`
	Error        string `json:"error,omitempty"`
}

// SummaryResponse describes the dataset value column
type SummaryResponse struct {
	Column string `json:"column" example:"ConvertedCompYearly"`
	analytics.Summary
}

// MetricsResponse exposes the logger counters
type MetricsResponse struct {
	logger.Stats
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"unknown model"`
	Details string `json:"details,omitempty" example:"predictor \"Neural Net\" not found"`
}

// parseLimit reads an optional non-negative integer query value
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
