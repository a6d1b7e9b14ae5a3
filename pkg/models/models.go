package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// BandInput is one measured frequency band
type BandInput struct {
	Frequency float64 `json:"frequency" required:"true" doc:"Band center frequency in Hz"`
	Magnitude float64 `json:"magnitude" required:"true" doc:"Measured magnitude (acceleration in m/s² or sound pressure level in dB)"`
}

// ThresholdInput is one custom classification boundary
type ThresholdInput struct {
	Label string  `json:"label" required:"true" maxLength:"100" doc:"Risk band label"`
	Value float64 `json:"value" required:"true" doc:"Boundary value"`
}

// AxisInput is the measurement of one spatial axis within a period.
// Exactly one of rms and spectrum must be provided.
type AxisInput struct {
	Axis     string      `json:"axis" enum:"x,y,z" required:"true" doc:"Spatial axis"`
	RMS      *float64    `json:"rms,omitempty" doc:"Pre-weighted broadband RMS acceleration in m/s²"`
	Spectrum []BandInput `json:"spectrum,omitempty" doc:"Unweighted third-octave band accelerations"`
}

// VibrationPeriodInput is one task/machine exposure period
type VibrationPeriodInput struct {
	Name  string      `json:"name,omitempty" maxLength:"100" doc:"Task or machine name"`
	Hours float64     `json:"hours" required:"true" minimum:"0" doc:"Exposure duration in hours"`
	Axes  []AxisInput `json:"axes" required:"true" doc:"Axis measurements for this period"`
}

// VibrationAssessmentBody is the payload for a vibration exposure assessment
type VibrationAssessmentBody struct {
	SessionID          string                 `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	Kind               string                 `json:"kind" enum:"hand_arm,whole_body" required:"true" doc:"Vibration exposure model"`
	ReferenceHours     *float64               `json:"reference_hours,omitempty" doc:"Reference period in hours, default 8"`
	Periods            []VibrationPeriodInput `json:"periods" required:"true" doc:"Exposure periods of the shift"`
	Thresholds         []ThresholdInput       `json:"thresholds,omitempty" doc:"Custom classification boundaries; defaults to the regulatory set for the kind"`
	ThresholdBaseLabel string                 `json:"threshold_base_label,omitempty" maxLength:"100" doc:"Label for values below the lowest custom boundary"`
}

// CreateVibrationAssessmentRequest represents a request to assess vibration exposure
type CreateVibrationAssessmentRequest struct {
	Body VibrationAssessmentBody
}

// NoisePeriodInput is one task exposure period.
// Exactly one of level and spectrum must be provided.
type NoisePeriodInput struct {
	Name     string      `json:"name,omitempty" maxLength:"100" doc:"Task name"`
	Hours    float64     `json:"hours" required:"true" minimum:"0" doc:"Exposure duration in hours"`
	Level    *float64    `json:"level,omitempty" doc:"A-weighted equivalent level LAeq,T in dB(A)"`
	Spectrum []BandInput `json:"spectrum,omitempty" doc:"Unweighted octave-band sound pressure levels in dB"`
}

// NoiseAssessmentBody is the payload for a noise exposure assessment
type NoiseAssessmentBody struct {
	SessionID          string             `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	ReferenceHours     *float64           `json:"reference_hours,omitempty" doc:"Reference period in hours, default 8"`
	ExchangeRateDB     *float64           `json:"exchange_rate_db,omitempty" doc:"Dose exchange rate in dB, default 3"`
	CriterionLevelDB   *float64           `json:"criterion_level_db,omitempty" doc:"Dose criterion level in dB(A), default 85"`
	Periods            []NoisePeriodInput `json:"periods" required:"true" doc:"Exposure periods of the shift"`
	Thresholds         []ThresholdInput   `json:"thresholds,omitempty" doc:"Custom classification boundaries; defaults to the regulatory noise set"`
	ThresholdBaseLabel string             `json:"threshold_base_label,omitempty" maxLength:"100" doc:"Label for values below the lowest custom boundary"`
}

// CreateNoiseAssessmentRequest represents a request to assess noise exposure
type CreateNoiseAssessmentRequest struct {
	Body NoiseAssessmentBody
}

// AssessmentResponseBody is the stored assessment returned to clients
type AssessmentResponseBody struct {
	ID        string    `json:"id" doc:"Assessment unique identifier"`
	SessionID string    `json:"session_id" doc:"Client session identifier"`
	Kind      string    `json:"kind" enum:"hand_arm,whole_body,noise" doc:"Assessment kind"`
	Result    Result    `json:"result" doc:"Computed exposure result"`
	CreatedAt time.Time `json:"created_at" doc:"Assessment creation timestamp"`
}

// AssessmentResponse wraps a single assessment
type AssessmentResponse struct {
	Body AssessmentResponseBody
}

// GetAssessmentRequest represents a request to fetch an assessment
type GetAssessmentRequest struct {
	ID string `path:"id" doc:"Assessment ID"`
}

// ListAssessmentsRequest represents a request to list assessments by session
type ListAssessmentsRequest struct {
	SessionID string `query:"session_id" required:"true" doc:"Client session identifier"`
}

// ListAssessmentsResponse wraps the assessments of one session
type ListAssessmentsResponse struct {
	Body struct {
		Assessments []AssessmentResponseBody `json:"assessments" doc:"Assessments ordered newest first"`
	}
}

// GetArchiveURLRequest represents a request for the archived raw payload
type GetArchiveURLRequest struct {
	ID string `path:"id" doc:"Assessment ID"`
}

// GetArchiveURLResponse carries a pre-signed download URL for auditors
type GetArchiveURLResponse struct {
	Body struct {
		URL       string `json:"url" doc:"Pre-signed download URL"`
		ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
	}
}
