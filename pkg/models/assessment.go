package models

import (
	"encoding/json"
	"time"
)

// Result is the computed exposure outcome persisted with an assessment:
// the normalized value (A(8) in m/s² or LEX,8h in dB(A)), the risk category
// and signed margin to the matched boundary, and, for noise, the dose.
type Result struct {
	Value         float64  `json:"value" doc:"Normalized exposure value"`
	Unit          string   `json:"unit" doc:"Unit of the normalized value"`
	Category      string   `json:"category" doc:"Assigned risk category"`
	Margin        float64  `json:"margin" doc:"Signed margin to the matched threshold"`
	DosePercent   *float64 `json:"dose_percent,omitempty" doc:"Noise dose percentage (noise only)"`
	ExceedsAction bool     `json:"exceeds_action" doc:"Value meets or exceeds the (lowest) action value"`
	ExceedsLimit  bool     `json:"exceeds_limit" doc:"Value meets or exceeds the limit value"`
	Summary       string   `json:"summary" doc:"Human-readable assessment summary"`
}

// Assessment represents the core assessment entity (for internal use)
type Assessment struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	Kind       string          `json:"kind"` // hand_arm, whole_body or noise
	Payload    json.RawMessage `json:"payload"`
	Result     *Result         `json:"result,omitempty"`
	ArchiveKey *string         `json:"archive_key,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ResponseBody converts the entity to its API representation.
func (a *Assessment) ResponseBody() AssessmentResponseBody {
	body := AssessmentResponseBody{
		ID:        a.ID,
		SessionID: a.SessionID,
		Kind:      a.Kind,
		CreatedAt: a.CreatedAt,
	}
	if a.Result != nil {
		body.Result = *a.Result
	}
	return body
}
