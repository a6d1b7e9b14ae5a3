package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/doseline/doseline/internal/assessing"
	"github.com/doseline/doseline/internal/storage"
	"github.com/doseline/doseline/pkg/exposure"
	"github.com/doseline/doseline/pkg/models"
)

// AssessmentHandler handles assessment-related HTTP requests
type AssessmentHandler struct {
	svc assessing.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(svc assessing.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{svc: svc}
}

// CreateVibrationAssessment computes and stores a vibration exposure assessment
func (h *AssessmentHandler) CreateVibrationAssessment(ctx context.Context, req *models.CreateVibrationAssessmentRequest) (*models.AssessmentResponse, error) {
	log.Info().
		Str("sessionID", req.Body.SessionID).
		Str("kind", req.Body.Kind).
		Int("periods", len(req.Body.Periods)).
		Msg("Vibration assessment requested")

	assessment, err := h.svc.AssessVibration(ctx, &req.Body)
	if err != nil {
		return nil, mapEngineError(err)
	}

	return &models.AssessmentResponse{Body: assessment.ResponseBody()}, nil
}

// CreateNoiseAssessment computes and stores a noise exposure assessment
func (h *AssessmentHandler) CreateNoiseAssessment(ctx context.Context, req *models.CreateNoiseAssessmentRequest) (*models.AssessmentResponse, error) {
	log.Info().
		Str("sessionID", req.Body.SessionID).
		Int("periods", len(req.Body.Periods)).
		Msg("Noise assessment requested")

	assessment, err := h.svc.AssessNoise(ctx, &req.Body)
	if err != nil {
		return nil, mapEngineError(err)
	}

	return &models.AssessmentResponse{Body: assessment.ResponseBody()}, nil
}

// GetAssessment returns a stored assessment
func (h *AssessmentHandler) GetAssessment(ctx context.Context, req *models.GetAssessmentRequest) (*models.AssessmentResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid assessment ID", err)
	}

	assessment, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, huma.Error404NotFound("Assessment not found", err)
	}

	return &models.AssessmentResponse{Body: assessment.ResponseBody()}, nil
}

// ListAssessments returns the assessments of one client session
func (h *AssessmentHandler) ListAssessments(ctx context.Context, req *models.ListAssessmentsRequest) (*models.ListAssessmentsResponse, error) {
	assessments, err := h.svc.ListBySession(ctx, req.SessionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list assessments", err)
	}

	resp := &models.ListAssessmentsResponse{}
	resp.Body.Assessments = make([]models.AssessmentResponseBody, len(assessments))
	for i, a := range assessments {
		resp.Body.Assessments[i] = a.ResponseBody()
	}
	return resp, nil
}

// GetArchiveURL returns a pre-signed download URL for the archived raw payload
func (h *AssessmentHandler) GetArchiveURL(ctx context.Context, req *models.GetArchiveURLRequest) (*models.GetArchiveURLResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid assessment ID", err)
	}

	url, err := h.svc.ArchiveDownloadURL(ctx, id)
	if err != nil {
		if errors.Is(err, assessing.ErrNoArchive) {
			return nil, huma.Error404NotFound("No archived payload for this assessment", err)
		}
		return nil, huma.Error404NotFound("Assessment not found", err)
	}

	resp := &models.GetArchiveURLResponse{}
	resp.Body.URL = url
	resp.Body.ExpiresIn = int(storage.DownloadURLExpiry.Seconds())
	return resp, nil
}

// mapEngineError translates engine error types to HTTP responses: invalid
// measurement input is the caller's defect (422), configuration problems
// such as an unknown curve are a bad request (400).
func mapEngineError(err error) error {
	var de *exposure.DomainError
	if errors.As(err, &de) {
		return huma.Error422UnprocessableEntity("Invalid measurement input", err)
	}
	var ce *exposure.ConfigurationError
	if errors.As(err, &ce) {
		return huma.Error400BadRequest("Invalid exposure configuration", err)
	}
	return huma.Error500InternalServerError("Failed to compute assessment", err)
}
