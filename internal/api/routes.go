package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/doseline/doseline/internal/api/handlers"
	"github.com/doseline/doseline/internal/assessing"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, svc assessing.AssessmentService) {
	// Initialize handlers
	assessmentHandler := handlers.NewAssessmentHandler(svc)

	// Register assessment routes
	huma.Register(api, huma.Operation{
		OperationID: "createVibrationAssessment",
		Method:      http.MethodPost,
		Path:        "/api/assessments/vibration",
		Summary:     "Assess vibration exposure",
		Description: "Computes the daily vibration exposure A(8) for a measurement session, classifies it against regulatory thresholds and stores the assessment",
		Tags:        []string{"Assessments"},
	}, assessmentHandler.CreateVibrationAssessment)

	huma.Register(api, huma.Operation{
		OperationID: "createNoiseAssessment",
		Method:      http.MethodPost,
		Path:        "/api/assessments/noise",
		Summary:     "Assess noise exposure",
		Description: "Computes the daily noise exposure level LEX,8h and noise dose for a measurement session, classifies them and stores the assessment",
		Tags:        []string{"Assessments"},
	}, assessmentHandler.CreateNoiseAssessment)

	huma.Register(api, huma.Operation{
		OperationID: "getAssessment",
		Method:      http.MethodGet,
		Path:        "/api/assessments/{id}",
		Summary:     "Get assessment",
		Description: "Returns a stored exposure assessment",
		Tags:        []string{"Assessments"},
	}, assessmentHandler.GetAssessment)

	huma.Register(api, huma.Operation{
		OperationID: "listAssessments",
		Method:      http.MethodGet,
		Path:        "/api/assessments",
		Summary:     "List assessments",
		Description: "Returns the stored assessments of one client session, newest first",
		Tags:        []string{"Assessments"},
	}, assessmentHandler.ListAssessments)

	huma.Register(api, huma.Operation{
		OperationID: "getAssessmentArchive",
		Method:      http.MethodGet,
		Path:        "/api/assessments/{id}/archive",
		Summary:     "Get archived payload URL",
		Description: "Returns a pre-signed download URL for the archived raw measurement payload",
		Tags:        []string{"Assessments"},
	}, assessmentHandler.GetArchiveURL)
}
