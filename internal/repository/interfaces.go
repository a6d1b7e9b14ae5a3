package repository

import (
	"context"

	"github.com/doseline/doseline/pkg/models"
	"github.com/google/uuid"
)

// AssessmentRepository defines the interface for assessment data operations
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]*models.Assessment, error)
	SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error
}
