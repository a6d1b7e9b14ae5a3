package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/doseline/doseline/internal/repository"
	"github.com/doseline/doseline/pkg/models"
)

// PostgresAssessmentRepository implements AssessmentRepository for PostgreSQL
type PostgresAssessmentRepository struct {
	db *sql.DB
}

// NewPostgresAssessmentRepository creates a new PostgreSQL assessment repository
func NewPostgresAssessmentRepository(db *sql.DB) repository.AssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

// Create inserts a new assessment record
func (r *PostgresAssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	var result []byte
	if assessment.Result != nil {
		var err error
		result, err = json.Marshal(assessment.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	query := `
		INSERT INTO assessments (id, session_id, kind, payload, result, archive_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		assessment.ID,
		assessment.SessionID,
		assessment.Kind,
		string(assessment.Payload),
		nullableString(result),
		assessment.ArchiveKey,
		assessment.CreatedAt)

	return err
}

// GetByID retrieves an assessment by ID
func (r *PostgresAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	query := `
		SELECT id, session_id, kind, payload, result, archive_key, created_at
		FROM assessments
		WHERE id = $1`

	return scanAssessment(r.db.QueryRowContext(ctx, query, id))
}

// ListBySessionID retrieves assessments by session ID, newest first
func (r *PostgresAssessmentRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*models.Assessment, error) {
	query := `
		SELECT id, session_id, kind, payload, result, archive_key, created_at
		FROM assessments
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	return assessments, rows.Err()
}

// SetArchiveKey records the S3 key of the archived raw payload
func (r *PostgresAssessmentRepository) SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error {
	query := `
		UPDATE assessments
		SET archive_key = $1
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, key, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var assessment models.Assessment
	var payload string
	var result, archiveKey sql.NullString

	err := row.Scan(
		&assessment.ID,
		&assessment.SessionID,
		&assessment.Kind,
		&payload,
		&result,
		&archiveKey,
		&assessment.CreatedAt)
	if err != nil {
		return nil, err
	}

	assessment.Payload = json.RawMessage(payload)
	if result.Valid {
		var res models.Result
		if err := json.Unmarshal([]byte(result.String), &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		assessment.Result = &res
	}
	if archiveKey.Valid {
		assessment.ArchiveKey = &archiveKey.String
	}

	return &assessment, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
