package assessing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/doseline/doseline/internal/repository"
	"github.com/doseline/doseline/internal/storage"
	"github.com/doseline/doseline/pkg/exposure"
	"github.com/doseline/doseline/pkg/models"
)

// ErrNoArchive is returned when an assessment has no archived raw payload.
var ErrNoArchive = errors.New("assessment has no archived payload")

// Defaults carries the jurisdiction-specific engine parameters the service
// applies when a request does not override them.
type Defaults struct {
	ReferenceHours   float64
	ExchangeRateDB   float64
	CriterionLevelDB float64
}

// AssessmentService runs exposure computations and persists the outcomes
type AssessmentService interface {
	AssessVibration(ctx context.Context, in *models.VibrationAssessmentBody) (*models.Assessment, error)
	AssessNoise(ctx context.Context, in *models.NoiseAssessmentBody) (*models.Assessment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Assessment, error)
	ArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}

type assessmentService struct {
	repo     repository.AssessmentRepository
	archive  storage.ArchiveService
	defaults Defaults
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(repo repository.AssessmentRepository, archive storage.ArchiveService, defaults Defaults) AssessmentService {
	return &assessmentService{
		repo:     repo,
		archive:  archive,
		defaults: defaults,
	}
}

// AssessVibration computes a vibration exposure assessment and persists it
func (s *assessmentService) AssessVibration(ctx context.Context, in *models.VibrationAssessmentBody) (*models.Assessment, error) {
	session, err := vibrationSession(in)
	if err != nil {
		return nil, err
	}

	opts, err := s.commonOptions(in.ReferenceHours, in.Thresholds, in.ThresholdBaseLabel)
	if err != nil {
		return nil, err
	}

	res, err := exposure.ComputeVibrationExposure(session, opts...)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		Value:         res.A8,
		Unit:          res.Unit,
		Category:      res.Category,
		Margin:        res.Margin,
		ExceedsAction: res.ExceedsAction,
		ExceedsLimit:  res.ExceedsLimit,
		Summary:       res.Summary,
	}

	return s.store(ctx, in.SessionID, in.Kind, in, result)
}

// AssessNoise computes a noise exposure assessment and persists it
func (s *assessmentService) AssessNoise(ctx context.Context, in *models.NoiseAssessmentBody) (*models.Assessment, error) {
	session, err := noiseSession(in)
	if err != nil {
		return nil, err
	}

	opts, err := s.commonOptions(in.ReferenceHours, in.Thresholds, in.ThresholdBaseLabel)
	if err != nil {
		return nil, err
	}
	if in.ExchangeRateDB != nil {
		opts = append(opts, exposure.WithExchangeRate(*in.ExchangeRateDB))
	} else {
		opts = append(opts, exposure.WithExchangeRate(s.defaults.ExchangeRateDB))
	}
	if in.CriterionLevelDB != nil {
		opts = append(opts, exposure.WithCriterionLevel(*in.CriterionLevelDB))
	} else {
		opts = append(opts, exposure.WithCriterionLevel(s.defaults.CriterionLevelDB))
	}

	res, err := exposure.ComputeNoiseExposure(session, opts...)
	if err != nil {
		return nil, err
	}

	dose := res.DosePercent
	result := &models.Result{
		Value:         res.LEX8h,
		Unit:          res.Unit,
		Category:      res.Category,
		Margin:        res.Margin,
		DosePercent:   &dose,
		ExceedsAction: res.ExceedsLowerAction,
		ExceedsLimit:  res.ExceedsLimit,
		Summary:       res.Summary,
	}

	return s.store(ctx, in.SessionID, "noise", in, result)
}

// Get retrieves a stored assessment
func (s *assessmentService) Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListBySession retrieves the assessments of one client session
func (s *assessmentService) ListBySession(ctx context.Context, sessionID string) ([]*models.Assessment, error) {
	return s.repo.ListBySessionID(ctx, sessionID)
}

// ArchiveDownloadURL returns a pre-signed URL for the archived raw payload
func (s *assessmentService) ArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if assessment.ArchiveKey == nil {
		return "", ErrNoArchive
	}
	return s.archive.GenerateDownloadURL(ctx, *assessment.ArchiveKey)
}

// store archives the raw payload and persists the assessment. Archive
// unavailability must not block an assessment: the result is still stored,
// just without an audit copy.
func (s *assessmentService) store(ctx context.Context, sessionID, kind string, payload any, result *models.Result) (*models.Assessment, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	id := uuid.New()
	assessment := &models.Assessment{
		ID:        id.String(),
		SessionID: sessionID,
		Kind:      kind,
		Payload:   raw,
		Result:    result,
		CreatedAt: time.Now(),
	}

	archiveKey := fmt.Sprintf("assessments/%s.json", id)
	if err := s.archive.Store(ctx, archiveKey, raw); err != nil {
		log.Warn().Err(err).Str("assessmentID", id.String()).Msg("Failed to archive raw payload")
	} else {
		assessment.ArchiveKey = &archiveKey
	}

	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to store assessment: %w", err)
	}

	log.Info().
		Str("assessmentID", id.String()).
		Str("kind", kind).
		Float64("value", result.Value).
		Str("category", result.Category).
		Msg("Assessment stored")

	return assessment, nil
}

func (s *assessmentService) commonOptions(referenceHours *float64, thresholds []models.ThresholdInput, baseLabel string) ([]exposure.Option, error) {
	opts := []exposure.Option{exposure.WithReferenceHours(s.defaults.ReferenceHours)}
	if referenceHours != nil {
		opts[0] = exposure.WithReferenceHours(*referenceHours)
	}

	if len(thresholds) > 0 {
		steps := make([]exposure.Threshold, len(thresholds))
		for i, t := range thresholds {
			steps[i] = exposure.Threshold{Label: t.Label, Value: t.Value}
		}
		if baseLabel == "" {
			baseLabel = "below " + steps[0].Label
		}
		th, err := exposure.NewThresholds(baseLabel, steps...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, exposure.WithThresholds(th))
	}

	return opts, nil
}

func vibrationSession(in *models.VibrationAssessmentBody) (exposure.VibrationSession, error) {
	kind, err := exposure.ParseVibrationKind(in.Kind)
	if err != nil {
		return exposure.VibrationSession{}, err
	}

	session := exposure.VibrationSession{
		Kind:    kind,
		Periods: make([]exposure.VibrationPeriod, len(in.Periods)),
	}
	for i, p := range in.Periods {
		period := exposure.VibrationPeriod{
			Name:  p.Name,
			Hours: p.Hours,
			Axes:  make([]exposure.AxisMeasurement, len(p.Axes)),
		}
		for j, a := range p.Axes {
			axis, err := exposure.ParseAxis(a.Axis)
			if err != nil {
				return exposure.VibrationSession{}, err
			}
			period.Axes[j] = exposure.AxisMeasurement{
				Axis:     axis,
				RMS:      a.RMS,
				Spectrum: bands(a.Spectrum),
			}
		}
		session.Periods[i] = period
	}
	return session, nil
}

func noiseSession(in *models.NoiseAssessmentBody) (exposure.NoiseSession, error) {
	session := exposure.NoiseSession{
		Periods: make([]exposure.NoisePeriod, len(in.Periods)),
	}
	for i, p := range in.Periods {
		session.Periods[i] = exposure.NoisePeriod{
			Name:     p.Name,
			Hours:    p.Hours,
			Level:    p.Level,
			Spectrum: bands(p.Spectrum),
		}
	}
	return session, nil
}

func bands(in []models.BandInput) []exposure.FrequencyBand {
	if len(in) == 0 {
		return nil
	}
	out := make([]exposure.FrequencyBand, len(in))
	for i, b := range in {
		out[i] = exposure.FrequencyBand{Frequency: b.Frequency, Magnitude: b.Magnitude}
	}
	return out
}
