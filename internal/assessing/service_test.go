package assessing

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/doseline/doseline/internal/repository/postgres"
	"github.com/doseline/doseline/internal/storage"
	"github.com/doseline/doseline/pkg/exposure"
	"github.com/doseline/doseline/pkg/models"
)

// MockAssessmentRepository implements repository.AssessmentRepository for testing
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*models.Assessment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// MockArchiveService implements storage.ArchiveService for testing
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Store(ctx context.Context, key string, payload []byte) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

func (m *MockArchiveService) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testDefaults() Defaults {
	return Defaults{ReferenceHours: 8, ExchangeRateDB: 3, CriterionLevelDB: 85}
}

func TestAssessVibration_StoresResult(t *testing.T) {
	rms := 5.0
	in := &models.VibrationAssessmentBody{
		SessionID: "test-session-123",
		Kind:      "hand_arm",
		Periods: []models.VibrationPeriodInput{
			{Name: "grinder", Hours: 4, Axes: []models.AxisInput{{Axis: "z", RMS: &rms}}},
		},
	}

	mockRepo := &MockAssessmentRepository{}
	mockArchive := &MockArchiveService{}
	mockArchive.On("Store", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Assessment")).Return(nil)

	svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
	assessment, err := svc.AssessVibration(context.Background(), in)

	require.NoError(t, err)
	require.NotNil(t, assessment.Result)
	assert.Equal(t, "hand_arm", assessment.Kind)
	assert.InDelta(t, 3.5355, assessment.Result.Value, 0.001)
	assert.Equal(t, "m/s²", assessment.Result.Unit)
	assert.Equal(t, "above action value", assessment.Result.Category)
	assert.True(t, assessment.Result.ExceedsAction)
	assert.False(t, assessment.Result.ExceedsLimit)
	require.NotNil(t, assessment.ArchiveKey)
	assert.True(t, strings.HasPrefix(*assessment.ArchiveKey, "assessments/"))

	mockRepo.AssertExpectations(t)
	mockArchive.AssertExpectations(t)
}

func TestAssessVibration_ArchiveFailureTolerated(t *testing.T) {
	rms := 1.0
	in := &models.VibrationAssessmentBody{
		SessionID: "test-session-123",
		Kind:      "hand_arm",
		Periods: []models.VibrationPeriodInput{
			{Hours: 8, Axes: []models.AxisInput{{Axis: "x", RMS: &rms}}},
		},
	}

	mockRepo := &MockAssessmentRepository{}
	mockArchive := &MockArchiveService{}
	mockArchive.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	// Archive failure must not block storage: the assessment is persisted
	// without an archive key.
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Assessment) bool {
		return a.ArchiveKey == nil
	})).Return(nil)

	svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
	assessment, err := svc.AssessVibration(context.Background(), in)

	require.NoError(t, err)
	assert.Nil(t, assessment.ArchiveKey)
	assert.Equal(t, "below action value", assessment.Result.Category)

	mockRepo.AssertExpectations(t)
	mockArchive.AssertExpectations(t)
}

func TestAssessVibration_InvalidInputNotStored(t *testing.T) {
	in := &models.VibrationAssessmentBody{
		SessionID: "test-session-123",
		Kind:      "hand_arm",
		Periods:   []models.VibrationPeriodInput{},
	}

	mockRepo := &MockAssessmentRepository{}
	mockArchive := &MockArchiveService{}

	svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
	_, err := svc.AssessVibration(context.Background(), in)

	require.Error(t, err)
	var de *exposure.DomainError
	assert.ErrorAs(t, err, &de)
	mockRepo.AssertNotCalled(t, "Create")
	mockArchive.AssertNotCalled(t, "Store")
}

func TestAssessNoise_AppliesDefaults(t *testing.T) {
	level := 85.0
	in := &models.NoiseAssessmentBody{
		SessionID: "test-session-123",
		Periods:   []models.NoisePeriodInput{{Hours: 8, Level: &level}},
	}

	mockRepo := &MockAssessmentRepository{}
	mockArchive := &MockArchiveService{}
	mockArchive.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
	assessment, err := svc.AssessNoise(context.Background(), in)

	require.NoError(t, err)
	require.NotNil(t, assessment.Result)
	assert.Equal(t, "noise", assessment.Kind)
	assert.InDelta(t, 85.0, assessment.Result.Value, 1e-9)
	assert.Equal(t, "dB(A)", assessment.Result.Unit)
	// Eight hours at the criterion level is exactly one full dose
	require.NotNil(t, assessment.Result.DosePercent)
	assert.InDelta(t, 100.0, *assessment.Result.DosePercent, 1e-6)
	assert.Equal(t, "above upper action value", assessment.Result.Category)
	assert.True(t, assessment.Result.ExceedsAction)
	assert.False(t, assessment.Result.ExceedsLimit)

	mockRepo.AssertExpectations(t)
	mockArchive.AssertExpectations(t)
}

func TestAssessNoise_CustomThresholds(t *testing.T) {
	level := 75.0
	in := &models.NoiseAssessmentBody{
		SessionID: "test-session-123",
		Periods:   []models.NoisePeriodInput{{Hours: 8, Level: &level}},
		Thresholds: []models.ThresholdInput{
			{Label: "elevated", Value: 70},
			{Label: "critical", Value: 90},
		},
	}

	mockRepo := &MockAssessmentRepository{}
	mockArchive := &MockArchiveService{}
	mockArchive.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
	assessment, err := svc.AssessNoise(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "elevated", assessment.Result.Category)
	assert.InDelta(t, 5.0, assessment.Result.Margin, 1e-9)
}

func TestArchiveDownloadURL(t *testing.T) {
	t.Run("archived", func(t *testing.T) {
		mockRepo := &MockAssessmentRepository{}
		mockArchive := &MockArchiveService{}
		id := uuid.New()
		key := "assessments/" + id.String() + ".json"
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Assessment{ID: id.String(), ArchiveKey: &key}, nil)
		mockArchive.On("GenerateDownloadURL", mock.Anything, key).Return("https://example.com/signed", nil)

		svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
		url, err := svc.ArchiveDownloadURL(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/signed", url)
	})

	t.Run("no archive key", func(t *testing.T) {
		mockRepo := &MockAssessmentRepository{}
		mockArchive := &MockArchiveService{}
		id := uuid.New()
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.Assessment{ID: id.String()}, nil)

		svc := NewAssessmentService(mockRepo, mockArchive, testDefaults())
		_, err := svc.ArchiveDownloadURL(context.Background(), id)

		assert.ErrorIs(t, err, ErrNoArchive)
		mockArchive.AssertNotCalled(t, "GenerateDownloadURL")
	})
}

// TestContainer holds test infrastructure
type TestContainer struct {
	postgresContainer testcontainers.Container
	minioContainer    testcontainers.Container
	dbURL             string
	minioURL          string
	bucketName        string
}

// SetupIntegrationTest sets up PostgreSQL and MinIO containers for integration testing
func SetupIntegrationTest(t *testing.T) *TestContainer {
	t.Helper()

	ctx := context.Background()

	pg, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("doseline_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dbURL, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	minioContainer, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)

	minioURL, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	bucketName := "doseline-test-" + uuid.New().String()[:8]
	require.NoError(t, createArchiveBucket(ctx, minioURL, bucketName))

	return &TestContainer{
		postgresContainer: pg,
		minioContainer:    minioContainer,
		dbURL:             dbURL,
		minioURL:          minioURL,
		bucketName:        bucketName,
	}
}

// CleanupIntegrationTest cleans up test containers
func (tc *TestContainer) CleanupIntegrationTest(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tc.minioContainer != nil {
		require.NoError(t, tc.minioContainer.Terminate(ctx))
	}
	if tc.postgresContainer != nil {
		require.NoError(t, tc.postgresContainer.Terminate(ctx))
	}
}

// createArchiveBucket creates the archive bucket in MinIO for testing
func createArchiveBucket(ctx context.Context, minioURL, bucketName string) error {
	endpoint := "http://" + minioURL
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", "")),
	)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = &endpoint
		o.UsePathStyle = true
	})
	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)})
	return err
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	ddl, err := os.ReadFile("../../migrations/000001_create_assessments.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(ddl))
	require.NoError(t, err)
}

// TestAssessmentLifecycle_Integration runs both assessment kinds against real
// PostgreSQL and MinIO backends and verifies persistence and archival.
func TestAssessmentLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := SetupIntegrationTest(t)
	defer tc.CleanupIntegrationTest(t)

	ctx := context.Background()

	db, err := sql.Open("postgres", tc.dbURL)
	require.NoError(t, err)
	defer db.Close()

	runMigrations(t, db)

	repo := postgres.NewPostgresAssessmentRepository(db)

	archive, err := storage.NewArchiveService(storage.ArchiveConfig{
		Bucket:    tc.bucketName,
		Endpoint:  tc.minioURL,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	svc := NewAssessmentService(repo, archive, testDefaults())

	sessionID := "integration-" + uuid.New().String()[:8]

	// Vibration: 5.0 m/s² on the dominant axis over half a shift
	rms := 5.0
	vib, err := svc.AssessVibration(ctx, &models.VibrationAssessmentBody{
		SessionID: sessionID,
		Kind:      "hand_arm",
		Periods: []models.VibrationPeriodInput{
			{Name: "grinder", Hours: 4, Axes: []models.AxisInput{{Axis: "z", RMS: &rms}}},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, vib.ArchiveKey, "archive upload should succeed against MinIO")

	// Noise: two equal half-shift periods
	l1, l2 := 85.0, 90.0
	noise, err := svc.AssessNoise(ctx, &models.NoiseAssessmentBody{
		SessionID: sessionID,
		Periods: []models.NoisePeriodInput{
			{Name: "press", Hours: 4, Level: &l1},
			{Name: "saw", Hours: 4, Level: &l2},
		},
	})
	require.NoError(t, err)

	// Round-trip the vibration assessment through the repository
	stored, err := repo.GetByID(ctx, uuid.MustParse(vib.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.Result)
	assert.InDelta(t, 3.5355, stored.Result.Value, 0.001)
	assert.Equal(t, "above action value", stored.Result.Category)
	assert.Equal(t, sessionID, stored.SessionID)
	require.NotNil(t, stored.ArchiveKey)
	assert.Equal(t, *vib.ArchiveKey, *stored.ArchiveKey)

	// Round-trip the noise assessment
	storedNoise, err := repo.GetByID(ctx, uuid.MustParse(noise.ID))
	require.NoError(t, err)
	require.NotNil(t, storedNoise.Result)
	assert.InDelta(t, 88.19, storedNoise.Result.Value, 0.05)
	require.NotNil(t, storedNoise.Result.DosePercent)
	assert.Greater(t, *storedNoise.Result.DosePercent, 100.0)

	// Listing returns both assessments of the session
	list, err := svc.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := map[string]bool{list[0].ID: true, list[1].ID: true}
	assert.True(t, ids[vib.ID])
	assert.True(t, ids[noise.ID])

	// The archived payload is downloadable via a pre-signed URL
	url, err := svc.ArchiveDownloadURL(ctx, uuid.MustParse(vib.ID))
	require.NoError(t, err)
	assert.Contains(t, url, tc.bucketName)
	assert.Contains(t, url, *vib.ArchiveKey)
}
