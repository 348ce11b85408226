package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/repository"
	appErrors "github.com/brightwood-school/bwps-api/pkg/errors"
)

type mockAdmissionRepo struct {
	apps        map[string]models.AdmissionApplication
	byNumber    map[string]string
	createFails []error
	createCalls int
	seq         int
}

func (m *mockAdmissionRepo) CreateWithNumber(ctx context.Context, app *models.AdmissionApplication, prefix string) error {
	m.createCalls++
	if len(m.createFails) > 0 {
		err := m.createFails[0]
		m.createFails = m.createFails[1:]
		if err != nil {
			return err
		}
	}
	m.seq++
	app.ID = fmt.Sprintf("app-%d", m.seq)
	app.ApplicationNumber = fmt.Sprintf("%s2025%04d", prefix, m.seq)
	if m.apps == nil {
		m.apps = make(map[string]models.AdmissionApplication)
		m.byNumber = make(map[string]string)
	}
	m.apps[app.ID] = *app
	m.byNumber[app.ApplicationNumber] = app.ID
	return nil
}

func (m *mockAdmissionRepo) GetByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	if app, ok := m.apps[id]; ok {
		return &app, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdmissionRepo) GetByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error) {
	if id, ok := m.byNumber[number]; ok {
		return m.GetByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdmissionRepo) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error) {
	var out []models.AdmissionApplication
	for _, app := range m.apps {
		out = append(out, app)
	}
	return out, len(out), nil
}

func (m *mockAdmissionRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks *string, reviewedBy string) (*models.AdmissionApplication, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	app.Status = status
	app.Remarks = remarks
	app.ReviewedBy = &reviewedBy
	m.apps[id] = app
	return &app, nil
}

func (m *mockAdmissionRepo) BulkUpdateStatus(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string) (int64, error) {
	var updated int64
	for _, id := range ids {
		if app, ok := m.apps[id]; ok {
			app.Status = status
			m.apps[id] = app
			updated++
		}
	}
	return updated, nil
}

func (m *mockAdmissionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.apps[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.apps, id)
	return nil
}

func (m *mockAdmissionRepo) Stats(ctx context.Context, academicYear string) (*models.AdmissionStats, error) {
	return &models.AdmissionStats{Total: len(m.apps)}, nil
}

func numberCollision() error {
	return &pq.Error{Code: "23505", Constraint: repository.ConstraintApplicationNumber}
}

func aadharCollision() error {
	return &pq.Error{Code: "23505", Constraint: repository.ConstraintAadharNumber}
}

func validCreateRequest() models.CreateApplicationRequest {
	return models.CreateApplicationRequest{
		StudentFirstName: "Aarav",
		StudentLastName:  "Sharma",
		DateOfBirth:      "2018-04-12",
		Gender:           models.GenderMale,
		Nationality:      "Indian",
		Category:         models.CategoryGeneral,
		ClassApplyingFor: "1",
		AcademicYear:     "2025-26",
		FatherName:       "Rohit Sharma",
		FatherPhone:      "9876543210",
		MotherName:       "Priya Sharma",
		CurrentAddress:   "12 Lake Road",
		CurrentCity:      "Pune",
		CurrentState:     "Maharashtra",
		CurrentPincode:   "411001",
		PermanentAddress: "12 Lake Road",
		PermanentCity:    "Pune",
		PermanentState:   "Maharashtra",
		PermanentPincode: "411001",
	}
}

func newAdmissionService(repo *mockAdmissionRepo) *AdmissionService {
	return NewAdmissionService(repo, nil, NewValidator(), zap.NewNop(), "BW", 3)
}

func TestAdmissionServiceCreateAssignsNumber(t *testing.T) {
	repo := &mockAdmissionRepo{}
	svc := newAdmissionService(repo)

	app, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "BW20250001", app.ApplicationNumber)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, 1, repo.createCalls)
}

func TestAdmissionServiceCreateRetriesNumberCollision(t *testing.T) {
	repo := &mockAdmissionRepo{createFails: []error{numberCollision(), numberCollision()}}
	svc := newAdmissionService(repo)

	app, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.createCalls)
	assert.NotEmpty(t, app.ApplicationNumber)
}

func TestAdmissionServiceCreateGivesUpAfterRetries(t *testing.T) {
	repo := &mockAdmissionRepo{createFails: []error{numberCollision(), numberCollision(), numberCollision()}}
	svc := newAdmissionService(repo)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, 3, repo.createCalls)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAdmissionServiceCreateDuplicateAadharNoRetry(t *testing.T) {
	repo := &mockAdmissionRepo{createFails: []error{aadharCollision()}}
	svc := newAdmissionService(repo)

	req := validCreateRequest()
	aadhar := "123456789012"
	req.AadharNumber = &aadhar

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1, repo.createCalls)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "An application with this Aadhar number already exists", appErr.Message)
}

func TestAdmissionServiceCreateValidation(t *testing.T) {
	repo := &mockAdmissionRepo{}
	svc := newAdmissionService(repo)

	req := validCreateRequest()
	req.FatherPhone = "1234567890"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.createCalls)
}

func TestAdmissionServiceCreateRejectsBadAcademicYear(t *testing.T) {
	repo := &mockAdmissionRepo{}
	svc := newAdmissionService(repo)

	req := validCreateRequest()
	req.AcademicYear = "2025/26"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Zero(t, repo.createCalls)
}

func TestAdmissionServiceGetByNumber(t *testing.T) {
	repo := &mockAdmissionRepo{}
	svc := newAdmissionService(repo)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	found, err := svc.GetByNumber(context.Background(), created.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByNumber(context.Background(), "BW20259999")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdmissionServiceUpdateStatusStampsReviewer(t *testing.T) {
	repo := &mockAdmissionRepo{}
	svc := newAdmissionService(repo)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	remarks := "documents verified"
	updated, err := svc.UpdateStatus(context.Background(), created.ID, models.UpdateApplicationStatusRequest{
		Status:  models.StatusApproved,
		Remarks: &remarks,
	}, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, "adm-1", *updated.ReviewedBy)
}
