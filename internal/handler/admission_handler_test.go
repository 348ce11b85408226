package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/middleware"
	"github.com/brightwood-school/bwps-api/internal/models"
	"github.com/brightwood-school/bwps-api/internal/service"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

type admissionRepoMock struct {
	apps map[string]models.AdmissionApplication
	seq  int
}

func (m *admissionRepoMock) CreateWithNumber(ctx context.Context, app *models.AdmissionApplication, prefix string) error {
	if m.apps == nil {
		m.apps = make(map[string]models.AdmissionApplication)
	}
	m.seq++
	app.ID = fmt.Sprintf("app-%d", m.seq)
	app.ApplicationNumber = fmt.Sprintf("%s2025%04d", prefix, m.seq)
	m.apps[app.ID] = *app
	return nil
}

func (m *admissionRepoMock) GetByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	if app, ok := m.apps[id]; ok {
		return &app, nil
	}
	return nil, sql.ErrNoRows
}

func (m *admissionRepoMock) GetByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error) {
	for _, app := range m.apps {
		if app.ApplicationNumber == number {
			return &app, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *admissionRepoMock) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error) {
	var out []models.AdmissionApplication
	for _, app := range m.apps {
		out = append(out, app)
	}
	return out, len(out), nil
}

func (m *admissionRepoMock) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks *string, reviewedBy string) (*models.AdmissionApplication, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	app.Status = status
	app.ReviewedBy = &reviewedBy
	m.apps[id] = app
	return &app, nil
}

func (m *admissionRepoMock) BulkUpdateStatus(ctx context.Context, ids []string, status models.ApplicationStatus, reviewedBy string) (int64, error) {
	return int64(len(ids)), nil
}

func (m *admissionRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.apps[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.apps, id)
	return nil
}

func (m *admissionRepoMock) Stats(ctx context.Context, academicYear string) (*models.AdmissionStats, error) {
	return &models.AdmissionStats{Total: len(m.apps)}, nil
}

func applicationBody() map[string]interface{} {
	return map[string]interface{}{
		"student_first_name": "Aarav",
		"student_last_name":  "Sharma",
		"date_of_birth":      "2018-04-12",
		"gender":             "MALE",
		"nationality":        "Indian",
		"category":           "GENERAL",
		"class_applying_for": "1",
		"academic_year":      "2025-26",
		"father_name":        "Rohit Sharma",
		"father_phone":       "9876543210",
		"mother_name":        "Priya Sharma",
		"current_address":    "12 Lake Road",
		"current_city":       "Pune",
		"current_state":      "Maharashtra",
		"current_pincode":    "411001",
		"permanent_address":  "12 Lake Road",
		"permanent_city":     "Pune",
		"permanent_state":    "Maharashtra",
		"permanent_pincode":  "411001",
	}
}

func newAdmissionHandler(repo *admissionRepoMock) *AdmissionHandler {
	svc := service.NewAdmissionService(repo, nil, service.NewValidator(), zap.NewNop(), "BW", 3)
	return NewAdmissionHandler(svc)
}

func TestAdmissionHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdmissionHandler(&admissionRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(applicationBody())
	req, _ := http.NewRequest(http.MethodPost, "/admissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.AdmissionApplication `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "BW20250001", envelope.Data.ApplicationNumber)
	assert.Equal(t, models.StatusPending, envelope.Data.Status)
}

func TestAdmissionHandlerCreateInvalidPhone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdmissionHandler(&admissionRepoMock{})

	payload := applicationBody()
	payload["father_phone"] = "12345"

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, "/admissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmissionHandlerTrackNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAdmissionHandler(&admissionRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admissions/track/BW20259999", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "number", Value: "BW20259999"}}

	handler.Track(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmissionHandlerUpdateStatusStampsReviewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &admissionRepoMock{}
	handler := newAdmissionHandler(repo)

	createW := httptest.NewRecorder()
	createC, _ := gin.CreateTestContext(createW)
	body, _ := json.Marshal(applicationBody())
	createReq, _ := http.NewRequest(http.MethodPost, "/admissions", bytes.NewReader(body))
	createReq.Header.Set("Content-Type", "application/json")
	createC.Request = createReq
	handler.Create(createC)
	require.Equal(t, http.StatusCreated, createW.Code)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	statusBody, _ := json.Marshal(map[string]string{"status": "APPROVED"})
	req, _ := http.NewRequest(http.MethodPatch, "/admissions/app-1/status", bytes.NewReader(statusBody))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextAdminKey, &session.Claims{AdminID: "adm-1", Role: "ADMIN"})

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)

	stored := repo.apps["app-1"]
	assert.Equal(t, models.StatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "adm-1", *stored.ReviewedBy)
}
