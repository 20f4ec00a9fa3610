package handlers

import (
	"context"
	"net/http"
	"time"

	"relative_photometer/internal/models"
	"relative_photometer/internal/photometer"
	"relative_photometer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMeter struct {
	state      models.MeterState
	ingestErr  error
	resetErr   error
	estimate   float64
	estimateAt float64
	now        float64

	ingestCalls   int
	ingestAtCalls int
	resetCalls    int
	lastFrame     [photometer.FrameSize]byte
	lastAt        float64
	lastSource    string
	lastQueryAt   float64
}

func (m *mockMeter) IngestFrame(ctx context.Context, frame [photometer.FrameSize]byte, source string) (models.MeterState, error) {
	m.ingestCalls++
	m.lastFrame = frame
	m.lastSource = source
	return m.state, m.ingestErr
}
func (m *mockMeter) IngestFrameAt(ctx context.Context, at float64, frame [photometer.FrameSize]byte, source string) (models.MeterState, error) {
	m.ingestAtCalls++
	m.lastAt = at
	m.lastFrame = frame
	m.lastSource = source
	return m.state, m.ingestErr
}
func (m *mockMeter) EstimateAt(at float64) float64 {
	m.lastQueryAt = at
	return m.estimateAt
}
func (m *mockMeter) Estimate() float64 { return m.estimate }
func (m *mockMeter) SensorNow() float64 {
	return m.now
}
func (m *mockMeter) Reset(ctx context.Context) error {
	m.resetCalls++
	return m.resetErr
}

type mockMonitoring struct {
	state models.MeterState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.MeterState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.SensorEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SensorEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
