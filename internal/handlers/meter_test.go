package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"relative_photometer/internal/models"
	"relative_photometer/internal/service"
)

func doRequest(r http.Handler, method, target string, body *bytes.Buffer, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMeterHandlers_IngestStateEstimateReset(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{state: models.MeterState{
		ID:            1,
		EstimateLux:   57410,
		LowerLux:      64820,
		UpperLux:      100000,
		ActiveSamples: 1,
		SensorTime:    1.5,
		Source:        "api",
	}}
	meter := &mockMeter{
		state:      models.MeterState{ID: 1, EstimateLux: 57410, ActiveSamples: 1},
		estimate:   57410,
		estimateAt: 50000,
	}
	s := &service.Service{
		Authorization: auth,
		Monitoring:    mon,
		Meter:         meter,
	}
	r := newTestRouter(s)

	// GET state requires auth → 401 without header
	w := doRequest(r, http.MethodGet, "/api/v1/meter/state", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// With auth → 200 and state body
	w = doRequest(r, http.MethodGet, "/api/v1/meter/state", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.MeterState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.EstimateLux != 57410 || st.LowerLux != 64820 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// POST /frames with a station-clock frame → 200, routed to IngestFrame
	body := bytes.NewBufferString(`{"frame":"3051"}`)
	w = doRequest(r, http.MethodPost, "/api/v1/meter/frames", body, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("frames status=%d, body=%s", w.Code, w.Body.String())
	}
	if meter.ingestCalls != 1 || meter.ingestAtCalls != 0 {
		t.Fatalf("ingest calls=%d, ingestAt calls=%d", meter.ingestCalls, meter.ingestAtCalls)
	}
	if meter.lastFrame != [2]byte{0x30, 0x51} {
		t.Fatalf("wrong frame bytes: %v", meter.lastFrame)
	}
	if meter.lastSource != "api" {
		t.Fatalf("source=%q, want %q", meter.lastSource, "api")
	}
	var ingestResp struct {
		Status string            `json:"status"`
		State  models.MeterState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &ingestResp)
	if ingestResp.Status != statusIngested {
		t.Fatalf("expected status %q, got %q", statusIngested, ingestResp.Status)
	}
	if ingestResp.State.EstimateLux != 57410 {
		t.Fatalf("state missing/invalid in response: %+v", ingestResp.State)
	}

	// POST /frames with sensor_time → routed to IngestFrameAt
	body = bytes.NewBufferString(`{"frame":"a15d","sensor_time":2.25}`)
	w = doRequest(r, http.MethodPost, "/api/v1/meter/frames", body, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("frames(at) status=%d, body=%s", w.Code, w.Body.String())
	}
	if meter.ingestAtCalls != 1 {
		t.Fatalf("ingestAt calls=%d", meter.ingestAtCalls)
	}
	if meter.lastAt != 2.25 {
		t.Fatalf("at=%v, want 2.25", meter.lastAt)
	}
	if meter.lastFrame != [2]byte{0xa1, 0x5d} {
		t.Fatalf("wrong frame bytes: %v", meter.lastFrame)
	}

	// GET /estimate without ?at=
	w = doRequest(r, http.MethodGet, "/api/v1/meter/estimate", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("estimate status=%d, body=%s", w.Code, w.Body.String())
	}
	var est struct {
		EstimateLux float64 `json:"estimate_lux"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &est); err != nil {
		t.Fatalf("unmarshal estimate: %v", err)
	}
	if est.EstimateLux != 57410 {
		t.Fatalf("estimate=%v, want 57410", est.EstimateLux)
	}

	// GET /estimate?at=3.5 → EstimateAt path, echoes at
	w = doRequest(r, http.MethodGet, "/api/v1/meter/estimate?at=3.5", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("estimate(at) status=%d, body=%s", w.Code, w.Body.String())
	}
	var estAt struct {
		EstimateLux float64 `json:"estimate_lux"`
		At          float64 `json:"at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &estAt); err != nil {
		t.Fatalf("unmarshal estimate(at): %v", err)
	}
	if estAt.EstimateLux != 50000 || estAt.At != 3.5 {
		t.Fatalf("bad estimate(at) response: %+v", estAt)
	}
	if meter.lastQueryAt != 3.5 {
		t.Fatalf("EstimateAt got %v, want 3.5", meter.lastQueryAt)
	}

	// POST /reset → 200 and Reset counter
	w = doRequest(r, http.MethodPost, "/api/v1/meter/reset", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("reset status=%d, body=%s", w.Code, w.Body.String())
	}
	if meter.resetCalls != 1 {
		t.Fatalf("expected Reset to be called once, got %d", meter.resetCalls)
	}
	var resetResp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resetResp)
	if resetResp.Status != statusReset {
		t.Fatalf("expected status %q, got %q", statusReset, resetResp.Status)
	}
}

func TestIngestFrame_BadRequests(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	meter := &mockMeter{}
	s := &service.Service{Authorization: auth, Meter: meter}
	r := newTestRouter(s)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing frame field", body: `{}`},
		{name: "not hex", body: `{"frame":"zzzz"}`},
		{name: "wrong length", body: `{"frame":"305180"}`},
		{name: "odd hex digits", body: `{"frame":"305"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/meter/frames", bytes.NewBufferString(tc.body), authHeader("valid"))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400 (body=%s)", w.Code, w.Body.String())
			}
		})
	}
	if meter.ingestCalls != 0 || meter.ingestAtCalls != 0 {
		t.Fatalf("invalid bodies must not reach the service: %d/%d", meter.ingestCalls, meter.ingestAtCalls)
	}
}

func TestGetEstimate_InvalidAt(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	s := &service.Service{Authorization: auth, Meter: &mockMeter{}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/meter/estimate?at=soon", nil, authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Error != errInvalidAt {
		t.Fatalf("error=%q, want %q", out.Error, errInvalidAt)
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != statusOK {
		t.Fatalf("status=%q, want %q", out.Status, statusOK)
	}
}
