package handlers

import (
	"encoding/hex"
	"net/http"
	"strconv"

	"relative_photometer/internal/photometer"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusIngested = "ingested"
	statusReset    = "reset"

	errIngestFrame     = "failed to ingest frame"
	errResetMeter      = "failed to reset meter"
	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
	errInvalidFrameHex = "frame must be 2 bytes of hex, e.g. \"3051\""
	errInvalidAt       = "invalid 'at' value; expected monotonic seconds"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for ingesting a frame.
type frameRequest struct {
	Frame      string   `json:"frame" binding:"required"` // 2 bytes as 4 hex digits
	SensorTime *float64 `json:"sensor_time,omitempty"`    // monotonic seconds; station clock if absent
}

// IngestFrameRequest is an exported model for Swagger docs of the ingest payload.
type IngestFrameRequest struct {
	// Raw wire frame as 4 hex digits, first byte first
	Frame string `json:"frame" example:"3051"`
	// Monotonic sensor time in seconds; defaults to the station clock
	SensorTime *float64 `json:"sensor_time,omitempty" example:"1.1"`
}

// parseFrameHex decodes the 4-hex-digit wire frame representation.
func parseFrameHex(s string) ([photometer.FrameSize]byte, bool) {
	var frame [photometer.FrameSize]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != photometer.FrameSize {
		return frame, false
	}
	copy(frame[:], raw)
	return frame, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Ingest a raw frame
// @Description  Feeds one 2-byte wire frame into the tracker. sensor_time must be non-decreasing across requests when supplied.
// @Tags         meter
// @Accept       json
// @Produce      json
// @Param        body  body   IngestFrameRequest  true  "Frame payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/meter/frames [post]
// @Security     BearerAuth
func (h *Handler) ingestFrame(c *gin.Context) {
	var req frameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	frame, ok := parseFrameHex(req.Frame)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidFrameHex})
		return
	}

	ctx := c.Request.Context()
	var (
		state interface{}
		err   error
	)
	if req.SensorTime != nil {
		state, err = h.services.Meter.IngestFrameAt(ctx, *req.SensorTime, frame, "api")
	} else {
		state, err = h.services.Meter.IngestFrame(ctx, frame, "api")
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestFrame, "meter_ingest_failed", err, "frame", req.Frame)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusIngested, "state": state})
}

// @Summary      Point-in-time estimate
// @Description  Returns the illuminance estimate. With ?at= the query is evaluated at that monotonic time; without it, every held sample counts as valid.
// @Tags         meter
// @Produce      json
// @Param        at  query  number  false  "Monotonic seconds to evaluate at"
// @Success      200  {object}  map[string]interface{}  "estimate_lux, at"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/meter/estimate [get]
// @Security     BearerAuth
func (h *Handler) getEstimate(c *gin.Context) {
	if qs := c.Query("at"); qs != "" {
		at, err := strconv.ParseFloat(qs, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidAt})
			return
		}
		c.JSON(http.StatusOK, gin.H{"estimate_lux": h.services.Meter.EstimateAt(at), "at": at})
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimate_lux": h.services.Meter.Estimate()})
}

// @Summary      Get meter state
// @Tags         meter
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/meter/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "meter_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Reset the tracker
// @Tags         meter
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/meter/reset [post]
// @Security     BearerAuth
func (h *Handler) resetMeter(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Meter.Reset(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errResetMeter, "meter_reset_failed", err)
		return
	}
	st, err := h.services.Monitoring.GetState(ctx)
	resp := gin.H{"status": statusReset}
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}
