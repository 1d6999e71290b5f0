package httpHandler

import (
	"net/http"
	"strconv"

	"sensegrid-server/entities"
	"sensegrid-server/services"

	"github.com/gin-gonic/gin"
)

type SensorHandler struct {
	ingest    *services.IngestService
	aggregate *services.AggregateService
}

func NewSensorHandler(ingest *services.IngestService, aggregate *services.AggregateService) *SensorHandler {
	return &SensorHandler{
		ingest:    ingest,
		aggregate: aggregate,
	}
}

// CreateReading handles POST /api/v1/devices/:device_id/sensors.
// Value binds through a pointer so an absent field is rejected
// instead of silently stored as 0.
func (h *SensorHandler) CreateReading(c *gin.Context) {
	var body struct {
		SensorType string   `json:"sensor_type" binding:"required"`
		Value      *float64 `json:"value" binding:"required"`
		Unit       string   `json:"unit"`
		Timestamp  string   `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	reading := entities.SensorReading{
		SensorType: body.SensorType,
		Value:      *body.Value,
		Unit:       body.Unit,
	}
	if body.Timestamp != "" {
		ts, err := services.ParseTimestamp(body.Timestamp)
		if err != nil {
			respondError(c, err)
			return
		}
		reading.Timestamp = ts
	}

	stored, err := h.ingest.CreateReading(c.Param("device_id"), &reading)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sensor reading stored",
		"data":    stored,
	})
}

// GetLatestReading handles GET /api/v1/devices/:device_id/sensors/:sensor_type/latest
func (h *SensorHandler) GetLatestReading(c *gin.Context) {
	reading, err := h.ingest.Latest(c.Param("device_id"), c.Param("sensor_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": reading,
	})
}

// windowFromQuery resolves the hours / [start_date,end_date] selection.
// The two are mutually exclusive; hours defaults to 24 when neither is
// given.
func windowFromQuery(c *gin.Context) (services.Window, bool) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	hoursStr := c.Query("hours")

	if (startDate != "") != (endDate != "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "start_date and end_date must be provided together",
		})
		return services.Window{}, false
	}

	if startDate != "" && endDate != "" {
		if hoursStr != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "hours and start_date/end_date are mutually exclusive",
			})
			return services.Window{}, false
		}
		window, err := services.WindowFromRange(startDate, endDate)
		if err != nil {
			respondError(c, err)
			return services.Window{}, false
		}
		return window, true
	}

	hours := services.DefaultWindowHours
	if hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be an integer"})
			return services.Window{}, false
		}
		hours = parsed
	}

	window, err := services.WindowFromHours(hours)
	if err != nil {
		respondError(c, err)
		return services.Window{}, false
	}
	return window, true
}

// GetStats handles GET /api/v1/devices/:device_id/sensors/:sensor_type/stats
func (h *SensorHandler) GetStats(c *gin.Context) {
	window, ok := windowFromQuery(c)
	if !ok {
		return
	}

	stats, err := h.aggregate.Stats(c.Param("device_id"), c.Param("sensor_type"), window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetTimeSeries handles GET /api/v1/devices/:device_id/sensors/:sensor_type/timeseries
func (h *SensorHandler) GetTimeSeries(c *gin.Context) {
	window, ok := windowFromQuery(c)
	if !ok {
		return
	}

	var quotaLimit *int
	if raw := c.Query("quota_limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quota_limit must be an integer"})
			return
		}
		quotaLimit = &parsed
	}

	series, err := h.aggregate.TimeSeries(c.Param("device_id"), c.Param("sensor_type"), window, quotaLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": series,
	})
}
