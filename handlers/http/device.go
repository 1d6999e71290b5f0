package httpHandler

import (
	"net/http"

	"sensegrid-server/entities"
	"sensegrid-server/services"
	"sensegrid-server/usecases"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	useCase   *usecases.DeviceUseCase
	lifecycle *services.LifecycleService
}

func NewDeviceHandler(useCase *usecases.DeviceUseCase, lifecycle *services.LifecycleService) *DeviceHandler {
	return &DeviceHandler{
		useCase:   useCase,
		lifecycle: lifecycle,
	}
}

// CreateDevice handles POST /api/v1/devices
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var device entities.Device

	if err := c.ShouldBindJSON(&device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.useCase.CreateDevice(&device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Device created successfully",
		"data":    device,
	})
}

// GetDevice handles GET /api/v1/devices/:device_id
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.useCase.GetDevice(c.Param("device_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": device,
	})
}

// GetAllDevices handles GET /api/v1/devices
func (h *DeviceHandler) GetAllDevices(c *gin.Context) {
	devices, err := h.useCase.GetAllDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve devices",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  devices,
		"count": len(devices),
	})
}

// UpdateDevice handles PUT /api/v1/devices/:device_id
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	var updates entities.Device
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	device, err := h.useCase.UpdateDevice(c.Param("device_id"), &updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device updated successfully",
		"data":    device,
	})
}

// UpdateDeviceStatus handles PUT /api/v1/devices/:device_id/status
func (h *DeviceHandler) UpdateDeviceStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Status must be 'online' or 'offline'",
		})
		return
	}

	device, err := h.lifecycle.SetStatus(c.Param("device_id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device status updated",
		"data":    device,
	})
}

// GetReading handles GET /api/v1/readings/:id
func (h *DeviceHandler) GetReading(c *gin.Context) {
	reading, err := h.useCase.GetReading(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": reading,
	})
}

// DeleteDevice handles DELETE /api/v1/devices/:device_id
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	if err := h.useCase.DeleteDevice(c.Param("device_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device deleted successfully",
	})
}
