// controllers/measurementController.go
package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"AquaLog.monitor/models"
	"AquaLog.monitor/services"
	"AquaLog.monitor/utils"
)

// MeasurementController handles HTTP requests from the sensor device and the
// viewer page.
type MeasurementController struct {
	service *services.MeasurementService
}

// NewMeasurementController creates a new MeasurementController.
func NewMeasurementController(service *services.MeasurementService) *MeasurementController {
	return &MeasurementController{service: service}
}

// Create handles POST /measurement from the sensor device.
func (c *MeasurementController) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var measurement models.Measurement
	if err := json.NewDecoder(r.Body).Decode(&measurement); err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error decoding request body: %v", err), nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}

	if err := c.service.Ingest(&measurement); err != nil {
		var apiErr models.APIError
		if errors.As(err, &apiErr) {
			utils.RespondWithError(w, apiErr)
			return
		}
		log.Printf("Unclassified ingestion error: %v", err)
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError, err.Error(), nil, http.StatusInternalServerError))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Measurement saved",
	})
}

// Latest handles GET /measurement/latest for viewers that poll instead of
// keeping a websocket open.
func (c *MeasurementController) Latest(w http.ResponseWriter, r *http.Request) {
	m := c.service.Latest()
	if m == nil {
		apiErr := models.NewAPIError(models.ErrorCodeNotFound, "No measurement received yet", nil, http.StatusNotFound)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// Index serves the viewer page.
func (c *MeasurementController) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/index.html")
}

// HealthCheck reports liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
