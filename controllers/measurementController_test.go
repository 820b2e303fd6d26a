package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLog.monitor/controllers"
	"AquaLog.monitor/dao"
	"AquaLog.monitor/models"
	"AquaLog.monitor/routes"
	"AquaLog.monitor/services"
	"AquaLog.monitor/ws"
)

const validBody = `{
	"timestamp": 12345,
	"data": {
		"water_level": 15,
		"inside": {
			"up": {"temperature": 21.5, "humidity": 40},
			"down": {"temperature": 20.1, "humidity": 42}
		},
		"outside": {
			"up": {"temperature": 18.3, "humidity": 55, "lux": 1200},
			"down": {"temperature": 17.9, "humidity": 57, "lux": 900}
		}
	}
}`

func newTestServer(t *testing.T, deviceAuthToken string) (*httptest.Server, string) {
	t.Helper()

	dir := t.TempDir()
	store := dao.NewCSVDao(dir)
	limiter := services.NewAlertLimiter(20, 300*time.Second)
	notifier := services.NewTelegramNotifier("", "", 20, time.Second)
	dispatcher := services.NewAlertDispatcher(notifier, limiter, 1, 4)
	t.Cleanup(dispatcher.Stop)

	service := services.NewMeasurementService(store, limiter, dispatcher)
	hub := ws.NewHub(service.Latest)
	go hub.Run()
	service.SetBroadcaster(hub)

	controller := controllers.NewMeasurementController(service)
	router := routes.SetupRouter(controller, hub, deviceAuthToken)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, dir
}

func postMeasurement(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/measurement", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateMeasurementSuccess(t *testing.T) {
	srv, dir := newTestServer(t, "")

	resp := postMeasurement(t, srv.URL, validBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ack map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, "success", ack["status"])
	assert.Equal(t, "Measurement saved", ack["message"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(dir + "/" + entries[0].Name())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 2) // header plus one data row
}

func TestCreateMeasurementMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postMeasurement(t, srv.URL, "not json at all")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateMeasurementMissingData(t *testing.T) {
	srv, dir := newTestServer(t, "")

	resp := postMeasurement(t, srv.URL, `{"timestamp": 12345}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var apiErr models.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, models.ErrorCodeValidationFailed, apiErr.Code)

	entries, err := os.ReadDir(dir)
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestCreateMeasurementIncompleteReadingsFailPersistence(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postMeasurement(t, srv.URL, `{"data": {"water_level": 15}}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var apiErr models.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, models.ErrorCodePersistenceError, apiErr.Code)
}

func TestLatestEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/measurement/latest")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	postMeasurement(t, srv.URL, validBody)

	resp, err = http.Get(srv.URL + "/measurement/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m models.Measurement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	require.NotNil(t, m.Data)
	require.NotNil(t, m.Data.WaterLevel)
	assert.Equal(t, 15.0, *m.Data.WaterLevel)
	// Server receive time replaces the client-supplied timestamp
	assert.NotEqual(t, int64(12345), m.Timestamp)
}

func TestDeviceAuthToken(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	resp := postMeasurement(t, srv.URL, validBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/measurement", strings.NewReader(validBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-Token", "secret")

	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
