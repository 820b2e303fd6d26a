// File: routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"AquaLog.monitor/controllers"
	"AquaLog.monitor/utils"
	"AquaLog.monitor/ws"
)

// SetupRouter defines all API routes.
func SetupRouter(mc *controllers.MeasurementController, hub *ws.Hub, deviceAuthToken string) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/measurement", utils.DeviceAuthMiddleware(deviceAuthToken, http.HandlerFunc(mc.Create))).Methods("POST")
	router.HandleFunc("/measurement/latest", mc.Latest).Methods("GET")
	router.HandleFunc("/health", controllers.HealthCheck).Methods("GET")
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	router.HandleFunc("/", mc.Index).Methods("GET")

	return router
}
