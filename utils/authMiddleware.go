// File: utils/authMiddleware.go
package utils

import (
	"crypto/subtle"
	"log"
	"net/http"
)

// DeviceAuthMiddleware authenticates a request from the sensor device using a
// shared token carried in the X-Device-Token header. With an empty configured
// token the middleware is a pass-through, which keeps the endpoint open for
// setups that run on a trusted network.
func DeviceAuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceToken := r.Header.Get("X-Device-Token")
		if deviceToken == "" {
			log.Println("Device authentication failed: X-Device-Token header missing")
			http.Error(w, "Device authentication header missing", http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(deviceToken), []byte(token)) != 1 {
			log.Println("Device authentication failed: Invalid token")
			http.Error(w, "Invalid device token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
