package httpx

import "net/http"

// Root handles GET /{$} with a short liveness banner for humans and probes.
func Root(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Edge server is running! Enrollment and attendance services active",
	})
}

// Healthz handles GET /healthz.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
