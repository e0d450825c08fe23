package httpx

import "net/http"

// healthHandler answers liveness probes. Dependency health is the
// orchestrator's concern; this only proves the process is serving.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
