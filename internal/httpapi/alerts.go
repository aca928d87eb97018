package httpapi

import (
	"encoding/json"
	"net/http"
)

// summarizeAlertsRequest is POST /triage/summarize-alerts's body, per
// spec.md §6. IncludeAIAnalysis is accepted but not currently threaded
// through to alerts.Summarizer, which decides AI analysis from its own
// Config.EnableAIAnalysis — see DESIGN.md.
type summarizeAlertsRequest struct {
	TimeWindowMinutes int    `json:"time_window_minutes,omitempty"`
	SourceIP          string `json:"source_ip,omitempty"`
	IndexPattern      string `json:"index_pattern,omitempty"`
	IncludeAIAnalysis *bool  `json:"include_ai_analysis,omitempty"`
}

func handleSummarizeAlerts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeAlertsRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		windowMinutes := req.TimeWindowMinutes
		if windowMinutes <= 0 {
			windowMinutes = deps.DefaultAlertWindowMinutes
		}
		indexPattern := req.IndexPattern
		if indexPattern == "" {
			indexPattern = deps.DefaultIndexPattern
		}

		digest, err := deps.Summarizer.Summarize(r.Context(), windowMinutes, req.SourceIP, indexPattern)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		status := http.StatusOK
		if !digest.Success && digest.Status == "error" {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, digest)
	}
}
