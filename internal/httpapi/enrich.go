package httpapi

import (
	"encoding/json"
	"net/http"
)

// explainIOCRequest is POST /enrich/explain_ioc's body, per spec.md §6.
type explainIOCRequest struct {
	CaseID            string `json:"case_id"`
	IOCID             string `json:"ioc_id"`
	UpdateDescription bool   `json:"update_description,omitempty"`
}

func handleExplainIOC(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req explainIOCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CaseID == "" || req.IOCID == "" {
			writeError(w, http.StatusBadRequest, "case_id and ioc_id are required")
			return
		}

		result, err := deps.Orchestrator.EnrichIOC(r.Context(), req.CaseID, req.IOCID, req.UpdateDescription)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		status := http.StatusOK
		switch result.Status {
		case "no_report":
			status = http.StatusNotFound
		case "error", "analysis_failed":
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, result)
	}
}
