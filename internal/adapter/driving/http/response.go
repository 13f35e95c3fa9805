package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"credstamp/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RunResponse is the JSON representation of one generation run.
type RunResponse struct {
	ID           int64  `json:"id"`
	TemplateName string `json:"template_name"`
	CSVName      string `json:"csv_name"`
	Mode         string `json:"mode"`
	PageIndex    int    `json:"page_index"`
	RecordCount  int    `json:"record_count"`
	OutputKind   string `json:"output_kind"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// toRunResponse converts a domain Run to its JSON response representation.
func toRunResponse(run model.Run) RunResponse {
	return RunResponse{
		ID:           run.ID,
		TemplateName: run.TemplateName,
		CSVName:      run.CSVName,
		Mode:         string(run.Mode),
		PageIndex:    run.PageIndex,
		RecordCount:  run.RecordCount,
		OutputKind:   string(run.OutputKind),
		Status:       run.Status,
		Error:        run.Error,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
	}
}
