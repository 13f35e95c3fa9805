// Package httphandler is the JSON/file API driving adapter.
package httphandler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"credstamp/internal/application"
	"credstamp/internal/domain/model"
	"credstamp/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	genSvc       *application.GenerateService
	runs         driven.RunStore
	maxBody      int64
	historyLimit int
	logger       *slog.Logger
}

// NewHandler creates a Handler. runs may be nil when history is disabled.
func NewHandler(
	genSvc *application.GenerateService,
	runs driven.RunStore,
	maxBody int64,
	historyLimit int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		genSvc:       genSvc,
		runs:         runs,
		maxBody:      maxBody,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// RegisterAPIRoutes registers all API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/generate", h.Generate)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ApplyMiddleware wraps the handler with logging and recovery middleware.
// Recovery sits innermost so panics are caught before request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// Generate accepts a multipart upload (template PDF, credentials CSV, mode
// options) and responds with the generated PDF or ZIP as an attachment.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	req, err := ParseGenerateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.genSvc.Generate(r.Context(), req)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("generation failed", "template", req.TemplateName, "error", err)
			writeError(w, status, "internal server error")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	_, _ = w.Write(result.Data)
}

// ListRuns returns recent generation runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusOK, []RunResponse{})
		return
	}

	runs, err := h.runs.ListRecent(r.Context(), h.historyLimit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// statusForError maps generation failures to response codes: bad input is
// 400, a missing original text run is 404, an out-of-range page is 422, and
// everything else is an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, application.ErrMalformedCSV), errors.Is(err, application.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, driven.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.Is(err, driven.ErrInvalidPage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ParseGenerateRequest reads the multipart form fields shared by the API and
// the GUI into an application request. The caller is responsible for capping
// the body size beforehand.
func ParseGenerateRequest(r *http.Request) (application.GenerateRequest, error) {
	var req application.GenerateRequest

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return req, fmt.Errorf("parse upload form: %w", err)
	}

	tmplName, tmplData, err := formFile(r, "template")
	if err != nil {
		return req, err
	}
	csvName, csvData, err := formFile(r, "csv")
	if err != nil {
		return req, err
	}

	mode, err := model.ParseMode(r.FormValue("mode"))
	if err != nil {
		return req, err
	}

	page := 0
	if v := r.FormValue("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("page index %q is not a number", v)
		}
	}

	req = application.GenerateRequest{
		TemplateName: tmplName,
		Template:     tmplData,
		CSVName:      csvName,
		CSV:          csvData,
		PageIndex:    page,
		Mode:         mode,
		ForceZIP:     isChecked(r.FormValue("zip")),
	}

	switch mode {
	case model.ModeReplace:
		req.Replace = application.ReplaceSpec{
			OriginalLogin:    r.FormValue("original_login"),
			OriginalPassword: r.FormValue("original_password"),
		}
	case model.ModeOverlay:
		req.Overlay, err = parseOverlayLayout(r)
		if err != nil {
			return req, err
		}
	}

	return req, nil
}

func parseOverlayLayout(r *http.Request) (application.OverlayLayout, error) {
	var layout application.OverlayLayout

	font := r.FormValue("font")
	if font == "" {
		font = "Helvetica"
	}
	size, err := formFloat(r, "size", 12)
	if err != nil {
		return layout, err
	}

	background, err := model.ParseHexColor(r.FormValue("background"))
	if err != nil {
		return layout, err
	}
	layout.Background = background

	layout.Login, err = parseFieldSpec(r, "login", font, size)
	if err != nil {
		return layout, err
	}
	layout.Password, err = parseFieldSpec(r, "password", font, size)
	if err != nil {
		return layout, err
	}

	return layout, nil
}

func parseFieldSpec(r *http.Request, field, font string, size float64) (model.FieldSpec, error) {
	x, err := formFloat(r, field+"_x", 0)
	if err != nil {
		return model.FieldSpec{}, err
	}
	y, err := formFloat(r, field+"_y", 0)
	if err != nil {
		return model.FieldSpec{}, err
	}
	clear, err := model.ParseRect(r.FormValue(field + "_clear"))
	if err != nil {
		return model.FieldSpec{}, fmt.Errorf("%s clear-rect: %w", field, err)
	}

	return model.FieldSpec{X: x, Y: y, Font: font, Size: size, ClearRect: clear}, nil
}

func formFloat(r *http.Request, name string, fallback float64) (float64, error) {
	v := r.FormValue(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, v)
	}
	return f, nil
}

func formFile(r *http.Request, name string) (string, []byte, error) {
	file, header, err := r.FormFile(name)
	if err != nil {
		return "", nil, fmt.Errorf("missing %s upload", name)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read %s upload: %w", name, err)
	}
	return header.Filename, data, nil
}

func isChecked(v string) bool {
	switch v {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
