// Package web implements the HTML GUI driving adapter: the upload form, the
// CSV preview, the generated-file download, and the run history page.
package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"credstamp/internal/application"
	"credstamp/internal/domain/port/driven"

	httphandler "credstamp/internal/adapter/driving/http"
)

// Handler is the web GUI driving adapter.
type Handler struct {
	genSvc       *application.GenerateService
	runs         driven.RunStore // nil disables the history page content
	maxBody      int64
	historyLimit int
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
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

// Index renders the upload form with the usage help.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)
	h.renderIndex(w, http.StatusOK, indexView{Form: defaultFormView(), CSRFToken: token, Help: helpHTML()})
}

// Generate handles the form POST. With action=preview the parsed CSV rows
// are rendered back into the page; otherwise the generated PDF or ZIP is
// streamed as an attachment download.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}
	token := csrfToken(w, r)

	view := indexView{Form: formViewFromRequest(r), CSRFToken: token, Help: helpHTML()}

	req, err := httphandler.ParseGenerateRequest(r)
	if err != nil {
		view.Error = err.Error()
		h.renderIndex(w, http.StatusBadRequest, view)
		return
	}

	if r.FormValue("action") == "preview" {
		records, err := application.LoadRecords(req.CSV, true)
		if err != nil {
			view.Error = err.Error()
			h.renderIndex(w, http.StatusBadRequest, view)
			return
		}
		view.Preview = records
		h.renderIndex(w, http.StatusOK, view)
		return
	}

	result, err := h.genSvc.Generate(r.Context(), req)
	if err != nil {
		view.Error = err.Error()
		h.renderIndex(w, http.StatusUnprocessableEntity, view)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	_, _ = w.Write(result.Data)
}

// Runs renders the generation history page.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	view := runsView{}
	if h.runs != nil {
		runs, err := h.runs.ListRecent(r.Context(), h.historyLimit)
		if err != nil {
			h.logger.Error("failed to list runs", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		view.Runs = toRunViews(runs)
	} else {
		view.HistoryDisabled = true
	}

	h.render(w, http.StatusOK, "runs.html", view)
}

func (h *Handler) renderIndex(w http.ResponseWriter, status int, view indexView) {
	h.render(w, status, "index.html", view)
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, view any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, page, view); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
	}
}
