package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credstamp/internal/application"
	"credstamp/internal/domain/model"
	"credstamp/internal/domain/port/driven"
)

// --- stubs ---

type stubEditor struct {
	pageCount  int
	replaceErr error
}

func (s *stubEditor) PageCount(_ context.Context, _ []byte) (int, error) {
	if s.pageCount == 0 {
		return 1, nil
	}
	return s.pageCount, nil
}

func (s *stubEditor) ReplaceText(_ context.Context, template []byte, _ int, repls []model.TextReplacement) ([]byte, error) {
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	out := template
	for _, r := range repls {
		out = bytes.ReplaceAll(out, []byte(r.Old), []byte(r.New))
	}
	return out, nil
}

func (s *stubEditor) OverlayText(_ context.Context, template []byte, _ int, _ []model.OverlayField, _ model.Color) ([]byte, error) {
	return bytes.Clone(template), nil
}

type stubRunStore struct {
	runs    []model.Run
	listErr error
}

func (s *stubRunStore) Add(_ context.Context, run model.Run) (model.Run, error) {
	s.runs = append(s.runs, run)
	return run, nil
}

func (s *stubRunStore) ListRecent(_ context.Context, _ int) ([]model.Run, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.runs, nil
}

func newTestHandler(editor driven.PageEditor, runs driven.RunStore) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewGenerateService(editor, runs, logger)
	return NewHandler(svc, runs, 32<<20, 50, logger)
}

// multipartBody builds a multipart form with the given field values plus
// template and csv file parts.
func multipartBody(t *testing.T, fields map[string]string, template, csv string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if template != "" {
		fw, err := mw.CreateFormFile("template", "template.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte(template))
		require.NoError(t, err)
	}
	if csv != "" {
		fw, err := mw.CreateFormFile("csv", "creds.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csv))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func postGenerate(t *testing.T, h *Handler, fields map[string]string, template, csv string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, fields, template, csv)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	return rec
}

var replaceFields = map[string]string{
	"mode":              "replace",
	"original_login":    "demo",
	"original_password": "demo123",
}

const (
	testTemplate = "login demo password demo123"
	oneRowCSV    = "output_name,login,password\nalice,alice,pw1\n"
	twoRowCSV    = "output_name,login,password\nalice,alice,pw1\nbob,bob,pw2\n"
)

// --- tests ---

func TestGenerate_SingleRecordPDF(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	rec := postGenerate(t, h, replaceFields, testTemplate, oneRowCSV)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="alice.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "login alice password pw1", rec.Body.String())
}

func TestGenerate_MultipleRecordsZIP(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	rec := postGenerate(t, h, replaceFields, testTemplate, twoRowCSV)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="credentials.zip"`, rec.Header().Get("Content-Disposition"))
}

func TestGenerate_ForceZIP(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	fields := map[string]string{
		"mode":              "replace",
		"original_login":    "demo",
		"original_password": "demo123",
		"zip":               "on",
	}
	rec := postGenerate(t, h, fields, testTemplate, oneRowCSV)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
}

func TestGenerate_MissingUploads(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	tests := []struct {
		name     string
		template string
		csv      string
		wantMsg  string
	}{
		{name: "no template", template: "", csv: oneRowCSV, wantMsg: "missing template upload"},
		{name: "no csv", template: testTemplate, csv: "", wantMsg: "missing csv upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postGenerate(t, h, replaceFields, tt.template, tt.csv)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantMsg)
		})
	}
}

func TestGenerate_BadRequests(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	tests := []struct {
		name   string
		fields map[string]string
		csv    string
	}{
		{
			name:   "unknown mode",
			fields: map[string]string{"mode": "stamp"},
			csv:    oneRowCSV,
		},
		{
			name:   "non-numeric page",
			fields: map[string]string{"mode": "keep", "page": "first"},
			csv:    oneRowCSV,
		},
		{
			name:   "malformed csv",
			fields: replaceFields,
			csv:    "name,user,pass\na,b,c\n",
		},
		{
			name:   "replace without originals",
			fields: map[string]string{"mode": "replace"},
			csv:    oneRowCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postGenerate(t, h, tt.fields, testTemplate, tt.csv)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGenerate_FieldNotFound(t *testing.T) {
	h := newTestHandler(&stubEditor{replaceErr: driven.ErrFieldNotFound}, nil)

	rec := postGenerate(t, h, replaceFields, testTemplate, oneRowCSV)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerate_InvalidPage(t *testing.T) {
	h := newTestHandler(&stubEditor{pageCount: 2}, nil)

	fields := map[string]string{
		"mode":              "replace",
		"original_login":    "demo",
		"original_password": "demo123",
		"page":              "5",
	}
	rec := postGenerate(t, h, fields, testTemplate, oneRowCSV)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerate_InternalErrorHidesDetail(t *testing.T) {
	h := newTestHandler(&stubEditor{replaceErr: errors.New("xref table corrupt at offset 938")}, nil)

	rec := postGenerate(t, h, replaceFields, testTemplate, oneRowCSV)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "xref")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestListRuns(t *testing.T) {
	store := &stubRunStore{runs: []model.Run{
		{
			ID:           1,
			TemplateName: "template.pdf",
			CSVName:      "creds.csv",
			Mode:         model.ModeReplace,
			RecordCount:  3,
			OutputKind:   model.OutputZIP,
			Status:       model.RunStatusOK,
			CreatedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}}
	h := newTestHandler(&stubEditor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "template.pdf", resp[0].TemplateName)
	assert.Equal(t, "replace", resp[0].Mode)
	assert.Equal(t, "zip", resp[0].OutputKind)
	assert.Equal(t, "2026-08-30T12:00:00Z", resp[0].CreatedAt)
}

func TestListRuns_HistoryDisabled(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListRuns_StoreFailure(t *testing.T) {
	h := newTestHandler(&stubEditor{}, &stubRunStore{listErr: errors.New("disk gone")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&stubEditor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	ApplyMiddleware(panicking, logger).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
