package application

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"credstamp/internal/domain/model"
	"credstamp/internal/domain/port/driven"
)

// ErrInvalidOptions indicates the mode-specific generation options are
// incomplete or inconsistent (e.g. replace mode without original strings).
var ErrInvalidOptions = errors.New("invalid generation options")

// zipFilename is the download name used when the result is an archive.
const zipFilename = "credentials.zip"

// ReplaceSpec holds the original strings located on the page in replace mode.
type ReplaceSpec struct {
	OriginalLogin    string
	OriginalPassword string
}

// OverlayLayout holds the per-field placement for overlay mode. A zero
// Background means white.
type OverlayLayout struct {
	Login      model.FieldSpec
	Password   model.FieldSpec
	Background model.Color
}

// GenerateRequest carries one batch transformation: the template, the CSV,
// and the mode options. TemplateName and CSVName are display names used only
// for run history.
type GenerateRequest struct {
	TemplateName string
	Template     []byte
	CSVName      string
	CSV          []byte
	PageIndex    int
	Mode         model.Mode
	Replace      ReplaceSpec
	Overlay      OverlayLayout
	ForceZIP     bool
}

// GenerateResult is the packaged output of one batch.
type GenerateResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Kind        model.OutputKind
	RecordCount int
}

// GenerateService orchestrates loading, per-record editing, and packaging.
// Records are processed synchronously in input order; the batch halts on the
// first failure.
type GenerateService struct {
	editor driven.PageEditor
	runs   driven.RunStore // nil disables history (CLI use)
	logger *slog.Logger
}

// NewGenerateService creates a GenerateService. runs may be nil, in which
// case no history is recorded.
func NewGenerateService(editor driven.PageEditor, runs driven.RunStore, logger *slog.Logger) *GenerateService {
	return &GenerateService{
		editor: editor,
		runs:   runs,
		logger: logger,
	}
}

type output struct {
	name string
	data []byte
}

// Generate runs one batch and returns the packaged result: a single PDF when
// exactly one record was processed and no archive was forced, otherwise a ZIP
// with one entry per record. The template buffer is never mutated.
func (s *GenerateService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	result, err := s.generate(ctx, req)
	s.recordRun(ctx, req, result, err)
	return result, err
}

func (s *GenerateService) generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validateOptions(req); err != nil {
		return nil, err
	}

	records, err := LoadRecords(req.CSV, req.Mode == model.ModeKeep)
	if err != nil {
		return nil, err
	}

	pageCount, err := s.editor.PageCount(ctx, req.Template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if req.PageIndex < 0 || req.PageIndex >= pageCount {
		return nil, fmt.Errorf("%w: page %d of a %d-page document",
			driven.ErrInvalidPage, req.PageIndex, pageCount)
	}

	outputs := make([]output, 0, len(records))
	for _, rec := range records {
		data, err := s.generateOne(ctx, req, rec)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.OutputName, err)
		}
		outputs = append(outputs, output{name: outputFilename(rec.OutputName), data: data})
	}

	s.logger.Info("batch generated",
		"template", req.TemplateName,
		"mode", req.Mode,
		"page", req.PageIndex,
		"records", len(outputs),
	)

	if len(outputs) == 1 && !req.ForceZIP {
		return &GenerateResult{
			Filename:    outputs[0].name,
			ContentType: "application/pdf",
			Data:        outputs[0].data,
			Kind:        model.OutputPDF,
			RecordCount: 1,
		}, nil
	}

	archive, err := buildZIP(outputs)
	if err != nil {
		return nil, fmt.Errorf("package outputs: %w", err)
	}
	return &GenerateResult{
		Filename:    zipFilename,
		ContentType: "application/zip",
		Data:        archive,
		Kind:        model.OutputZIP,
		RecordCount: len(outputs),
	}, nil
}

// generateOne produces the derived document for a single record.
func (s *GenerateService) generateOne(ctx context.Context, req GenerateRequest, rec model.CredentialRecord) ([]byte, error) {
	switch req.Mode {
	case model.ModeKeep:
		// Only the filename changes; hand back an untouched copy.
		return bytes.Clone(req.Template), nil

	case model.ModeReplace:
		repls := []model.TextReplacement{
			{Old: req.Replace.OriginalLogin, New: rec.Login},
			{Old: req.Replace.OriginalPassword, New: rec.Password},
		}
		return s.editor.ReplaceText(ctx, req.Template, req.PageIndex, repls)

	case model.ModeOverlay:
		fields := []model.OverlayField{
			{Spec: req.Overlay.Login, Text: rec.Login},
			{Spec: req.Overlay.Password, Text: rec.Password},
		}
		bg := req.Overlay.Background
		if bg == (model.Color{}) {
			bg = model.White
		}
		return s.editor.OverlayText(ctx, req.Template, req.PageIndex, fields, bg)
	}

	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, req.Mode)
}

func validateOptions(req GenerateRequest) error {
	switch req.Mode {
	case model.ModeReplace:
		if req.Replace.OriginalLogin == "" || req.Replace.OriginalPassword == "" {
			return fmt.Errorf("%w: replace mode requires the original login and password strings", ErrInvalidOptions)
		}
	case model.ModeOverlay:
		if req.Overlay.Login.Size <= 0 || req.Overlay.Password.Size <= 0 {
			return fmt.Errorf("%w: overlay mode requires a positive font size for both fields", ErrInvalidOptions)
		}
	case model.ModeKeep:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, req.Mode)
	}
	return nil
}

// outputFilename normalizes a CSV output_name into a safe PDF filename:
// directory components are stripped and a single .pdf extension is applied
// even when the CSV already carries one.
func outputFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, ".pdf")
	if base == "" || base == "." || base == ".." {
		base = "output"
	}
	return base + ".pdf"
}

// buildZIP packages outputs into a deflated archive. Duplicate names are
// disambiguated with -2, -3, ... suffixes so no entry is silently lost.
func buildZIP(outputs []output) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]int, len(outputs))
	for _, out := range outputs {
		name := out.name
		seen[name]++
		if n := seen[name]; n > 1 {
			stem := strings.TrimSuffix(name, ".pdf")
			name = fmt.Sprintf("%s-%d.pdf", stem, n)
		}

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %q: %w", name, err)
		}
		if _, err := w.Write(out.data); err != nil {
			return nil, fmt.Errorf("write zip entry %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// recordRun persists a history row when a store is configured. History is
// best-effort: failures are logged and never surfaced to the caller.
func (s *GenerateService) recordRun(ctx context.Context, req GenerateRequest, result *GenerateResult, genErr error) {
	if s.runs == nil {
		return
	}

	run := model.Run{
		TemplateName: req.TemplateName,
		CSVName:      req.CSVName,
		Mode:         req.Mode,
		PageIndex:    req.PageIndex,
		Status:       model.RunStatusOK,
		CreatedAt:    time.Now().UTC(),
	}
	if result != nil {
		run.RecordCount = result.RecordCount
		run.OutputKind = result.Kind
	}
	if genErr != nil {
		run.Status = model.RunStatusError
		run.Error = genErr.Error()
	}

	if _, err := s.runs.Add(ctx, run); err != nil {
		s.logger.Error("failed to record run", "template", req.TemplateName, "error", err)
	}
}
