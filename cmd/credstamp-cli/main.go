// Command credstamp-cli runs one batch transformation from the command line,
// mirroring the web form: a template PDF plus a credentials CSV in, a single
// PDF or a ZIP out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	pdfadapter "credstamp/internal/adapter/driven/pdf"
	"credstamp/internal/application"
	"credstamp/internal/domain/model"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "credstamp-cli:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("credstamp-cli", flag.ContinueOnError)

	templatePath := fs.String("template", "", "path to the template PDF (required)")
	csvPath := fs.String("csv", "", "path to the credentials CSV (required)")
	page := fs.Int("page", 0, "target page, 0-based index")
	mode := fs.String("mode", "replace", "generation mode: replace, overlay, or keep")
	oldLogin := fs.String("old-login", "", "replace mode: original login text on the page")
	oldPassword := fs.String("old-password", "", "replace mode: original password text on the page")
	font := fs.String("font", "Helvetica", "overlay mode: base font")
	size := fs.Float64("size", 12, "overlay mode: font size in points")
	bg := fs.String("bg", "#ffffff", "overlay mode: clear-rect background color (#rrggbb)")
	loginX := fs.Float64("login-x", 0, "overlay mode: login text x origin")
	loginY := fs.Float64("login-y", 0, "overlay mode: login text y origin")
	loginClear := fs.String("login-clear", "", "overlay mode: login clear-rect x0,y0,x1,y1")
	passwordX := fs.Float64("password-x", 0, "overlay mode: password text x origin")
	passwordY := fs.Float64("password-y", 0, "overlay mode: password text y origin")
	passwordClear := fs.String("password-clear", "", "overlay mode: password clear-rect x0,y0,x1,y1")
	outPath := fs.String("out", "", "output path (defaults to the generated filename in the current directory)")
	forceZIP := fs.Bool("zip", false, "always package the output as a ZIP archive")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *templatePath == "" || *csvPath == "" {
		return fmt.Errorf("-template and -csv are required")
	}

	parsedMode, err := model.ParseMode(*mode)
	if err != nil {
		return err
	}

	template, err := os.ReadFile(*templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	csvData, err := os.ReadFile(*csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	req := application.GenerateRequest{
		TemplateName: filepath.Base(*templatePath),
		Template:     template,
		CSVName:      filepath.Base(*csvPath),
		CSV:          csvData,
		PageIndex:    *page,
		Mode:         parsedMode,
		ForceZIP:     *forceZIP,
	}

	switch parsedMode {
	case model.ModeReplace:
		req.Replace = application.ReplaceSpec{
			OriginalLogin:    *oldLogin,
			OriginalPassword: *oldPassword,
		}
	case model.ModeOverlay:
		background, err := model.ParseHexColor(*bg)
		if err != nil {
			return err
		}
		loginRect, err := model.ParseRect(*loginClear)
		if err != nil {
			return fmt.Errorf("login clear-rect: %w", err)
		}
		passwordRect, err := model.ParseRect(*passwordClear)
		if err != nil {
			return fmt.Errorf("password clear-rect: %w", err)
		}
		req.Overlay = application.OverlayLayout{
			Login:      model.FieldSpec{X: *loginX, Y: *loginY, Font: *font, Size: *size, ClearRect: loginRect},
			Password:   model.FieldSpec{X: *passwordX, Y: *passwordY, Font: *font, Size: *size, ClearRect: passwordRect},
			Background: background,
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := application.NewGenerateService(pdfadapter.NewEditor(), nil, logger)

	result, err := svc.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	dest := *outPath
	if dest == "" {
		dest = result.Filename
	}
	if err := os.WriteFile(dest, result.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %s (%d records, %s)\n", dest, result.RecordCount, result.Kind)
	return nil
}
