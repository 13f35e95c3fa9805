package web

import (
	"html/template"
	"net/http"
	"time"

	"credstamp/internal/domain/model"
)

// formView carries the form control values back into the template so a
// failed or previewed submission keeps what the user entered. Values stay
// as strings; parsing happens in the generate path.
type formView struct {
	Mode             string
	Page             string
	OriginalLogin    string
	OriginalPassword string
	Font             string
	Size             string
	LoginX           string
	LoginY           string
	LoginClear       string
	PasswordX        string
	PasswordY        string
	PasswordClear    string
	Background       string
	ForceZIP         bool
}

func defaultFormView() formView {
	return formView{
		Mode:       string(model.ModeReplace),
		Page:       "0",
		Font:       "Helvetica",
		Size:       "12",
		Background: "#ffffff",
	}
}

func formViewFromRequest(r *http.Request) formView {
	return formView{
		Mode:             r.FormValue("mode"),
		Page:             r.FormValue("page"),
		OriginalLogin:    r.FormValue("original_login"),
		OriginalPassword: r.FormValue("original_password"),
		Font:             r.FormValue("font"),
		Size:             r.FormValue("size"),
		LoginX:           r.FormValue("login_x"),
		LoginY:           r.FormValue("login_y"),
		LoginClear:       r.FormValue("login_clear"),
		PasswordX:        r.FormValue("password_x"),
		PasswordY:        r.FormValue("password_y"),
		PasswordClear:    r.FormValue("password_clear"),
		Background:       r.FormValue("background"),
		ForceZIP:         r.FormValue("zip") != "",
	}
}

// indexView is the render model for the upload form page.
type indexView struct {
	Form      formView
	CSRFToken string
	Error     string
	Preview   []model.CredentialRecord
	Help      template.HTML
}

// runView is one row of the history table.
type runView struct {
	TemplateName string
	CSVName      string
	Mode         string
	PageIndex    int
	RecordCount  int
	OutputKind   string
	Status       string
	Error        string
	CreatedAt    string
}

// runsView is the render model for the history page.
type runsView struct {
	Runs            []runView
	HistoryDisabled bool
}

func toRunViews(runs []model.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			TemplateName: run.TemplateName,
			CSVName:      run.CSVName,
			Mode:         string(run.Mode),
			PageIndex:    run.PageIndex,
			RecordCount:  run.RecordCount,
			OutputKind:   string(run.OutputKind),
			Status:       run.Status,
			Error:        run.Error,
			CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return views
}
