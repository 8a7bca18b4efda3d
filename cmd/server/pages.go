package main

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/liamcoop/healthrisk/advice"
	"github.com/liamcoop/healthrisk/form"
	"github.com/liamcoop/healthrisk/internal/logger"
	"github.com/liamcoop/healthrisk/predict"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is the root value every page template receives
type pageData struct {
	Active string
	Home   *homeView
	Advice *advice.Page
	About  *advice.AboutPage
}

type homeView struct {
	Fields []fieldView
	Result *resultView
	Error  string
}

type fieldView struct {
	form.Field
	Value string
}

type resultView struct {
	Label   predict.Label
	Message string
}

func loadTemplates() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"home", "precautions", "about"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// newHomeView fills the form controls from an input
func newHomeView(in predict.PatientInput) *homeView {
	values := form.Values(in)
	fields := make([]fieldView, len(form.Fields))
	for i, f := range form.Fields {
		fields[i] = fieldView{Field: f, Value: values.Get(f.Name)}
	}
	return &homeView{Fields: fields}
}

// newSubmittedView refills the form with the raw submitted text so a
// rejected submission keeps what the user typed. Blank fields show defaults.
func newSubmittedView(submitted url.Values) *homeView {
	view := newHomeView(form.Defaults())
	for i := range view.Fields {
		if raw := strings.TrimSpace(submitted.Get(view.Fields[i].Name)); raw != "" {
			view.Fields[i].Value = raw
		}
	}
	return view
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := s.pages[name]
	if !ok {
		logger.ErrorHttp5xx()
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("failed to render page", "page", name, "error", err)
	}
}
